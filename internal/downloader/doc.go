// Package downloader coordinates bulk downloads through a
// bounded-concurrency job queue.
//
// The Service admits validated batches, fills free execution slots
// from a FIFO queue, and drives each job through queued, downloading,
// and a terminal completed or failed state. Every transition is
// persisted in the job store and relayed to the event hub. A slot
// released by a finishing job immediately triggers another dispatch
// pass, so the queue drains without a poller.
package downloader
