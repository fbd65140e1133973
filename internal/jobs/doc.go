// Package jobs holds download job records in memory and exposes helpers
// for driving their lifecycle.
//
// The Store is the single source of truth for job state. It supports
// concurrent access from many simultaneously executing downloads:
// reads return copies, writes merge partial updates atomically under
// one lock, and aggregate stats are recomputed from the live set on
// every call. Nothing survives a process restart; the store is
// deliberately transient.
package jobs
