// Package events fans job state changes out to connected listeners.
//
// The Hub delivers each published event synchronously to a snapshot of
// the subscriber set taken at publish time, in subscription order.
// Delivery is best-effort: a subscriber whose transport has gone away
// is skipped, and one bad subscriber never blocks delivery to the
// rest or surfaces an error to the publisher.
package events
