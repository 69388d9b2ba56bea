// Package reactive contains the small push-based primitives the dashboard is
// built on: fire-and-forget subjects, value-holding relays, read-only streams
// and the switch-latest operator that turns a trigger into a query result.
//
// Handlers run synchronously on the emitting goroutine in subscription order.
// Handlers must not block; hand work off to a channel or goroutine instead.
package reactive
