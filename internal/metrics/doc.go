// Package metrics provides the process-wide request counter for Launchpad.
//
// This package is internal to Launchpad and holds the single piece of shared
// mutable state in the application: how many requests the process has served,
// and when the most recent one arrived. The counter is created once at process
// start and passed by reference to every request-handling context.
//
// The main components are:
//
//   - [RequestCounter]: Mutex-guarded counter owned by the process lifetime
//   - [Snapshot]: A consistent, atomically-read copy of the counter state
//
// All operations are safe for concurrent use. The lock is scoped strictly to
// field access; it is never held across I/O or sleeps.
package metrics
