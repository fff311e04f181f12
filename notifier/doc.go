// Package notifier provides a small, explicit publish/subscribe core for Go.
//
// This package intentionally supports two layers:
//
//   - Subject[T] — an ordered registry of subscribers with a synchronous
//     NotifyAll broadcast. Registration order is delivery order, duplicates are
//     allowed, and failure handling is a pluggable policy (fail-fast or
//     collect-all). Best when one subject fans a message out to listeners.
//
//   - Hub[T] — a string-keyed registry of subjects (topics). Topics must be
//     declared before anything can subscribe or publish to them, which turns
//     typos into errors instead of silent drops. Best when several event kinds
//     share one payload type.
//
// Both layers avoid reflection and goroutines: every broadcast runs on the
// caller's goroutine, subscriber by subscriber, in registration order. A
// Subject is not safe for concurrent use; Synchronized wraps one with a mutex
// and a copy-on-broadcast snapshot for callers that need concurrent access.
//
// Quick guidance
//
// Use Subject when you want:
//   - One event stream, explicit wiring, deterministic delivery order
//   - Typed errors you can assert in tests (DeliveryError and friends)
//   - A removable registration handle (Attach) next to plain Register
//
// Use Hub when you want:
//   - Several named streams sharing one payload type
//   - Declare-before-use guardrails around topic names
//
// examples can be found under examples/v1 and examples/v2
// Import
//
//	"github.com/mfaraj/notifier/notifier"
package notifier
