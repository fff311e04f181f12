// Command notifygen — v3 code-generated typed event facades (Go)
//
// Version v3 introduces code generation (cmd/notifygen) to keep event wiring
// explicit while adding compile-time ergonomics:
//
//   - You write a tiny *.events.json spec next to your payload types.
//   - You add a //go:generate ... directive in the owner Go file.
//   - notifygen generates a facade with:
//       - On<Name>(sub) / On<Name>Func(fn) subscription methods per event
//       - Emit<Name>(payload) broadcast methods per event
//       - one notifier.Subject per event, so delivery order and failure
//         policy behave exactly like the hand-wired core
//
// There is no event bus singleton, no reflection dispatch, no topic strings.
//
// When to use v3
//
// Use v3 when you want:
//
//   - Event names checked by the compiler instead of topic-string lookups.
//   - Distinct payload types per event without writing the boilerplate.
//   - The same delivery semantics as notifier.Subject (ordered, synchronous).
//   - A repeatable pattern across many event sets/packages.
//
// When NOT to use v3
//
// Avoid v3 if your topics are dynamic (created at runtime from data), if all
// events share one payload type (use notifier.Hub directly), or if you cannot
// use codegen per repo/tooling policy.
//
// Core idea
//
// notifygen generates a facade struct holding one subject per event:
//
//   - New<Facade>() constructs every subject (optionally collect-all)
//   - On<Name>(...) registers subscribers in call order
//   - Emit<Name>(...) broadcasts synchronously in registration order
//
// Spec format (*.events.json)
//
// Minimal example:
//
//	{
//	  "package": "v3",
//	  "facadeName": "OrderEvents",
//	  "policy": "collect-all",
//	  "imports": {
//	    "notifier": "github.com/mfaraj/notifier/notifier"
//	  },
//	  "events": [
//	    { "name": "OrderPlaced",  "payload": "OrderPlaced" },
//	    { "name": "OrderShipped", "payload": "OrderShipped" }
//	  ]
//	}
//
// Bare payload identifiers must be types declared in the target package
// (verified against the package AST; set "verifyPayloads": false to skip).
// Qualified payloads (pkg.Type) are passed through to the compiler.
//
// Usage
//
//	//go:generate go run github.com/mfaraj/notifier/cmd/notifygen -spec orderevents.events.json -out orderevents.gen.go
package main
