// Package notifier provides a set of explicit observer/notification approaches for Go.
//
// This repository explores a progression of small, opinionated patterns:
//
//   - v1: a plain ordered subject + subscribers (register/broadcast, typed errors)
//   - v2: topic hubs + synchronized subjects (explicit opt-in locking)
//   - v3: code-generated typed event facades (notifygen)
//
// The goal is to keep notification wiring explicit (usually in your composition
// root / main), avoid reflection-based event buses, and keep the surface area
// intentionally small: an ordered registry of subscribers and a synchronous
// broadcast over it.
//
// Package notifier See subpackages:
//   - notifier: the core library package used by the examples / generator
//   - cmd/notifygen: code generator for v3 style typed facades
//   - examples/*: runnable examples for each version
package notifier
