// Package notifier provides a small, generic publish/subscribe helper.
//
// It models an ordered subscriber registry (Subject) plus a synchronous
// broadcast (NotifyAll) over it. Delivery is in registration order, duplicates
// are allowed and receive duplicate deliveries, and failures are surfaced as
// typed errors through a configurable policy.
//
// Design goals:
//   - Lightweight: small API surface, no topic graph, no reflection, no goroutines.
//   - Explicit wiring: subscribers are registered intentionally, in order.
//   - Safe defaults: fail-fast delivery matches the classic observer loop.
//   - Test-friendly: deterministic order and introspection via Len/Snapshot.
//
// Notes on performance:
//   - The success path is dominated by a slice walk and one interface call per
//     subscriber.
//   - Error paths avoid fmt.Errorf to keep failure handling inexpensive when
//     broadcasts run in benchmarks or tight loops.
package notifier

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// Subscriber is the capability a Subject broadcasts to.
//
// Receive is invoked synchronously, on the broadcaster's goroutine, once per
// broadcast. Returning a non-nil error marks this delivery as failed; how the
// broadcast reacts depends on the Subject's Policy.
type Subscriber[T any] interface {
	Receive(msg T) error
}

// SubscriberFunc adapts a plain function to the Subscriber interface.
type SubscriberFunc[T any] func(msg T) error

// Receive implements Subscriber by calling fn.
func (fn SubscriberFunc[T]) Receive(msg T) error { return fn(msg) }

// Named wraps fn as a Subscriber whose name shows up in DeliveryError.
//
// Names carry no identity: two Named subscribers with the same name are still
// distinct registrations.
func Named[T any](name string, fn func(msg T) error) Subscriber[T] {
	return &namedSubscriber[T]{name: name, fn: fn}
}

type namedSubscriber[T any] struct {
	name string
	fn   func(msg T) error
}

func (s *namedSubscriber[T]) Receive(msg T) error { return s.fn(msg) }

// String implements fmt.Stringer so broadcasts can report the name on failure.
func (s *namedSubscriber[T]) String() string { return s.name }

// Policy selects how NotifyAll reacts to a failing subscriber.
type Policy int

const (
	// FailFast aborts the broadcast at the first failing subscriber and
	// returns that failure. Subscribers after it are not notified. This is
	// the classic unguarded observer loop and the default.
	FailFast Policy = iota

	// CollectAll notifies every subscriber regardless of failures and returns
	// the per-subscriber failures aggregated into one error.
	CollectAll
)

// String returns the policy name, mostly for logs and test output.
func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case CollectAll:
		return "collect-all"
	default:
		return "policy(" + fmt.Sprint(int(p)) + ")"
	}
}

// Option configures a Subject at construction time.
//
// Options are applied in order via New.
type Option[T any] func(*Subject[T])

// WithPolicy sets the failure policy used by NotifyAll.
func WithPolicy[T any](p Policy) Option[T] {
	return func(s *Subject[T]) { s.policy = p }
}

// entry pairs a subscriber with a registration id so Attach handles can remove
// one specific occurrence even when the same subscriber is registered twice.
type entry[T any] struct {
	id  uint64
	sub Subscriber[T]
}

// Subject is an ordered registry of subscribers plus a synchronous broadcast.
//
// The zero value is usable: empty registry, FailFast policy. A Subject is not
// safe for concurrent use; wrap it with Synchronized if registrations and
// broadcasts race.
type Subject[T any] struct {
	subs   []entry[T]
	policy Policy
	nextID uint64
}

// New constructs a Subject and applies opts in order.
func New[T any](opts ...Option[T]) *Subject[T] {
	s := &Subject[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Policy returns the failure policy NotifyAll runs under.
func (s *Subject[T]) Policy() Policy { return s.policy }

// Register appends sub to the registry.
//
// Nothing is validated: nil is accepted (and will surface as a
// NilSubscriberError on broadcast), and registering the same subscriber twice
// means it receives every message twice. Insertion order is delivery order.
func (s *Subject[T]) Register(sub Subscriber[T]) {
	s.nextID++
	s.subs = append(s.subs, entry[T]{id: s.nextID, sub: sub})
}

// Attach appends sub like Register and returns a handle that can remove this
// one registration again.
func (s *Subject[T]) Attach(sub Subscriber[T]) *Registration {
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, entry[T]{id: id, sub: sub})
	return &Registration{cancel: func() bool { return s.removeByID(id) }}
}

// removeByID deletes the entry with the given id, keeping the relative order
// of the remaining subscribers.
func (s *Subject[T]) removeByID(id uint64) bool {
	for i, e := range s.subs {
		if e.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return true
		}
	}
	return false
}

// NotifyAll delivers msg to every subscriber registered at the moment of the
// call, in registration order, on the caller's goroutine.
//
// Under FailFast the first failure aborts the broadcast and is returned,
// wrapped in a DeliveryError carrying the subscriber's index (and name, if
// any). Under CollectAll every subscriber is visited and the failures are
// returned aggregated; errors.As still finds each DeliveryError.
//
// The walk runs over a snapshot taken at the start of the call, so mutations
// from inside a Receive callback cannot corrupt the in-flight broadcast:
// subscribers registered mid-broadcast are not visited, and a subscriber
// removed mid-broadcast (its own handle included) still receives this one
// message. The registry itself reflects the mutation immediately.
func (s *Subject[T]) NotifyAll(msg T) error {
	if len(s.subs) == 0 {
		return nil
	}
	snapshot := make([]entry[T], len(s.subs))
	copy(snapshot, s.subs)
	return broadcast(snapshot, s.policy, msg)
}

// Len returns the number of registered subscribers, duplicates included.
func (s *Subject[T]) Len() int { return len(s.subs) }

// Snapshot returns the subscribers in registration order.
//
// The returned slice is a copy: mutating it does not affect the registry.
func (s *Subject[T]) Snapshot() []Subscriber[T] {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]Subscriber[T], len(s.subs))
	for i, e := range s.subs {
		out[i] = e.sub
	}
	return out
}

// Registration is a removable handle returned by Attach.
type Registration struct {
	cancel func() bool
	once   sync.Once
}

// Remove deletes the registration from its subject.
//
// It reports whether this call removed it; repeated calls are no-ops. The
// idempotence guard is a sync.Once, so concurrent Remove calls on a handle
// minted by SyncSubject.Attach agree on a single winner.
func (r *Registration) Remove() bool {
	if r == nil || r.cancel == nil {
		return false
	}
	var removed bool
	r.once.Do(func() { removed = r.cancel() })
	return removed
}

// broadcast walks entries in order and applies the failure policy.
//
// Callers pass a snapshot, never the live slice: Subject.NotifyAll copies
// before walking and SyncSubject.NotifyAll copies under its lock, so
// re-entrant Register/Remove calls cannot shift entries mid-walk.
func broadcast[T any](entries []entry[T], policy Policy, msg T) error {
	if policy == CollectAll {
		var errs error
		for i, e := range entries {
			errs = multierr.Append(errs, deliver(i, e, msg))
		}
		return errs
	}

	for i, e := range entries {
		if err := deliver(i, e, msg); err != nil {
			return err
		}
	}
	return nil
}

// deliver invokes one subscriber and wraps its failure with positional context.
func deliver[T any](i int, e entry[T], msg T) error {
	if e.sub == nil {
		return NilSubscriberError{Index: i}
	}
	if err := e.sub.Receive(msg); err != nil {
		return DeliveryError{Index: i, Name: subscriberName(e.sub), Err: err}
	}
	return nil
}

// subscriberName returns the subscriber's fmt.Stringer name, or "".
func subscriberName[T any](sub Subscriber[T]) string {
	if named, ok := sub.(fmt.Stringer); ok {
		return named.String()
	}
	return ""
}
