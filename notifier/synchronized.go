package notifier

import "sync"

// SyncSubject decorates a Subject with mutual exclusion for callers that
// register and broadcast from multiple goroutines.
//
// Registrations mutate the underlying subject under a mutex. NotifyAll takes
// a snapshot of the subscriber list under the mutex and delivers without
// holding it, so subscriber callbacks may freely register, attach, or
// broadcast again without deadlocking. The flip side of the snapshot:
// subscribers added while a broadcast is in flight do not receive that
// broadcast, and a removal that races a broadcast may still see one last
// delivery.
type SyncSubject[T any] struct {
	mu sync.Mutex
	s  *Subject[T]
}

// Synchronized wraps s. A nil s gets a fresh default Subject.
//
// The wrapped subject must not be used directly afterwards; every access has
// to go through the SyncSubject, or the mutex protects nothing.
func Synchronized[T any](s *Subject[T]) *SyncSubject[T] {
	if s == nil {
		s = New[T]()
	}
	return &SyncSubject[T]{s: s}
}

// Register appends sub under the lock. Same semantics as Subject.Register.
func (ss *SyncSubject[T]) Register(sub Subscriber[T]) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.s.Register(sub)
}

// Attach appends sub under the lock and returns a handle whose Remove also
// runs under the lock.
func (ss *SyncSubject[T]) Attach(sub Subscriber[T]) *Registration {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	inner := ss.s.Attach(sub)
	return &Registration{cancel: func() bool {
		ss.mu.Lock()
		defer ss.mu.Unlock()
		return inner.Remove()
	}}
}

// NotifyAll broadcasts msg to a snapshot of the current subscribers.
func (ss *SyncSubject[T]) NotifyAll(msg T) error {
	ss.mu.Lock()
	snapshot := make([]entry[T], len(ss.s.subs))
	copy(snapshot, ss.s.subs)
	policy := ss.s.policy
	ss.mu.Unlock()

	return broadcast(snapshot, policy, msg)
}

// Len returns the current number of registered subscribers.
func (ss *SyncSubject[T]) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.Len()
}

// Snapshot returns the subscribers in registration order, copied under the lock.
func (ss *SyncSubject[T]) Snapshot() []Subscriber[T] {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.Snapshot()
}
