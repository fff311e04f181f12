package notifier

import "sort"

// Hub is a string-keyed registry of subjects (topics).
//
// It is intentionally:
// - declare-before-use (unknown topics are errors, not silent drops)
// - ordered per topic (each topic is a plain Subject)
// - single-threaded (wrap individual subjects with Synchronized if needed)
//
// Expected usage:
//
//	hub := notifier.NewHub[Order]().Declare("order.placed", "order.shipped")
//	err := hub.Subscribe("order.placed", sub)
//	err = hub.Publish("order.placed", order)
type Hub[T any] struct {
	topics map[string]*Subject[T]
	opts   []Option[T]
}

// NewHub constructs an empty Hub.
//
// opts are applied to every subject the hub creates for a declared topic.
func NewHub[T any](opts ...Option[T]) *Hub[T] {
	return &Hub[T]{topics: map[string]*Subject[T]{}, opts: opts}
}

// Declare registers topic names and returns the hub for chaining.
//
// Declaring an already-declared topic is a no-op: existing subscribers are
// kept.
func (h *Hub[T]) Declare(topics ...string) *Hub[T] {
	for _, name := range topics {
		if _, exists := h.topics[name]; exists {
			continue
		}
		h.topics[name] = New[T](h.opts...)
	}
	return h
}

// Subscribe registers sub on a declared topic.
//
// It returns UnknownTopicError if the topic was never declared.
func (h *Hub[T]) Subscribe(topic string, sub Subscriber[T]) error {
	s, ok := h.topics[topic]
	if !ok {
		return UnknownTopicError{Topic: topic}
	}
	s.Register(sub)
	return nil
}

// Publish broadcasts msg to every subscriber of a declared topic, in
// registration order, under the topic subject's failure policy.
//
// It returns UnknownTopicError if the topic was never declared. Publishing to
// a declared topic with no subscribers is a successful no-op.
func (h *Hub[T]) Publish(topic string, msg T) error {
	s, ok := h.topics[topic]
	if !ok {
		return UnknownTopicError{Topic: topic}
	}
	return s.NotifyAll(msg)
}

// Topic returns the subject backing a declared topic.
//
// ok is false if the topic was never declared. The returned subject is live:
// registrations on it are visible to Publish.
func (h *Hub[T]) Topic(name string) (*Subject[T], bool) {
	s, ok := h.topics[name]
	return s, ok
}

// Topics returns the declared topic names, sorted.
func (h *Hub[T]) Topics() []string {
	if len(h.topics) == 0 {
		return nil
	}
	names := make([]string, 0, len(h.topics))
	for name := range h.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
