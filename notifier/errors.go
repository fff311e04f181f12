package notifier

import (
	"errors"
	"strconv"
)

var (
	// ErrNilSubscriber is the sentinel wrapped by NilSubscriberError when a
	// broadcast reaches a nil subscriber entry. Registering nil is allowed
	// (the registry does not validate input); delivering to nil is not.
	ErrNilSubscriber = errors.New("notifier: nil subscriber")
)

// DeliveryError wraps a failure returned by one subscriber during a broadcast.
//
// Index is the subscriber's position in registration order. Name is the
// subscriber's self-reported name (see Named) and may be empty.
//
// It is used by both failure policies: FailFast returns the first one,
// CollectAll aggregates every one.
type DeliveryError struct {
	// Index is the position of the failing subscriber, counted from zero in
	// registration order.
	Index int

	// Name is the subscriber's name if it implements fmt.Stringer, else "".
	Name string

	// Err is the error returned by the subscriber's Receive.
	Err error
}

// Error implements the error interface.
func (e DeliveryError) Error() string {
	// Example: notifier: subscriber "audit" at index 2: boom
	if e.Name != "" {
		return "notifier: subscriber " + strconv.Quote(e.Name) +
			" at index " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
	}
	return "notifier: subscriber at index " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
}

// Unwrap exposes the subscriber's error for errors.Is / errors.As.
func (e DeliveryError) Unwrap() error { return e.Err }

// NilSubscriberError indicates a nil subscriber entry at a specific position.
//
// This provides index context without using fmt.Errorf.
type NilSubscriberError struct{ Index int }

// Error implements the error interface.
func (e NilSubscriberError) Error() string {
	// Example: notifier: nil subscriber at index 0
	return "notifier: nil subscriber at index " + strconv.Itoa(e.Index)
}

// Unwrap ties the typed error to the ErrNilSubscriber sentinel.
func (e NilSubscriberError) Unwrap() error { return ErrNilSubscriber }

// UnknownTopicError is returned by Hub.Subscribe and Hub.Publish when the
// topic was never declared.
//
// It is used to distinguish a typo from an intentionally empty topic.
type UnknownTopicError struct{ Topic string }

// Error implements the error interface.
func (e UnknownTopicError) Error() string {
	// Example: notifier: unknown topic "order.placed"
	return "notifier: unknown topic " + strconv.Quote(e.Topic)
}
