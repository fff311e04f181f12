package notifier_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mfaraj/notifier/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchronized_NilGetsFreshSubject(t *testing.T) {
	t.Parallel()

	ss := notifier.Synchronized[string](nil)
	require.NotNil(t, ss)
	assert.Equal(t, 0, ss.Len())
	require.NoError(t, ss.NotifyAll("m"))
}

func TestSyncSubject_DeliversInRegistrationOrder(t *testing.T) {
	t.Parallel()

	var log []string
	ss := notifier.Synchronized(notifier.New[string]())
	ss.Register(recorder("A", &log))
	ss.Register(recorder("B", &log))

	require.NoError(t, ss.NotifyAll("hello"))
	assert.Equal(t, []string{"A:hello", "B:hello"}, log)
	assert.Len(t, ss.Snapshot(), 2)
}

func TestSyncSubject_WrapsExistingRegistrationsAndPolicy(t *testing.T) {
	t.Parallel()

	var log []string
	inner := notifier.New[string](notifier.WithPolicy[string](notifier.CollectAll))
	inner.Register(recorder("pre", &log))

	ss := notifier.Synchronized(inner)
	ss.Register(recorder("post", &log))

	require.NoError(t, ss.NotifyAll("m"))
	assert.Equal(t, []string{"pre:m", "post:m"}, log)
}

func TestSyncSubject_MidBroadcastRegistrationMissesTheSnapshot(t *testing.T) {
	t.Parallel()

	var log []string
	ss := notifier.Synchronized(notifier.New[string]())

	ss.Register(notifier.SubscriberFunc[string](func(msg string) error {
		log = append(log, "first:"+msg)
		// Registering from inside a delivery must not deadlock, and the new
		// subscriber must not see the in-flight message.
		ss.Register(recorder("late", &log))
		return nil
	}))

	require.NoError(t, ss.NotifyAll("m1"))
	assert.Equal(t, []string{"first:m1"}, log)

	log = log[:0]
	require.NoError(t, ss.NotifyAll("m2"))
	assert.Equal(t, []string{"first:m2", "late:m2"}, log)
}

func TestSyncSubject_AttachRemove(t *testing.T) {
	t.Parallel()

	var log []string
	ss := notifier.Synchronized(notifier.New[string]())

	ss.Register(recorder("A", &log))
	reg := ss.Attach(recorder("B", &log))

	require.NoError(t, ss.NotifyAll("x"))
	assert.Equal(t, []string{"A:x", "B:x"}, log)

	assert.True(t, reg.Remove())
	assert.False(t, reg.Remove())
	assert.Equal(t, 1, ss.Len())

	log = log[:0]
	require.NoError(t, ss.NotifyAll("y"))
	assert.Equal(t, []string{"A:y"}, log)
}

// TestSyncSubject_ConcurrentRemoveHasOneWinner races many goroutines on one
// handle. Run with -race; exactly one Remove call may report true.
func TestSyncSubject_ConcurrentRemoveHasOneWinner(t *testing.T) {
	t.Parallel()

	const removers = 16

	ss := notifier.Synchronized(notifier.New[int]())
	reg := ss.Attach(notifier.SubscriberFunc[int](func(int) error { return nil }))

	var wins atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < removers; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reg.Remove() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins.Load())
	assert.Equal(t, 0, ss.Len())
}

// TestSyncSubject_ConcurrentRegisterAndNotify hammers the subject from both
// sides. Run with -race; the assertions only pin down what stays
// deterministic (final counts, zero errors).
func TestSyncSubject_ConcurrentRegisterAndNotify(t *testing.T) {
	t.Parallel()

	const (
		registrars = 8
		perG       = 50
		notifiers  = 4
	)

	var delivered atomic.Int64
	ss := notifier.Synchronized(notifier.New[int]())

	var wg sync.WaitGroup
	for g := 0; g < registrars; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				ss.Register(notifier.SubscriberFunc[int](func(int) error {
					delivered.Add(1)
					return nil
				}))
			}
		}()
	}
	for g := 0; g < notifiers; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				assert.NoError(t, ss.NotifyAll(i))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, registrars*perG, ss.Len())

	// Every subscriber sees every broadcast that started after it was
	// registered, so a final broadcast must hit all of them exactly once.
	delivered.Store(0)
	require.NoError(t, ss.NotifyAll(-1))
	assert.Equal(t, int64(registrars*perG), delivered.Load())
}
