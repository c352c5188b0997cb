package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_NotifyReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	a, cancelA := hub.Subscribe()
	defer cancelA()
	b, cancelB := hub.Subscribe()
	defer cancelB()

	require.NoError(t, hub.NotifyDataUpdated(context.Background()))

	for _, ch := range []<-chan string{a, b} {
		select {
		case got := <-ch:
			assert.Equal(t, ActionDataUpdated, got)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive notification")
		}
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Broadcast(ActionDataUpdated)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
	assert.Len(t, ch, 1)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch, cancel := hub.Subscribe()
	require.Equal(t, 1, hub.Len())

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())
}

func TestHub_Close(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch, cancel := hub.Subscribe()
	hub.Close()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := hub.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing after close returns a closed channel")
}

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) NotifyDataUpdated(context.Context) error {
	s.calls++
	return s.err
}

func TestMulti(t *testing.T) {
	t.Parallel()

	errBroker := errors.New("broker down")
	first := &stubNotifier{err: errBroker}
	second := &stubNotifier{}

	err := Multi{first, nil, second}.NotifyDataUpdated(context.Background())

	assert.ErrorIs(t, err, errBroker)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls, "later notifiers still run after a failure")
	assert.NoError(t, Multi{}.NotifyDataUpdated(context.Background()))
}
