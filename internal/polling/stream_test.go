package polling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_LatestValue(t *testing.T) {
	s := NewStream[string]()

	_, ok := s.Latest()
	assert.False(t, ok)

	s.Publish("pending")
	s.Publish("authorised")

	value, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "authorised", value)

	s.Reset()
	_, ok = s.Latest()
	assert.False(t, ok)
}

func TestStream_NewSubscriberGetsCurrentState(t *testing.T) {
	s := NewStream[int]()

	fresh, unsubscribeFresh := s.Subscribe()
	defer unsubscribeFresh()
	select {
	case u := <-fresh:
		t.Fatalf("nothing was published, got %+v", u)
	default:
	}

	s.Publish(7)
	late, unsubscribeLate := s.Subscribe()
	defer unsubscribeLate()
	assert.Equal(t, Update[int]{Value: 7, Present: true}, <-late)

	s.Reset()
	afterReset, unsubscribeAfterReset := s.Subscribe()
	defer unsubscribeAfterReset()
	assert.Equal(t, Update[int]{}, <-afterReset)
}

func TestStream_SlowSubscriberSeesLatestOnly(t *testing.T) {
	s := NewStream[int]()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	for i := 1; i <= 5; i++ {
		s.Publish(i)
	}

	assert.Equal(t, 5, (<-ch).Value)
	select {
	case u := <-ch:
		t.Fatalf("older updates must be dropped, got %+v", u)
	default:
	}
}

func TestStream_Unsubscribe(t *testing.T) {
	s := NewStream[int]()
	ch, unsubscribe := s.Subscribe()

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	// Publishing to a stream without subscribers never blocks
	s.Publish(1)
}

func TestStream_Close(t *testing.T) {
	s := NewStream[int]()
	ch, unsubscribe := s.Subscribe()

	s.Close()
	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing after close is safe
	unsubscribe()

	s.Publish(3)
	_, ok := s.Latest()
	assert.False(t, ok)

	closedCh, _ := s.Subscribe()
	_, open = <-closedCh
	assert.False(t, open)
}
