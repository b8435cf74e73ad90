package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(Make(TypeRunStarted, map[string]int{"n": 1}))

	for _, ch := range []chan string{a, b} {
		select {
		case msg := <-ch:
			var evt Event
			require.NoError(t, json.Unmarshal([]byte(msg), &evt))
			assert.Equal(t, TypeRunStarted, evt.Type)
			assert.False(t, evt.At.IsZero())
		default:
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	for i := 0; i < cap(ch)+5; i++ {
		h.Publish(Make(TypePing, nil))
	}
	assert.Len(t, ch, cap(ch))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	// Must not panic on a closed channel.
	h.Publish(Make(TypePing, nil))
}

func TestMakeEnvelope(t *testing.T) {
	msg := Make(TypeRunFinished, map[string]string{"id": "x"})

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(msg), &evt))
	assert.Equal(t, TypeRunFinished, evt.Type)
	assert.JSONEq(t, `{"id":"x"}`, string(evt.Data))

	msg = Make(TypePing, nil)
	var ping Event
	require.NoError(t, json.Unmarshal([]byte(msg), &ping))
	assert.Empty(t, ping.Data)
}
