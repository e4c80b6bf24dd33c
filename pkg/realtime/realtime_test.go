package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub(4)
	id1, ch1 := h.Register()
	id2, ch2 := h.Register()
	defer h.Unregister(id1)
	defer h.Unregister(id2)
	assert.Equal(t, 2, h.Size())

	h.Broadcast(NewStateEvent(7, "search"))

	for _, ch := range []<-chan Event{ch1, ch2} {
		ev := <-ch
		assert.Equal(t, TypeState, ev.Type)
		require.NotNil(t, ev.State)
		assert.Equal(t, uint64(7), ev.State.Revision)
		assert.False(t, ev.At.IsZero())
	}
}

func TestHubDropsForSlowListener(t *testing.T) {
	h := NewHub(1)
	id, ch := h.Register()
	defer h.Unregister(id)

	h.Broadcast(NewNotificationEvent(NotificationEvent{ID: "a", Phase: PhaseShown}))
	h.Broadcast(NewNotificationEvent(NotificationEvent{ID: "b", Phase: PhaseShown}))

	ev := <-ch
	assert.Equal(t, "a", ev.Notification.ID)
	select {
	case extra := <-ch:
		t.Fatalf("expected dropped event, got %+v", extra)
	default:
	}
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	h := NewHub(0)
	id, ch := h.Register()
	h.Unregister(id)
	h.Unregister(id)

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.Size())
}

func TestHubClose(t *testing.T) {
	h := NewHub(2)
	_, ch1 := h.Register()
	_, ch2 := h.Register()
	h.Close()

	_, ok1 := <-ch1
	_, ok2 := <-ch2
	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.Equal(t, 0, h.Size())

	h.Broadcast(NewStateEvent(1, "after close"))
}
