package notify

import (
	"testing"
	"time"

	"github.com/rubiojr/stusearch/pkg/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityStyle(t *testing.T) {
	tests := []struct {
		sev   Severity
		icon  string
		color string
	}{
		{Info, "ℹ️", "#00b8ff"},
		{Warning, "⚠️", "#ffb300"},
		{Error, "⚠️", "#ff4757"},
	}
	for _, tt := range tests {
		t.Run(string(tt.sev), func(t *testing.T) {
			assert.Equal(t, tt.icon, tt.sev.Icon())
			assert.Equal(t, tt.color, tt.sev.Color())
		})
	}

	_, err := ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestNotificationsStackIndependently(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	a := c.Notify("same", Warning)
	b := c.Notify("same", Warning)

	assert.NotEqual(t, a.ID, b.ID)
	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, a.ID, active[0].ID)
	assert.Equal(t, b.ID, active[1].ID)
}

func TestNotificationExpires(t *testing.T) {
	hub := realtime.NewHub(8)
	id, events := hub.Register()
	defer hub.Unregister(id)

	c := NewCenter(WithLifetime(30*time.Millisecond, 20*time.Millisecond), WithPublisher(hub))
	defer c.Close()

	n := c.Notify("Tizim tozalandi", Info)
	require.Len(t, c.Active(), 1)

	require.Eventually(t, func() bool {
		return len(c.Active()) == 0
	}, time.Second, 5*time.Millisecond)

	var phases []string
	for len(phases) < 3 {
		select {
		case ev := <-events:
			require.Equal(t, n.ID, ev.Notification.ID)
			phases = append(phases, ev.Notification.Phase)
		case <-time.After(time.Second):
			t.Fatalf("missing events, got %v", phases)
		}
	}
	assert.Equal(t, []string{realtime.PhaseShown, realtime.PhaseLeaving, realtime.PhaseRemoved}, phases)
}

func TestNotificationLeavingPhaseVisible(t *testing.T) {
	c := NewCenter(WithLifetime(10*time.Millisecond, time.Hour))
	defer c.Close()

	c.Notify("bye", Error)
	require.Eventually(t, func() bool {
		active := c.Active()
		return len(active) == 1 && active[0].Leaving
	}, time.Second, 5*time.Millisecond)
}

func TestUnknownSeverityFallsBackToInfo(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	n := c.Notify("x", Severity("loud"))
	assert.Equal(t, Info, n.Severity)
	assert.Equal(t, "#00b8ff", n.Color)
}

func TestCloseStopsTimers(t *testing.T) {
	c := NewCenter(WithLifetime(10*time.Millisecond, 0))
	c.Notify("x", Info)
	c.Close()

	assert.Empty(t, c.Active())
	c.Notify("after close", Info)
	assert.Empty(t, c.Active())
}
