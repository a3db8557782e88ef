package clock_test

import (
	"testing"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/clock"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFakeClock_Advance(t *testing.T) {
	c := clock.Fake(start)
	ticker := c.NewTicker(30 * time.Second)
	require.Equal(t, 1, c.Active())

	c.Advance(29 * time.Second)
	require.Equal(t, start.Add(29*time.Second), c.Now())
	select {
	case <-ticker.C:
		require.FailNow(t, "ticked early")
	default:
	}

	c.Advance(time.Second)
	require.Equal(t, start.Add(30*time.Second), <-ticker.C)

	// Ticks beyond the buffered one are dropped.
	c.Advance(90 * time.Second)
	require.Equal(t, start.Add(60*time.Second), <-ticker.C)
	select {
	case <-ticker.C:
		require.FailNow(t, "missed ticks should not queue")
	default:
	}
}

func TestFakeClock_Stop(t *testing.T) {
	c := clock.Fake(start)
	ticker := c.NewTicker(time.Second)
	ticker.Stop()
	require.Zero(t, c.Active())

	c.Advance(time.Minute)
	select {
	case <-ticker.C:
		require.FailNow(t, "stopped ticker fired")
	default:
	}
}

func TestFakeClock_WaitForTickers(t *testing.T) {
	c := clock.Fake(start)
	armed := make(chan struct{})
	go func() {
		c.NewTicker(time.Second)
		close(armed)
	}()
	c.WaitForTickers(1)
	<-armed
	require.Equal(t, 1, c.Active())
}
