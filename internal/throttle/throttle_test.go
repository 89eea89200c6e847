package throttle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Prithwiraj-CK/polybot2/internal/throttle"
)

func TestAllow_EnforcesInterval(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := throttle.NewCooldown(2 * time.Second)
	c.SetClock(func() time.Time { return now })

	require.True(t, c.Allow("user1"))
	require.False(t, c.Allow("user1"))

	now = now.Add(time.Second)
	require.False(t, c.Allow("user1"))

	now = now.Add(time.Second)
	require.True(t, c.Allow("user1"))
}

func TestAllow_PerUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := throttle.NewCooldown(2 * time.Second)
	c.SetClock(func() time.Time { return now })

	require.True(t, c.Allow("user1"))
	require.True(t, c.Allow("user2"))
	require.False(t, c.Allow("user1"))
	require.False(t, c.Allow("user2"))
}

func TestAllow_RejectionDoesNotResetWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := throttle.NewCooldown(2 * time.Second)
	c.SetClock(func() time.Time { return now })

	require.True(t, c.Allow("user1"))

	// Hammering during the window must not push the next acceptance out.
	now = now.Add(1900 * time.Millisecond)
	require.False(t, c.Allow("user1"))

	now = now.Add(100 * time.Millisecond)
	require.True(t, c.Allow("user1"))
}
