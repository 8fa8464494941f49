package lockout_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/lockout"
)

func TestOnFailureLocksAtThreshold(t *testing.T) {
	policy := lockout.NewPolicy(5, 30*time.Minute)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	attempts := 0
	var lockedUntil *time.Time
	for i := 1; i <= 4; i++ {
		attempts, lockedUntil = policy.OnFailure(attempts, now)
		require.Equal(t, i, attempts)
		require.Nil(t, lockedUntil)
	}

	attempts, lockedUntil = policy.OnFailure(attempts, now)
	require.Equal(t, 5, attempts)
	require.NotNil(t, lockedUntil)
	require.Equal(t, now.Add(30*time.Minute), *lockedUntil)
}

func TestIsLocked(t *testing.T) {
	policy := lockout.NewPolicy(5, 30*time.Minute)
	now := time.Now()

	require.False(t, policy.IsLocked(nil, now))

	future := now.Add(time.Minute)
	require.True(t, policy.IsLocked(&future, now))

	past := now.Add(-time.Minute)
	require.False(t, policy.IsLocked(&past, now))
}

func TestShouldAutoUnlock(t *testing.T) {
	policy := lockout.NewPolicy(5, 30*time.Minute)
	now := time.Now()

	require.False(t, policy.ShouldAutoUnlock(nil, now))

	future := now.Add(time.Minute)
	require.False(t, policy.ShouldAutoUnlock(&future, now))

	past := now.Add(-time.Minute)
	require.True(t, policy.ShouldAutoUnlock(&past, now))

	// A lock expiring exactly now is already over.
	require.True(t, policy.ShouldAutoUnlock(&now, now))
}

func TestOnSuccessResets(t *testing.T) {
	policy := lockout.NewPolicy(5, 30*time.Minute)

	attempts, lockedUntil := policy.OnSuccess()
	require.Zero(t, attempts)
	require.Nil(t, lockedUntil)
}

func TestNewPolicyDefaults(t *testing.T) {
	policy := lockout.NewPolicy(0, 0)
	require.Equal(t, lockout.DefaultThreshold, policy.Threshold)
	require.Equal(t, lockout.DefaultLockDuration, policy.LockDuration)
}
