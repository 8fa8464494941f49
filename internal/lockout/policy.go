package lockout

import "time"

const (
	// DefaultThreshold is the failed-attempt count that triggers a lock.
	DefaultThreshold = 5
	// DefaultLockDuration is how long a triggered lock lasts.
	DefaultLockDuration = 30 * time.Minute
)

// Policy decides lockout state transitions. It is a pure function of its
// inputs and performs no I/O, so callers own persistence of the results.
type Policy struct {
	Threshold    int
	LockDuration time.Duration
}

// NewPolicy returns a policy with the given limits, falling back to the
// defaults for non-positive values.
func NewPolicy(threshold int, lockDuration time.Duration) Policy {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	if lockDuration <= 0 {
		lockDuration = DefaultLockDuration
	}
	return Policy{Threshold: threshold, LockDuration: lockDuration}
}

// IsLocked reports whether the account is currently locked.
func (p Policy) IsLocked(lockedUntil *time.Time, now time.Time) bool {
	return lockedUntil != nil && lockedUntil.After(now)
}

// ShouldAutoUnlock reports whether an expired lock should be cleared
// before the attempt proceeds.
func (p Policy) ShouldAutoUnlock(lockedUntil *time.Time, now time.Time) bool {
	return lockedUntil != nil && !lockedUntil.After(now)
}

// OnFailure returns the incremented attempt counter and, once the counter
// reaches the threshold, the expiry of the new lock.
func (p Policy) OnFailure(failedAttempts int, now time.Time) (int, *time.Time) {
	attempts := failedAttempts + 1
	if attempts >= p.Threshold {
		until := now.Add(p.LockDuration)
		return attempts, &until
	}
	return attempts, nil
}

// OnSuccess returns the canonical reset state.
func (p Policy) OnSuccess() (int, *time.Time) {
	return 0, nil
}
