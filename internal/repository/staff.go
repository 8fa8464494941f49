package repository

import (
	"context"
	"time"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/domain"
)

// AttemptState is the write surface available while a login attempt holds
// the staff row. Writes are applied inside the attempt's transaction and
// become visible only when the attempt commits.
type AttemptState interface {
	// RecordFailure persists an updated failure counter and optional lock.
	RecordFailure(ctx context.Context, attempts int, failedAt time.Time, lockedUntil *time.Time) error
	// ClearFailureState resets the counter and clears any lock.
	ClearFailureState(ctx context.Context) error
}

// AttemptFunc runs a single login attempt against the locked staff row.
type AttemptFunc func(ctx context.Context, staff domain.Staff, state AttemptState) error

// StaffRepository is the credential store consumed by the auth service.
type StaffRepository interface {
	FindByID(ctx context.Context, staffID int64) (domain.Staff, error)
	Create(ctx context.Context, staff domain.Staff) (domain.Staff, error)
	List(ctx context.Context) ([]domain.Staff, error)
	// UpdatePIN stores a new PIN hash, sets the forced-reset flag, and
	// clears failure state.
	UpdatePIN(ctx context.Context, staffID int64, pinHash string, resetRequired bool) error
	// Attempt resolves the staff row by identifier (mobile number or
	// numeric staff id) and runs fn while holding the row, so concurrent
	// attempts against the same identity serialize. fn's state writes
	// commit even when fn returns a denial error; storage failures roll
	// the attempt back.
	Attempt(ctx context.Context, identifier string, fn AttemptFunc) error
}
