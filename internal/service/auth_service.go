package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/domain"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/lockout"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/pin"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/repository"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/token"
)

// AuthService orchestrates PIN authentication and credential lifecycle.
type AuthService struct {
	staff  repository.StaffRepository
	hasher *pin.Hasher
	tokens *token.Issuer
	policy lockout.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService wires the auth service.
func NewAuthService(
	staff repository.StaffRepository,
	hasher *pin.Hasher,
	tokens *token.Issuer,
	policy lockout.Policy,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		staff:  staff,
		hasher: hasher,
		tokens: tokens,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the service's time source. Tests only.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// LoginResult is the payload returned after a successful login.
type LoginResult struct {
	AccessToken    string
	TokenType      string
	ForcePinChange bool
}

// Login verifies the PIN for the staff member matching identifier (mobile
// number or numeric staff id) and issues a session token. The whole
// attempt runs against the locked staff row, so failure counting and
// lock checks never race between concurrent attempts.
func (s *AuthService) Login(ctx context.Context, identifier, pinCode string) (LoginResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || pinCode == "" {
		return LoginResult{}, domain.ErrInvalidCredential
	}

	var result LoginResult
	err := s.staff.Attempt(ctx, identifier, func(ctx context.Context, staff domain.Staff, state repository.AttemptState) error {
		now := s.now().UTC()

		if !staff.IsActive {
			s.audit("auth.login.inactive", "staff_id", staff.ID)
			return domain.ErrAccountInactive
		}

		if s.policy.ShouldAutoUnlock(staff.LockedUntil, now) {
			if err := state.ClearFailureState(ctx); err != nil {
				return err
			}
			staff.FailedAttempts = 0
			staff.LockedUntil = nil
		}

		if s.policy.IsLocked(staff.LockedUntil, now) {
			s.audit("auth.login.locked", "staff_id", staff.ID)
			return domain.ErrAccountLocked
		}

		if staff.PinHash == "" || !s.hasher.Verify(pinCode, staff.PinHash) {
			attempts, lockedUntil := s.policy.OnFailure(staff.FailedAttempts, now)
			if err := state.RecordFailure(ctx, attempts, now, lockedUntil); err != nil {
				return err
			}
			s.audit("auth.login.bad_pin", "staff_id", staff.ID, "failed_attempts", attempts, "locked", lockedUntil != nil)
			if lockedUntil != nil {
				// The attempt that crosses the threshold already reports
				// the lock, so the caller stops retrying immediately.
				return domain.ErrAccountLocked
			}
			return domain.ErrInvalidCredential
		}

		if err := state.ClearFailureState(ctx); err != nil {
			return err
		}

		signed, err := s.tokens.Issue(staff.ID, staff.Designation, staff.PinResetRequired)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		result = LoginResult{
			AccessToken:    signed,
			TokenType:      "bearer",
			ForcePinChange: staff.PinResetRequired,
		}
		s.audit("auth.login.success", "staff_id", staff.ID, "force_pin_change", staff.PinResetRequired)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown identifier and wrong PIN are indistinguishable to
			// the caller, so responses cannot enumerate staff accounts.
			return LoginResult{}, domain.ErrInvalidCredential
		}
		return LoginResult{}, err
	}
	return result, nil
}

// ChangePIN verifies the old PIN and stores a new one, clearing the
// forced-reset flag and any failure state.
func (s *AuthService) ChangePIN(ctx context.Context, staffID int64, oldPIN, newPIN string) error {
	ctx, span := s.startSpan(ctx, "AuthService.ChangePIN")
	defer span.End()

	if oldPIN == newPIN {
		return domain.ErrSamePin
	}

	staff, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTokenInvalid
		}
		return fmt.Errorf("load staff: %w", err)
	}

	if staff.PinHash == "" || !s.hasher.Verify(oldPIN, staff.PinHash) {
		s.audit("auth.pin_change.bad_old_pin", "staff_id", staffID)
		return domain.ErrInvalidCredential
	}

	hash, err := s.hasher.Hash(newPIN)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("hash pin: %w", err)
	}
	if err := s.staff.UpdatePIN(ctx, staffID, hash, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("store pin: %w", err)
	}

	s.audit("auth.pin_change.success", "staff_id", staffID)
	return nil
}

// ResetPIN generates a temporary PIN for the target staff member, forces a
// change on next login, and clears failure state. The temporary PIN is
// returned exactly once and is never persisted or logged in plaintext.
// Role authorization is the caller's responsibility.
func (s *AuthService) ResetPIN(ctx context.Context, targetID int64) (string, error) {
	ctx, span := s.startSpan(ctx, "AuthService.ResetPIN")
	defer span.End()

	if _, err := s.staff.FindByID(ctx, targetID); err != nil {
		span.RecordError(err)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrStaffNotFound
		}
		return "", fmt.Errorf("load staff: %w", err)
	}

	tempPIN, err := generatePIN()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("generate pin: %w", err)
	}
	hash, err := s.hasher.Hash(tempPIN)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("hash pin: %w", err)
	}
	if err := s.staff.UpdatePIN(ctx, targetID, hash, true); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("store pin: %w", err)
	}

	s.audit("auth.pin_reset.success", "staff_id", targetID)
	return tempPIN, nil
}

// CreateStaffInput carries the fields an administrator supplies when
// onboarding a staff member.
type CreateStaffInput struct {
	FullName    string
	MobileNo    string
	Email       string
	Designation domain.Designation

	AadhaarNo     string
	PanNo         string
	UpiID         string
	BankAccountNo string
	BankName      string
	IfscCode      string

	JoinedDate *time.Time
}

// CreateStaff creates a staff record with a generated initial PIN. Like a
// reset, the PIN is disclosed once in the return value and the new record
// carries the forced-reset flag.
func (s *AuthService) CreateStaff(ctx context.Context, in CreateStaffInput) (domain.Staff, string, error) {
	ctx, span := s.startSpan(ctx, "AuthService.CreateStaff")
	defer span.End()

	if !in.Designation.Valid() {
		return domain.Staff{}, "", fmt.Errorf("unknown designation %q", in.Designation)
	}

	tempPIN, err := generatePIN()
	if err != nil {
		span.RecordError(err)
		return domain.Staff{}, "", fmt.Errorf("generate pin: %w", err)
	}
	hash, err := s.hasher.Hash(tempPIN)
	if err != nil {
		span.RecordError(err)
		return domain.Staff{}, "", fmt.Errorf("hash pin: %w", err)
	}

	created, err := s.staff.Create(ctx, domain.Staff{
		FullName:         strings.TrimSpace(in.FullName),
		MobileNo:         strings.TrimSpace(in.MobileNo),
		Email:            strings.ToLower(strings.TrimSpace(in.Email)),
		Designation:      in.Designation,
		AadhaarNo:        strings.TrimSpace(in.AadhaarNo),
		PanNo:            strings.TrimSpace(in.PanNo),
		UpiID:            strings.TrimSpace(in.UpiID),
		BankAccountNo:    strings.TrimSpace(in.BankAccountNo),
		BankName:         strings.TrimSpace(in.BankName),
		IfscCode:         strings.ToUpper(strings.TrimSpace(in.IfscCode)),
		PinHash:          hash,
		PinResetRequired: true,
		JoinedDate:       in.JoinedDate,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Staff{}, "", fmt.Errorf("create staff: %w", err)
	}

	s.audit("staff.create.success", "staff_id", created.ID, "designation", created.Designation)
	return created, tempPIN, nil
}

// ListStaff returns all staff records.
func (s *AuthService) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	ctx, span := s.startSpan(ctx, "AuthService.ListStaff")
	defer span.End()

	staff, err := s.staff.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return staff, nil
}

// Authenticate validates a bearer token, re-confirms the staff member
// still exists and is active, and enforces the forced-PIN-change gate.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (domain.Principal, error) {
	return s.authenticate(ctx, tokenString, true)
}

// AuthenticateForPinChange is Authenticate without the forced-reset gate.
// The PIN change flow must stay reachable for a holder whose token
// carries force_pin_change.
func (s *AuthService) AuthenticateForPinChange(ctx context.Context, tokenString string) (domain.Principal, error) {
	return s.authenticate(ctx, tokenString, false)
}

func (s *AuthService) authenticate(ctx context.Context, tokenString string, enforcePinGate bool) (domain.Principal, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Authenticate")
	defer span.End()

	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		// The reason stays in the logs; callers only learn the token is
		// invalid.
		s.log().Debug("token rejected", zap.Error(err))
		return domain.Principal{}, domain.ErrTokenInvalid
	}

	staff, err := s.staff.FindByID(ctx, claims.StaffID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Principal{}, domain.ErrTokenInvalid
		}
		return domain.Principal{}, fmt.Errorf("load staff: %w", err)
	}
	if !staff.IsActive {
		s.audit("auth.guard.inactive", "staff_id", staff.ID)
		return domain.Principal{}, domain.ErrTokenInvalid
	}

	if enforcePinGate && claims.ForcePinChange {
		return domain.Principal{}, domain.ErrPinChangeRequired
	}

	return domain.Principal{StaffID: claims.StaffID, Designation: claims.Designation}, nil
}

// Authorize rejects unless the principal's designation is in the allowed
// set. It is a pure check composed by the transport layer.
func (s *AuthService) Authorize(principal domain.Principal, allowed ...domain.Designation) error {
	for _, role := range allowed {
		if principal.Designation == role {
			return nil
		}
	}
	return domain.ErrAuthorizationDenied
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("staff-auth/service").Start(ctx, name)
}

func (s *AuthService) audit(event string, kv ...any) {
	s.log().Sugar().Infow(event, kv...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}

// generatePIN draws a uniform 6-digit temporary PIN from crypto/rand.
func generatePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
