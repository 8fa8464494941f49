package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/domain"
)

// Validation failures. Callers surface all of them as a single
// invalid-token rejection; the distinction exists for logging.
var (
	ErrExpired      = errors.New("token expired")
	ErrBadSignature = errors.New("token signature invalid")
	ErrMalformed    = errors.New("token malformed")
)

// Claims are the session token claims.
type Claims struct {
	jwt.RegisteredClaims
	StaffID        int64              `json:"staff_id"`
	Designation    domain.Designation `json:"designation"`
	ForcePinChange bool               `json:"force_pin_change"`
}

// Issuer creates and validates signed session tokens. Tokens are
// stateless: validity is determined solely by signature and expiry.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer constructs an issuer signing with HS256. It fails when the
// secret is absent so signing misconfiguration is caught at startup.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token issuer: signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token issuer: ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the issuer's time source. Tests only.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue mints a signed token for the staff member.
func (i *Issuer) Issue(staffID int64, designation domain.Designation, forcePinChange bool) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(staffID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		StaffID:        staffID,
		Designation:    designation,
		ForcePinChange: forcePinChange,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// wireClaims decodes force_pin_change as a pointer so an absent claim is
// distinguishable from an explicit false.
type wireClaims struct {
	jwt.RegisteredClaims
	StaffID        int64              `json:"staff_id"`
	Designation    domain.Designation `json:"designation"`
	ForcePinChange *bool              `json:"force_pin_change"`
}

// Validate verifies signature and expiry and returns the claims. A token
// missing any of the identity, role, or forced-reset claims is malformed,
// even with a good signature.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	var wire wireClaims
	_, err := jwt.ParseWithClaims(tokenString, &wire, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformed
		}
	}

	if wire.StaffID <= 0 || !wire.Designation.Valid() || wire.ForcePinChange == nil {
		return nil, ErrMalformed
	}
	return &Claims{
		RegisteredClaims: wire.RegisteredClaims,
		StaffID:          wire.StaffID,
		Designation:      wire.Designation,
		ForcePinChange:   *wire.ForcePinChange,
	}, nil
}
