package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/domain"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/token"
)

const testSecret = "test-signing-secret"

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := token.NewIssuer("", 8*time.Hour)
	require.Error(t, err)

	_, err = token.NewIssuer(testSecret, 0)
	require.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	issuer, err := token.NewIssuer(testSecret, 8*time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(42, domain.DesignationStaff, true)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := issuer.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.StaffID)
	require.Equal(t, domain.DesignationStaff, claims.Designation)
	require.True(t, claims.ForcePinChange)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, 8*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestValidateExpired(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := start
	issuer, err := token.NewIssuer(testSecret, 8*time.Hour)
	require.NoError(t, err)
	issuer.WithClock(func() time.Time { return clock })

	signed, err := issuer.Issue(7, domain.DesignationAdmin, false)
	require.NoError(t, err)

	clock = start.Add(8*time.Hour + time.Minute)
	_, err = issuer.Validate(signed)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestValidateBadSignature(t *testing.T) {
	issuer, err := token.NewIssuer(testSecret, 8*time.Hour)
	require.NoError(t, err)
	other, err := token.NewIssuer("a-different-secret", 8*time.Hour)
	require.NoError(t, err)

	signed, err := other.Issue(7, domain.DesignationStaff, false)
	require.NoError(t, err)

	_, err = issuer.Validate(signed)
	require.ErrorIs(t, err, token.ErrBadSignature)
}

func TestValidateMalformed(t *testing.T) {
	issuer, err := token.NewIssuer(testSecret, 8*time.Hour)
	require.NoError(t, err)

	_, err = issuer.Validate("not.a.token")
	require.ErrorIs(t, err, token.ErrMalformed)

	_, err = issuer.Validate("")
	require.ErrorIs(t, err, token.ErrMalformed)
}

func TestValidateRejectsMissingIdentityClaims(t *testing.T) {
	issuer, err := token.NewIssuer(testSecret, 8*time.Hour)
	require.NoError(t, err)

	// Tokens without a staff id or with an unknown role never validate,
	// even with a good signature.
	signed, err := issuer.Issue(0, domain.DesignationStaff, false)
	require.NoError(t, err)
	_, err = issuer.Validate(signed)
	require.ErrorIs(t, err, token.ErrMalformed)

	signed, err = issuer.Issue(7, domain.Designation("INTERN"), false)
	require.NoError(t, err)
	_, err = issuer.Validate(signed)
	require.ErrorIs(t, err, token.ErrMalformed)
}

func TestValidateRejectsAbsentForcedResetClaim(t *testing.T) {
	issuer, err := token.NewIssuer(testSecret, 8*time.Hour)
	require.NoError(t, err)

	// A well-signed token that simply omits force_pin_change must not
	// validate as if the flag were false.
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         "7",
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
		"staff_id":    7,
		"designation": "STAFF",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = issuer.Validate(signed)
	require.ErrorIs(t, err, token.ErrMalformed)
}
