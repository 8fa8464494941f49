package domain

import "errors"

// Authentication and credential lifecycle failures. Unknown identifier and
// wrong PIN are intentionally merged into ErrInvalidCredential so responses
// cannot be used to enumerate staff accounts.
var (
	ErrInvalidCredential   = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account inactive")
	ErrAccountLocked       = errors.New("account temporarily locked")
	ErrPinChangeRequired   = errors.New("pin change required")
	ErrTokenInvalid        = errors.New("invalid or expired token")
	ErrAuthorizationDenied = errors.New("insufficient permissions")
	ErrStaffNotFound       = errors.New("staff not found")
	ErrSamePin             = errors.New("new pin must differ from the old pin")
)
