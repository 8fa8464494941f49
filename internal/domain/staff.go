package domain

import "time"

// Designation is the closed set of staff roles used for authorization.
type Designation string

const (
	DesignationAdmin Designation = "ADMIN"
	DesignationStaff Designation = "STAFF"
)

// Valid reports whether the designation is a known value.
func (d Designation) Valid() bool {
	switch d {
	case DesignationAdmin, DesignationStaff:
		return true
	}
	return false
}

// Staff represents a staff member that can authenticate with a PIN.
type Staff struct {
	ID          int64
	FullName    string
	MobileNo    string
	Email       string
	Designation Designation

	// KYC and payout details captured at onboarding. Empty means not
	// provided; only AadhaarNo is mandatory.
	AadhaarNo     string
	PanNo         string
	UpiID         string
	BankAccountNo string
	BankName      string
	IfscCode      string

	PinHash          string // argon2id encoded, empty until first PIN set
	IsActive         bool
	FailedAttempts   int
	LockedUntil      *time.Time
	LastFailedAt     *time.Time
	PinResetRequired bool
	JoinedDate       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Principal is the authenticated identity resolved from a session token.
type Principal struct {
	StaffID     int64
	Designation Designation
}
