package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/domain"
)

// Compile-time interface assertion.
var _ StaffRepository = (*PostgresStaffRepo)(nil)

// queryTimeout bounds every store round trip so a stalled database never
// holds a login attempt (and its row lock) indefinitely.
const queryTimeout = 5 * time.Second

const staffColumns = `staff_id, full_name, mobile_no, email, designation,
	aadhaar_no, pan_no, upi_id, bank_account_no, bank_name, ifsc_code, pin_hash,
	is_active, failed_attempts, locked_until, last_failed_at, is_pin_reset_required,
	joined_date, created_at, updated_at`

// PostgresStaffRepo implements StaffRepository against master.staff.
type PostgresStaffRepo struct {
	db *pgxpool.Pool
}

func NewPostgresStaffRepo(pool *pgxpool.Pool) *PostgresStaffRepo {
	return &PostgresStaffRepo{db: pool}
}

func (r *PostgresStaffRepo) FindByID(ctx context.Context, staffID int64) (domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+staffColumns+` FROM master.staff WHERE staff_id = $1`, staffID)
	staff, err := scanStaff(row)
	if err != nil {
		return domain.Staff{}, fmt.Errorf("get staff by id: %w", err)
	}
	return staff, nil
}

const insertStaffSQL = `INSERT INTO master.staff (
	full_name, mobile_no, email, designation,
	aadhaar_no, pan_no, upi_id, bank_account_no, bank_name, ifsc_code,
	pin_hash, is_active, failed_attempts, is_pin_reset_required, joined_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, 0, $12, $13)
RETURNING ` + staffColumns

func (r *PostgresStaffRepo) Create(ctx context.Context, staff domain.Staff) (domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, insertStaffSQL,
		staff.FullName,
		staff.MobileNo,
		staff.Email,
		staff.Designation,
		staff.AadhaarNo,
		nullableString(staff.PanNo),
		nullableString(staff.UpiID),
		nullableString(staff.BankAccountNo),
		nullableString(staff.BankName),
		nullableString(staff.IfscCode),
		nullableString(staff.PinHash),
		staff.PinResetRequired,
		staff.JoinedDate,
	)
	created, err := scanStaff(row)
	if err != nil {
		return domain.Staff{}, fmt.Errorf("create staff: %w", err)
	}
	return created, nil
}

func (r *PostgresStaffRepo) List(ctx context.Context) ([]domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+staffColumns+` FROM master.staff ORDER BY staff_id`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var staff []domain.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("list staff: %w", err)
		}
		staff = append(staff, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

func (r *PostgresStaffRepo) UpdatePIN(ctx context.Context, staffID int64, pinHash string, resetRequired bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE master.staff
		SET pin_hash = $2,
			is_pin_reset_required = $3,
			failed_attempts = 0,
			locked_until = NULL,
			last_failed_at = NULL,
			updated_at = NOW()
		WHERE staff_id = $1`, staffID, pinHash, resetRequired)
	if err != nil {
		return fmt.Errorf("update pin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Attempt locks the staff row for the duration of one login attempt. The
// lock serializes concurrent attempts per identity, so two failures can
// never both read the same pre-lock counter.
func (r *PostgresStaffRepo) Attempt(ctx context.Context, identifier string, fn AttemptFunc) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin attempt: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+staffColumns+` FROM master.staff
		WHERE mobile_no = $1 OR staff_id::text = $1
		FOR UPDATE`, identifier)
	staff, err := scanStaff(row)
	if err != nil {
		return fmt.Errorf("resolve staff: %w", err)
	}

	state := &attemptState{tx: tx, staffID: staff.ID}
	outcome := fn(ctx, staff, state)
	if state.err != nil {
		return state.err
	}

	// The commit is the attempt's single point of persistence: an
	// abandoned attempt leaves no partial state behind.
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit attempt: %w", err)
	}
	return outcome
}

type attemptState struct {
	tx      pgx.Tx
	staffID int64
	err     error
}

func (s *attemptState) RecordFailure(ctx context.Context, attempts int, failedAt time.Time, lockedUntil *time.Time) error {
	_, err := s.tx.Exec(ctx, `UPDATE master.staff
		SET failed_attempts = $2,
			last_failed_at = $3,
			locked_until = $4,
			updated_at = NOW()
		WHERE staff_id = $1`, s.staffID, attempts, failedAt, lockedUntil)
	if err != nil {
		s.err = fmt.Errorf("record failure: %w", err)
	}
	return s.err
}

func (s *attemptState) ClearFailureState(ctx context.Context) error {
	_, err := s.tx.Exec(ctx, `UPDATE master.staff
		SET failed_attempts = 0,
			last_failed_at = NULL,
			locked_until = NULL,
			updated_at = NOW()
		WHERE staff_id = $1`, s.staffID)
	if err != nil {
		s.err = fmt.Errorf("clear failure state: %w", err)
	}
	return s.err
}

func scanStaff(row pgx.Row) (domain.Staff, error) {
	var (
		staff                                           domain.Staff
		panNo, upiID, bankAccountNo, bankName, ifscCode *string
		pinHash                                         *string
	)
	err := row.Scan(
		&staff.ID,
		&staff.FullName,
		&staff.MobileNo,
		&staff.Email,
		&staff.Designation,
		&staff.AadhaarNo,
		&panNo,
		&upiID,
		&bankAccountNo,
		&bankName,
		&ifscCode,
		&pinHash,
		&staff.IsActive,
		&staff.FailedAttempts,
		&staff.LockedUntil,
		&staff.LastFailedAt,
		&staff.PinResetRequired,
		&staff.JoinedDate,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err != nil {
		return domain.Staff{}, err
	}
	staff.PanNo = deref(panNo)
	staff.UpiID = deref(upiID)
	staff.BankAccountNo = deref(bankAccountNo)
	staff.BankName = deref(bankName)
	staff.IfscCode = deref(ifscCode)
	staff.PinHash = deref(pinHash)
	return staff, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
