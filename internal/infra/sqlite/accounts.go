package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platewise/platewise/internal/domain"
)

// ─── Account Operations ─────────────────────────────────────────────────────

const accountColumns = `id, email, name, password_hash, status, credits,
	street, city, province, postal_code, country, phone, is_admin,
	verified_at, created_at, updated_at`

// InsertAccount persists a new account. Allocates the account id from the
// account sequence when a.ID is empty.
func (db *DB) InsertAccount(ctx context.Context, a *domain.Account) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if a.ID == "" {
			n, err := nextID(tx, "account", 100)
			if err != nil {
				return err
			}
			a.ID = fmt.Sprintf("USR-%d", n)
		}

		var street, city, province, postal, country any
		if a.Address != nil {
			street, city, province, postal, country =
				a.Address.Street, a.Address.City, a.Address.Province, a.Address.PostalCode, a.Address.Country
		}

		_, err := tx.Exec(`
			INSERT INTO accounts (id, email, name, password_hash, status, credits,
				street, city, province, postal_code, country, phone, is_admin,
				verified_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, a.Email, a.Name, a.PasswordHash, string(a.Status), a.Credits,
			street, city, province, postal, country, a.Phone, boolToInt(a.IsAdmin),
			formatNullTime(a.VerifiedAt), formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateEmail
			}
			return fmt.Errorf("insert account: %w", err)
		}
		return nil
	})
}

// GetAccount retrieves an account by id.
func (db *DB) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return db.scanAccount(db.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

// GetAccountByEmail retrieves an account by email.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return db.scanAccount(db.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email))
}

// ListAccounts returns all accounts ordered by creation time.
func (db *DB) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := db.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateAccountProfile updates name, phone and address.
func (db *DB) UpdateAccountProfile(ctx context.Context, id, name, phone string, addr *domain.Address) error {
	var street, city, province, postal, country any
	if addr != nil {
		street, city, province, postal, country =
			addr.Street, addr.City, addr.Province, addr.PostalCode, addr.Country
	}
	res, err := db.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, phone = ?,
			street = ?, city = ?, province = ?, postal_code = ?, country = ?,
			updated_at = ?
		WHERE id = ?
	`, name, phone, street, city, province, postal, country, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res, domain.ErrAccountNotFound)
}

// SetAccountStatus sets the account lifecycle status.
func (db *DB) SetAccountStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return requireRow(res, domain.ErrAccountNotFound)
}

// SetAdmin grants or revokes admin rights.
func (db *DB) SetAdmin(ctx context.Context, id string, admin bool) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE accounts SET is_admin = ?, updated_at = ? WHERE id = ?`,
		boolToInt(admin), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return requireRow(res, domain.ErrAccountNotFound)
}

// DeleteAccount hard-deletes an account. Admin action only; sessions
// cascade, orders and ledger history are retained.
func (db *DB) DeleteAccount(ctx context.Context, id string) error {
	res, err := db.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res, domain.ErrAccountNotFound)
}

// ─── Verification & Reset Codes ─────────────────────────────────────────────

// SetVerifyCode stores a single-use email verification code.
func (db *DB) SetVerifyCode(ctx context.Context, id, code string, expires time.Time) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE accounts SET verify_code = ?, verify_expiry = ? WHERE id = ?`,
		code, formatTime(expires), id)
	if err != nil {
		return fmt.Errorf("set verify code: %w", err)
	}
	return requireRow(res, domain.ErrAccountNotFound)
}

// ConsumeVerifyCode marks the matching account verified and clears the
// code. Returns the account id, or ErrCodeExpired when the code is
// unknown or past expiry.
func (db *DB) ConsumeVerifyCode(ctx context.Context, code string, now time.Time) (string, error) {
	var id string
	err := db.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET verified_at = ?, verify_code = NULL, verify_expiry = NULL
		WHERE verify_code = ? AND verify_expiry > ?
		RETURNING id
	`, formatTime(now), code, formatTime(now)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrCodeExpired
	}
	if err != nil {
		return "", fmt.Errorf("consume verify code: %w", err)
	}
	return id, nil
}

// SetResetCode stores a single-use password reset code.
func (db *DB) SetResetCode(ctx context.Context, id, code string, expires time.Time) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE accounts SET reset_code = ?, reset_expiry = ? WHERE id = ?`,
		code, formatTime(expires), id)
	if err != nil {
		return fmt.Errorf("set reset code: %w", err)
	}
	return requireRow(res, domain.ErrAccountNotFound)
}

// ConsumeResetCode replaces the password hash of the account holding the
// code and clears it. Returns ErrCodeExpired when unknown or expired.
func (db *DB) ConsumeResetCode(ctx context.Context, code, newHash string, now time.Time) (string, error) {
	var id string
	err := db.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET password_hash = ?, reset_code = NULL, reset_expiry = NULL, updated_at = ?
		WHERE reset_code = ? AND reset_expiry > ?
		RETURNING id
	`, newHash, formatTime(now), code, formatTime(now)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrCodeExpired
	}
	if err != nil {
		return "", fmt.Errorf("consume reset code: %w", err)
	}
	return id, nil
}

// ─── Sessions ───────────────────────────────────────────────────────────────

// InsertSession stores a login session.
func (db *DB) InsertSession(ctx context.Context, s domain.Session) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO sessions (token, account_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, s.Token, s.AccountID, formatTime(s.ExpiresAt), formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by token.
func (db *DB) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	var expires, created string
	err := db.db.QueryRowContext(ctx,
		`SELECT token, account_id, expires_at, created_at FROM sessions WHERE token = ?`,
		token).Scan(&s.Token, &s.AccountID, &expires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	s.ExpiresAt = parseTime(expires)
	s.CreatedAt = parseTime(created)
	return &s, nil
}

// DeleteSession removes a session (logout).
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := db.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (db *DB) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// ─── Scan Helpers ───────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	var status string
	var street, city, province, postal, country, phone sql.NullString
	var isAdmin int
	var verified sql.NullString
	var created, updated string

	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &status, &a.Credits,
		&street, &city, &province, &postal, &country, &phone, &isAdmin,
		&verified, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}

	a.Status = domain.AccountStatus(status)
	a.Phone = phone.String
	a.IsAdmin = isAdmin == 1
	a.VerifiedAt = parseNullTime(verified)
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	if street.Valid && street.String != "" {
		a.Address = &domain.Address{
			Street:     street.String,
			City:       city.String,
			Province:   province.String,
			PostalCode: postal.String,
			Country:    country.String,
		}
	}
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
