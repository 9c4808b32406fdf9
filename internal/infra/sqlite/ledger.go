package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/platewise/platewise/internal/domain"
)

// ─── Credit Ledger Operations ───────────────────────────────────────────────
// Ledger entries are append-only. They are written exclusively inside the
// transaction that mutates the matching account balance; a balance write
// without a ledger append is a correctness violation.

// appendLedgerEntry allocates a typed transaction id and inserts the entry
// inside the caller's transaction. Amount must already be positive. orderID
// is empty for admin adjustments.
func appendLedgerEntry(tx *sql.Tx, accountID string, typ domain.TransactionType, amount int64, description, orderID string, now time.Time) (*domain.LedgerEntry, error) {
	n, err := nextID(tx, "txn:"+string(typ), typ.CounterBase())
	if err != nil {
		return nil, err
	}

	e := &domain.LedgerEntry{
		ID:          fmt.Sprintf("%s%d", typ.IDPrefix(), n),
		AccountID:   accountID,
		OrderID:     orderID,
		Type:        typ,
		Amount:      amount,
		Description: description,
		CreatedAt:   now,
	}
	var orderRef any
	if orderID != "" {
		orderRef = orderID
	}
	_, err = tx.Exec(`
		INSERT INTO ledger_entries (id, account_id, order_id, type, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.AccountID, orderRef, string(e.Type), e.Amount, e.Description, formatTime(e.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	return e, nil
}

// adjustBalance applies a signed delta to the account balance inside the
// caller's transaction. The guard in the WHERE clause makes the decrement
// re-check the balance at write time, so a stale earlier read can never
// drive the balance negative.
func adjustBalance(tx *sql.Tx, accountID string, delta int64, now time.Time) error {
	res, err := tx.Exec(`
		UPDATE accounts SET credits = credits + ?, updated_at = ?
		WHERE id = ? AND credits + ? >= 0
	`, delta, formatTime(now), accountID, delta)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM accounts WHERE id = ?`, accountID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrAccountNotFound
		}
		return domain.ErrInsufficientCredits
	}
	return nil
}

// AdjustCredits atomically applies an admin credit grant or deduction:
// balance mutation plus ledger append in one transaction. Returns the new
// entry and the resulting balance.
func (db *DB) AdjustCredits(ctx context.Context, accountID string, typ domain.TransactionType, amount int64, description string) (*domain.LedgerEntry, int64, error) {
	if amount <= 0 {
		return nil, 0, domain.ErrInvalidAmount
	}

	var entry *domain.LedgerEntry
	var balance int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		if err := adjustBalance(tx, accountID, typ.Sign()*amount, now); err != nil {
			return err
		}
		e, err := appendLedgerEntry(tx, accountID, typ, amount, description, "", now)
		if err != nil {
			return err
		}
		entry = e
		return tx.QueryRow(`SELECT credits FROM accounts WHERE id = ?`, accountID).Scan(&balance)
	})
	if err != nil {
		return nil, 0, err
	}
	return entry, balance, nil
}

// GetLedgerEntry retrieves a single entry by transaction id.
func (db *DB) GetLedgerEntry(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	e, err := scanLedgerEntry(db.db.QueryRowContext(ctx, `
		SELECT id, account_id, order_id, type, amount, description, created_at
		FROM ledger_entries WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger entry %s: not found", id)
	}
	return e, err
}

// ListLedgerEntries returns an account's entries, newest first.
func (db *DB) ListLedgerEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, account_id, order_id, type, amount, description, created_at
		FROM ledger_entries WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// LedgerBalance returns the sum of an account's entries signed by type.
// With all balance mutations paired to appends, this reconciles with the
// account's credits column at all times.
func (db *DB) LedgerBalance(ctx context.Context, accountID string) (int64, error) {
	var sum sql.NullInt64
	err := db.db.QueryRowContext(ctx, `
		SELECT SUM(CASE WHEN type IN ('DEBIT', 'DEDUCT') THEN -amount ELSE amount END)
		FROM ledger_entries WHERE account_id = ?
	`, accountID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("ledger balance: %w", err)
	}
	return sum.Int64, nil
}

// CountLedgerEntries returns the total number of entries for an account.
func (db *DB) CountLedgerEntries(ctx context.Context, accountID string) (int, error) {
	var n int
	err := db.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_entries WHERE account_id = ?`, accountID).Scan(&n)
	return n, err
}

func scanLedgerEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var orderID sql.NullString
	var typ, created string
	if err := row.Scan(&e.ID, &e.AccountID, &orderID, &typ, &e.Amount, &e.Description, &created); err != nil {
		return nil, err
	}
	e.OrderID = orderID.String
	e.Type = domain.TransactionType(typ)
	e.CreatedAt = parseTime(created)
	return &e, nil
}
