package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/platewise/platewise/internal/domain"
)

// ─── Order Operations ───────────────────────────────────────────────────────

const orderColumns = `id, account_id, selections_json, credit_cost,
	street, city, province, postal_code, country, instructions, phone, status,
	confirmed_at, delivered_at, cancelled_at, refunded_at, created_at, updated_at`

// CreateOrder persists a new pending order atomically with the account
// debit and the debit ledger entry. If any write fails the whole unit
// rolls back; no partial state is observable. Returns the debit entry and
// the remaining balance.
func (db *DB) CreateOrder(ctx context.Context, o *domain.Order) (*domain.LedgerEntry, int64, error) {
	selections, err := json.Marshal(o.Selections)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal selections: %w", err)
	}

	var entry *domain.LedgerEntry
	var balance int64
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()

		// Debit first: the guarded update re-checks the balance inside the
		// transaction, closing the race between check and debit.
		if err := adjustBalance(tx, o.AccountID, -o.CreditCost, now); err != nil {
			return err
		}

		n, err := nextID(tx, "order", 1000)
		if err != nil {
			return err
		}
		o.ID = fmt.Sprintf("ORD-%d", n)
		o.Status = domain.OrderPending
		o.CreatedAt = now
		o.UpdatedAt = now

		_, err = tx.Exec(`
			INSERT INTO orders (id, account_id, selections_json, credit_cost,
				street, city, province, postal_code, country, instructions, phone,
				status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, o.ID, o.AccountID, string(selections), o.CreditCost,
			o.DeliveryAddress.Street, o.DeliveryAddress.City, o.DeliveryAddress.Province,
			o.DeliveryAddress.PostalCode, o.DeliveryAddress.Country,
			o.SpecialInstructions, o.Phone, string(domain.OrderPending),
			formatTime(now), formatTime(now))
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		desc := fmt.Sprintf("Weekly meal order %s (%d days)", o.ID, o.Selections.Count())
		entry, err = appendLedgerEntry(tx, o.AccountID, domain.TxDebit, o.CreditCost, desc, o.ID, now)
		if err != nil {
			return err
		}
		return tx.QueryRow(`SELECT credits FROM accounts WHERE id = ?`, o.AccountID).Scan(&balance)
	})
	if err != nil {
		return nil, 0, err
	}
	return entry, balance, nil
}

// GetOrder retrieves an order by its generated id, or by row id when the
// argument is numeric.
func (db *DB) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := db.scanOrder(db.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err == nil || !errors.Is(err, domain.ErrOrderNotFound) {
		return o, err
	}
	if rowid, convErr := strconv.ParseInt(id, 10, 64); convErr == nil {
		return db.scanOrder(db.db.QueryRowContext(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE rowid = ?`, rowid))
	}
	return nil, domain.ErrOrderNotFound
}

// OrderFilter narrows ListOrders. Zero values mean "any".
type OrderFilter struct {
	AccountID string
	Status    domain.OrderStatus
	Page      int
	Limit     int
}

// ListOrders returns matching orders newest first, plus the total count
// before pagination.
func (db *DB) ListOrders(ctx context.Context, f OrderFilter) ([]domain.Order, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if f.AccountID != "" {
		where += ` AND account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(f.Status))
	}

	var total int
	if err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	q := `SELECT ` + orderColumns + ` FROM orders` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := db.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := db.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

// SetOrderStatus applies a plain (non-refunding) status transition as a
// single-row update. Lifecycle timestamps are stamped only the first time
// their status is reached; re-setting an already-reached status never
// re-stamps.
func (db *DB) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	now := formatTime(time.Now())
	var stampCol string
	switch status {
	case domain.OrderConfirmed:
		stampCol = "confirmed_at"
	case domain.OrderDelivered:
		stampCol = "delivered_at"
	case domain.OrderCancelled:
		stampCol = "cancelled_at"
	}

	q := `UPDATE orders SET status = ?, updated_at = ?`
	args := []any{string(status), now}
	if stampCol != "" {
		q += `, ` + stampCol + ` = COALESCE(` + stampCol + `, ?)`
		args = append(args, now)
	}
	q += ` WHERE id = ?`
	args = append(args, id)

	res, err := db.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}
	if err := requireRow(res, domain.ErrOrderNotFound); err != nil {
		return nil, err
	}
	return db.GetOrder(ctx, id)
}

// RefundOrder atomically transitions an order to refunded (or cancelled
// with a refund): status + timestamps, the compensating balance credit and
// the refund ledger entry commit or roll back as one unit. An order is
// refunded at most once; a second attempt fails with ErrAlreadyRefunded
// and leaves the balance untouched.
func (db *DB) RefundOrder(ctx context.Context, id string, asCancellation bool) (*domain.Order, *domain.LedgerEntry, int64, error) {
	var entry *domain.LedgerEntry
	var balance int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()

		var accountID string
		var cost int64
		var status string
		var refundedAt sql.NullString
		err := tx.QueryRow(`SELECT account_id, credit_cost, status, refunded_at FROM orders WHERE id = ?`, id).
			Scan(&accountID, &cost, &status, &refundedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		// The refunded_at stamp, not the status, is the once-only guard:
		// a cancel-with-refund leaves status=cancelled but must still
		// block a second compensating credit.
		if refundedAt.Valid {
			return domain.ErrAlreadyRefunded
		}
		if asCancellation && domain.OrderStatus(status) == domain.OrderCancelled {
			return domain.ErrAlreadyCancelled
		}

		newStatus := domain.OrderRefunded
		desc := fmt.Sprintf("Refund for order %s", id)
		q := `UPDATE orders SET status = ?, refunded_at = ?, updated_at = ? WHERE id = ?`
		args := []any{string(newStatus), formatTime(now), formatTime(now), id}
		if asCancellation {
			newStatus = domain.OrderCancelled
			desc = fmt.Sprintf("Cancellation refund for order %s", id)
			q = `UPDATE orders SET status = ?, cancelled_at = COALESCE(cancelled_at, ?), refunded_at = ?, updated_at = ? WHERE id = ?`
			args = []any{string(newStatus), formatTime(now), formatTime(now), formatTime(now), id}
		}
		if _, err := tx.Exec(q, args...); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if err := adjustBalance(tx, accountID, cost, now); err != nil {
			return err
		}
		entry, err = appendLedgerEntry(tx, accountID, domain.TxRefund, cost, desc, id, now)
		if err != nil {
			return err
		}
		return tx.QueryRow(`SELECT credits FROM accounts WHERE id = ?`, accountID).Scan(&balance)
	})
	if err != nil {
		return nil, nil, 0, err
	}
	o, err := db.GetOrder(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}
	return o, entry, balance, nil
}

// RefundEntryForOrder returns the refund ledger entry referencing the
// order, if one exists.
func (db *DB) RefundEntryForOrder(ctx context.Context, orderID string) (*domain.LedgerEntry, error) {
	e, err := scanLedgerEntry(db.db.QueryRowContext(ctx, `
		SELECT id, account_id, order_id, type, amount, description, created_at
		FROM ledger_entries
		WHERE type = ? AND order_id = ?
		ORDER BY created_at DESC LIMIT 1
	`, string(domain.TxRefund), orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (db *DB) scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var selections, status, created, updated string
	var instructions, phone sql.NullString
	var confirmed, delivered, cancelled, refunded sql.NullString

	err := row.Scan(&o.ID, &o.AccountID, &selections, &o.CreditCost,
		&o.DeliveryAddress.Street, &o.DeliveryAddress.City, &o.DeliveryAddress.Province,
		&o.DeliveryAddress.PostalCode, &o.DeliveryAddress.Country,
		&instructions, &phone, &status,
		&confirmed, &delivered, &cancelled, &refunded, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal([]byte(selections), &o.Selections); err != nil {
		return nil, fmt.Errorf("unmarshal selections: %w", err)
	}
	o.SpecialInstructions = instructions.String
	o.Phone = phone.String
	o.Status = domain.OrderStatus(status)
	o.ConfirmedAt = parseNullTime(confirmed)
	o.DeliveredAt = parseNullTime(delivered)
	o.CancelledAt = parseNullTime(cancelled)
	o.RefundedAt = parseNullTime(refunded)
	o.CreatedAt = parseTime(created)
	o.UpdatedAt = parseTime(updated)
	return &o, nil
}
