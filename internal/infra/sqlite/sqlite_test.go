package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/platewise/platewise/internal/domain"
)

// newTestDB opens an in-memory database with the full schema applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedAccount inserts an account with the given starting balance via an
// admin grant, so the ledger reconciles from the start.
func seedAccount(t *testing.T, db *DB, email string, credits int64) *domain.Account {
	t.Helper()
	now := time.Now()
	a := &domain.Account{
		Email:        email,
		Name:         "Test Customer",
		PasswordHash: "$2a$10$fakehashfortestsonly",
		Status:       domain.AccountActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.InsertAccount(context.Background(), a); err != nil {
		t.Fatalf("InsertAccount() error: %v", err)
	}
	if credits > 0 {
		if _, _, err := db.AdjustCredits(context.Background(), a.ID, domain.TxCreditAdd, credits, "initial grant"); err != nil {
			t.Fatalf("AdjustCredits() error: %v", err)
		}
		a.Credits = credits
	}
	return a
}

func fullAddress() domain.Address {
	return domain.Address{
		Street:     "12 Harvest Lane",
		City:       "Calgary",
		Province:   "AB",
		PostalCode: "T2P 1J9",
		Country:    "Canada",
	}
}

func seedOrder(t *testing.T, db *DB, accountID string, cost int64) *domain.Order {
	t.Helper()
	o := &domain.Order{
		AccountID:       accountID,
		Selections:      domain.Selections{domain.Monday: {Selected: true}, domain.Thursday: {Selected: true}},
		CreditCost:      cost,
		DeliveryAddress: fullAddress(),
	}
	if _, _, err := db.CreateOrder(context.Background(), o); err != nil {
		t.Fatalf("CreateOrder() error: %v", err)
	}
	return o
}
