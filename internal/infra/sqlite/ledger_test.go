package sqlite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/platewise/platewise/internal/domain"
)

// ─── Credit Adjustments ─────────────────────────────────────────────────────

func TestAdjustCredits_Grant(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "grant@example.com", 0)

	entry, balance, err := db.AdjustCredits(context.Background(), a.ID, domain.TxCreditAdd, 50, "welcome bonus")
	if err != nil {
		t.Fatalf("AdjustCredits() error: %v", err)
	}
	if balance != 50 {
		t.Errorf("balance = %d, want 50", balance)
	}
	if entry.Amount != 50 {
		t.Errorf("entry amount = %d, want 50 (stored positive)", entry.Amount)
	}
	if !strings.HasPrefix(entry.ID, "TXN-ADD-") {
		t.Errorf("entry id = %q, want TXN-ADD- prefix", entry.ID)
	}
}

func TestAdjustCredits_DeductInsufficient(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "poor@example.com", 10)

	_, _, err := db.AdjustCredits(context.Background(), a.ID, domain.TxDeduct, 15, "too much")
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("AdjustCredits(deduct 15 of 10) error = %v, want ErrInsufficientCredits", err)
	}

	// All-or-nothing: balance and ledger untouched.
	got, _ := db.GetAccount(context.Background(), a.ID)
	if got.Credits != 10 {
		t.Errorf("credits = %d, want 10 after failed deduct", got.Credits)
	}
	n, _ := db.CountLedgerEntries(context.Background(), a.ID)
	if n != 1 { // the seed grant only
		t.Errorf("ledger entries = %d, want 1", n)
	}
}

func TestAdjustCredits_InvalidAmount(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "zero@example.com", 10)

	if _, _, err := db.AdjustCredits(context.Background(), a.ID, domain.TxCreditAdd, 0, ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("AdjustCredits(0) error = %v, want ErrInvalidAmount", err)
	}
	if _, _, err := db.AdjustCredits(context.Background(), a.ID, domain.TxDeduct, -5, ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("AdjustCredits(-5) error = %v, want ErrInvalidAmount", err)
	}
}

func TestAdjustCredits_MissingAccount(t *testing.T) {
	db := newTestDB(t)
	_, _, err := db.AdjustCredits(context.Background(), "USR-404", domain.TxCreditAdd, 10, "")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("AdjustCredits(missing) error = %v, want ErrAccountNotFound", err)
	}
}

// ─── Transaction ID Generation ──────────────────────────────────────────────

func TestTransactionIDs_SequentialPerType(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "seq@example.com", 0)

	e1, _, _ := db.AdjustCredits(context.Background(), a.ID, domain.TxCreditAdd, 10, "")
	e2, _, _ := db.AdjustCredits(context.Background(), a.ID, domain.TxCreditAdd, 10, "")
	if e1.ID != "TXN-ADD-5000" {
		t.Errorf("first grant id = %q, want TXN-ADD-5000", e1.ID)
	}
	if e2.ID != "TXN-ADD-5001" {
		t.Errorf("second grant id = %q, want TXN-ADD-5001", e2.ID)
	}

	// Different types draw from disjoint sequences.
	e3, _, _ := db.AdjustCredits(context.Background(), a.ID, domain.TxDeduct, 5, "")
	if e3.ID != "TXN-DED-7000" {
		t.Errorf("first deduct id = %q, want TXN-DED-7000", e3.ID)
	}
}

// ─── Reconciliation ─────────────────────────────────────────────────────────

func TestLedgerBalance_Reconciles(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "books@example.com", 100)

	db.AdjustCredits(context.Background(), a.ID, domain.TxDeduct, 30, "penalty")
	db.AdjustCredits(context.Background(), a.ID, domain.TxCreditAdd, 15, "goodwill")
	seedOrder(t, db, a.ID, 25)

	got, _ := db.GetAccount(context.Background(), a.ID)
	sum, err := db.LedgerBalance(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("LedgerBalance() error: %v", err)
	}
	if sum != got.Credits {
		t.Errorf("ledger sum = %d, account credits = %d; must reconcile", sum, got.Credits)
	}
	if got.Credits != 60 { // 100 - 30 + 15 - 25
		t.Errorf("credits = %d, want 60", got.Credits)
	}
}

func TestListLedgerEntries(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "hist@example.com", 40)
	db.AdjustCredits(context.Background(), a.ID, domain.TxDeduct, 10, "fee")

	entries, err := db.ListLedgerEntries(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("ListLedgerEntries() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Amount <= 0 {
			t.Errorf("entry %s amount = %d, want > 0", e.ID, e.Amount)
		}
	}
}
