package domain

import "time"

// ─── Credit Ledger Types ────────────────────────────────────────────────────
// The ledger is append-only: entries are never mutated or deleted. The sum
// of an account's entries, signed by type, must reconcile with its current
// credit balance at all times.

// TransactionType is the business reason for a credit operation.
type TransactionType string

const (
	TxCreditAdd TransactionType = "CREDIT_ADD" // admin grant
	TxDebit     TransactionType = "DEBIT"      // order payment
	TxDeduct    TransactionType = "DEDUCT"     // admin deduction
	TxRefund    TransactionType = "REFUND"     // order refund / cancellation refund
)

// IDPrefix returns the transaction identifier prefix for the type.
func (t TransactionType) IDPrefix() string {
	switch t {
	case TxCreditAdd:
		return "TXN-ADD-"
	case TxDebit:
		return "TXN-DEB-"
	case TxDeduct:
		return "TXN-DED-"
	case TxRefund:
		return "TXN-REF-"
	}
	return "TXN-"
}

// CounterBase returns the starting numeric suffix for the type's sequence.
// Distinct bases keep suffixes disjoint across types even though each type
// carries its own prefix.
func (t TransactionType) CounterBase() int64 {
	switch t {
	case TxCreditAdd:
		return 5000
	case TxDebit:
		return 2000
	case TxDeduct:
		return 7000
	case TxRefund:
		return 9000
	}
	return 0
}

// Sign returns +1 for entry types that increase the balance and -1 for
// types that decrease it.
func (t TransactionType) Sign() int64 {
	switch t {
	case TxDebit, TxDeduct:
		return -1
	}
	return +1
}

// LedgerEntry is an immutable record of a single balance-affecting event.
// Amount is always stored positive; semantics are implied by Type.
type LedgerEntry struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	OrderID     string          `json:"order_id,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SignedAmount returns the amount with the type's sign applied.
func (e LedgerEntry) SignedAmount() int64 {
	return e.Type.Sign() * e.Amount
}
