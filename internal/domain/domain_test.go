package domain

import (
	"testing"
	"time"
)

// ─── Order Status Transitions ───────────────────────────────────────────────

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderDelivery, false},
		{OrderPending, OrderDelivered, false},
		{OrderConfirmed, OrderDelivery, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderConfirmed, OrderDelivered, false},
		{OrderDelivery, OrderDelivered, true},
		{OrderDelivery, OrderCancelled, false},
		{OrderDelivered, OrderConfirmed, false},
		{OrderCancelled, OrderConfirmed, false},

		// refunded is reachable from any non-refunded status
		{OrderPending, OrderRefunded, true},
		{OrderConfirmed, OrderRefunded, true},
		{OrderDelivery, OrderRefunded, true},
		{OrderDelivered, OrderRefunded, true},
		{OrderCancelled, OrderRefunded, true},
		{OrderRefunded, OrderRefunded, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderConfirmed, OrderDelivery, OrderDelivered, OrderCancelled, OrderRefunded} {
		if !ValidOrderStatus(s) {
			t.Errorf("ValidOrderStatus(%s) = false, want true", s)
		}
	}
	if ValidOrderStatus("shipped") {
		t.Error(`ValidOrderStatus("shipped") = true, want false`)
	}
}

func TestEventForStatus(t *testing.T) {
	ev, ok := EventForStatus(OrderRefunded)
	if !ok || ev != EventOrderRefunded {
		t.Errorf("EventForStatus(refunded) = %q, %v", ev, ok)
	}
	if _, ok := EventForStatus(OrderPending); ok {
		t.Error("EventForStatus(pending) should have no event")
	}
}

// ─── Ledger Types ───────────────────────────────────────────────────────────

func TestTransactionTypeSign(t *testing.T) {
	tests := []struct {
		typ  TransactionType
		want int64
	}{
		{TxCreditAdd, +1},
		{TxRefund, +1},
		{TxDebit, -1},
		{TxDeduct, -1},
	}
	for _, tt := range tests {
		if got := tt.typ.Sign(); got != tt.want {
			t.Errorf("%s.Sign() = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestTransactionTypePrefixesDistinct(t *testing.T) {
	types := []TransactionType{TxCreditAdd, TxDebit, TxDeduct, TxRefund}
	prefixes := make(map[string]TransactionType)
	bases := make(map[int64]TransactionType)
	for _, typ := range types {
		if prev, dup := prefixes[typ.IDPrefix()]; dup {
			t.Errorf("prefix %q shared by %s and %s", typ.IDPrefix(), prev, typ)
		}
		prefixes[typ.IDPrefix()] = typ
		if prev, dup := bases[typ.CounterBase()]; dup {
			t.Errorf("counter base %d shared by %s and %s", typ.CounterBase(), prev, typ)
		}
		bases[typ.CounterBase()] = typ
	}
}

func TestLedgerEntrySignedAmount(t *testing.T) {
	e := LedgerEntry{Type: TxDebit, Amount: 20}
	if got := e.SignedAmount(); got != -20 {
		t.Errorf("SignedAmount() = %d, want -20", got)
	}
	e = LedgerEntry{Type: TxRefund, Amount: 20}
	if got := e.SignedAmount(); got != 20 {
		t.Errorf("SignedAmount() = %d, want 20", got)
	}
}

// ─── Selections & Address ───────────────────────────────────────────────────

func TestSelectionsCount(t *testing.T) {
	s := Selections{
		Monday:    {Selected: true},
		Tuesday:   {Selected: false},
		Wednesday: {Selected: true},
	}
	if got := s.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
}

func TestAddressComplete(t *testing.T) {
	a := Address{Street: "1 Main St", City: "Calgary", Province: "AB", PostalCode: "T2P 1J9", Country: "Canada"}
	if !a.Complete() {
		t.Error("Complete() = false for full address")
	}
	a.PostalCode = ""
	if a.Complete() {
		t.Error("Complete() = true with missing postal code")
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Hour)}
	if s.Expired(now) {
		t.Error("session should not be expired an hour before expiry")
	}
	if !s.Expired(now.Add(2 * time.Hour)) {
		t.Error("session should be expired after expiry")
	}
}

func TestValidWeekday(t *testing.T) {
	if !ValidWeekday(Monday) {
		t.Error("monday should be valid")
	}
	if ValidWeekday("funday") {
		t.Error("funday should not be valid")
	}
}
