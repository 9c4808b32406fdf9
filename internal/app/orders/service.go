// Package orders implements the order lifecycle: creation with the
// atomic credit debit, status transitions, and the compensating refund
// flow. All multi-record writes are delegated to single store methods
// that run in one database transaction.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/platewise/platewise/internal/domain"
	"github.com/platewise/platewise/internal/infra/observability"
	"github.com/platewise/platewise/internal/infra/sqlite"
)

// Service orchestrates order operations against the store and fires
// lifecycle notifications.
type Service struct {
	store    *sqlite.DB
	notifier domain.Notifier
	log      *slog.Logger
}

// NewService creates an order service.
func NewService(store *sqlite.DB, notifier domain.Notifier, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		log:      log.With("component", "order_service"),
	}
}

// CreateOrderParams carries everything needed to place a weekly order.
type CreateOrderParams struct {
	AccountID           string            `json:"userId"`
	Selections          domain.Selections `json:"selectedMeals"`
	CreditCost          int64             `json:"creditCost"`
	DeliveryAddress     domain.Address    `json:"deliveryAddress"`
	SpecialInstructions string            `json:"specialInstructions"`
	Phone               string            `json:"phoneNumber"`
}

// Result bundles an order with the ledger entry and balance produced by
// the operation. Transaction is nil for plain status transitions, and
// RemainingCredits is meaningful only when Transaction is set.
type Result struct {
	Order            *domain.Order
	Transaction      *domain.LedgerEntry
	RemainingCredits int64
}

// CreateOrder validates the request and persists the order atomically
// with the account debit and the debit ledger entry. The new-order
// notification fires after commit, outside the atomic unit.
func (s *Service) CreateOrder(ctx context.Context, p CreateOrderParams) (*Result, error) {
	if err := validateCreate(p); err != nil {
		s.log.Warn("order rejected", "account_id", p.AccountID, "error", err)
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		AccountID:           p.AccountID,
		Selections:          p.Selections,
		CreditCost:          p.CreditCost,
		DeliveryAddress:     p.DeliveryAddress,
		SpecialInstructions: p.SpecialInstructions,
		Phone:               p.Phone,
	}
	entry, balance, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			observability.OrderFailures.WithLabelValues("insufficient_credits").Inc()
		}
		s.log.Warn("order creation failed", "account_id", p.AccountID, "error", err)
		return nil, err
	}

	observability.OrdersCreated.Inc()
	observability.CreditsMoved.WithLabelValues(string(domain.TxDebit)).Add(float64(order.CreditCost))
	s.log.Info("order created",
		"order_id", order.ID, "account_id", p.AccountID,
		"credit_cost", order.CreditCost, "remaining_credits", balance)
	s.dispatch(domain.EventOrderPlaced, *account, *order)

	return &Result{Order: order, Transaction: entry, RemainingCredits: balance}, nil
}

// UpdateOrderStatus applies a lifecycle transition. Transitions to
// refunded, and cancellations with refundCredits, run the atomic refund
// path; everything else is a single-row status update with idempotent
// timestamp stamping.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, refundCredits bool) (*Result, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	current, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var res *Result
	switch {
	case status == domain.OrderRefunded:
		order, entry, balance, err := s.store.RefundOrder(ctx, current.ID, false)
		if err != nil {
			return nil, err
		}
		res = &Result{Order: order, Transaction: entry, RemainingCredits: balance}
		s.log.Info("order refunded", "order_id", order.ID, "amount", entry.Amount)

	case status == domain.OrderCancelled && refundCredits:
		order, entry, balance, err := s.store.RefundOrder(ctx, current.ID, true)
		if err != nil {
			return nil, err
		}
		res = &Result{Order: order, Transaction: entry, RemainingCredits: balance}
		s.log.Info("order cancelled with refund", "order_id", order.ID, "amount", entry.Amount)

	default:
		if status != current.Status && !domain.CanTransition(current.Status, status) {
			return nil, fmt.Errorf("%w: cannot move %s from %s to %s",
				domain.ErrInvalidStatus, current.ID, current.Status, status)
		}
		order, err := s.store.SetOrderStatus(ctx, current.ID, status)
		if err != nil {
			return nil, err
		}
		res = &Result{Order: order}
		s.log.Info("order status updated", "order_id", order.ID, "status", status)
	}

	observability.OrderStatusChanges.WithLabelValues(string(res.Order.Status)).Inc()
	if res.Transaction != nil {
		observability.CreditsMoved.WithLabelValues(string(res.Transaction.Type)).Add(float64(res.Transaction.Amount))
	}

	if event, ok := domain.EventForStatus(res.Order.Status); ok {
		if account, err := s.store.GetAccount(ctx, res.Order.AccountID); err == nil {
			s.dispatch(event, *account, *res.Order)
		}
	}
	return res, nil
}

// GetOrder fetches an order by generated or internal id, attaching the
// refund transaction when one exists.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, *domain.LedgerEntry, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	refund, err := s.store.RefundEntryForOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, refund, nil
}

// Page is one page of an order listing.
type Page struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
	PageNo int            `json:"page"`
	Limit  int            `json:"limit"`
	Pages  int            `json:"pages"`
}

// ListOrders returns a filtered, paginated order listing.
func (s *Service) ListOrders(ctx context.Context, f sqlite.OrderFilter) (*Page, error) {
	if f.Status != "" && !domain.ValidOrderStatus(f.Status) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, f.Status)
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	list, total, err := s.store.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	pages := (total + f.Limit - 1) / f.Limit
	return &Page{Orders: list, Total: total, PageNo: f.Page, Limit: f.Limit, Pages: pages}, nil
}

// dispatch fires a lifecycle notification in the background. Failures
// are the dispatcher's problem; they never surface here.
func (s *Service) dispatch(event domain.OrderEvent, account domain.Account, order domain.Order) {
	if s.notifier == nil {
		return
	}
	go s.notifier.Notify(context.Background(), event, account, order)
}

func validateCreate(p CreateOrderParams) error {
	if p.Selections.Count() == 0 {
		return domain.ErrNoDaysSelected
	}
	for day := range p.Selections {
		if !domain.ValidWeekday(day) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidDay, day)
		}
	}
	if p.CreditCost <= 0 {
		return domain.ErrInvalidAmount
	}
	if !p.DeliveryAddress.Complete() {
		return domain.ErrIncompleteAddress
	}
	return nil
}
