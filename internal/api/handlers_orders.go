package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/platewise/platewise/internal/app/orders"
	"github.com/platewise/platewise/internal/domain"
	"github.com/platewise/platewise/internal/infra/sqlite"
)

// handleCreateOrder places a weekly order for the authenticated account.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var p orders.CreateOrderParams
	if err := decode(r, &p); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	// The order always belongs to the caller.
	p.AccountID = accountFrom(r.Context()).ID

	res, err := s.orders.CreateOrder(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{
		"order":            res.Order,
		"transaction":      res.Transaction,
		"remainingCredits": res.RemainingCredits,
	})
}

// handleListOrders lists the caller's orders. Admins see all orders and
// may filter by userId.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r.Context())
	q := r.URL.Query()

	f := sqlite.OrderFilter{
		Status: domain.OrderStatus(q.Get("status")),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	if a.IsAdmin {
		f.AccountID = q.Get("userId")
	} else {
		f.AccountID = a.ID
	}

	page, err := s.orders.ListOrders(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

// handleGetOrder fetches one order. Customers may only see their own.
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, refund, err := s.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	a := accountFrom(r.Context())
	if !a.IsAdmin && order.AccountID != a.ID {
		// Hide other customers' orders entirely.
		writeError(w, domain.ErrOrderNotFound)
		return
	}

	data := map[string]any{"order": order}
	if refund != nil {
		data["refundTransaction"] = refund
	}
	writeData(w, http.StatusOK, data)
}

// handleUpdateOrderStatus applies a lifecycle transition. Admin only.
func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status        domain.OrderStatus `json:"status"`
		RefundCredits bool               `json:"refundCredits"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	res, err := s.orders.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.RefundCredits)
	if err != nil {
		writeError(w, err)
		return
	}
	// Plain transitions carry no credit movement, so only refund and
	// cancel-with-refund responses include the transaction and balance.
	data := map[string]any{"order": res.Order}
	if res.Transaction != nil {
		data["transaction"] = res.Transaction
		data["updatedCredits"] = res.RemainingCredits
	}
	writeData(w, http.StatusOK, data)
}
