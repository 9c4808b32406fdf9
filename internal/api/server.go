// Package api provides the HTTP server: authentication, the weekly
// menu, orders, credits and the admin surface. Every response uses the
// {success, data, error} envelope.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/platewise/platewise/internal/app/accounts"
	"github.com/platewise/platewise/internal/app/catalog"
	"github.com/platewise/platewise/internal/app/orders"
	"github.com/platewise/platewise/internal/infra/observability"
)

// Server is the HTTP API server.
type Server struct {
	accounts *accounts.Service
	orders   *orders.Service
	catalog  *catalog.Service
	log      *slog.Logger

	metricsEnabled bool
}

// NewServer creates an API server over the application services.
func NewServer(accounts *accounts.Service, orders *orders.Service, catalog *catalog.Service, log *slog.Logger) *Server {
	return &Server{
		accounts: accounts,
		orders:   orders,
		catalog:  catalog,
		log:      log.With("component", "api"),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.Post("/verify", s.handleVerifyEmail)
			r.Post("/forgot-password", s.handleForgotPassword)
			r.Post("/reset-password", s.handleResetPassword)
		})
		r.Get("/menu", s.handleCurrentMenu)
		r.Get("/menu/{year}/{week}", s.handleWeekMenu)
		r.Get("/meals", s.handleListMeals)
		r.Get("/meals/{id}", s.handleGetMeal)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/profile", s.handleGetProfile)
			r.Patch("/profile", s.handleUpdateProfile)
			r.Get("/credits", s.handleGetCredits)

			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders", s.handleListOrders)
			r.Get("/orders/{id}", s.handleGetOrder)

			// Account management and credit adjustments, admin only
			r.Route("/users/{id}", func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/", s.handleGetAccount)
				r.Get("/transactions", s.handleTransactions)
				r.Post("/add-credits", s.handleAddCredits)
				r.Post("/deduct-credits", s.handleDeductCredits)
			})

			// Admin
			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Patch("/orders/{id}", s.handleUpdateOrderStatus)

				r.Get("/accounts", s.handleListAccounts)
				r.Patch("/accounts/{id}/status", s.handleSetAccountStatus)
				r.Delete("/accounts/{id}", s.handleDeleteAccount)

				r.Post("/meals", s.handleCreateMeal)
				r.Put("/meals/{id}", s.handleUpdateMeal)
				r.Delete("/meals/{id}", s.handleDeleteMeal)
				r.Post("/menu/assign", s.handleAssignDay)
				r.Post("/menu/active", s.handleSetDayActive)
			})
		})
	})

	return r
}

// corsMiddleware adds CORS headers for the web frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-Token")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request latency by method, route pattern
// and status.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		observability.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
