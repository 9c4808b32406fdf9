package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers. Infrastructure
// implements them; application services depend on them.

// Notifier dispatches order-lifecycle events out of band. Implementations
// must be safe to call from goroutines; failures are logged, never returned
// to the business operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, event OrderEvent, account Account, order Order)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event OrderEvent, account Account, order Order)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, event OrderEvent, account Account, order Order) {
	f(ctx, event, account, order)
}

// Mailer delivers account emails (verification and password-reset codes).
// Implementations must be safe for concurrent use.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}
