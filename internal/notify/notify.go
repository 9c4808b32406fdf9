// Package notify delivers order-lifecycle and account emails. With SMTP
// disabled it degrades to structured log lines, which is the default in
// development. Delivery is best-effort; a failed send never fails the
// business operation that triggered it.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/platewise/platewise/internal/domain"
	"github.com/platewise/platewise/internal/infra/observability"
)

// Config holds SMTP delivery settings. With Enabled false every message
// is logged instead of sent.
type Config struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	From     string `toml:"from"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Dispatcher implements domain.Notifier and domain.Mailer.
type Dispatcher struct {
	cfg Config
	log *slog.Logger

	// sendMail is swapped in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg Config, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		log:      log.With("component", "notify"),
		sendMail: smtp.SendMail,
	}
}

// Notify delivers an order-lifecycle email to the account holder.
func (d *Dispatcher) Notify(ctx context.Context, event domain.OrderEvent, account domain.Account, order domain.Order) {
	subject, body := composeEvent(event, account, order)
	if err := d.SendMail(ctx, account.Email, subject, body); err != nil {
		observability.NotificationsSent.WithLabelValues(string(event), "error").Inc()
		d.log.Error("notification failed",
			"event", event, "order_id", order.ID, "to", account.Email, "error", err)
		return
	}
	observability.NotificationsSent.WithLabelValues(string(event), "ok").Inc()
}

// SendMail delivers one email, or logs it when SMTP is disabled.
func (d *Dispatcher) SendMail(_ context.Context, to, subject, body string) error {
	if !d.cfg.Enabled {
		d.log.Info("mail (smtp disabled)", "to", to, "subject", subject)
		return nil
	}

	msg := buildMessage(d.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}
	if err := d.sendMail(addr, auth, d.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// composeEvent renders the subject and body for a lifecycle event.
func composeEvent(event domain.OrderEvent, account domain.Account, order domain.Order) (string, string) {
	name := account.Name
	if name == "" {
		name = "there"
	}
	switch event {
	case domain.EventOrderPlaced:
		return fmt.Sprintf("Order %s received", order.ID),
			fmt.Sprintf("Hi %s,\n\nWe received your weekly meal order %s for %d credits covering %d days. We will confirm it shortly.",
				name, order.ID, order.CreditCost, order.Selections.Count())
	case domain.EventOrderConfirmed:
		return fmt.Sprintf("Order %s confirmed", order.ID),
			fmt.Sprintf("Hi %s,\n\nYour order %s is confirmed and heading into the kitchen.", name, order.ID)
	case domain.EventOrderDelivery:
		return fmt.Sprintf("Order %s is out for delivery", order.ID),
			fmt.Sprintf("Hi %s,\n\nYour order %s is on its way to %s.", name, order.ID, order.DeliveryAddress.City)
	case domain.EventOrderDelivered:
		return fmt.Sprintf("Order %s delivered", order.ID),
			fmt.Sprintf("Hi %s,\n\nYour order %s has been delivered. Enjoy your meals!", name, order.ID)
	case domain.EventOrderCancelled:
		return fmt.Sprintf("Order %s cancelled", order.ID),
			fmt.Sprintf("Hi %s,\n\nYour order %s has been cancelled.", name, order.ID)
	case domain.EventOrderRefunded:
		return fmt.Sprintf("Order %s refunded", order.ID),
			fmt.Sprintf("Hi %s,\n\nYour order %s has been refunded. %d credits are back on your account.",
				name, order.ID, order.CreditCost)
	}
	return fmt.Sprintf("Update on order %s", order.ID),
		fmt.Sprintf("Hi %s,\n\nThere is an update on your order %s.", name, order.ID)
}
