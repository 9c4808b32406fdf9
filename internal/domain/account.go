// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the application — it depends on nothing.
package domain

import "time"

// ─── Account Types ──────────────────────────────────────────────────────────

// AccountStatus represents the lifecycle state of a customer account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

// Account is a customer (or admin) record. Credits only ever change together
// with a matching LedgerEntry inside the same database transaction.
type Account struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	PasswordHash string        `json:"-"`
	Status       AccountStatus `json:"status"`
	Credits      int64         `json:"credits"`
	Address      *Address      `json:"address,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	IsAdmin      bool          `json:"is_admin"`
	VerifiedAt   time.Time     `json:"verified_at,omitzero"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Address is a delivery address. All fields are required before an order
// can be placed against it.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Complete reports whether every required address field is non-empty.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.Province != "" &&
		a.PostalCode != "" && a.Country != ""
}

// ─── Session Types ──────────────────────────────────────────────────────────

// Session is an opaque login token with an expiry.
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
