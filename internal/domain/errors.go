package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. The HTTP layer
// maps them onto status codes with errors.Is.

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrCodeExpired        = errors.New("verification code expired or already used")

	// Credit errors
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("credit amount must be positive")

	// Order errors
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrNoDaysSelected    = errors.New("order must select at least one day")
	ErrIncompleteAddress = errors.New("delivery address is incomplete")
	ErrAlreadyRefunded   = errors.New("order already refunded")
	ErrAlreadyCancelled  = errors.New("order already cancelled")

	// Catalog errors
	ErrMealNotFound       = errors.New("meal not found")
	ErrAssignmentNotFound = errors.New("menu assignment not found")
	ErrInvalidDay         = errors.New("invalid weekday")

	// Session errors
	ErrSessionExpired = errors.New("session expired or unknown")

	// Input validation
	ErrInvalidInput = errors.New("invalid input")
)
