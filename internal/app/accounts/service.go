// Package accounts implements signup, login, email verification,
// password reset, profile management and the admin credit operations.
package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/platewise/platewise/internal/domain"
	"github.com/platewise/platewise/internal/infra/observability"
	"github.com/platewise/platewise/internal/infra/sqlite"
)

const (
	minPasswordLen = 8
	sessionTTL     = 7 * 24 * time.Hour
	verifyTTL      = 24 * time.Hour
	resetTTL       = time.Hour
)

// Service orchestrates account operations against the store.
type Service struct {
	store  *sqlite.DB
	mailer domain.Mailer
	log    *slog.Logger
}

// NewService creates an account service. mailer may be nil, in which
// case verification and reset codes are only logged.
func NewService(store *sqlite.DB, mailer domain.Mailer, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		mailer: mailer,
		log:    log.With("component", "account_service"),
	}
}

// SignupParams carries a registration request.
type SignupParams struct {
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Password string          `json:"password"`
	Phone    string          `json:"phone,omitempty"`
	Address  *domain.Address `json:"address,omitempty"`
}

// Signup registers a new account with zero credits and emails a
// verification code. Credits arrive later through an admin grant.
func (s *Service) Signup(ctx context.Context, p SignupParams) (*domain.Account, error) {
	if err := validateSignup(p); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	a := &domain.Account{
		Email:        strings.ToLower(strings.TrimSpace(p.Email)),
		Name:         strings.TrimSpace(p.Name),
		PasswordHash: string(hash),
		Status:       domain.AccountActive,
		Phone:        p.Phone,
		Address:      p.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.InsertAccount(ctx, a); err != nil {
		return nil, err
	}

	code := uuid.NewString()
	if err := s.store.SetVerifyCode(ctx, a.ID, code, now.Add(verifyTTL)); err != nil {
		return nil, err
	}
	s.sendCode(a.Email, "Verify your email", code)

	observability.AccountsRegistered.Inc()
	s.log.Info("account registered", "account_id", a.ID, "email", a.Email)
	return a, nil
}

// Login checks credentials and opens a session. Suspended and inactive
// accounts are rejected even with a correct password.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Account, *domain.Session, error) {
	a, err := s.store.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Same answer for unknown email and wrong password.
		observability.LoginFailures.Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		observability.LoginFailures.Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}
	switch a.Status {
	case domain.AccountSuspended:
		return nil, nil, domain.ErrAccountSuspended
	case domain.AccountInactive:
		return nil, nil, domain.ErrAccountInactive
	}

	now := time.Now()
	sess := domain.Session{
		Token:     uuid.NewString(),
		AccountID: a.ID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.store.InsertSession(ctx, sess); err != nil {
		return nil, nil, err
	}

	s.log.Info("login", "account_id", a.ID)
	return a, &sess, nil
}

// Logout invalidates a session token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its account. Expired
// sessions are deleted on sight.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Account, error) {
	sess, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		s.store.DeleteSession(ctx, token)
		return nil, domain.ErrSessionExpired
	}
	return s.store.GetAccount(ctx, sess.AccountID)
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, code string) (*domain.Account, error) {
	id, err := s.store.ConsumeVerifyCode(ctx, code, time.Now())
	if err != nil {
		return nil, err
	}
	s.log.Info("email verified", "account_id", id)
	return s.store.GetAccount(ctx, id)
}

// RequestPasswordReset issues a reset code for the account holding the
// email. Unknown emails succeed silently so the endpoint does not leak
// which addresses are registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	a, err := s.store.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		s.log.Info("password reset for unknown email", "email", email)
		return nil
	}

	code := uuid.NewString()
	if err := s.store.SetResetCode(ctx, a.ID, code, time.Now().Add(resetTTL)); err != nil {
		return err
	}
	s.sendCode(a.Email, "Reset your password", code)
	return nil
}

// ResetPassword consumes a reset code and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, code, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	id, err := s.store.ConsumeResetCode(ctx, code, string(hash), time.Now())
	if err != nil {
		return err
	}
	s.log.Info("password reset", "account_id", id)
	return nil
}

// ─── Profile ────────────────────────────────────────────────────────────────

// GetAccount fetches an account by id.
func (s *Service) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.store.GetAccount(ctx, id)
}

// UpdateProfile updates name, phone and delivery address.
func (s *Service) UpdateProfile(ctx context.Context, id, name, phone string, addr *domain.Address) (*domain.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if err := s.store.UpdateAccountProfile(ctx, id, name, phone, addr); err != nil {
		return nil, err
	}
	return s.store.GetAccount(ctx, id)
}

// ─── Admin Operations ───────────────────────────────────────────────────────

// ListAccounts returns all accounts. Admin only.
func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.store.ListAccounts(ctx)
}

// SetStatus changes an account lifecycle status. Admin only.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	switch status {
	case domain.AccountActive, domain.AccountInactive, domain.AccountSuspended:
	default:
		return fmt.Errorf("%w: unknown account status %q", domain.ErrInvalidInput, status)
	}
	if err := s.store.SetAccountStatus(ctx, id, status); err != nil {
		return err
	}
	s.log.Info("account status changed", "account_id", id, "status", status)
	return nil
}

// DeleteAccount removes an account. Admin only.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.log.Info("account deleted", "account_id", id)
	return nil
}

// GrantCredits adds credits to an account with a CREDIT_ADD ledger
// entry, atomically.
func (s *Service) GrantCredits(ctx context.Context, id string, amount int64, description string) (*domain.LedgerEntry, int64, error) {
	if description == "" {
		description = "Admin credit grant"
	}
	entry, balance, err := s.store.AdjustCredits(ctx, id, domain.TxCreditAdd, amount, description)
	if err != nil {
		return nil, 0, err
	}
	observability.CreditsMoved.WithLabelValues(string(domain.TxCreditAdd)).Add(float64(amount))
	s.log.Info("credits granted", "account_id", id, "amount", amount, "balance", balance)
	return entry, balance, nil
}

// DeductCredits removes credits with a DEDUCT ledger entry. Fails
// all-or-nothing when the balance would go negative.
func (s *Service) DeductCredits(ctx context.Context, id string, amount int64, description string) (*domain.LedgerEntry, int64, error) {
	if description == "" {
		description = "Admin credit deduction"
	}
	entry, balance, err := s.store.AdjustCredits(ctx, id, domain.TxDeduct, amount, description)
	if err != nil {
		return nil, 0, err
	}
	observability.CreditsMoved.WithLabelValues(string(domain.TxDeduct)).Add(float64(amount))
	s.log.Info("credits deducted", "account_id", id, "amount", amount, "balance", balance)
	return entry, balance, nil
}

// Transactions returns the full ledger history for an account, newest
// first.
func (s *Service) Transactions(ctx context.Context, id string) ([]domain.LedgerEntry, error) {
	if _, err := s.store.GetAccount(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListLedgerEntries(ctx, id)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// sendCode delivers a code email in the background. Delivery failure is
// logged and never fails the owning operation.
func (s *Service) sendCode(to, subject, code string) {
	if s.mailer == nil {
		s.log.Info("code issued", "to", to, "subject", subject)
		return
	}
	go func() {
		body := fmt.Sprintf("Your code is %s. It expires soon, so use it promptly.", code)
		if err := s.mailer.SendMail(context.Background(), to, subject, body); err != nil {
			s.log.Error("code email failed", "to", to, "error", err)
		}
	}()
}

func validateSignup(p SignupParams) error {
	email := strings.TrimSpace(p.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if len(p.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	return nil
}
