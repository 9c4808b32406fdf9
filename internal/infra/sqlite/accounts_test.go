package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/platewise/platewise/internal/domain"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

func TestInsertAccount(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "ana@example.com", 0)

	if a.ID == "" {
		t.Fatal("InsertAccount() should allocate an id")
	}

	got, err := db.GetAccount(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetAccount() error: %v", err)
	}
	if got.Email != "ana@example.com" {
		t.Errorf("email = %q, want %q", got.Email, "ana@example.com")
	}
	if got.Credits != 0 {
		t.Errorf("credits = %d, want 0 at signup", got.Credits)
	}
	if got.Status != domain.AccountActive {
		t.Errorf("status = %q, want active", got.Status)
	}
}

func TestInsertAccount_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, "dup@example.com", 0)

	a := &domain.Account{
		Email:        "dup@example.com",
		Name:         "Second",
		PasswordHash: "x",
		Status:       domain.AccountActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	err := db.InsertAccount(context.Background(), a)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Errorf("InsertAccount(duplicate) error = %v, want ErrDuplicateEmail", err)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetAccount(context.Background(), "USR-999")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("GetAccount(missing) error = %v, want ErrAccountNotFound", err)
	}
}

func TestGetAccountByEmail(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "find@example.com", 0)

	got, err := db.GetAccountByEmail(context.Background(), "find@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail() error: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("id = %q, want %q", got.ID, a.ID)
	}
}

func TestUpdateAccountProfile(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "move@example.com", 0)

	addr := fullAddress()
	if err := db.UpdateAccountProfile(context.Background(), a.ID, "Ana Moved", "555-0100", &addr); err != nil {
		t.Fatalf("UpdateAccountProfile() error: %v", err)
	}

	got, _ := db.GetAccount(context.Background(), a.ID)
	if got.Name != "Ana Moved" {
		t.Errorf("name = %q, want %q", got.Name, "Ana Moved")
	}
	if got.Address == nil || got.Address.City != "Calgary" {
		t.Errorf("address = %+v, want city Calgary", got.Address)
	}
}

func TestSetAccountStatus(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "susp@example.com", 0)

	if err := db.SetAccountStatus(context.Background(), a.ID, domain.AccountSuspended); err != nil {
		t.Fatalf("SetAccountStatus() error: %v", err)
	}
	got, _ := db.GetAccount(context.Background(), a.ID)
	if got.Status != domain.AccountSuspended {
		t.Errorf("status = %q, want suspended", got.Status)
	}
}

func TestSetAdmin(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "boss@example.com", 0)

	if err := db.SetAdmin(context.Background(), a.ID, true); err != nil {
		t.Fatalf("SetAdmin() error: %v", err)
	}
	got, _ := db.GetAccount(context.Background(), a.ID)
	if !got.IsAdmin {
		t.Error("is_admin should be set")
	}

	if err := db.SetAdmin(context.Background(), "USR-404", true); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("SetAdmin(missing) error = %v, want ErrAccountNotFound", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "gone@example.com", 0)

	if err := db.DeleteAccount(context.Background(), a.ID); err != nil {
		t.Fatalf("DeleteAccount() error: %v", err)
	}
	if _, err := db.GetAccount(context.Background(), a.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("GetAccount(deleted) error = %v, want ErrAccountNotFound", err)
	}
}

// ─── Verification & Reset Codes ─────────────────────────────────────────────

func TestConsumeVerifyCode(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "verify@example.com", 0)
	now := time.Now()

	if err := db.SetVerifyCode(context.Background(), a.ID, "code-123", now.Add(time.Hour)); err != nil {
		t.Fatalf("SetVerifyCode() error: %v", err)
	}

	id, err := db.ConsumeVerifyCode(context.Background(), "code-123", now)
	if err != nil {
		t.Fatalf("ConsumeVerifyCode() error: %v", err)
	}
	if id != a.ID {
		t.Errorf("id = %q, want %q", id, a.ID)
	}

	// Single use
	if _, err := db.ConsumeVerifyCode(context.Background(), "code-123", now); !errors.Is(err, domain.ErrCodeExpired) {
		t.Errorf("second consume error = %v, want ErrCodeExpired", err)
	}

	got, _ := db.GetAccount(context.Background(), a.ID)
	if got.VerifiedAt.IsZero() {
		t.Error("verified_at should be stamped after consume")
	}
}

func TestConsumeVerifyCode_Expired(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "late@example.com", 0)
	now := time.Now()

	db.SetVerifyCode(context.Background(), a.ID, "old-code", now.Add(-time.Minute))
	if _, err := db.ConsumeVerifyCode(context.Background(), "old-code", now); !errors.Is(err, domain.ErrCodeExpired) {
		t.Errorf("ConsumeVerifyCode(expired) error = %v, want ErrCodeExpired", err)
	}
}

func TestConsumeResetCode(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "reset@example.com", 0)
	now := time.Now()

	db.SetResetCode(context.Background(), a.ID, "reset-1", now.Add(time.Hour))
	id, err := db.ConsumeResetCode(context.Background(), "reset-1", "newhash", now)
	if err != nil {
		t.Fatalf("ConsumeResetCode() error: %v", err)
	}
	if id != a.ID {
		t.Errorf("id = %q, want %q", id, a.ID)
	}

	got, _ := db.GetAccount(context.Background(), a.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("password hash = %q, want %q", got.PasswordHash, "newhash")
	}

	if _, err := db.ConsumeResetCode(context.Background(), "reset-1", "again", now); !errors.Is(err, domain.ErrCodeExpired) {
		t.Errorf("second consume error = %v, want ErrCodeExpired", err)
	}
}

// ─── Sessions ───────────────────────────────────────────────────────────────

func TestSessions(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "session@example.com", 0)
	now := time.Now()

	s := domain.Session{Token: "tok-1", AccountID: a.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	if err := db.InsertSession(context.Background(), s); err != nil {
		t.Fatalf("InsertSession() error: %v", err)
	}

	got, err := db.GetSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if got.AccountID != a.ID {
		t.Errorf("account id = %q, want %q", got.AccountID, a.ID)
	}

	if err := db.DeleteSession(context.Background(), "tok-1"); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}
	if _, err := db.GetSession(context.Background(), "tok-1"); !errors.Is(err, domain.ErrSessionExpired) {
		t.Errorf("GetSession(deleted) error = %v, want ErrSessionExpired", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "purge@example.com", 0)
	now := time.Now()

	db.InsertSession(context.Background(), domain.Session{Token: "old", AccountID: a.ID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now})
	db.InsertSession(context.Background(), domain.Session{Token: "live", AccountID: a.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now})

	n, err := db.PurgeExpiredSessions(context.Background(), now)
	if err != nil {
		t.Fatalf("PurgeExpiredSessions() error: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
	if _, err := db.GetSession(context.Background(), "live"); err != nil {
		t.Errorf("live session should survive purge: %v", err)
	}
}
