package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platewise/platewise/internal/app/accounts"
	"github.com/platewise/platewise/internal/domain"
)

// ─── Auth ───────────────────────────────────────────────────────────────────

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var p accounts.SignupParams
	if err := decode(r, &p); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	a, err := s.accounts.Signup(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, a)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	a, sess, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"account": a,
		"token":   sess.Token,
		"expires": sess.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Logout(r.Context(), sessionToken(r)); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decode(r, &req); err != nil || req.Code == "" {
		writeBadRequest(w, "verification code required")
		return
	}
	a, err := s.accounts.VerifyEmail(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil || req.Email == "" {
		writeBadRequest(w, "email required")
		return
	}
	if err := s.accounts.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "reset code sent if the email is registered"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil || req.Code == "" {
		writeBadRequest(w, "reset code required")
		return
	}
	if err := s.accounts.ResetPassword(r.Context(), req.Code, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// ─── Profile & Credits ──────────────────────────────────────────────────────

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, accountFrom(r.Context()))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string          `json:"name"`
		Phone   string          `json:"phone"`
		Address *domain.Address `json:"address"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	a := accountFrom(r.Context())
	updated, err := s.accounts.UpdateProfile(r.Context(), a.ID, req.Name, req.Phone, req.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleGetCredits(w http.ResponseWriter, r *http.Request) {
	a := accountFrom(r.Context())
	history, err := s.accounts.Transactions(r.Context(), a.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"credits":      a.Credits,
		"transactions": history,
	})
}

// ─── Admin: Accounts & Credits ──────────────────────────────────────────────

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleSetAccountStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.AccountStatus `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.accounts.SetStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": id, "status": string(req.Status)})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.accounts.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

type creditRequest struct {
	Credits     int64  `json:"credits"`
	Description string `json:"description"`
}

func (s *Server) handleAddCredits(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	entry, balance, err := s.accounts.GrantCredits(r.Context(), chi.URLParam(r, "id"), req.Credits, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"credits":     balance,
		"transaction": entry,
	})
}

func (s *Server) handleDeductCredits(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	entry, balance, err := s.accounts.DeductCredits(r.Context(), chi.URLParam(r, "id"), req.Credits, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"credits":     balance,
		"transaction": entry,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	history, err := s.accounts.Transactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, history)
}
