package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/model"
	"card-key-service/internal/infra/logging"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// ---- Redemption (public) ----

type redeemResponse struct {
	Account       string    `json:"account"`
	Password      string    `json:"password"`
	ExpiresAt     time.Time `json:"expires_at"`
	QueryCount    int       `json:"query_count"`
	MaxQueryCount int       `json:"max_query_count"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	cardKey := r.URL.Query().Get("card_key")
	if cardKey == "" {
		writeError(w, http.StatusBadRequest, "card_key is required")
		return
	}

	res, err := s.redemptionUC.Redeem(r.Context(), cardKey)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCardNotFound):
			// Deliberately indistinguishable from a deleted or malformed key.
			writeError(w, http.StatusNotFound, "invalid card")
		case errors.Is(err, domain.ErrQuotaExceeded):
			writeError(w, http.StatusForbidden, "query limit reached")
		case errors.Is(err, domain.ErrCardExpired):
			writeError(w, http.StatusGone, "card expired")
		default:
			writeError(w, http.StatusInternalServerError, "try again later")
		}
		return
	}

	writeJSON(w, http.StatusOK, redeemResponse{
		Account:       res.AccountName,
		Password:      res.AccountPassword,
		ExpiresAt:     res.ExpiresAt,
		QueryCount:    res.QueryCount,
		MaxQueryCount: res.MaxQueryCount,
	})
}

// ---- Auth ----

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateCredentials(req.Username, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.adminUC.Verify(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "wrong username or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "try again later")
		return
	}

	token, sessionID, err := s.auth.Mint(w, req.Username)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("mint token failed")
		writeError(w, http.StatusInternalServerError, "try again later")
		return
	}
	if err := s.sessions.Put(r.Context(), sessionID, req.Username, s.auth.TTL()); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("record session failed")
		writeError(w, http.StatusInternalServerError, "try again later")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if claims, err := s.auth.ParseFromRequest(r); err == nil {
		_ = s.sessions.Revoke(r.Context(), claims.ID)
	}
	s.auth.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// ---- Accounts ----

type accountView struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	CardCount int       `json:"card_count"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.accountUC.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "try again later")
		return
	}
	out := make([]accountView, 0, len(summaries))
	for _, a := range summaries {
		out = append(out, accountView{Username: a.Username, CreatedAt: a.CreatedAt, CardCount: a.CardCount})
	}
	writeJSON(w, http.StatusOK, out)
}

type addAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var req addAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateCredentials(req.Username, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := s.accountUC.Add(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "account already exists")
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "invalid account")
		default:
			writeError(w, http.StatusInternalServerError, "try again later")
		}
		return
	}
	writeJSON(w, http.StatusCreated, accountView{Username: account.Username, CreatedAt: account.CreatedAt})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	password, err := s.accountUC.ResetPassword(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "try again later")
		return
	}
	// Shown exactly once; not recoverable afterwards except by another reset.
	writeJSON(w, http.StatusOK, map[string]string{"username": username, "password": password})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := s.accountUC.Delete(r.Context(), username); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "try again later")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---- Cards ----

type cardView struct {
	CardKey       string     `json:"card_key"`
	Account       string     `json:"account"`
	BatchID       string     `json:"batch_id"`
	CreatedAt     time.Time  `json:"created_at"`
	FirstUsedAt   *time.Time `json:"first_used_at,omitempty"`
	QueryCount    int        `json:"query_count"`
	MaxQueryCount int        `json:"max_query_count"`
	DurationHours int        `json:"duration_hours"`
	// DisplayExpiresAt is an issuance-anchored preview; the authoritative
	// expiry check at redemption time is anchored on first use.
	DisplayExpiresAt time.Time `json:"display_expires_at"`
}

func toCardView(c *model.Card) cardView {
	return cardView{
		CardKey:          c.CardKey,
		Account:          c.Username,
		BatchID:          c.BatchID,
		CreatedAt:        c.CreatedAt,
		FirstUsedAt:      c.FirstUsedAt,
		QueryCount:       c.QueryCount,
		MaxQueryCount:    c.MaxQueryCount,
		DurationHours:    c.DurationHours,
		DisplayExpiresAt: c.DisplayExpiresAt(),
	}
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.cardUC.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "try again later")
		return
	}
	out := make([]cardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type batchGenerateRequest struct {
	Account       string `json:"account"`
	Count         int    `json:"count"`
	MaxQueryCount int    `json:"max_query_count"`
	DurationHours int    `json:"duration_hours"`
}

func (s *Server) handleBatchGenerate(w http.ResponseWriter, r *http.Request) {
	var req batchGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateBatchRequest(req.Account, req.Count, req.MaxQueryCount, req.DurationHours); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := s.cardUC.IssueBatch(r.Context(), req.Account, req.Count, req.MaxQueryCount, req.DurationHours)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "invalid batch parameters")
		default:
			writeError(w, http.StatusInternalServerError, "try again later")
		}
		return
	}

	keys := make([]string, 0, len(batch.Cards))
	for _, c := range batch.Cards {
		keys = append(keys, c.CardKey)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"batch_id":  batch.BatchID,
		"card_keys": keys,
	})
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	cardKey := chi.URLParam(r, "cardKey")
	if err := s.cardUC.Delete(r.Context(), cardKey); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "try again later")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---- Admin ----

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validatePasswordChange(req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := logging.Admin(r.Context())
	if err := s.adminUC.ChangePassword(r.Context(), username, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "current password is wrong")
			return
		}
		writeError(w, http.StatusInternalServerError, "try again later")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
