package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vacancydesk/backend/internal/metrics"
	"github.com/vacancydesk/backend/internal/models"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, hashedPw, role string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users      UserStore
	codec      *TokenCodec
	setupToken string
	secure     bool
	collector  *metrics.Collector
}

func NewHandler(users UserStore, codec *TokenCodec, setupToken string, secure bool, collector *metrics.Collector) *Handler {
	return &Handler{
		users:      users,
		codec:      codec,
		setupToken: setupToken,
		secure:     secure,
		collector:  collector,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// NormalizeEmail lowercases and trims an email so lookups and the unique
// constraint agree on case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with role "user".
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"name, email, and password are required"}`, http.StatusBadRequest)
		return
	}

	if err := h.createUser(r.Context(), req.Name, req.Email, req.Password, models.RoleUser); err != nil {
		h.writeCreateError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// Login verifies credentials and ships a signed session token in the
// cookie. Unknown email and wrong password produce identical responses.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"email and password are required"}`, http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), NormalizeEmail(req.Email))
	if err != nil {
		slog.Error("login lookup failed", slog.String("error", err.Error()))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if user == nil || !CheckPassword(req.Password, user.Password) {
		h.collector.RecordAuthFailure()
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	token, expiry, err := h.codec.Sign(user)
	if err != nil {
		slog.Error("token sign failed", slog.String("error", err.Error()))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	SetSessionCookie(w, token, expiry, h.secure)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; there is no server-side session to destroy.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w, h.secure)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me reports whether the request carries a valid session, and for whom.
// Never returns 401; an absent or bad token just means unauthenticated.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token := TokenFromRequest(r)
	if token == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	claims, err := h.codec.Verify(token)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user": map[string]string{
			"id":    claims.Subject,
			"name":  claims.Name,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}

// AdminSetup creates an admin account, gated by a one-time setup secret.
// When the secret is not configured the endpoint fails closed.
func (h *Handler) AdminSetup(w http.ResponseWriter, r *http.Request) {
	var req models.AdminSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if h.setupToken == "" ||
		subtle.ConstantTimeCompare([]byte(req.Token), []byte(h.setupToken)) != 1 {
		h.collector.RecordAuthFailure()
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"email and password are required"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = "Admin"
	}

	if err := h.createUser(r.Context(), req.Name, req.Email, req.Password, models.RoleAdmin); err != nil {
		h.writeCreateError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// createUser normalizes, checks optimistically for an existing email,
// hashes, and persists. The store's unique constraint stays the final
// arbiter under concurrent registration.
func (h *Handler) createUser(ctx context.Context, name, email, password, role string) error {
	email = NormalizeEmail(email)

	existing, err := h.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.ErrConflict
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := h.users.CreateUser(ctx, name, email, hashed, role); err != nil {
		return err
	}
	slog.Info("user created", slog.String("email", email), slog.String("role", role))
	return nil
}

func (h *Handler) writeCreateError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrConflict) {
		http.Error(w, `{"error":"already registered"}`, http.StatusConflict)
		return
	}
	slog.Error("user create failed", slog.String("error", err.Error()))
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}
