package ingest

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// automationUA is the user-agent prefix recognized for hosted cron
// services hitting /cron/daily without a token.
const automationUA = "vercel-cron/"

// Handler serves the cron-triggered ingestion endpoint.
type Handler struct {
	runner *Runner
	secret string
}

func NewHandler(runner *Runner, secret string) *Handler {
	return &Handler{runner: runner, secret: secret}
}

// Daily serves GET /cron/daily. The caller must either look like a
// recognized automation agent or present the cron secret as a bearer or
// query token. An empty configured secret disables token auth entirely.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		return
	}

	summary := h.runner.Run(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *Handler) authorized(r *http.Request) bool {
	if strings.HasPrefix(r.UserAgent(), automationUA) {
		return true
	}
	if h.secret == "" {
		return false
	}

	token := r.URL.Query().Get("token")
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimPrefix(auth, "Bearer ")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}
