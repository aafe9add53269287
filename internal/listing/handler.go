package listing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vacancydesk/backend/internal/metrics"
	"github.com/vacancydesk/backend/internal/models"
)

// FileStore defines the interface for notification PDF storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// maxNotificationPDF caps uploaded notification PDFs at 10 MiB.
const maxNotificationPDF = 10 << 20

// Handler holds listing HTTP handlers.
type Handler struct {
	store     Store
	service   *Service
	files     FileStore
	collector *metrics.Collector
}

func NewHandler(store Store, service *Service, files FileStore, collector *metrics.Collector) *Handler {
	return &Handler{store: store, service: service, files: files, collector: collector}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to a status code. Store internals
// never leak: anything unrecognized becomes a plain 500.
func writeError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, models.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "duplicate slug or source url"})
	default:
		slog.Error("listing request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// List serves GET /api/jobs: filtered, paginated, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := ParseListQuery(r.URL.Query())
	h.collector.RecordListingQuery()

	items, total, err := h.store.FindPage(r.Context(), query.Filter(), query.Page, query.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Listing{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":      items,
		"total":      total,
		"page":       query.Page,
		"limit":      query.Limit,
		"totalPages": TotalPages(total, query.Limit),
	})
}

// Latest serves GET /api/jobs/latest: the newest non-expired listings of
// one type.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	listingType := r.URL.Query().Get("type")
	if listingType == "" {
		listingType = models.TypeJob
	}
	limit := ParseLatestLimit(r.URL.Query().Get("limit"))

	filter := ListQuery{Type: listingType}.Filter()
	items, err := h.store.FindLatest(r.Context(), filter, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Listing{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// Counts serves GET /api/jobs/counts/{field}: grouped counts over
// non-expired listings of one type.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	if !CountFields[field] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown counts field"})
		return
	}
	listingType := r.URL.Query().Get("type")
	if listingType == "" {
		listingType = models.TypeJob
	}

	rows, err := h.store.Aggregate(r.Context(), CountsPipeline(field, listingType))
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []models.CountRow{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

// GetBySlug serves GET /api/jobs/slug/{slug}.
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item": item})
}

// Create serves POST /api/jobs (admin): validate, assign slug, insert.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if vErr := req.Validate(); vErr != nil {
		writeError(w, vErr)
		return
	}

	doc, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":   true,
		"id":   doc.ID.Hex(),
		"slug": doc.Slug,
	})
}

// Update serves PUT /api/jobs/{id} (admin): partial update of mutable
// fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if vErr := req.Validate(); vErr != nil {
		writeError(w, vErr)
		return
	}

	if err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Delete serves DELETE /api/jobs/{id} (admin).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Stats serves GET /api/admin/stats: non-expired counts per type.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.StatsByType(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"jobs":       stats[models.TypeJob],
		"results":    stats[models.TypeResult],
		"admitCards": stats[models.TypeAdmitCard],
	})
}

// UploadNotification serves POST /api/admin/jobs/{id}/notification: store
// the PDF in the object store and point the listing at the serving path.
func (h *Handler) UploadNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.FindByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNotificationPDF))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pdf too large or unreadable"})
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty body"})
		return
	}

	key := "notifications/" + id + ".pdf"
	if err := h.files.Upload(r.Context(), key, data, "application/pdf"); err != nil {
		writeError(w, err)
		return
	}

	servePath := "/api/jobs/" + id + "/notification"
	if err := h.service.Update(r.Context(), id, &models.UpdateListingRequest{NotificationPDF: &servePath}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "notificationPDF": servePath})
}

// DownloadNotification serves GET /api/jobs/{id}/notification: stream the
// stored PDF.
func (h *Handler) DownloadNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, ct, err := h.files.Download(r.Context(), "notifications/"+id+".pdf")
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "notification not available"})
		return
	}
	if ct == "" {
		ct = "application/pdf"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", "attachment; filename=notification.pdf")
	w.Write(data)
}
