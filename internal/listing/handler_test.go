package listing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vacancydesk/backend/internal/models"
)

// fakeStore serves canned responses and records what reached it.
type fakeStore struct {
	items     []models.Listing
	total     int64
	rows      []models.CountRow
	stats     map[string]int64
	taken     map[string]bool
	insertErr error
	updateErr error
	deleteErr error
	findErr   error

	lastFilter bson.M
	lastPage   int64
	lastLimit  int64
	inserted   *models.Listing
	updatedSet bson.M
}

func (f *fakeStore) Insert(_ context.Context, doc *models.Listing) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	doc.ID = primitive.NewObjectID()
	f.inserted = doc
	return doc.ID.Hex(), nil
}

func (f *fakeStore) FindPage(_ context.Context, filter bson.M, page, limit int64) ([]models.Listing, int64, error) {
	f.lastFilter, f.lastPage, f.lastLimit = filter, page, limit
	return f.items, f.total, f.findErr
}

func (f *fakeStore) FindLatest(_ context.Context, filter bson.M, limit int64) ([]models.Listing, error) {
	f.lastFilter, f.lastLimit = filter, limit
	return f.items, f.findErr
}

func (f *fakeStore) FindBySlug(_ context.Context, slug string) (*models.Listing, error) {
	for i := range f.items {
		if f.items[i].Slug == slug {
			return &f.items[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*models.Listing, error) {
	if len(f.items) == 0 {
		return nil, models.ErrNotFound
	}
	return &f.items[0], nil
}

func (f *fakeStore) Update(_ context.Context, id string, set bson.M) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedSet = set
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	return f.deleteErr
}

func (f *fakeStore) SlugExists(_ context.Context, slug string) (bool, error) {
	return f.taken[slug], nil
}

func (f *fakeStore) Aggregate(_ context.Context, _ mongo.Pipeline) ([]models.CountRow, error) {
	return f.rows, f.findErr
}

func (f *fakeStore) StatsByType(_ context.Context) (map[string]int64, error) {
	return f.stats, f.findErr
}

func newTestHandler(store *fakeStore) *Handler {
	if store.taken == nil {
		store.taken = map[string]bool{}
	}
	service := NewService(store, nil)
	return NewHandler(store, service, nil, nil)
}

func doRequest(h http.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestListPaginationAndFilter(t *testing.T) {
	store := &fakeStore{
		items: []models.Listing{{Title: "A"}, {Title: "B"}},
		total: 25,
	}
	h := newTestHandler(store)

	rec := doRequest(h.List, http.MethodGet, "/api/jobs?type=result&state=Kerala&page=2&limit=10", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if store.lastPage != 2 || store.lastLimit != 10 {
		t.Errorf("page/limit passed to store = %d/%d", store.lastPage, store.lastLimit)
	}
	if store.lastFilter["type"] != "result" || store.lastFilter["state"] != "Kerala" {
		t.Errorf("filter = %v", store.lastFilter)
	}
	if store.lastFilter["isExpired"] != false {
		t.Errorf("expired not excluded by default: %v", store.lastFilter)
	}

	var resp struct {
		Items      []models.Listing `json:"items"`
		Total      int64            `json:"total"`
		Page       int64            `json:"page"`
		Limit      int64            `json:"limit"`
		TotalPages int64            `json:"totalPages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 25 || resp.Page != 2 || resp.Limit != 10 || resp.TotalPages != 3 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListEmptyItemsIsArray(t *testing.T) {
	h := newTestHandler(&fakeStore{})
	rec := doRequest(h.List, http.MethodGet, "/api/jobs", "", nil)
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Errorf("body = %s, want empty array not null", rec.Body.String())
	}
}

func TestLatestClampsLimit(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store)

	doRequest(h.Latest, http.MethodGet, "/api/jobs/latest?limit=500", "", nil)
	if store.lastLimit != MaxLimit {
		t.Errorf("limit passed to store = %d, want %d", store.lastLimit, MaxLimit)
	}
	if store.lastFilter["isExpired"] != false {
		t.Errorf("latest must exclude expired: %v", store.lastFilter)
	}
}

func TestCountsFieldWhitelist(t *testing.T) {
	store := &fakeStore{rows: []models.CountRow{{Key: "Kerala", Count: 4}}}
	h := newTestHandler(store)

	rec := doRequest(h.Counts, http.MethodGet, "/api/jobs/counts/state", "", map[string]string{"field": "state"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"key":"Kerala"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = doRequest(h.Counts, http.MethodGet, "/api/jobs/counts/title", "", map[string]string{"field": "title"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}
}

func TestGetBySlugNotFound(t *testing.T) {
	h := newTestHandler(&fakeStore{})
	rec := doRequest(h.GetBySlug, http.MethodGet, "/api/jobs/slug/nope", "", map[string]string{"slug": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

const validCreateBody = `{
	"title": "Staff Nurse Recruitment",
	"department": "Health",
	"state": "Kerala",
	"qualification": "B.Sc Nursing",
	"applyLink": "https://example.gov.in/apply"
}`

func TestCreateAssignsSlug(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store)

	rec := doRequest(h.Create, http.MethodPost, "/api/jobs", validCreateBody, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		OK   bool   `json:"ok"`
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.ID == "" || resp.Slug != "staff-nurse-recruitment" {
		t.Errorf("resp = %+v", resp)
	}
	if store.inserted.Type != models.TypeJob {
		t.Errorf("type = %q, want default job", store.inserted.Type)
	}
}

func TestCreateResolvesSlugCollision(t *testing.T) {
	store := &fakeStore{taken: map[string]bool{"staff-nurse-recruitment": true}}
	h := newTestHandler(store)

	rec := doRequest(h.Create, http.MethodPost, "/api/jobs", validCreateBody, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"slug":"staff-nurse-recruitment-2"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateValidationStopsBeforeStore(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store)

	rec := doRequest(h.Create, http.MethodPost, "/api/jobs", `{"title":"x"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if store.inserted != nil {
		t.Error("invalid request reached the store")
	}
}

func TestCreateDuplicateSourceURL(t *testing.T) {
	store := &fakeStore{insertErr: models.ErrConflict}
	h := newTestHandler(store)

	rec := doRequest(h.Create, http.MethodPost, "/api/jobs", validCreateBody, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestUpdate(t *testing.T) {
	t.Run("partial set", func(t *testing.T) {
		store := &fakeStore{}
		h := newTestHandler(store)

		rec := doRequest(h.Update, http.MethodPut, "/api/jobs/abc",
			`{"isExpired":true,"salary":"Rs. 44900"}`, map[string]string{"id": "abc"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if store.updatedSet["isExpired"] != true || store.updatedSet["salary"] != "Rs. 44900" {
			t.Errorf("set = %v", store.updatedSet)
		}
		if _, ok := store.updatedSet["title"]; ok {
			t.Error("omitted field made it into the set document")
		}
	})

	t.Run("not found", func(t *testing.T) {
		h := newTestHandler(&fakeStore{updateErr: models.ErrNotFound})
		rec := doRequest(h.Update, http.MethodPut, "/api/jobs/zzz",
			`{"isExpired":true}`, map[string]string{"id": "zzz"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		h := newTestHandler(&fakeStore{})
		rec := doRequest(h.Update, http.MethodPut, "/api/jobs/abc", `{}`, map[string]string{"id": "abc"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("blanking a required field", func(t *testing.T) {
		h := newTestHandler(&fakeStore{})
		rec := doRequest(h.Update, http.MethodPut, "/api/jobs/abc", `{"title":"  "}`, map[string]string{"id": "abc"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestDeleteNotFound(t *testing.T) {
	h := newTestHandler(&fakeStore{deleteErr: models.ErrNotFound})
	rec := doRequest(h.Delete, http.MethodDelete, "/api/jobs/zzz", "", map[string]string{"id": "zzz"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStats(t *testing.T) {
	h := newTestHandler(&fakeStore{stats: map[string]int64{
		"job":        12,
		"result":     5,
		"admit-card": 2,
	}})

	rec := doRequest(h.Stats, http.MethodGet, "/api/admin/stats", "", nil)
	var resp map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["jobs"] != 12 || resp["results"] != 5 || resp["admitCards"] != 2 {
		t.Errorf("resp = %v", resp)
	}
}
