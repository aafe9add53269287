package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.RecordHTTPStatus(200)
	c.RecordListingQuery()
	c.RecordListingCreated()
	c.RecordAuthFailure()
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	c := NewCollector()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	c.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("middleware altered status: %d", rec.Code)
	}

	body := scrape(t, c)
	if !strings.Contains(body, `vacancydesk_http_status_total{status_code="418"} 1`) {
		t.Errorf("status not recorded:\n%s", body)
	}
}

func TestMiddlewareDefaultsTo200(t *testing.T) {
	c := NewCollector()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok")) // implicit 200
	})

	c.Middleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(scrape(t, c), `vacancydesk_http_status_total{status_code="200"} 1`) {
		t.Error("implicit 200 not recorded")
	}
}

func TestCounters(t *testing.T) {
	c := NewCollector()
	c.RecordListingQuery()
	c.RecordListingQuery()
	c.RecordListingCreated()
	c.RecordAuthFailure()

	body := scrape(t, c)
	for _, want := range []string{
		"vacancydesk_listing_queries_total 2",
		"vacancydesk_listings_created_total 1",
		"vacancydesk_auth_failures_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}
