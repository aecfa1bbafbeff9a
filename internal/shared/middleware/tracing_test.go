package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouteMetrics_PassesThrough(t *testing.T) {
	mux := http.NewServeMux()
	var pattern string
	mux.HandleFunc("GET /api/accounts/{id}", func(w http.ResponseWriter, r *http.Request) {
		pattern = r.Pattern
		w.WriteHeader(http.StatusAccepted)
	})
	rr := httptest.NewRecorder()

	RouteMetrics(mux).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/accounts/42", nil))

	if rr.Code != http.StatusAccepted {
		t.Errorf("got %d, want %d", rr.Code, http.StatusAccepted)
	}
	if pattern != "GET /api/accounts/{id}" {
		t.Errorf("pattern = %q", pattern)
	}
}

func TestTelemetry_PassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rr := httptest.NewRecorder()

	Telemetry(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("got %d, want %d", rr.Code, http.StatusTeapot)
	}
}
