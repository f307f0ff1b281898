package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestAPIKeyAuth verifies the 401/403/pass behavior of the API key
// middleware.
func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name string
		key  string
		want int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusForbidden},
		{"valid key", "secret", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.key != "" {
				req.Header.Set("X-API-Key", tc.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

// TestIngestAuthRequired verifies a server configured with an API key
// rejects unauthenticated webhook calls, while one without a key accepts
// them.
func TestIngestAuthRequired(t *testing.T) {
	secured := testServer(nil, nil, nil, "secret")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/u1", strings.NewReader(`{"data":{}}`))
	rec := httptest.NewRecorder()
	secured.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("secured status = %d, want 401", rec.Code)
	}

	open := testServer(nil, nil, nil, "")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/ingest/u1", strings.NewReader(`{"data":{}}`))
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("open status = %d, want 200", rec.Code)
	}
}

// TestIdentityFromRequest verifies the X-User-ID header with the "local"
// fallback.
func TestIdentityFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := identityFromRequest(req); got != "local" {
		t.Errorf("identity = %q, want local", got)
	}

	req.Header.Set("X-User-ID", "alice")
	if got := identityFromRequest(req); got != "alice" {
		t.Errorf("identity = %q, want alice", got)
	}
}

// TestCORSPreflight verifies OPTIONS requests short-circuit with 204 and
// permissive headers.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler called on preflight")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
}
