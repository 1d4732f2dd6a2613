package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlerServesIndexHTML(t *testing.T) {
	t.Parallel()

	h := Handler()
	// FileServer redirects /index.html to the directory, which serves it.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected a non-empty response body")
	}
}

func TestHandlerMissingAssetIs404(t *testing.T) {
	t.Parallel()

	h := Handler()
	req := httptest.NewRequest(http.MethodGet, "/does-not-exist.js", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
