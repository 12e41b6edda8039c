package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/league-live/internal/platform/logging"
)

func TestSwaggerRoutes(t *testing.T) {
	t.Parallel()

	h := &Handler{logger: logging.NewNop()}

	enabled := NewRouter(h, nil, logging.NewNop(), true, nil)
	rec := httptest.NewRecorder()
	enabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected docs status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "url: '"+openAPIPath+"'") {
		t.Fatalf("docs page does not point at the openapi document")
	}

	rec = httptest.NewRecorder()
	enabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, openAPIPath, nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "openapi:") {
		t.Fatalf("unexpected openapi response: status=%d body=%.40q", rec.Code, rec.Body.String())
	}

	disabled := NewRouter(h, nil, logging.NewNop(), false, nil)
	rec = httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected docs status when disabled: got=%d want=%d", rec.Code, http.StatusNotFound)
	}
}
