package health

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlers(t *testing.T) {
	s := NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
		if rec.Body.String() != "OK" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("root", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.handleRoot(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
		if rec.Body.String() == "" {
			t.Error("empty body")
		}
	})
}
