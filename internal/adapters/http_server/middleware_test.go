package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"tripextract/internal/adapters/observability"
)

func TestInstrument_RoutePatternLabel(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Instrument(zerolog.New(&buf)))
	m.Get("/v1/{category}/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	c := observability.HTTPRequests.WithLabelValues("/v1/{category}/{id}", http.MethodGet, "418")
	before := testutil.ToFloat64(c)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/do/A0001", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status %d", rec.Code)
	}
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Fatalf("counter moved by %v", got)
	}
	line := buf.String()
	if !strings.Contains(line, `"category":"do"`) || !strings.Contains(line, `"status":418`) {
		t.Fatalf("unexpected log line: %s", line)
	}
}

func TestStatusWriter_DefaultsToOK(t *testing.T) {
	sw := &statusWriter{ResponseWriter: httptest.NewRecorder()}
	if sw.code() != http.StatusOK {
		t.Fatalf("code %d", sw.code())
	}
	_, _ = sw.Write([]byte("x"))
	sw.WriteHeader(http.StatusInternalServerError)
	if sw.code() != http.StatusOK {
		t.Fatalf("first status must win, got %d", sw.code())
	}
}
