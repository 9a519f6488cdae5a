package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "go-booking-api/docs"
)

func TestSwaggerServesGeneratedDocument(t *testing.T) {
	e := newEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, path := range []string{
		"/public/bookings",
		"/public/event-types/{slug}/slots",
		"/private/availability/busy",
		"/private/bookings/{uid}/confirm",
		"/private/notifications",
		"/public/payments/{uid}/result",
	} {
		if !strings.Contains(body, `"`+path+`"`) {
			t.Errorf("document is missing %s", path)
		}
	}
	if !strings.Contains(body, `"BearerAuth"`) || !strings.Contains(body, `"basePath": "/api/v1"`) {
		t.Error("document is missing the security definition or base path")
	}
}

func TestHealthz(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
