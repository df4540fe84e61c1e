package device

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Ludoramacha/healthApp/internal/domain/patient"
	"github.com/Ludoramacha/healthApp/internal/platform/wearable"
)

func TestHandler_Link(t *testing.T) {
	linker := newMockLinker()
	p := linker.add(&patient.Patient{Name: "Kabo Molefe", Email: "kabo@example.com"})
	h := NewHandler(NewService(&mockProvider{}, linker, zerolog.Nop()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.Link(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_Link_NotFound(t *testing.T) {
	h := NewHandler(NewService(&mockProvider{}, newMockLinker(), zerolog.Nop()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Link(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_Link_ProviderDown(t *testing.T) {
	linker := newMockLinker()
	p := linker.add(&patient.Patient{Name: "Kabo Molefe", Email: "kabo@example.com"})
	h := NewHandler(NewService(&mockProvider{createUserErr: wearable.ErrRequestFailed}, linker, zerolog.Nop()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	err := h.Link(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
}

func TestHandler_LatestReading_NoData(t *testing.T) {
	h := NewHandler(NewService(&mockProvider{latest: nil}, newMockLinker(), zerolog.Nop()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("wearable_id")
	c.SetParamValues("wu-1")

	err := h.LatestReading(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
