package patient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ludoramacha/healthApp/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := NewService(newMockRepo())
	return NewHandler(svc), echo.New()
}

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Kabo Molefe","email":"kabo@example.com","phone_number":"+26771234567","clinician_id":"clin-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Patient Patient `json:"patient"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Patient.SystolicThreshold != DefaultSystolicThreshold {
		t.Errorf("expected default threshold in response, got %d", resp.Patient.SystolicThreshold)
	}
}

func TestHandler_Register_IgnoresWearableUserID(t *testing.T) {
	repo := newMockRepo()
	h := NewHandler(NewService(repo))
	e := echo.New()

	body := `{"name":"Kabo Molefe","email":"kabo@example.com","phone_number":"+26771234567","clinician_id":"clin-1","wearable_user_id":"spoofed-link"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	for _, p := range repo.patients {
		if p.WearableUserID != nil {
			t.Errorf("registration must not store a wearable link, got %q", *p.WearableUserID)
		}
	}
}

func TestHandler_Register_MissingFields(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"No Contact"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_Get_InvalidID(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_UpdateThresholds(t *testing.T) {
	h, e := newTestHandler()

	p := validPatient()
	h.svc.Register(nil, p)

	body := `{"systolic_threshold":145,"diastolic_threshold":92}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.UpdateThresholds(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	got, _ := h.svc.Get(nil, p.ID)
	if got.SystolicThreshold != 145 || got.DiastolicThreshold != 92 {
		t.Errorf("expected 145/92, got %d/%d", got.SystolicThreshold, got.DiastolicThreshold)
	}
}

func TestHandler_ListByClinician(t *testing.T) {
	h, e := newTestHandler()

	for i := 0; i < 3; i++ {
		p := validPatient()
		h.svc.Register(nil, p)
	}
	other := validPatient()
	other.ClinicianID = "clin-2"
	h.svc.Register(nil, other)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("clin-1")

	if err := h.ListByClinician(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 3 {
		t.Errorf("expected 3 patients for clin-1, got %d", resp.Total)
	}
}

// withRoles mounts the handler's routes behind a stub auth layer granting the
// given roles.
func withRoles(h *Handler, roles ...string) *echo.Echo {
	e := echo.New()
	api := e.Group("/api/v1")
	api.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(auth.RolesKey, roles)
			return next(c)
		}
	})
	h.RegisterRoutes(api)
	return e
}

func TestRoutes_RoleGuard(t *testing.T) {
	h, _ := newTestHandler()
	body := `{"name":"Kabo Molefe","email":"kabo@example.com","phone_number":"+26771234567","clinician_id":"clin-1"}`

	t.Run("nurse cannot register patients", func(t *testing.T) {
		e := withRoles(h, "nurse")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("nurse can read patients", func(t *testing.T) {
		e := withRoles(h, "nurse")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clinicians/clin-1/patients", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("clinician can register patients", func(t *testing.T) {
		e := withRoles(h, "clinician")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Errorf("expected 201, got %d", rec.Code)
		}
	})

	t.Run("no roles is rejected", func(t *testing.T) {
		e := withRoles(h)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clinicians/clin-1/patients", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})
}
