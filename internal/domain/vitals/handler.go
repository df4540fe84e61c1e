package vitals

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ludoramacha/healthApp/internal/platform/auth"
	"github.com/Ludoramacha/healthApp/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Reading submission and views are open to care staff; resolving an
	// alert is a clinician action.
	careGroup := api.Group("", auth.RequireRole("admin", "clinician", "nurse"))
	careGroup.POST("/readings", h.Ingest)
	careGroup.GET("/patients/:id/readings", h.ListReadings)
	careGroup.GET("/patients/:id/alerts", h.ListAlerts)
	careGroup.GET("/patients/wearable/:wearable_id/dashboard", h.Dashboard)

	clinicianGroup := api.Group("", auth.RequireRole("admin", "clinician"))
	clinicianGroup.PUT("/alerts/:id/resolve", h.ResolveAlert)
}

// RegisterWebhook mounts the provider push endpoint. It lives outside the
// authenticated API group; the provider does not carry our JWTs.
func (h *Handler) RegisterWebhook(g *echo.Group) {
	g.POST("/wearable", h.Webhook)
}

type readingRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	Systolic  int       `json:"systolic"`
	Diastolic int       `json:"diastolic"`
	HeartRate int       `json:"heart_rate"`
}

func (h *Handler) Ingest(c echo.Context) error {
	var req readingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.IngestReading(c.Request().Context(), CanonicalReading{
		PatientID: req.PatientID,
		Systolic:  req.Systolic,
		Diastolic: req.Diastolic,
		HeartRate: req.HeartRate,
		Source:    SourceManual,
	})
	if err != nil {
		return ingestError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

// Webhook accepts provider push deliveries. Events we do not handle are
// acknowledged with a neutral 200 so the provider stops retrying; malformed
// reading payloads get a 400 and unresolvable patients a 404.
func (h *Handler) Webhook(c echo.Context) error {
	var ev PushEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.IngestPush(c.Request().Context(), ev)
	switch {
	case errors.Is(err, ErrEventIgnored):
		return c.JSON(http.StatusOK, map[string]string{"message": "webhook processed"})
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrMissingVitals):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":         "reading processed successfully",
		"reading_id":      result.Reading.ID,
		"alert_triggered": result.AlertTriggered,
	})
}

func (h *Handler) ListReadings(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p := pagination.FromContext(c)

	readings, total, err := h.svc.ListReadings(c.Request().Context(), patientID, p.Limit, p.Offset)
	if errors.Is(err, ErrPatientNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(readings, total, p.Limit, p.Offset))
}

func (h *Handler) ListAlerts(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p := pagination.FromContext(c)

	alerts, total, err := h.svc.ListAlerts(c.Request().Context(), patientID, p.Limit, p.Offset)
	if errors.Is(err, ErrPatientNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(alerts, total, p.Limit, p.Offset))
}

func (h *Handler) ResolveAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	alert, err := h.svc.ResolveAlert(c.Request().Context(), id)
	if errors.Is(err, ErrAlertNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "alert not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, alert)
}

func (h *Handler) Dashboard(c echo.Context) error {
	dash, err := h.svc.BuildDashboard(c.Request().Context(), c.Param("wearable_id"))
	if errors.Is(err, ErrPatientNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dash)
}

func ingestError(err error) error {
	switch {
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrMissingVitals):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
