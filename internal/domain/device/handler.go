package device

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ludoramacha/healthApp/internal/domain/patient"
	"github.com/Ludoramacha/healthApp/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Device linkage and provider operations are clinician actions.
	g := api.Group("", auth.RequireRole("admin", "clinician"))
	g.POST("/patients/:id/device", h.Link)
	g.GET("/device/:wearable_id/connection-code", h.ConnectionCode)
	g.POST("/device/:wearable_id/sync", h.Sync)
	g.GET("/device/:wearable_id/latest-reading", h.LatestReading)
}

func (h *Handler) Link(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	result, err := h.svc.Link(c.Request().Context(), id)
	switch {
	case errors.Is(err, patient.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, patient.ErrAlreadyLinked):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case IsProviderError(err):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":         "wearable account linked",
		"patient":         result.Patient,
		"connection_code": result.ConnectionCode,
	})
}

func (h *Handler) ConnectionCode(c echo.Context) error {
	code, err := h.svc.ConnectionCode(c.Request().Context(), c.Param("wearable_id"))
	if IsProviderError(err) {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"connection_code": code})
}

func (h *Handler) Sync(c echo.Context) error {
	err := h.svc.Sync(c.Request().Context(), c.Param("wearable_id"))
	if IsProviderError(err) {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "sync requested"})
}

func (h *Handler) LatestReading(c echo.Context) error {
	reading, err := h.svc.LatestReading(c.Request().Context(), c.Param("wearable_id"))
	if IsProviderError(err) {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if reading == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no readings available")
	}
	return c.JSON(http.StatusOK, reading)
}
