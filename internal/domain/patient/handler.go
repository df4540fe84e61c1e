package patient

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
	// Read endpoints are open to care staff; registration and threshold
	// changes are clinician actions.
	readGroup := api.Group("", auth.RequireRole("admin", "clinician", "nurse"))
	readGroup.GET("/patients/:id", h.Get)
	readGroup.GET("/clinicians/:id/patients", h.ListByClinician)

	writeGroup := api.Group("", auth.RequireRole("admin", "clinician"))
	writeGroup.POST("/patients", h.Register)
	writeGroup.PUT("/patients/:id/thresholds", h.UpdateThresholds)
}

// registerRequest is the accepted registration payload. The wearable link is
// deliberately not bindable here: it is assigned only by device
// initialization.
type registerRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone_number"`
	ClinicianID        string `json:"clinician_id"`
	SystolicThreshold  int    `json:"systolic_threshold"`
	DiastolicThreshold int    `json:"diastolic_threshold"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := Patient{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		ClinicianID:        req.ClinicianID,
		SystolicThreshold:  req.SystolicThreshold,
		DiastolicThreshold: req.DiastolicThreshold,
	}
	if err := h.svc.Register(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "patient registered",
		"patient": p,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

type thresholdsRequest struct {
	SystolicThreshold  int `json:"systolic_threshold"`
	DiastolicThreshold int `json:"diastolic_threshold"`
}

func (h *Handler) UpdateThresholds(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req thresholdsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = h.svc.UpdateThresholds(c.Request().Context(), id, req.SystolicThreshold, req.DiastolicThreshold)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "thresholds updated"})
}

func (h *Handler) ListByClinician(c echo.Context) error {
	clinicianID := c.Param("id")
	p := pagination.FromContext(c)

	patients, total, err := h.svc.ListByClinician(c.Request().Context(), clinicianID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, p.Limit, p.Offset))
}
