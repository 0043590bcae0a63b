package patient

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Handler provides HTTP handlers for the patient/report domain.
type Handler struct {
	svc *Service
}

// NewHandler creates a new patient domain handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the patients-data routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients-data", h.ListPatients)
	api.POST("/patients-data", h.SavePatients)
	api.DELETE("/patients-data", h.Delete)
}

func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.svc.ListPatients(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list patients")
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) SavePatients(c echo.Context) error {
	var patients []*Patient
	// A JSON null binds to a nil slice without error, so check both.
	if err := c.Bind(&patients); err != nil || patients == nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "patients data must be an array"})
	}

	if err := h.svc.SavePatients(c.Request().Context(), patients); err != nil {
		if isValidationError(err) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		}
		log.Error().Err(err).Msg("failed to save patients")
		body := map[string]interface{}{
			"error":     err.Error(),
			"code":      nil,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			body["code"] = pgErr.Code
		}
		return c.JSON(http.StatusInternalServerError, body)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Patients saved successfully."})
}

func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if reportID := c.QueryParam("reportId"); reportID != "" {
		if err := h.svc.DeleteReport(ctx, reportID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, map[string]interface{}{"error": "report not found"})
			}
			log.Error().Err(err).Str("report_id", reportID).Msg("failed to delete report")
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "failed to delete"})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "type": "report", "id": reportID})
	}

	if patientID := c.QueryParam("patientId"); patientID != "" {
		if err := h.svc.DeletePatient(ctx, patientID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, map[string]interface{}{"error": "patient not found"})
			}
			log.Error().Err(err).Str("patient_id", patientID).Msg("failed to delete patient")
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "failed to delete"})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "type": "patient", "id": patientID})
	}

	return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "missing reportId or patientId"})
}

// isValidationError distinguishes service validation failures, which map to
// 400, from store failures, which map to 500. Validation errors in this
// domain are plain fmt errors without a wrapped cause.
func isValidationError(err error) bool {
	return errors.Unwrap(err) == nil && !errors.Is(err, pgx.ErrNoRows)
}
