package share

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Handler provides the HTTP surface for share links.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the share-report management routes and the public
// shared-access endpoint.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/share-report", h.Create)
	api.GET("/share-report", h.List)
	api.DELETE("/share-report", h.Revoke)
	api.POST("/shared-access", h.Access)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}
	if req.ReportID == "" || req.PatientID == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Missing reportId or patientId"})
	}

	link, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Report not found or does not belong to patient",
			})
		}
		log.Error().Err(err).Str("report_id", req.ReportID).Msg("failed to create share link")
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "Failed to create share link"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"shareToken": link,
	})
}

func (h *Handler) List(c echo.Context) error {
	reportID := c.QueryParam("reportId")
	patientID := c.QueryParam("patientId")
	if reportID == "" && patientID == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Missing reportId or patientId parameter"})
	}

	links, err := h.svc.List(c.Request().Context(), reportID, patientID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list share links")
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "Failed to fetch share tokens"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"shareTokens": links,
	})
}

func (h *Handler) Revoke(c echo.Context) error {
	tokenID := c.QueryParam("tokenId")
	if tokenID == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Missing tokenId parameter"})
	}

	if err := h.svc.Revoke(c.Request().Context(), tokenID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{"error": "Share token not found"})
		}
		log.Error().Err(err).Str("token_id", tokenID).Msg("failed to revoke share link")
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "Failed to revoke share token"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Share token revoked successfully",
	})
}

func (h *Handler) Access(c echo.Context) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Missing token"})
	}

	report, info, err := h.svc.Access(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]interface{}{"error": "Invalid or expired share link"})
		case errors.Is(err, ErrRevoked):
			return c.JSON(http.StatusForbidden, map[string]interface{}{"error": "This share link has been revoked"})
		case errors.Is(err, ErrExpired):
			return c.JSON(http.StatusForbidden, map[string]interface{}{"error": "This share link has expired"})
		case errors.Is(err, ErrPasswordRequired):
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{"error": "Password required", "requiresPassword": true})
		case errors.Is(err, ErrInvalidPassword):
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{"error": "Invalid password", "requiresPassword": true})
		}
		log.Error().Err(err).Msg("failed to access shared report")
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "Failed to access shared report"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"report":    report,
		"shareInfo": info,
	})
}
