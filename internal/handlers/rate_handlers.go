package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/srabbas1701/wealthlens/internal/models"
	"github.com/srabbas1701/wealthlens/internal/repository"
	"github.com/srabbas1701/wealthlens/internal/services"
)

// RateHandler handles the gold rate pipeline endpoints
type RateHandler struct {
	pipelineSvc *services.PipelineService
	rateSvc     *services.RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(pipelineSvc *services.PipelineService, rateSvc *services.RateService) *RateHandler {
	return &RateHandler{
		pipelineSvc: pipelineSvc,
		rateSvc:     rateSvc,
	}
}

// Refresh handles POST /api/rates/gold/refresh
// Triggered by the external scheduler; optional ?session=AM|PM.
func (h *RateHandler) Refresh(c *gin.Context) {
	sessionStr := c.Query("session")
	session := models.Session(sessionStr)
	if session != models.SessionNone && session != models.SessionAM && session != models.SessionPM {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "session must be 'AM' or 'PM'",
		})
		return
	}

	result, err := h.pipelineSvc.Run(c.Request.Context(), session)
	if err != nil {
		var rejection *services.RejectionError
		switch {
		case errors.Is(err, services.ErrAllSourcesUnavailable):
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "sources_unavailable",
				Message: "no rate source responded; last persisted rate remains authoritative",
			})
		case errors.As(err, &rejection):
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Error:   "validation_rejected",
				Message: rejection.Error(),
			})
		case errors.Is(err, repository.ErrPermissionDenied):
			log.Errorf("rate refresh denied by database: %v", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "persistence_denied",
				Message: "database rejected the write",
			})
		default:
			log.Errorf("rate refresh failed: %v", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal_error",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Latest handles GET /api/rates/gold/latest
func (h *RateHandler) Latest(c *gin.Context) {
	resp, err := h.rateSvc.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoRateAvailable) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "no gold rate has been persisted yet",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
