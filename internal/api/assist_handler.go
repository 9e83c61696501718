package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civiguard-backend-go/internal/core"
	"civiguard-backend-go/internal/models"
)

// AssistHandler exposes the report-form helpers backed by the text generator.
// Provider failures never surface here; the enhancement service answers with
// its fallback instead.
type AssistHandler struct {
	enhancer core.EnhancementService
	logger   *zap.Logger
}

// NewAssistHandler creates a new AssistHandler.
func NewAssistHandler(es core.EnhancementService, logger *zap.Logger) *AssistHandler {
	return &AssistHandler{enhancer: es, logger: logger}
}

func bindComplaintText(c *gin.Context) (models.ComplaintTextRequest, bool) {
	var req models.ComplaintTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return req, false
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" && req.Description == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Field:   "description",
			Details: "title or description is required",
		})
		return req, false
	}
	return req, true
}

// Analyze handles POST /api/assist/analyze
func (h *AssistHandler) Analyze(c *gin.Context) {
	req, ok := bindComplaintText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.enhancer.Analyze(c.Request.Context(), req.Title, req.Description))
}

// Validate handles POST /api/assist/validate
func (h *AssistHandler) Validate(c *gin.Context) {
	req, ok := bindComplaintText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.enhancer.ValidateComplaint(c.Request.Context(), req.Title, req.Description))
}

// Enhance handles POST /api/assist/enhance
func (h *AssistHandler) Enhance(c *gin.Context) {
	req, ok := bindComplaintText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.enhancer.EnhanceComplaintText(c.Request.Context(), req.Title, req.Description))
}

// Geocode handles POST /api/assist/geocode
func (h *AssistHandler) Geocode(c *gin.Context) {
	var req models.GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Field: "address", Details: "address is required"})
		return
	}
	c.JSON(http.StatusOK, h.enhancer.Geocode(c.Request.Context(), address))
}
