package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civiguard-backend-go/internal/core"
	"civiguard-backend-go/internal/models"
)

// AdminHandler serves the admin dashboard. Every route sits behind the admin role check.
type AdminHandler struct {
	adminService     core.AdminService
	complaintService core.ComplaintService
	logger           *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AdminService, cs core.ComplaintService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, complaintService: cs, logger: logger}
}

// ListOfficers handles GET /api/admin/officers
func (h *AdminHandler) ListOfficers(c *gin.Context) {
	officers, err := h.adminService.ListOfficers(c.Request.Context())
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, officers)
}

// GetStats handles GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.complaintService.Stats(c.Request.Context())
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListComplaints handles GET /api/admin/complaints?category=&priority=&status=&days=
func (h *AdminHandler) ListComplaints(c *gin.Context) {
	var query models.AdminComplaintQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return
	}

	complaints, err := h.complaintService.AdminList(c.Request.Context(), query)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// DraftEmail handles POST /api/admin/email-drafts
func (h *AdminHandler) DraftEmail(c *gin.Context) {
	var req models.EmailDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.adminService.DraftEmail(c.Request.Context(), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, EmailDraftResponse{
		Message:        "Email content generated and ready to be sent",
		RecipientEmail: draft.Recipient,
		Subject:        draft.Subject,
		Body:           draft.Body,
		Generated:      draft.Generated,
	})
}

// SendEmail handles POST /api/admin/emails
func (h *AdminHandler) SendEmail(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.adminService.SendEmail(c.Request.Context(), user, req); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Email sent successfully"})
}
