package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civiguard-backend-go/internal/core"
	"civiguard-backend-go/internal/middleware"
	"civiguard-backend-go/internal/models"
)

// ComplaintHandler handles API endpoints related to complaints.
type ComplaintHandler struct {
	complaintService core.ComplaintService
	logger           *zap.Logger
}

// NewComplaintHandler creates a new ComplaintHandler.
func NewComplaintHandler(cs core.ComplaintService, logger *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{complaintService: cs, logger: logger}
}

// CreateComplaint handles POST /api/complaints
func (h *ComplaintHandler) CreateComplaint(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	complaint, err := h.complaintService.Create(c.Request.Context(), user, req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

// ListComplaints handles GET /api/complaints
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	h.list(c, core.ScopeAll)
}

// ListMyComplaints handles GET /api/complaints/my-reports
func (h *ComplaintHandler) ListMyComplaints(c *gin.Context) {
	h.list(c, core.ScopeMine)
}

// ListPublicComplaints handles GET /api/complaints/public. An optional
// bbox=south,west,north,east restricts results to a map viewport; the box is
// applied by the store before the listing cap, so the newest in-view
// complaints are returned.
func (h *ComplaintHandler) ListPublicComplaints(c *gin.Context) {
	h.list(c, core.ScopePublic)
}

func (h *ComplaintHandler) list(c *gin.Context, scope core.ListScope) {
	query := core.ListQuery{Scope: scope}
	if user, ok := middleware.CurrentUser(c); ok {
		query.Viewer = user
	}

	if raw := c.Query("bbox"); raw != "" && scope == core.ScopePublic {
		box, err := models.ParseBoundingBox(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Field: "bbox", Details: err.Error()})
			return
		}
		query.Bounds = &box
	}

	complaints, err := h.complaintService.List(c.Request.Context(), query)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// GetComplaint handles GET /api/complaints/:id. Anonymous callers only see public records.
func (h *ComplaintHandler) GetComplaint(c *gin.Context) {
	viewer, _ := middleware.CurrentUser(c)

	complaint, err := h.complaintService.Get(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// UpdateComplaint handles PATCH /api/complaints/:id
func (h *ComplaintHandler) UpdateComplaint(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	complaint, err := h.complaintService.Update(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// AddComment handles POST /api/complaints/:id/comments
func (h *ComplaintHandler) AddComment(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	complaint, err := h.complaintService.AddComment(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}
