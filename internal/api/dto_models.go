package api

import "civiguard-backend-go/internal/models"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	ID     string      `json:"id"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	Avatar string      `json:"avatar,omitempty"`
}

// EmailDraftResponse is returned by POST /api/admin/email-drafts.
type EmailDraftResponse struct {
	Message        string `json:"message"`
	RecipientEmail string `json:"recipientEmail"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	Generated      bool   `json:"generated"`
}

// ClientConfigResponse carries what the SPA needs before sign-in.
type ClientConfigResponse struct {
	DefaultLocation models.Location    `json:"defaultLocation"`
	MapBounds       models.BoundingBox `json:"mapBounds"`
	Categories      []models.Category  `json:"categories"`
	Priorities      []models.Priority  `json:"priorities"`
	Statuses        []models.Status    `json:"statuses"`
	LoginURL        string             `json:"loginUrl"`
	AIEnabled       bool               `json:"aiEnabled"`
	PublicByDefault bool               `json:"publicByDefault"`
}
