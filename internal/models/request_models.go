package models

// CreateComplaintRequest is the body of POST /complaints.
// Enhanced fields may be re-supplied by the client after a form-assist call.
type CreateComplaintRequest struct {
	Title               string    `json:"title" validate:"required,max=200"`
	Description         string    `json:"description" validate:"required,max=5000"`
	Category            string    `json:"category" validate:"required"`
	Priority            string    `json:"priority,omitempty"`
	Location            *Location `json:"location" validate:"required"`
	Images              []string  `json:"images,omitempty" validate:"max=10,dive,required"`
	EnhancedTitle       string    `json:"enhancedTitle,omitempty"`
	EnhancedDescription string    `json:"enhancedDescription,omitempty"`
	IsPublic            *bool     `json:"isPublic,omitempty"`
}

// UpdateComplaintRequest is the body of PATCH /complaints/:id.
// Pointers distinguish "not provided" from zero values.
type UpdateComplaintRequest struct {
	Title               *string   `json:"title,omitempty"`
	Description         *string   `json:"description,omitempty"`
	EnhancedTitle       *string   `json:"enhancedTitle,omitempty"`
	EnhancedDescription *string   `json:"enhancedDescription,omitempty"`
	Category            *string   `json:"category,omitempty"`
	Priority            *string   `json:"priority,omitempty"`
	Status              *string   `json:"status,omitempty"`
	Location            *Location `json:"location,omitempty"`
	Images              *[]string `json:"images,omitempty"`
	IsPublic            *bool     `json:"isPublic,omitempty"`
}

type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// AdminComplaintQuery mirrors the dashboard filters. Days limits results to
// complaints created within the last N days.
type AdminComplaintQuery struct {
	Category string `form:"category"`
	Priority string `form:"priority"`
	Status   string `form:"status"`
	Days     int    `form:"days"`
}

// EmailDraftRequest asks for a notification letter. Either ComplaintID or
// Title and Description must be present.
type EmailDraftRequest struct {
	ComplaintID    string `json:"complaintId,omitempty"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	RecipientEmail string `json:"recipientEmail" validate:"required,email"`
}

type SendEmailRequest struct {
	RecipientEmail string `json:"recipientEmail" validate:"required,email"`
	Subject        string `json:"subject" validate:"required"`
	Body           string `json:"body" validate:"required"`
	ComplaintID    string `json:"complaintId,omitempty"`
}

// ComplaintTextRequest carries in-progress form text for the assist endpoints.
type ComplaintTextRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type GeocodeRequest struct {
	Address string `json:"address" validate:"required"`
}
