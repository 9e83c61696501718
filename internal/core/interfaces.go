package core

import (
	"context"

	"civiguard-backend-go/internal/models"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	// GetOrCreate resolves a Google identity to an internal user, creating it on
	// first sign-in. The boolean reports whether the user was created.
	GetOrCreate(ctx context.Context, profile GoogleIdentity) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// GoogleIdentity is the verified profile returned by the OAuth callback.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// ListScope selects which complaints a listing returns.
type ListScope string

const (
	ScopeAll    ListScope = "all"
	ScopeMine   ListScope = "mine"
	ScopePublic ListScope = "public"
)

// ListQuery parameterises ComplaintService.List. Viewer is nil for anonymous
// callers; Bounds optionally restricts public listings to a map viewport.
type ListQuery struct {
	Scope  ListScope
	Viewer *models.User
	Bounds *models.BoundingBox
}

// ComplaintService defines the interface for complaint operations.
type ComplaintService interface {
	Create(ctx context.Context, owner *models.User, req models.CreateComplaintRequest) (*models.Complaint, error)
	Get(ctx context.Context, viewer *models.User, complaintID string) (*models.ComplaintWithUser, error)
	List(ctx context.Context, query ListQuery) ([]models.ComplaintWithUser, error)
	Update(ctx context.Context, actor *models.User, complaintID string, req models.UpdateComplaintRequest) (*models.Complaint, error)
	AddComment(ctx context.Context, actor *models.User, complaintID string, req models.AddCommentRequest) (*models.Complaint, error)
	AdminList(ctx context.Context, query models.AdminComplaintQuery) ([]models.ComplaintWithUser, error)
	Stats(ctx context.Context) (*models.ComplaintStats, error)
}

// TextKind selects the rewrite prompt used by EnhancementService.Enhance.
type TextKind string

const (
	KindTitle       TextKind = "title"
	KindDescription TextKind = "description"
)

// EnhancementService wraps the text generator. Every method degrades to a
// non-generated result instead of returning an error.
type EnhancementService interface {
	Enhance(ctx context.Context, text string, kind TextKind) string
	// EnhanceComplaintText enhances both fields concurrently. Empty inputs are
	// returned empty without a provider call.
	EnhanceComplaintText(ctx context.Context, title, description string) models.EnhancedText
	Analyze(ctx context.Context, title, description string) models.ComplaintAnalysis
	ValidateComplaint(ctx context.Context, title, description string) models.ComplaintValidation
	Geocode(ctx context.Context, address string) models.GeocodeResult
	DraftNotificationEmail(ctx context.Context, complaint *models.Complaint, recipient string) models.EmailDraft
}

// AdminService defines the dashboard operations that are not plain complaint queries.
type AdminService interface {
	ListOfficers(ctx context.Context) ([]models.Officer, error)
	DraftEmail(ctx context.Context, req models.EmailDraftRequest) (*models.EmailDraft, error)
	SendEmail(ctx context.Context, actor *models.User, req models.SendEmailRequest) error
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}
