package db

import (
	"context"
	"errors"
	"time"

	"civiguard-backend-go/internal/models"
)

// ErrNotFound is returned (wrapped) by every repository when a document does not exist.
var ErrNotFound = errors.New("document not found")

// DefaultListLimit caps every complaint listing.
const DefaultListLimit = 100

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// GetByIDs returns the users that exist, keyed by ID. Missing IDs are skipped.
	GetByIDs(ctx context.Context, userIDs []string) (map[string]*models.User, error)
	// UpsertByGoogleID returns the user owning profile.GoogleID, creating it from
	// profile when absent. The boolean reports whether a user was created.
	UpsertByGoogleID(ctx context.Context, profile *models.User) (*models.User, bool, error)
	Update(ctx context.Context, user *models.User) error
}

// ComplaintFilter narrows a complaint listing. Zero values mean "any".
type ComplaintFilter struct {
	OwnerID      string
	PublicOnly   bool
	Category     models.Category
	Priority     models.Priority
	Status       models.Status
	CreatedAfter time.Time
	// Bounds keeps only complaints located inside the box. It is applied
	// before Limit, so an old complaint in view is not crowded out by newer
	// ones elsewhere.
	Bounds *models.BoundingBox
	Limit  int
}

// EffectiveLimit clamps Limit to (0, DefaultListLimit].
func (f ComplaintFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > DefaultListLimit {
		return DefaultListLimit
	}
	return f.Limit
}

// Matches applies the filter to a single complaint.
func (f ComplaintFilter) Matches(c *models.Complaint) bool {
	switch {
	case f.OwnerID != "" && c.UserID != f.OwnerID:
		return false
	case f.PublicOnly && !c.IsPublic:
		return false
	case f.Category != "" && c.Category != f.Category:
		return false
	case f.Priority != "" && c.Priority != f.Priority:
		return false
	case f.Status != "" && c.Status != f.Status:
		return false
	case !f.CreatedAfter.IsZero() && c.CreatedAt.Before(f.CreatedAfter):
		return false
	case f.Bounds != nil && !f.Bounds.Contains(c.Location):
		return false
	}
	return true
}

// ComplaintRepository defines the interface for complaint data storage operations.
// List results are ordered by createdAt descending.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) (string, error)
	GetByID(ctx context.Context, complaintID string) (*models.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]*models.Complaint, error)
	Update(ctx context.Context, complaintID string, patch models.ComplaintPatch) (*models.Complaint, error)
	AddComment(ctx context.Context, complaintID string, comment models.Comment) (*models.Complaint, error)
	Stats(ctx context.Context) (*models.ComplaintStats, error)
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}

// OfficerRepository lists department contacts.
type OfficerRepository interface {
	List(ctx context.Context) ([]models.Officer, error)
}

// Store bundles the repositories of one backing database.
type Store interface {
	Users() UserRepository
	Complaints() ComplaintRepository
	AuditLogs() AuditRepository
	Ping(ctx context.Context) error
	Close() error
}
