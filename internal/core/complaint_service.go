package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"civiguard-backend-go/internal/db"
	"civiguard-backend-go/internal/events"
	"civiguard-backend-go/internal/models"
)

// ComplaintOptions carries the configurable product decisions.
type ComplaintOptions struct {
	// PublicByDefault applies when a create request omits isPublic.
	PublicByDefault bool
	// StrictStatusWorkflow only allows pending -> in-progress -> resolved, one step at a time.
	StrictStatusWorkflow bool
}

type complaintService struct {
	complaints   db.ComplaintRepository
	users        db.UserRepository
	enhancer     EnhancementService
	auditService AuditService
	publisher    events.Publisher
	opts         ComplaintOptions
	logger       *zap.Logger
	now          func() time.Time
}

// NewComplaintService creates a ComplaintService.
func NewComplaintService(
	complaints db.ComplaintRepository,
	users db.UserRepository,
	enhancer EnhancementService,
	auditService AuditService,
	publisher events.Publisher,
	opts ComplaintOptions,
	logger *zap.Logger,
) ComplaintService {
	return &complaintService{
		complaints:   complaints,
		users:        users,
		enhancer:     enhancer,
		auditService: auditService,
		publisher:    publisher,
		opts:         opts,
		logger:       logger,
		now:          time.Now,
	}
}

// timestamp is millisecond precision so every store round-trips it unchanged.
func (s *complaintService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Create validates the request, fills missing enhanced fields and stores the
// complaint as pending and owned by owner.
func (s *complaintService) Create(ctx context.Context, owner *models.User, req models.CreateComplaintRequest) (*models.Complaint, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.EnhancedTitle = strings.TrimSpace(req.EnhancedTitle)
	req.EnhancedDescription = strings.TrimSpace(req.EnhancedDescription)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	category, ok := models.ParseCategory(req.Category)
	if !ok {
		return nil, invalidField("category", "must be one of %s", joinValues(models.Categories))
	}
	priority := models.PriorityMedium
	if req.Priority != "" {
		if priority, ok = models.ParsePriority(req.Priority); !ok {
			return nil, invalidField("priority", "must be one of %s", joinValues(models.Priorities))
		}
	}

	// Only the fields the client did not supply are sent to the provider.
	missingTitle, missingDescription := "", ""
	if req.EnhancedTitle == "" {
		missingTitle = req.Title
	}
	if req.EnhancedDescription == "" {
		missingDescription = req.Description
	}
	enhanced := s.enhancer.EnhanceComplaintText(ctx, missingTitle, missingDescription)
	if req.EnhancedTitle == "" {
		req.EnhancedTitle = enhanced.EnhancedTitle
	}
	if req.EnhancedDescription == "" {
		req.EnhancedDescription = enhanced.EnhancedDescription
	}

	isPublic := s.opts.PublicByDefault
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	images := req.Images
	if images == nil {
		images = []string{}
	}

	now := s.timestamp()
	complaint := &models.Complaint{
		Title:               req.Title,
		Description:         req.Description,
		EnhancedTitle:       req.EnhancedTitle,
		EnhancedDescription: req.EnhancedDescription,
		Category:            category,
		Priority:            priority,
		Status:              models.StatusPending,
		Location:            *req.Location,
		UserID:              owner.ID,
		Images:              images,
		Comments:            []models.Comment{},
		IsPublic:            isPublic,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	id, err := s.complaints.Create(ctx, complaint)
	if err != nil {
		return nil, fmt.Errorf("failed to create complaint in repository: %w", err)
	}
	complaint.ID = id

	s.record(ctx, owner.ID, models.AuditComplaintCreated, complaint, map[string]interface{}{
		"title":    complaint.Title,
		"category": string(complaint.Category),
		"priority": string(complaint.Priority),
		"isPublic": complaint.IsPublic,
	})
	s.publish(ctx, events.ComplaintCreated, owner.ID, complaint)
	return complaint, nil
}

// Get returns a complaint visible to viewer: public records to anyone, the
// rest to the owner and admins only. Invisible records are reported as not found.
func (s *complaintService) Get(ctx context.Context, viewer *models.User, complaintID string) (*models.ComplaintWithUser, error) {
	complaint, err := s.load(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !complaint.IsPublic && !canManage(viewer, complaint) {
		return nil, fmt.Errorf("%w: complaint '%s' is not visible to the caller", ErrComplaintNotFound, complaintID)
	}

	withEmail := canManage(viewer, complaint)
	joined, err := s.joinUsers(ctx, []*models.Complaint{complaint}, withEmail)
	if err != nil {
		return nil, err
	}
	return &joined[0], nil
}

// List returns complaints newest first, capped at db.DefaultListLimit.
func (s *complaintService) List(ctx context.Context, query ListQuery) ([]models.ComplaintWithUser, error) {
	var filter db.ComplaintFilter
	join, withEmail := false, false

	switch query.Scope {
	case ScopeAll:
		if query.Viewer == nil {
			return nil, fmt.Errorf("%w: listing all complaints requires authentication", ErrForbidden)
		}
		join, withEmail = true, true
	case ScopeMine:
		if query.Viewer == nil {
			return nil, fmt.Errorf("%w: listing own complaints requires authentication", ErrForbidden)
		}
		filter.OwnerID = query.Viewer.ID
	case ScopePublic:
		filter.PublicOnly = true
		filter.Bounds = query.Bounds
		join = true
	default:
		return nil, invalidField("scope", "unknown scope %q", query.Scope)
	}

	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s complaints: %w", query.Scope, err)
	}

	if !join {
		out := make([]models.ComplaintWithUser, len(complaints))
		for i, c := range complaints {
			out[i] = models.ComplaintWithUser{Complaint: c}
		}
		return out, nil
	}
	return s.joinUsers(ctx, complaints, withEmail)
}

// Update applies a partial update on behalf of the owner or an admin.
func (s *complaintService) Update(ctx context.Context, actor *models.User, complaintID string, req models.UpdateComplaintRequest) (*models.Complaint, error) {
	existing, err := s.load(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, existing) {
		return nil, fmt.Errorf("%w: user '%s' cannot update complaint '%s'", ErrForbidden, actor.ID, complaintID)
	}

	patch, details, err := s.buildPatch(existing, req)
	if err != nil {
		return nil, err
	}

	// updatedAt must move forward even when two writes land in the same millisecond.
	patch.UpdatedAt = s.timestamp()
	if !patch.UpdatedAt.After(existing.UpdatedAt) {
		patch.UpdatedAt = existing.UpdatedAt.Add(time.Millisecond)
	}

	updated, err := s.complaints.Update(ctx, complaintID, patch)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: complaint with ID '%s'", ErrComplaintNotFound, complaintID)
		}
		return nil, fmt.Errorf("failed to update complaint '%s': %w", complaintID, err)
	}

	s.record(ctx, actor.ID, models.AuditComplaintUpdated, updated, details)
	s.publish(ctx, events.ComplaintUpdated, actor.ID, updated)
	return updated, nil
}

func (s *complaintService) buildPatch(existing *models.Complaint, req models.UpdateComplaintRequest) (models.ComplaintPatch, map[string]interface{}, error) {
	var patch models.ComplaintPatch
	details := map[string]interface{}{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return patch, nil, invalidField("title", "cannot be empty")
		}
		if utf8.RuneCountInString(title) > 200 {
			return patch, nil, invalidField("title", "must be at most 200 characters")
		}
		patch.Title = &title
		details["title"] = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return patch, nil, invalidField("description", "cannot be empty")
		}
		if utf8.RuneCountInString(description) > 5000 {
			return patch, nil, invalidField("description", "must be at most 5000 characters")
		}
		patch.Description = &description
		details["description"] = true
	}
	if req.EnhancedTitle != nil {
		patch.EnhancedTitle = req.EnhancedTitle
	}
	if req.EnhancedDescription != nil {
		patch.EnhancedDescription = req.EnhancedDescription
	}
	if req.Category != nil {
		category, ok := models.ParseCategory(*req.Category)
		if !ok {
			return patch, nil, invalidField("category", "must be one of %s", joinValues(models.Categories))
		}
		patch.Category = &category
		details["category"] = string(category)
	}
	if req.Priority != nil {
		priority, ok := models.ParsePriority(*req.Priority)
		if !ok {
			return patch, nil, invalidField("priority", "must be one of %s", joinValues(models.Priorities))
		}
		patch.Priority = &priority
		details["priority"] = string(priority)
	}
	if req.Status != nil {
		status, ok := models.ParseStatus(*req.Status)
		if !ok {
			return patch, nil, invalidField("status", "must be one of %s", joinValues(models.Statuses))
		}
		if s.opts.StrictStatusWorkflow && !existing.Status.CanAdvanceTo(status) {
			return patch, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, existing.Status, status)
		}
		patch.Status = &status
		details["status"] = string(status)
		details["previousStatus"] = string(existing.Status)
	}
	if req.Location != nil {
		patch.Location = req.Location
		details["location"] = true
	}
	if req.Images != nil {
		if len(*req.Images) > 10 {
			return patch, nil, invalidField("images", "must have at most 10 items")
		}
		patch.Images = req.Images
	}
	if req.IsPublic != nil {
		patch.IsPublic = req.IsPublic
		details["isPublic"] = *req.IsPublic
	}
	return patch, details, nil
}

// AddComment appends a comment. Anyone signed in may comment on a public
// complaint; private ones accept comments from the owner and admins.
func (s *complaintService) AddComment(ctx context.Context, actor *models.User, complaintID string, req models.AddCommentRequest) (*models.Complaint, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	existing, err := s.load(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !existing.IsPublic && !canManage(actor, existing) {
		return nil, fmt.Errorf("%w: user '%s' cannot comment on complaint '%s'", ErrForbidden, actor.ID, complaintID)
	}

	comment := models.Comment{UserID: actor.ID, Text: req.Text, CreatedAt: s.timestamp()}
	updated, err := s.complaints.AddComment(ctx, complaintID, comment)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: complaint with ID '%s'", ErrComplaintNotFound, complaintID)
		}
		return nil, fmt.Errorf("failed to add comment to complaint '%s': %w", complaintID, err)
	}

	s.record(ctx, actor.ID, models.AuditComplaintCommented, updated, map[string]interface{}{"length": len(comment.Text)})
	s.publish(ctx, events.ComplaintCommented, actor.ID, updated)
	return updated, nil
}

// AdminList is the filtered dashboard listing, joined with owner name and email.
func (s *complaintService) AdminList(ctx context.Context, query models.AdminComplaintQuery) ([]models.ComplaintWithUser, error) {
	var filter db.ComplaintFilter
	var ok bool

	if query.Category != "" && query.Category != "all" {
		if filter.Category, ok = models.ParseCategory(query.Category); !ok {
			return nil, invalidField("category", "must be one of %s", joinValues(models.Categories))
		}
	}
	if query.Priority != "" && query.Priority != "all" {
		if filter.Priority, ok = models.ParsePriority(query.Priority); !ok {
			return nil, invalidField("priority", "must be one of %s", joinValues(models.Priorities))
		}
	}
	if query.Status != "" && query.Status != "all" {
		if filter.Status, ok = models.ParseStatus(query.Status); !ok {
			return nil, invalidField("status", "must be one of %s", joinValues(models.Statuses))
		}
	}
	if query.Days < 0 {
		return nil, invalidField("days", "must be at least 0")
	}
	if query.Days > 0 {
		filter.CreatedAfter = s.now().UTC().AddDate(0, 0, -query.Days)
	}

	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints for admin: %w", err)
	}
	return s.joinUsers(ctx, complaints, true)
}

func (s *complaintService) Stats(ctx context.Context) (*models.ComplaintStats, error) {
	stats, err := s.complaints.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute complaint stats: %w", err)
	}
	return stats, nil
}

func (s *complaintService) load(ctx context.Context, complaintID string) (*models.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: complaint with ID '%s'", ErrComplaintNotFound, complaintID)
		}
		return nil, fmt.Errorf("failed to get complaint '%s' from repository: %w", complaintID, err)
	}
	return complaint, nil
}

// joinUsers attaches the owner projection. Owners that no longer resolve are
// left without a user entry.
func (s *complaintService) joinUsers(ctx context.Context, complaints []*models.Complaint, withEmail bool) ([]models.ComplaintWithUser, error) {
	seen := make(map[string]struct{}, len(complaints))
	ids := make([]string, 0, len(complaints))
	for _, c := range complaints {
		if _, ok := seen[c.UserID]; ok || c.UserID == "" {
			continue
		}
		seen[c.UserID] = struct{}{}
		ids = append(ids, c.UserID)
	}

	owners := map[string]*models.User{}
	if len(ids) > 0 {
		var err error
		if owners, err = s.users.GetByIDs(ctx, ids); err != nil {
			return nil, fmt.Errorf("failed to load complaint owners: %w", err)
		}
	}

	out := make([]models.ComplaintWithUser, len(complaints))
	for i, c := range complaints {
		out[i] = models.ComplaintWithUser{Complaint: c}
		if owner, ok := owners[c.UserID]; ok {
			summary := &models.UserSummary{Name: owner.Name}
			if withEmail {
				summary.Email = owner.Email
			}
			out[i].User = summary
		}
	}
	return out, nil
}

// record writes an audit entry; failures are logged and never fail the caller.
func (s *complaintService) record(ctx context.Context, actorID, action string, c *models.Complaint, details map[string]interface{}) {
	entry := models.AuditLog{
		Timestamp:  s.timestamp(),
		UserID:     actorID,
		Action:     action,
		TargetType: "COMPLAINT",
		TargetID:   c.ID,
		Details:    details,
	}
	if err := s.auditService.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("Failed to create audit log",
			zap.String("action", action),
			zap.String("complaintID", c.ID),
			zap.Error(err),
		)
	}
}

func (s *complaintService) publish(ctx context.Context, eventType events.EventType, actorID string, c *models.Complaint) {
	event := events.ComplaintEvent{
		Type:        eventType,
		ComplaintID: c.ID,
		ActorID:     actorID,
		Category:    string(c.Category),
		Priority:    string(c.Priority),
		Status:      string(c.Status),
		OccurredAt:  s.timestamp(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish complaint event",
			zap.String("type", string(eventType)),
			zap.String("complaintID", c.ID),
			zap.Error(err),
		)
	}
}

func canManage(user *models.User, c *models.Complaint) bool {
	return user != nil && (user.ID == c.UserID || user.IsAdmin())
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
