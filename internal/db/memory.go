package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"civiguard-backend-go/internal/models"
)

// memoryStore keeps every collection in process memory. It backs
// STORE_DRIVER=memory and the API tests.
type memoryStore struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	complaints map[string]*models.Complaint
	auditLogs  []models.AuditLog
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{
		users:      make(map[string]*models.User),
		complaints: make(map[string]*models.Complaint),
	}
}

func (s *memoryStore) Users() UserRepository           { return memoryUsers{s} }
func (s *memoryStore) Complaints() ComplaintRepository { return memoryComplaints{s} }
func (s *memoryStore) AuditLogs() AuditRepository      { return memoryAudit{s} }
func (s *memoryStore) Ping(context.Context) error      { return nil }
func (s *memoryStore) Close() error                    { return nil }

type memoryUsers struct{ s *memoryStore }

func (r memoryUsers) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r memoryUsers) GetByIDs(_ context.Context, userIDs []string) (map[string]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*models.User, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.s.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (r memoryUsers) UpsertByGoogleID(_ context.Context, profile *models.User) (*models.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.GoogleID == profile.GoogleID {
			cp := *u
			return &cp, false, nil
		}
	}
	u := *profile
	u.ID = uuid.NewString()
	r.s.users[u.ID] = &u
	cp := u
	return &cp, true, nil
}

func (r memoryUsers) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return fmt.Errorf("user with ID '%s' not found: %w", user.ID, ErrNotFound)
	}
	existing.Email = user.Email
	existing.Name = user.Name
	existing.Avatar = user.Avatar
	existing.Role = user.Role
	existing.UpdatedAt = user.UpdatedAt
	return nil
}

type memoryComplaints struct{ s *memoryStore }

func (r memoryComplaints) Create(_ context.Context, complaint *models.Complaint) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	complaint.ID = uuid.NewString()
	r.s.complaints[complaint.ID] = complaint.Clone()
	return complaint.ID, nil
}

func (r memoryComplaints) GetByID(_ context.Context, complaintID string) (*models.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.complaints[complaintID]
	if !ok {
		return nil, fmt.Errorf("complaint with ID '%s' not found: %w", complaintID, ErrNotFound)
	}
	return c.Clone(), nil
}

func (r memoryComplaints) List(_ context.Context, filter ComplaintFilter) ([]*models.Complaint, error) {
	r.s.mu.RLock()
	matched := make([]*models.Complaint, 0)
	for _, c := range r.s.complaints {
		if filter.Matches(c) {
			matched = append(matched, c.Clone())
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit := filter.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r memoryComplaints) Update(_ context.Context, complaintID string, patch models.ComplaintPatch) (*models.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.complaints[complaintID]
	if !ok {
		return nil, fmt.Errorf("complaint with ID '%s' not found: %w", complaintID, ErrNotFound)
	}
	patch.Apply(c)
	return c.Clone(), nil
}

func (r memoryComplaints) AddComment(_ context.Context, complaintID string, comment models.Comment) (*models.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.complaints[complaintID]
	if !ok {
		return nil, fmt.Errorf("complaint with ID '%s' not found: %w", complaintID, ErrNotFound)
	}
	c.Comments = append(c.Comments, comment)
	c.UpdatedAt = comment.CreatedAt
	return c.Clone(), nil
}

func (r memoryComplaints) Stats(context.Context) (*models.ComplaintStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stats := &models.ComplaintStats{}
	for _, c := range r.s.complaints {
		stats.Add(c.Status, c.Priority)
	}
	return stats, nil
}

type memoryAudit struct{ s *memoryStore }

func (r memoryAudit) Create(_ context.Context, logEntry models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	logEntry.ID = uuid.NewString()
	r.s.auditLogs = append(r.s.auditLogs, logEntry)
	return nil
}
