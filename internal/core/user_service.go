package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"civiguard-backend-go/internal/db"
	"civiguard-backend-go/internal/models"
)

type userService struct {
	userRepo    db.UserRepository
	adminEmails map[string]struct{}
	logger      *zap.Logger
	now         func() time.Time
}

// NewUserService creates a UserService. Users whose email is in adminEmails
// are given the admin role at sign-in.
func NewUserService(userRepo db.UserRepository, adminEmails []string, logger *zap.Logger) UserService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &userService{userRepo: userRepo, adminEmails: admins, logger: logger, now: time.Now}
}

func (s *userService) isAdminEmail(email string) bool {
	_, ok := s.adminEmails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// GetOrCreate upserts by Google subject, so repeated sign-ins resolve to the
// same internal ID. Existing users get their profile refreshed and are
// promoted when their email has been added to ADMIN_EMAILS.
func (s *userService) GetOrCreate(ctx context.Context, profile GoogleIdentity) (*models.User, bool, error) {
	if profile.Subject == "" {
		return nil, false, errors.New("google identity has no subject")
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	role := models.RoleCitizen
	if s.isAdminEmail(profile.Email) {
		role = models.RoleAdmin
	}
	candidate := &models.User{
		GoogleID:  profile.Subject,
		Email:     profile.Email,
		Name:      profile.Name,
		Avatar:    profile.Picture,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	user, created, err := s.userRepo.UpsertByGoogleID(ctx, candidate)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert user for google subject '%s': %w", profile.Subject, err)
	}
	if created {
		s.logger.Info("Created user on first sign-in", zap.String("userID", user.ID), zap.String("role", string(user.Role)))
		return user, true, nil
	}

	changed := false
	if profile.Email != "" && user.Email != profile.Email {
		user.Email = profile.Email
		changed = true
	}
	if profile.Name != "" && user.Name != profile.Name {
		user.Name = profile.Name
		changed = true
	}
	if profile.Picture != "" && user.Avatar != profile.Picture {
		user.Avatar = profile.Picture
		changed = true
	}
	if user.Role != models.RoleAdmin && s.isAdminEmail(user.Email) {
		s.logger.Info("Promoting user to admin", zap.String("userID", user.ID))
		user.Role = models.RoleAdmin
		changed = true
	}
	if changed {
		user.UpdatedAt = now
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to refresh user '%s': %w", user.ID, err)
		}
	}
	return user, false, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}
