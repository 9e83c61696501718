package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"civiguard-backend-go/internal/db"
	"civiguard-backend-go/internal/mailer"
	"civiguard-backend-go/internal/models"
)

type adminService struct {
	officers     db.OfficerRepository
	complaints   db.ComplaintRepository
	enhancer     EnhancementService
	mailer       mailer.Mailer
	auditService AuditService
	logger       *zap.Logger
}

// NewAdminService creates an AdminService. m may be nil, in which case
// SendEmail returns ErrMailerDisabled.
func NewAdminService(
	officers db.OfficerRepository,
	complaints db.ComplaintRepository,
	enhancer EnhancementService,
	m mailer.Mailer,
	auditService AuditService,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		officers:     officers,
		complaints:   complaints,
		enhancer:     enhancer,
		mailer:       m,
		auditService: auditService,
		logger:       logger,
	}
}

func (s *adminService) ListOfficers(ctx context.Context) ([]models.Officer, error) {
	officers, err := s.officers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read officers: %w", err)
	}
	return officers, nil
}

// DraftEmail drafts a letter for a stored complaint, or for an ad-hoc
// title and description when no complaint ID is given.
func (s *adminService) DraftEmail(ctx context.Context, req models.EmailDraftRequest) (*models.EmailDraft, error) {
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var complaint *models.Complaint
	if req.ComplaintID != "" {
		c, err := s.complaints.GetByID(ctx, req.ComplaintID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: complaint with ID '%s'", ErrComplaintNotFound, req.ComplaintID)
			}
			return nil, fmt.Errorf("failed to get complaint '%s' for email draft: %w", req.ComplaintID, err)
		}
		complaint = c
	} else {
		title, description := strings.TrimSpace(req.Title), strings.TrimSpace(req.Description)
		if title == "" {
			return nil, invalidField("title", "is required when complaintId is absent")
		}
		if description == "" {
			return nil, invalidField("description", "is required when complaintId is absent")
		}
		complaint = &models.Complaint{Title: title, Description: description}
	}

	draft := s.enhancer.DraftNotificationEmail(ctx, complaint, req.RecipientEmail)
	return &draft, nil
}

// SendEmail delivers a reviewed draft and records it in the audit log.
func (s *adminService) SendEmail(ctx context.Context, actor *models.User, req models.SendEmailRequest) error {
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validateStruct(req); err != nil {
		return err
	}
	if s.mailer == nil {
		return ErrMailerDisabled
	}

	msg := mailer.Message{To: req.RecipientEmail, Subject: req.Subject, Body: req.Body}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", req.RecipientEmail, err)
	}

	entry := models.AuditLog{
		UserID:     actor.ID,
		Action:     models.AuditEmailSent,
		TargetType: "COMPLAINT",
		TargetID:   req.ComplaintID,
		Details: map[string]interface{}{
			"recipient": req.RecipientEmail,
			"subject":   req.Subject,
		},
	}
	if err := s.auditService.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("Failed to create audit log for EMAIL_SEND", zap.String("recipient", req.RecipientEmail), zap.Error(err))
	}
	return nil
}
