package core

import (
	"context"
	"fmt"
	"time"

	"civiguard-backend-go/internal/db"
	"civiguard-backend-go/internal/models"
)

type auditService struct {
	auditRepo db.AuditRepository
}

func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// CreateAuditLog stamps the entry if needed and stores it. The caller's IP
// address and user agent are taken from ctx when the entry has none.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if logEntry.Timestamp.IsZero() {
		logEntry.Timestamp = time.Now().UTC()
	}
	if info, ok := ClientInfoFromContext(ctx); ok {
		if logEntry.IPAddress == "" {
			logEntry.IPAddress = info.IPAddress
		}
		if logEntry.UserAgent == "" {
			logEntry.UserAgent = info.UserAgent
		}
	}
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}
