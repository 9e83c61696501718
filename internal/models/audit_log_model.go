package models

import "time"

// Audit actions recorded for complaint changes.
const (
	AuditComplaintCreated   = "COMPLAINT_CREATE"
	AuditComplaintUpdated   = "COMPLAINT_UPDATE"
	AuditComplaintCommented = "COMPLAINT_COMMENT"
	AuditEmailSent          = "EMAIL_SEND"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-" bson:"_id"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp" bson:"timestamp"`
	UserID     string                 `json:"userId" firestore:"userId" bson:"userId"` // who performed the action
	Action     string                 `json:"action" firestore:"action" bson:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty" bson:"targetType,omitempty"`
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty" bson:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty" bson:"details,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty" firestore:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	UserAgent  string                 `json:"userAgent,omitempty" firestore:"userAgent,omitempty" bson:"userAgent,omitempty"`
}
