package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeDocumentExpiring  NotificationType = "document_expiring"
	TypeDocumentExpired   NotificationType = "document_expired"
	TypeWorkflowSubmitted NotificationType = "workflow_submitted"
	TypeWorkflowDecided   NotificationType = "workflow_decided"
)

// RecipientHR addresses the shared HR inbox rather than one employee.
const RecipientHR = "hr"

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeDocumentExpiring,
		TypeDocumentExpired,
		TypeWorkflowSubmitted,
		TypeWorkflowDecided,
	}
}

func (t NotificationType) IsValid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
