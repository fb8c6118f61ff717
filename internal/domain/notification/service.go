package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	QueueBulkNotification(ctx context.Context, reqs []CreateNotificationRequest) error

	// Direct operations
	GetNotifications(ctx context.Context, recipients []string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, recipients []string) (int64, error)
	MarkAsRead(ctx context.Context, recipients []string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, recipients []string) error
	Delete(ctx context.Context, recipients []string, notificationID string) error

	// SSE subscription
	Subscribe(ctx context.Context, recipients []string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}

// Notifier is the narrow dependency other services use to emit notifications.
type Notifier interface {
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
}
