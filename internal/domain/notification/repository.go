package notification

import (
	"context"
	"time"
)

// Repository defines the notification repository interface. Listing and
// read-state methods take every inbox the caller can see.
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	GetByRecipients(ctx context.Context, recipients []string, page, pageSize int, unreadOnly bool) ([]*Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipients []string) (int64, error)
	MarkAsRead(ctx context.Context, ids []string, recipients []string, at time.Time) error
	MarkAllAsRead(ctx context.Context, recipients []string, at time.Time) error
	Delete(ctx context.Context, id string, recipients []string) error
}
