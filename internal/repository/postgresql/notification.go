package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lucidata/hr-core-go/internal/domain/notification"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

var notificationCopyColumns = []string{"id", "recipient_id", "type", "title", "message", "data", "is_read", "created_at"}

const notificationColumns = `id, recipient_id, type, title, message, data, is_read, read_at, created_at`

func scanNotification(row rowScanner) (*notification.Notification, error) {
	var n notification.Notification
	var notifType string
	if err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&notifType,
		&n.Title,
		&n.Message,
		&n.Data,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	n.Type = notification.NotificationType(notifType)
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

// CreateBatch streams the rows with COPY. Flushes from the notification
// workers arrive here.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.Must(uuid.NewV7()).String()
		}
		if n.Data == nil {
			n.Data = map[string]interface{}{}
		}
	}

	src := pgx.CopyFromSlice(len(notifications), func(i int) ([]any, error) {
		n := notifications[i]
		return []any{n.ID, n.RecipientID, string(n.Type), n.Title, n.Message, n.Data, n.IsRead, n.CreatedAt}, nil
	})

	copied, err := GetQuerier(ctx, r.db).CopyFrom(ctx, pgx.Identifier{"notifications"}, notificationCopyColumns, src)
	if err != nil {
		return fmt.Errorf("failed to copy notifications: %w", err)
	}
	if copied != int64(len(notifications)) {
		return fmt.Errorf("copied %d of %d notifications", copied, len(notifications))
	}
	return nil
}

func (r *notificationRepository) GetByRecipients(ctx context.Context, recipients []string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `recipient_id = ANY($1) AND ($2 = false OR is_read = false)`

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE `+where, recipients, unreadOnly).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, recipients, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (r *notificationRepository) GetUnreadCount(ctx context.Context, recipients []string) (int64, error) {
	var count int64
	err := GetQuerier(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ANY($1) AND NOT is_read`, recipients).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead only touches rows in the caller's inboxes; foreign ids are
// ignored rather than reported.
func (r *notificationRepository) MarkAsRead(ctx context.Context, ids []string, recipients []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := GetQuerier(ctx, r.db).Exec(ctx, `
		UPDATE notifications SET is_read = true, read_at = $1
		WHERE recipient_id = ANY($2) AND id = ANY($3::uuid[]) AND NOT is_read
	`, at, recipients, ids)
	if err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipients []string, at time.Time) error {
	_, err := GetQuerier(ctx, r.db).Exec(ctx, `
		UPDATE notifications SET is_read = true, read_at = $1
		WHERE recipient_id = ANY($2) AND NOT is_read
	`, at, recipients)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string, recipients []string) error {
	tag, err := GetQuerier(ctx, r.db).Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND recipient_id = ANY($2)`, id, recipients)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
