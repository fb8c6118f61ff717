package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/domain/notification"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// inList renders "?,?,?" for values and appends them to args.
func inList(args []any, values []string) (string, []any) {
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = "?"
		args = append(args, v)
	}
	return strings.Join(marks, ","), args
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	q := getQuerier(ctx, r.db)

	rows := make([]string, 0, len(notifications))
	args := make([]any, 0, len(notifications)*8)
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.Must(uuid.NewV7()).String()
		}
		data, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("marshal notification data: %w", err)
		}
		rows = append(rows, "(?,?,?,?,?,?,?,?)")
		args = append(args, n.ID, n.RecipientID, string(n.Type), n.Title, n.Message, string(data), n.IsRead, formatTime(n.CreatedAt))
	}

	_, err := q.ExecContext(ctx, `INSERT INTO notifications(id, recipient_id, type, title, message, data, is_read, created_at) VALUES `+
		strings.Join(rows, ","), args...)
	if err != nil {
		return fmt.Errorf("batch create notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) GetByRecipients(ctx context.Context, recipients []string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int64, error) {
	if len(recipients) == 0 {
		return nil, 0, nil
	}
	q := getQuerier(ctx, r.db)

	marks, args := inList(nil, recipients)
	where := " WHERE recipient_id IN (" + marks + ")"
	if unreadOnly {
		where += " AND is_read=0"
	}

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := q.QueryContext(ctx, `SELECT id, recipient_id, type, title, message, data, is_read, read_at, created_at
FROM notifications`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var res []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		var notifType, data, createdAt string
		var readAt sql.NullString
		if err := rows.Scan(&n.ID, &n.RecipientID, &notifType, &n.Title, &n.Message, &data, &n.IsRead, &readAt, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = notification.NotificationType(notifType)
		if data != "" {
			if err := json.Unmarshal([]byte(data), &n.Data); err != nil {
				return nil, 0, fmt.Errorf("unmarshal notification data: %w", err)
			}
		}
		if n.ReadAt, err = parseNullTime(readAt); err != nil {
			return nil, 0, err
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, 0, err
		}
		res = append(res, &n)
	}
	return res, total, rows.Err()
}

func (r *notificationRepository) GetUnreadCount(ctx context.Context, recipients []string) (int64, error) {
	if len(recipients) == 0 {
		return 0, nil
	}
	q := getQuerier(ctx, r.db)
	marks, args := inList(nil, recipients)
	var count int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE is_read=0 AND recipient_id IN (`+marks+`)`, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, ids []string, recipients []string, at time.Time) error {
	if len(ids) == 0 || len(recipients) == 0 {
		return nil
	}
	q := getQuerier(ctx, r.db)
	args := []any{formatTime(at)}
	recipientMarks, args := inList(args, recipients)
	idMarks, args := inList(args, ids)
	_, err := q.ExecContext(ctx, `UPDATE notifications SET is_read=1, read_at=?
WHERE recipient_id IN (`+recipientMarks+`) AND id IN (`+idMarks+`)`, args...)
	if err != nil {
		return fmt.Errorf("mark notifications as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipients []string, at time.Time) error {
	if len(recipients) == 0 {
		return nil
	}
	q := getQuerier(ctx, r.db)
	marks, args := inList([]any{formatTime(at)}, recipients)
	_, err := q.ExecContext(ctx, `UPDATE notifications SET is_read=1, read_at=?
WHERE is_read=0 AND recipient_id IN (`+marks+`)`, args...)
	if err != nil {
		return fmt.Errorf("mark all notifications as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string, recipients []string) error {
	if len(recipients) == 0 {
		return notification.ErrNotificationNotFound
	}
	q := getQuerier(ctx, r.db)
	marks, args := inList([]any{id}, recipients)
	res, err := q.ExecContext(ctx, `DELETE FROM notifications WHERE id=? AND recipient_id IN (`+marks+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
