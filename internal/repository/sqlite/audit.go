package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry audit.Entry) error {
	q := getQuerier(ctx, r.db)
	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	_, err = q.ExecContext(ctx, `INSERT INTO audit_entries(id, actor, action, entity_type, entity_id, details, created_at)
VALUES (?,?,?,?,?,?,?)`,
		entry.ID, entry.Actor, string(entry.Action), string(entry.EntityType), entry.EntityID,
		string(details), formatTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, int64, error) {
	q := getQuerier(ctx, r.db)

	where := " WHERE 1=1"
	var args []any
	if filter.EntityType != nil {
		where += " AND entity_type=?"
		args = append(args, string(*filter.EntityType))
	}
	if filter.EntityID != nil {
		where += " AND entity_id=?"
		args = append(args, *filter.EntityID)
	}
	if filter.Actor != nil {
		where += " AND actor=?"
		args = append(args, *filter.Actor)
	}

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	args = append(args, limit, pagination.Offset(page, limit))
	rows, err := q.QueryContext(ctx, `SELECT id, actor, action, entity_type, entity_id, details, created_at
FROM audit_entries`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var action, entityType, details, createdAt string
		if err := rows.Scan(&e.ID, &e.Actor, &action, &entityType, &e.EntityID, &details, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = audit.Action(action)
		e.EntityType = audit.EntityType(entityType)
		if details != "" {
			if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
				return nil, 0, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
