package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepositoryImpl{db: db}
}

func (r *auditRepositoryImpl) Create(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO audit_entries (id, actor, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		entry.ID,
		entry.Actor,
		string(entry.Action),
		string(entry.EntityType),
		entry.EntityID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

func (r *auditRepositoryImpl) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.EntityType != nil {
		whereClause += fmt.Sprintf(" AND entity_type = $%d", argIndex)
		args = append(args, string(*filter.EntityType))
		argIndex++
	}
	if filter.EntityID != nil {
		whereClause += fmt.Sprintf(" AND entity_id = $%d", argIndex)
		args = append(args, *filter.EntityID)
		argIndex++
	}
	if filter.Actor != nil {
		whereClause += fmt.Sprintf(" AND actor = $%d", argIndex)
		args = append(args, *filter.Actor)
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM audit_entries "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	query := fmt.Sprintf(`
		SELECT id, actor, action, entity_type, entity_id, details, created_at
		FROM audit_entries
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, limit, pagination.Offset(page, limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var action, entityType string
		var details []byte
		if err := rows.Scan(&e.ID, &e.Actor, &action, &entityType, &e.EntityID, &details, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Action = audit.Action(action)
		e.EntityType = audit.EntityType(entityType)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
