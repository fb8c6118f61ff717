package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type workflowRepositoryImpl struct {
	db *database.DB
}

func NewWorkflowRepository(db *database.DB) workflow.Repository {
	return &workflowRepositoryImpl{db: db}
}

const workflowColumns = `id, type, requester_id, payload, status, approvals, attachments, version, created_at, updated_at`

func scanWorkflow(row rowScanner) (workflow.Request, error) {
	var req workflow.Request
	var reqType, status string
	err := row.Scan(
		&req.ID,
		&reqType,
		&req.RequesterID,
		&req.Payload,
		&status,
		&req.Approvals,
		&req.Attachments,
		&req.Version,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	req.Type = workflow.Type(reqType)
	req.Status = workflow.Status(status)
	return req, err
}

func (r *workflowRepositoryImpl) Create(ctx context.Context, req workflow.Request) (workflow.Request, error) {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		req.ID = uuid.Must(uuid.NewV7()).String()
	}
	req.Version = 1

	query := `
		INSERT INTO workflow_requests (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.Exec(ctx, query,
		req.ID,
		string(req.Type),
		req.RequesterID,
		req.Payload,
		string(req.Status),
		req.Approvals,
		req.Attachments,
		req.Version,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, codeForeignKeyViolation) {
			return workflow.Request{}, workflow.ErrRequesterNotFound
		}
		return workflow.Request{}, fmt.Errorf("failed to create workflow request: %w", err)
	}
	return req, nil
}

func (r *workflowRepositoryImpl) GetByID(ctx context.Context, id string) (workflow.Request, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanWorkflow(q.QueryRow(ctx, `SELECT `+workflowColumns+` FROM workflow_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workflow.Request{}, workflow.ErrRequestNotFound
		}
		return workflow.Request{}, fmt.Errorf("failed to get workflow request: %w", err)
	}
	return req, nil
}

func (r *workflowRepositoryImpl) List(ctx context.Context, filter workflow.Filter) ([]workflow.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.RequesterID != nil {
		whereClause += fmt.Sprintf(" AND requester_id = $%d", argIndex)
		args = append(args, *filter.RequesterID)
		argIndex++
	}
	if filter.Type != nil {
		whereClause += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, string(*filter.Type))
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM workflow_requests "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count workflow requests: %w", err)
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	query := fmt.Sprintf(`
		SELECT %s FROM workflow_requests
		%s
		ORDER BY created_at %s, id
		LIMIT $%d OFFSET $%d
	`, workflowColumns, whereClause, orderDirection(filter.SortOrder), argIndex, argIndex+1)
	args = append(args, limit, pagination.Offset(page, limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workflow requests: %w", err)
	}
	defer rows.Close()

	var requests []workflow.Request
	for rows.Next() {
		req, err := scanWorkflow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan workflow request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}

func (r *workflowRepositoryImpl) Update(ctx context.Context, req workflow.Request, expectedVersion int) (workflow.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE workflow_requests SET
			payload = $1, status = $2, approvals = $3, attachments = $4,
			version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
		RETURNING version
	`
	var version int
	err := q.QueryRow(ctx, query,
		req.Payload,
		string(req.Status),
		req.Approvals,
		req.Attachments,
		req.UpdatedAt,
		req.ID,
		expectedVersion,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workflow.Request{}, r.missOrConflict(ctx, req.ID, expectedVersion)
		}
		return workflow.Request{}, fmt.Errorf("failed to update workflow request: %w", err)
	}
	req.Version = version
	return req, nil
}

func (r *workflowRepositoryImpl) Delete(ctx context.Context, id string, expectedVersion int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM workflow_requests WHERE id = $1 AND version = $2`, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to delete workflow request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, id, expectedVersion)
	}
	return nil
}

// missOrConflict tells a deleted row from a stale version after a
// conditional write matched nothing.
func (r *workflowRepositoryImpl) missOrConflict(ctx context.Context, id string, expectedVersion int) error {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM workflow_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check workflow request: %w", err)
	}
	if !exists {
		return workflow.ErrRequestNotFound
	}
	return &workflow.ConflictError{ID: id, ExpectedVersion: expectedVersion}
}
