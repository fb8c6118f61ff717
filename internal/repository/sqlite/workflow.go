package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type workflowRepository struct {
	db *sql.DB
}

func NewWorkflowRepository(db *sql.DB) workflow.Repository {
	return &workflowRepository{db: db}
}

const workflowColumns = `id, type, requester_id, payload, status, approvals, attachments, version, created_at, updated_at`

func scanWorkflow(row rowScanner) (workflow.Request, error) {
	var req workflow.Request
	var reqType, status, createdAt, updatedAt string
	if err := row.Scan(
		&req.ID,
		&reqType,
		&req.RequesterID,
		&req.Payload,
		&status,
		&req.Approvals,
		&req.Attachments,
		&req.Version,
		&createdAt,
		&updatedAt,
	); err != nil {
		return req, err
	}
	req.Type = workflow.Type(reqType)
	req.Status = workflow.Status(status)

	var err error
	if req.CreatedAt, err = parseTime(createdAt); err != nil {
		return req, err
	}
	req.UpdatedAt, err = parseTime(updatedAt)
	return req, err
}

func (r *workflowRepository) Create(ctx context.Context, req workflow.Request) (workflow.Request, error) {
	q := getQuerier(ctx, r.db)
	if req.ID == "" {
		req.ID = uuid.Must(uuid.NewV7()).String()
	}
	req.Version = 1
	_, err := q.ExecContext(ctx, `INSERT INTO workflow_requests(`+workflowColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		req.ID, string(req.Type), req.RequesterID, req.Payload, string(req.Status),
		req.Approvals, req.Attachments, req.Version, formatTime(req.CreatedAt), formatTime(req.UpdatedAt))
	if isForeignKeyViolation(err) {
		return workflow.Request{}, workflow.ErrRequesterNotFound
	}
	if err != nil {
		return workflow.Request{}, fmt.Errorf("create workflow request: %w", err)
	}
	return req, nil
}

func (r *workflowRepository) GetByID(ctx context.Context, id string) (workflow.Request, error) {
	q := getQuerier(ctx, r.db)
	req, err := scanWorkflow(q.QueryRowContext(ctx, `SELECT `+workflowColumns+` FROM workflow_requests WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.Request{}, workflow.ErrRequestNotFound
	}
	return req, err
}

func (r *workflowRepository) List(ctx context.Context, filter workflow.Filter) ([]workflow.Request, int64, error) {
	q := getQuerier(ctx, r.db)

	where := " WHERE 1=1"
	var args []any
	if filter.RequesterID != nil {
		where += " AND requester_id=?"
		args = append(args, *filter.RequesterID)
	}
	if filter.Type != nil {
		where += " AND type=?"
		args = append(args, string(*filter.Type))
	}
	if filter.Status != nil {
		where += " AND status=?"
		args = append(args, string(*filter.Status))
	}

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM workflow_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workflow requests: %w", err)
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM workflow_requests%s ORDER BY created_at %s, id LIMIT ? OFFSET ?`,
		workflowColumns, where, orderDirection(filter.SortOrder, "desc"))
	args = append(args, limit, pagination.Offset(page, limit))

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list workflow requests: %w", err)
	}
	defer rows.Close()
	var res []workflow.Request
	for rows.Next() {
		req, err := scanWorkflow(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, req)
	}
	return res, total, rows.Err()
}

func (r *workflowRepository) Update(ctx context.Context, req workflow.Request, expectedVersion int) (workflow.Request, error) {
	q := getQuerier(ctx, r.db)
	res, err := q.ExecContext(ctx, `UPDATE workflow_requests SET payload=?, status=?, approvals=?, attachments=?,
version=version+1, updated_at=? WHERE id=? AND version=?`,
		req.Payload, string(req.Status), req.Approvals, req.Attachments,
		formatTime(req.UpdatedAt), req.ID, expectedVersion)
	if err != nil {
		return workflow.Request{}, fmt.Errorf("update workflow request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return workflow.Request{}, r.missOrConflict(ctx, q, req.ID, expectedVersion)
	}
	req.Version = expectedVersion + 1
	return req, nil
}

func (r *workflowRepository) Delete(ctx context.Context, id string, expectedVersion int) error {
	q := getQuerier(ctx, r.db)
	res, err := q.ExecContext(ctx, `DELETE FROM workflow_requests WHERE id=? AND version=?`, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("delete workflow request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.missOrConflict(ctx, q, id, expectedVersion)
	}
	return nil
}

func (r *workflowRepository) missOrConflict(ctx context.Context, q querier, id string, expectedVersion int) error {
	var exists int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM workflow_requests WHERE id=?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("check workflow request: %w", err)
	}
	return &workflow.ConflictError{ID: id, ExpectedVersion: expectedVersion}
}
