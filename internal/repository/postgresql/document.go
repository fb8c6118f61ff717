package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type documentRepositoryImpl struct {
	db *database.DB
}

func NewDocumentRepository(db *database.DB) document.Repository {
	return &documentRepositoryImpl{db: db}
}

const documentColumns = `id, employee_id, category, file_name, file_type, file_size, file_path,
	issue_date, expiry_date, status, uploaded_at, updated_at`

var documentSortColumns = map[string]string{
	"expiry_date": "expiry_date",
	"issue_date":  "issue_date",
	"uploaded_at": "uploaded_at",
	"file_name":   "file_name",
}

func scanDocument(row rowScanner) (document.Document, error) {
	var d document.Document
	var category, status string
	err := row.Scan(
		&d.ID,
		&d.EmployeeID,
		&category,
		&d.FileName,
		&d.FileType,
		&d.FileSize,
		&d.FilePath,
		&d.IssueDate,
		&d.ExpiryDate,
		&status,
		&d.UploadedAt,
		&d.UpdatedAt,
	)
	d.Category = document.Category(category)
	d.Status = document.Status(status)
	return d, err
}

func (r *documentRepositoryImpl) Create(ctx context.Context, d document.Document) (document.Document, error) {
	q := GetQuerier(ctx, r.db)

	if d.ID == "" {
		d.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := q.Exec(ctx, query,
		d.ID,
		d.EmployeeID,
		string(d.Category),
		d.FileName,
		d.FileType,
		d.FileSize,
		d.FilePath,
		d.IssueDate,
		d.ExpiryDate,
		string(d.Status),
		d.UploadedAt,
		d.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, codeForeignKeyViolation) {
			return document.Document{}, document.ErrEmployeeNotFound
		}
		return document.Document{}, fmt.Errorf("failed to create document: %w", err)
	}
	return d, nil
}

func (r *documentRepositoryImpl) GetByID(ctx context.Context, id string) (document.Document, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDocument(q.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Document{}, document.ErrDocumentNotFound
		}
		return document.Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	return d, nil
}

func (r *documentRepositoryImpl) List(ctx context.Context, filter document.Filter) ([]document.Document, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	if filter.Category != nil {
		whereClause += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, string(*filter.Category))
		argIndex++
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		whereClause += fmt.Sprintf(" AND file_name ILIKE $%d", argIndex)
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIndex++
	}
	if filter.ExpiresAfter != nil {
		whereClause += fmt.Sprintf(" AND expiry_date > $%d", argIndex)
		args = append(args, *filter.ExpiresAfter)
		argIndex++
	}
	if filter.ExpiresUntil != nil {
		whereClause += fmt.Sprintf(" AND expiry_date <= $%d", argIndex)
		args = append(args, *filter.ExpiresUntil)
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM documents "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	sortColumn, ok := documentSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "expiry_date"
	}
	page, limit := pagination.Normalize(filter.Page, filter.Limit)

	query := fmt.Sprintf(`
		SELECT %s FROM documents
		%s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, documentColumns, whereClause, sortColumn, orderDirection(defaultOrder(filter.SortOrder, "asc")), argIndex, argIndex+1)
	args = append(args, limit, pagination.Offset(page, limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func (r *documentRepositoryImpl) ListAll(ctx context.Context) ([]document.Document, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY expiry_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *documentRepositoryImpl) Update(ctx context.Context, d document.Document) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE documents SET
			category = $1, file_name = $2, file_type = $3, file_size = $4, file_path = $5,
			issue_date = $6, expiry_date = $7, status = $8, updated_at = $9
		WHERE id = $10
	`
	tag, err := q.Exec(ctx, query,
		string(d.Category),
		d.FileName,
		d.FileType,
		d.FileSize,
		d.FilePath,
		d.IssueDate,
		d.ExpiryDate,
		string(d.Status),
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepositoryImpl) UpdateStatus(ctx context.Context, id string, status document.Status) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE documents SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}
