package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type documentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) document.Repository {
	return &documentRepository{db: db}
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
	var category, status, issue, expiry, uploaded, updated string
	if err := row.Scan(
		&d.ID,
		&d.EmployeeID,
		&category,
		&d.FileName,
		&d.FileType,
		&d.FileSize,
		&d.FilePath,
		&issue,
		&expiry,
		&status,
		&uploaded,
		&updated,
	); err != nil {
		return d, err
	}
	d.Category = document.Category(category)
	d.Status = document.Status(status)

	var err error
	for _, f := range []struct {
		dst *time.Time
		src string
	}{{&d.IssueDate, issue}, {&d.ExpiryDate, expiry}, {&d.UploadedAt, uploaded}, {&d.UpdatedAt, updated}} {
		if *f.dst, err = parseTime(f.src); err != nil {
			return d, err
		}
	}
	return d, nil
}

func (r *documentRepository) Create(ctx context.Context, d document.Document) (document.Document, error) {
	q := getQuerier(ctx, r.db)
	if d.ID == "" {
		d.ID = uuid.Must(uuid.NewV7()).String()
	}
	_, err := q.ExecContext(ctx, `INSERT INTO documents(`+documentColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.EmployeeID, string(d.Category), d.FileName, d.FileType, d.FileSize, nullable(d.FilePath),
		formatTime(d.IssueDate), formatTime(d.ExpiryDate), string(d.Status),
		formatTime(d.UploadedAt), formatTime(d.UpdatedAt))
	if isForeignKeyViolation(err) {
		return document.Document{}, document.ErrEmployeeNotFound
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (document.Document, error) {
	q := getQuerier(ctx, r.db)
	d, err := scanDocument(q.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, document.ErrDocumentNotFound
	}
	return d, err
}

func (r *documentRepository) List(ctx context.Context, filter document.Filter) ([]document.Document, int64, error) {
	q := getQuerier(ctx, r.db)

	where := " WHERE 1=1"
	var args []any
	if filter.EmployeeID != nil {
		where += " AND employee_id=?"
		args = append(args, *filter.EmployeeID)
	}
	if filter.Category != nil {
		where += " AND category=?"
		args = append(args, string(*filter.Category))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		where += " AND file_name LIKE ?"
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
	}
	if filter.ExpiresAfter != nil {
		where += " AND expiry_date > ?"
		args = append(args, formatTime(*filter.ExpiresAfter))
	}
	if filter.ExpiresUntil != nil {
		where += " AND expiry_date <= ?"
		args = append(args, formatTime(*filter.ExpiresUntil))
	}

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	sortColumn, ok := documentSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "expiry_date"
	}
	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM documents%s ORDER BY %s %s, id LIMIT ? OFFSET ?`,
		documentColumns, where, sortColumn, orderDirection(filter.SortOrder, "asc"))
	args = append(args, limit, pagination.Offset(page, limit))

	docs, err := r.query(ctx, q, query, args...)
	return docs, total, err
}

func (r *documentRepository) ListAll(ctx context.Context) ([]document.Document, error) {
	q := getQuerier(ctx, r.db)
	return r.query(ctx, q, `SELECT `+documentColumns+` FROM documents ORDER BY expiry_date, id`)
}

func (r *documentRepository) Update(ctx context.Context, d document.Document) error {
	q := getQuerier(ctx, r.db)
	res, err := q.ExecContext(ctx, `UPDATE documents SET category=?, file_name=?, file_type=?, file_size=?, file_path=?,
issue_date=?, expiry_date=?, status=?, updated_at=? WHERE id=?`,
		string(d.Category), d.FileName, d.FileType, d.FileSize, nullable(d.FilePath),
		formatTime(d.IssueDate), formatTime(d.ExpiryDate), string(d.Status), formatTime(d.UpdatedAt), d.ID)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepository) UpdateStatus(ctx context.Context, id string, status document.Status) error {
	q := getQuerier(ctx, r.db)
	res, err := q.ExecContext(ctx, `UPDATE documents SET status=? WHERE id=?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	q := getQuerier(ctx, r.db)
	res, err := q.ExecContext(ctx, `DELETE FROM documents WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepository) query(ctx context.Context, q querier, query string, args ...any) ([]document.Document, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var res []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}
