package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/domain/feedback"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type feedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) feedback.Repository {
	return &feedbackRepository{db: db}
}

const feedbackColumns = `id, employee_id, department, text, sentiment_score, label, analyzed_at, created_at`

func scanFeedback(row rowScanner) (feedback.Feedback, error) {
	var f feedback.Feedback
	var label, createdAt string
	var analyzedAt sql.NullString
	if err := row.Scan(
		&f.ID,
		&f.EmployeeID,
		&f.Department,
		&f.Text,
		&f.SentimentScore,
		&label,
		&analyzedAt,
		&createdAt,
	); err != nil {
		return f, err
	}
	f.Label = feedback.Label(label)

	var err error
	if f.AnalyzedAt, err = parseNullTime(analyzedAt); err != nil {
		return f, err
	}
	f.CreatedAt, err = parseTime(createdAt)
	return f, err
}

func (r *feedbackRepository) Create(ctx context.Context, f feedback.Feedback) (feedback.Feedback, error) {
	q := getQuerier(ctx, r.db)
	if f.ID == "" {
		f.ID = uuid.Must(uuid.NewV7()).String()
	}
	if f.Label == "" {
		f.Label = feedback.LabelUnanalyzed
	}
	_, err := q.ExecContext(ctx, `INSERT INTO feedback(`+feedbackColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
		f.ID, nullable(f.EmployeeID), f.Department, f.Text, nullable(f.SentimentScore),
		string(f.Label), formatTimePtr(f.AnalyzedAt), formatTime(f.CreatedAt))
	if err != nil {
		return feedback.Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	return f, nil
}

func (r *feedbackRepository) GetByID(ctx context.Context, id string) (feedback.Feedback, error) {
	q := getQuerier(ctx, r.db)
	f, err := scanFeedback(q.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return feedback.Feedback{}, feedback.ErrFeedbackNotFound
	}
	return f, err
}

func (r *feedbackRepository) List(ctx context.Context, filter feedback.Filter) ([]feedback.Feedback, int64, error) {
	q := getQuerier(ctx, r.db)

	where := " WHERE 1=1"
	var args []any
	if filter.Department != nil {
		where += " AND department=?"
		args = append(args, *filter.Department)
	}
	if filter.Label != nil {
		where += " AND label=?"
		args = append(args, string(*filter.Label))
	}

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feedback: %w", err)
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	args = append(args, limit, pagination.Offset(page, limit))
	res, err := r.query(ctx, q, `SELECT `+feedbackColumns+` FROM feedback`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	return res, total, err
}

func (r *feedbackRepository) ListAll(ctx context.Context) ([]feedback.Feedback, error) {
	q := getQuerier(ctx, r.db)
	return r.query(ctx, q, `SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at, id`)
}

func (r *feedbackRepository) UpdateAnalysis(ctx context.Context, id string, score float64, label feedback.Label, at time.Time) error {
	q := getQuerier(ctx, r.db)
	res, err := q.ExecContext(ctx, `UPDATE feedback SET sentiment_score=?, label=?, analyzed_at=? WHERE id=?`,
		score, string(label), formatTime(at), id)
	if err != nil {
		return fmt.Errorf("update feedback analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return feedback.ErrFeedbackNotFound
	}
	return nil
}

func (r *feedbackRepository) query(ctx context.Context, q querier, query string, args ...any) ([]feedback.Feedback, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()
	var res []feedback.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}
