package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lucidata/hr-core-go/internal/domain/feedback"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type feedbackRepositoryImpl struct {
	db *database.DB
}

func NewFeedbackRepository(db *database.DB) feedback.Repository {
	return &feedbackRepositoryImpl{db: db}
}

const feedbackColumns = `id, employee_id, department, text, sentiment_score, label, analyzed_at, created_at`

func scanFeedback(row rowScanner) (feedback.Feedback, error) {
	var f feedback.Feedback
	var label string
	err := row.Scan(
		&f.ID,
		&f.EmployeeID,
		&f.Department,
		&f.Text,
		&f.SentimentScore,
		&label,
		&f.AnalyzedAt,
		&f.CreatedAt,
	)
	f.Label = feedback.Label(label)
	return f, err
}

func (r *feedbackRepositoryImpl) Create(ctx context.Context, f feedback.Feedback) (feedback.Feedback, error) {
	q := GetQuerier(ctx, r.db)

	if f.ID == "" {
		f.ID = uuid.Must(uuid.NewV7()).String()
	}
	if f.Label == "" {
		f.Label = feedback.LabelUnanalyzed
	}

	_, err := q.Exec(ctx, `
		INSERT INTO feedback (`+feedbackColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		f.ID,
		f.EmployeeID,
		f.Department,
		f.Text,
		f.SentimentScore,
		string(f.Label),
		f.AnalyzedAt,
		f.CreatedAt,
	)
	if err != nil {
		return feedback.Feedback{}, fmt.Errorf("failed to create feedback: %w", err)
	}
	return f, nil
}

func (r *feedbackRepositoryImpl) GetByID(ctx context.Context, id string) (feedback.Feedback, error) {
	q := GetQuerier(ctx, r.db)

	f, err := scanFeedback(q.QueryRow(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return feedback.Feedback{}, feedback.ErrFeedbackNotFound
		}
		return feedback.Feedback{}, fmt.Errorf("failed to get feedback: %w", err)
	}
	return f, nil
}

func (r *feedbackRepositoryImpl) List(ctx context.Context, filter feedback.Filter) ([]feedback.Feedback, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Department != nil {
		whereClause += fmt.Sprintf(" AND department = $%d", argIndex)
		args = append(args, *filter.Department)
		argIndex++
	}
	if filter.Label != nil {
		whereClause += fmt.Sprintf(" AND label = $%d", argIndex)
		args = append(args, string(*filter.Label))
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM feedback "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	query := fmt.Sprintf(`
		SELECT %s FROM feedback
		%s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, feedbackColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, pagination.Offset(page, limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var items []feedback.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, f)
	}
	return items, total, rows.Err()
}

func (r *feedbackRepositoryImpl) ListAll(ctx context.Context) ([]feedback.Feedback, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var items []feedback.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (r *feedbackRepositoryImpl) UpdateAnalysis(ctx context.Context, id string, score float64, label feedback.Label, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE feedback SET sentiment_score = $1, label = $2, analyzed_at = $3
		WHERE id = $4
	`, score, string(label), at, id)
	if err != nil {
		return fmt.Errorf("failed to update feedback analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return feedback.ErrFeedbackNotFound
	}
	return nil
}
