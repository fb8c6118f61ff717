package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lucidata/hr-core-go/internal/domain/settings"
)

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) settings.Repository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (settings.Settings, error) {
	q := getQuerier(ctx, r.db)
	var s settings.Settings
	var updatedAt string
	err := q.QueryRowContext(ctx, `SELECT warn_days, audit_actor, updated_at FROM settings WHERE id=1`).
		Scan(&s.WarnDays, &s.AuditActor, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.Settings{}, settings.ErrSettingsNotFound
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	s.UpdatedAt, err = parseTime(updatedAt)
	return s, err
}

func (r *settingsRepository) Upsert(ctx context.Context, s settings.Settings) error {
	q := getQuerier(ctx, r.db)
	_, err := q.ExecContext(ctx, `INSERT INTO settings(id, warn_days, audit_actor, updated_at) VALUES (1,?,?,?)
ON CONFLICT(id) DO UPDATE SET warn_days=excluded.warn_days, audit_actor=excluded.audit_actor, updated_at=excluded.updated_at`,
		s.WarnDays, s.AuditActor, formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
