package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lucidata/hr-core-go/internal/domain/settings"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
)

type settingsRepositoryImpl struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.Repository {
	return &settingsRepositoryImpl{db: db}
}

func (r *settingsRepositoryImpl) Get(ctx context.Context) (settings.Settings, error) {
	q := GetQuerier(ctx, r.db)

	var s settings.Settings
	err := q.QueryRow(ctx, `SELECT warn_days, audit_actor, updated_at FROM settings WHERE id = 1`).
		Scan(&s.WarnDays, &s.AuditActor, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Settings{}, settings.ErrSettingsNotFound
		}
		return settings.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

func (r *settingsRepositoryImpl) Upsert(ctx context.Context, s settings.Settings) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO settings (id, warn_days, audit_actor, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			warn_days = EXCLUDED.warn_days,
			audit_actor = EXCLUDED.audit_actor,
			updated_at = EXCLUDED.updated_at
	`, s.WarnDays, s.AuditActor, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
