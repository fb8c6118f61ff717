package settings

import "context"

type Repository interface {
	// Get returns ErrSettingsNotFound when the row was never written.
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, s Settings) error
}
