package settings

import "context"

type SettingsService interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
}

// Provider exposes the current warning threshold to readers that
// recompute document status.
type Provider interface {
	WarnDays(ctx context.Context) (int, error)
	AuditActor(ctx context.Context) string
}
