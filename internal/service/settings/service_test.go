package settings

import (
	"context"
	"testing"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	row *settings.Settings
}

func (r *fakeRepo) Get(ctx context.Context) (settings.Settings, error) {
	if r.row == nil {
		return settings.Settings{}, settings.ErrSettingsNotFound
	}
	return *r.row, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, s settings.Settings) error {
	r.row = &s
	return nil
}

type fakeRecorder struct{ details []map[string]interface{} }

func (f *fakeRecorder) Record(ctx context.Context, action audit.Action, entityType audit.EntityType, entityID string, details map[string]interface{}) {
	f.details = append(f.details, details)
}

func TestProvider_FallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	p := NewProvider(repo, settings.Settings{WarnDays: 30, AuditActor: "HR Admin"})

	days, err := p.WarnDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, days)
	assert.Equal(t, "HR Admin", p.AuditActor(ctx))

	repo.row = &settings.Settings{WarnDays: 60, AuditActor: "People Ops"}
	days, err = p.WarnDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, days)
	assert.Equal(t, "People Ops", p.AuditActor(ctx))
}

func TestSettingsService_Update(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	rec := &fakeRecorder{}
	p := NewProvider(repo, settings.Settings{WarnDays: 30, AuditActor: "HR Admin"})
	svc := NewSettingsService(p, repo, rec).(*SettingsServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	days := 45
	resp, err := svc.Update(ctx, settings.UpdateSettingsRequest{WarnDays: &days})
	require.NoError(t, err)
	assert.Equal(t, 45, resp.WarnDays)
	assert.Equal(t, "HR Admin", resp.AuditActor)
	require.NotNil(t, repo.row)
	assert.Equal(t, 45, repo.row.WarnDays)
	require.Len(t, rec.details, 1)
	assert.Equal(t, map[string]int{"from": 30, "to": 45}, rec.details[0]["warn_days"])

	tooMany := 365
	_, err = svc.Update(ctx, settings.UpdateSettingsRequest{WarnDays: &tooMany})
	assert.Error(t, err)
	assert.Equal(t, 45, repo.row.WarnDays)
}
