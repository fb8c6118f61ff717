package settings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/settings"
)

// Provider reads the persisted settings row, falling back to the
// configured defaults until the row is first written.
type Provider struct {
	repo     settings.Repository
	defaults settings.Settings
}

func NewProvider(repo settings.Repository, defaults settings.Settings) *Provider {
	return &Provider{repo: repo, defaults: defaults}
}

func (p *Provider) Get(ctx context.Context) (settings.Settings, error) {
	s, err := p.repo.Get(ctx)
	if errors.Is(err, settings.ErrSettingsNotFound) {
		return p.defaults, nil
	}
	return s, err
}

func (p *Provider) WarnDays(ctx context.Context) (int, error) {
	s, err := p.Get(ctx)
	if err != nil {
		return 0, err
	}
	return s.WarnDays, nil
}

func (p *Provider) AuditActor(ctx context.Context) string {
	s, err := p.Get(ctx)
	if err != nil {
		slog.Warn("read settings failed, using default audit actor", "error", err)
		return p.defaults.AuditActor
	}
	return s.AuditActor
}

type SettingsServiceImpl struct {
	provider *Provider
	repo     settings.Repository
	recorder audit.Recorder
	now      func() time.Time
}

func NewSettingsService(provider *Provider, repo settings.Repository, recorder audit.Recorder) settings.SettingsService {
	return &SettingsServiceImpl{
		provider: provider,
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
}

func (s *SettingsServiceImpl) Get(ctx context.Context) (settings.Settings, error) {
	return s.provider.Get(ctx)
}

func (s *SettingsServiceImpl) Update(ctx context.Context, req settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}

	current, err := s.provider.Get(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}

	details := map[string]interface{}{}
	if req.WarnDays != nil {
		details["warn_days"] = map[string]int{"from": current.WarnDays, "to": *req.WarnDays}
		current.WarnDays = *req.WarnDays
	}
	if req.AuditActor != nil {
		details["audit_actor"] = map[string]string{"from": current.AuditActor, "to": *req.AuditActor}
		current.AuditActor = *req.AuditActor
	}
	current.UpdatedAt = s.now().UTC()

	if err := s.repo.Upsert(ctx, current); err != nil {
		return settings.SettingsResponse{}, err
	}
	s.recorder.Record(ctx, audit.ActionSettings, audit.EntitySettings, "global", details)

	return settings.SettingsResponse{
		WarnDays:   current.WarnDays,
		AuditActor: current.AuditActor,
		UpdatedAt:  current.UpdatedAt,
	}, nil
}
