package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/settings"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type AuditServiceImpl struct {
	repo     audit.Repository
	settings settings.Provider
	now      func() time.Time
}

func NewAuditService(repo audit.Repository, settings settings.Provider) audit.AuditService {
	return &AuditServiceImpl{
		repo:     repo,
		settings: settings,
		now:      time.Now,
	}
}

// Record appends an entry attributed to the actor carried by ctx, or to
// the configured audit actor. Failures are logged, never returned.
func (s *AuditServiceImpl) Record(ctx context.Context, action audit.Action, entityType audit.EntityType, entityID string, details map[string]interface{}) {
	actor := audit.ActorFromContext(ctx, "")
	if actor == "" {
		actor = s.settings.AuditActor(ctx)
	}

	entry := audit.Entry{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		slog.Error("failed to record audit entry", "error", err, "action", action, "entity_type", entityType, "entity_id", entityID)
	}
}

func (s *AuditServiceImpl) List(ctx context.Context, filter audit.EntryFilter) (audit.ListEntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return audit.ListEntryResponse{}, err
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	repoFilter := audit.Filter{
		EntityID: filter.EntityID,
		Actor:    filter.Actor,
		Page:     page,
		Limit:    limit,
	}
	if filter.EntityType != nil {
		t := audit.EntityType(*filter.EntityType)
		repoFilter.EntityType = &t
	}

	entries, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return audit.ListEntryResponse{}, err
	}

	resp := make([]audit.EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = audit.EntryResponse{
			ID:         e.ID,
			Actor:      e.Actor,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		}
	}

	return audit.ListEntryResponse{
		Entries:    resp,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: pagination.TotalPages(total, limit),
	}, nil
}
