package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	entries []audit.Entry
	err     error
}

func (r *fakeRepo) Create(ctx context.Context, entry audit.Entry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, int64, error) {
	var out []audit.Entry
	for _, e := range r.entries {
		if filter.EntityType != nil && e.EntityType != *filter.EntityType {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

type fixedSettings struct{}

func (fixedSettings) WarnDays(ctx context.Context) (int, error) { return 30, nil }
func (fixedSettings) AuditActor(ctx context.Context) string     { return "HR Admin" }

func TestAuditService_ActorResolution(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewAuditService(repo, fixedSettings{}).(*AuditServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC) }

	svc.Record(context.Background(), audit.ActionCreate, audit.EntityEmployee, "e1", nil)
	svc.Record(audit.WithActor(context.Background(), "maria@lucidata.io"), audit.ActionDelete, audit.EntityDocument, "d1", nil)

	require.Len(t, repo.entries, 2)
	assert.Equal(t, "HR Admin", repo.entries[0].Actor)
	assert.Equal(t, "maria@lucidata.io", repo.entries[1].Actor)
	assert.False(t, repo.entries[1].CreatedAt.IsZero())

	entityType := string(audit.EntityDocument)
	resp, err := svc.List(context.Background(), audit.EntryFilter{EntityType: &entityType})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Equal(t, "d1", resp.Entries[0].EntityID)

	bad := "payroll"
	_, err = svc.List(context.Background(), audit.EntryFilter{EntityType: &bad})
	assert.Error(t, err)
}

func TestAuditService_RecordSwallowsErrors(t *testing.T) {
	repo := &fakeRepo{err: errors.New("disk full")}
	svc := NewAuditService(repo, fixedSettings{})

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), audit.ActionUpdate, audit.EntitySettings, "global", nil)
	})
}
