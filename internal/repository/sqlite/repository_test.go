package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/domain/employee"
	"github.com/lucidata/hr-core-go/internal/domain/feedback"
	"github.com/lucidata/hr-core-go/internal/domain/notification"
	"github.com/lucidata/hr-core-go/internal/domain/settings"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "hr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateSQLite(context.Background(), db))
	return db
}

func seedEmployee(t *testing.T, db *sql.DB, first, email string, managerID *string) employee.Employee {
	t.Helper()
	e, err := NewEmployeeRepository(db).Create(context.Background(), employee.Employee{
		FirstName:    first,
		LastName:     "Tester",
		EmailCompany: email,
		Department:   "Engineering",
		Role:         "Engineer",
		ManagerID:    managerID,
		Status:       employee.EmploymentStatusActive,
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	})
	require.NoError(t, err)
	return e
}

func TestEmployeeRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewEmployeeRepository(db)

	boss := seedEmployee(t, db, "Ada", "ada@lucidata.io", nil)
	report := seedEmployee(t, db, "Bob", "bob@lucidata.io", &boss.ID)

	got, err := repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ManagerID)
	assert.Equal(t, boss.ID, *got.ManagerID)
	assert.Nil(t, got.Phone)
	assert.True(t, got.CreatedAt.Equal(baseTime))

	byEmail, err := repo.GetByEmail(ctx, "ada@lucidata.io")
	require.NoError(t, err)
	assert.Equal(t, boss.ID, byEmail.ID)

	count, err := repo.CountReports(ctx, boss.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	phone := "+62 811 000"
	got.Phone = &phone
	got.Department = "Platform"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Phone)
	assert.Equal(t, phone, *got.Phone)

	search := "bob"
	list, total, err := repo.List(ctx, employee.Filter{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, report.ID, list[0].ID)

	require.NoError(t, repo.Delete(ctx, report.ID))
	_, err = repo.GetByID(ctx, report.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	seedEmployee(t, db, "Ada", "ada@lucidata.io", nil)

	_, err := NewEmployeeRepository(db).Create(context.Background(), employee.Employee{
		FirstName:    "Other",
		LastName:     "Ada",
		EmailCompany: "ada@lucidata.io",
		Department:   "Engineering",
		Role:         "Engineer",
		Status:       employee.EmploymentStatusActive,
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	})
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestDocumentRepository_ExpiryWindow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	owner := seedEmployee(t, db, "Ada", "ada@lucidata.io", nil)
	repo := NewDocumentRepository(db)

	now := baseTime
	expiries := map[string]time.Time{
		"expired.pdf":  now.AddDate(0, 0, -10),
		"warning.pdf":  now.AddDate(0, 0, 5),
		"ok.pdf":       now.AddDate(0, 0, 90),
		"boundary.pdf": now.AddDate(0, 0, 30),
	}
	for name, expiry := range expiries {
		_, err := repo.Create(ctx, document.Document{
			EmployeeID: owner.ID,
			Category:   document.CategoryContract,
			FileName:   name,
			IssueDate:  now.AddDate(-1, 0, 0),
			ExpiryDate: expiry,
			Status:     document.StatusOK,
			UploadedAt: now,
			UpdatedAt:  now,
		})
		require.NoError(t, err)
	}

	names := func(status document.Status) []string {
		after, until, err := document.ExpiryWindow(status, 30, now)
		require.NoError(t, err)
		docs, total, err := repo.List(ctx, document.Filter{ExpiresAfter: after, ExpiresUntil: until})
		require.NoError(t, err)
		assert.Equal(t, int64(len(docs)), total)
		var out []string
		for _, d := range docs {
			out = append(out, d.FileName)
		}
		return out
	}

	assert.Equal(t, []string{"expired.pdf"}, names(document.StatusExpired))
	assert.Equal(t, []string{"warning.pdf", "boundary.pdf"}, names(document.StatusWarning))
	assert.Equal(t, []string{"ok.pdf"}, names(document.StatusOK))
}

func TestDocumentRepository_UnknownEmployee(t *testing.T) {
	db := newTestDB(t)
	_, err := NewDocumentRepository(db).Create(context.Background(), document.Document{
		EmployeeID: "missing",
		Category:   document.CategoryDiploma,
		FileName:   "diploma.pdf",
		IssueDate:  baseTime,
		ExpiryDate: baseTime.AddDate(5, 0, 0),
		Status:     document.StatusOK,
		UploadedAt: baseTime,
		UpdatedAt:  baseTime,
	})
	assert.ErrorIs(t, err, document.ErrEmployeeNotFound)
}

func TestWorkflowRepository_VersionedUpdate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	requester := seedEmployee(t, db, "Ada", "ada@lucidata.io", nil)
	repo := NewWorkflowRepository(db)

	days := 3
	created, err := repo.Create(ctx, workflow.Request{
		Type:        workflow.TypeLeave,
		RequesterID: requester.ID,
		Payload:     workflow.Payload{Reason: "holiday", Days: &days},
		Status:      workflow.StatusDraft,
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)

	submitted, err := workflow.Submit(created, baseTime.Add(time.Hour))
	require.NoError(t, err)
	updated, err := repo.Update(ctx, submitted, created.Version)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPending, stored.Status)
	assert.Equal(t, 2, stored.Version)
	require.Len(t, stored.Approvals, 1)
	assert.Equal(t, workflow.StepManager, stored.Approvals[0].Step)
	assert.Nil(t, stored.Approvals[0].Decision)
	require.NotNil(t, stored.Payload.Days)
	assert.Equal(t, 3, *stored.Payload.Days)

	_, err = repo.Update(ctx, submitted, created.Version)
	var conflict *workflow.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	err = repo.Delete(ctx, created.ID, 1)
	assert.ErrorIs(t, err, workflow.ErrConflict)
	require.NoError(t, repo.Delete(ctx, created.ID, 2))

	_, err = repo.Update(ctx, submitted, 2)
	assert.ErrorIs(t, err, workflow.ErrRequestNotFound)
}

func TestFeedbackRepository_Analysis(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewFeedbackRepository(db)

	f, err := repo.Create(ctx, feedback.Feedback{Department: "Sales", Text: "Great quarter", CreatedAt: baseTime})
	require.NoError(t, err)
	assert.True(t, f.IsAnonymous())
	assert.Equal(t, feedback.LabelUnanalyzed, f.Label)

	require.NoError(t, repo.UpdateAnalysis(ctx, f.ID, 0.8, feedback.LabelPositive, baseTime.Add(time.Hour)))
	got, err := repo.GetByID(ctx, f.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SentimentScore)
	assert.InDelta(t, 0.8, *got.SentimentScore, 1e-9)
	assert.Equal(t, feedback.LabelPositive, got.Label)
	require.NotNil(t, got.AnalyzedAt)

	assert.ErrorIs(t, repo.UpdateAnalysis(ctx, "missing", 0, feedback.LabelNeutral, baseTime), feedback.ErrFeedbackNotFound)
}

func TestAuditRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepository(newTestDB(t))

	for i, action := range []audit.Action{audit.ActionCreate, audit.ActionUpdate} {
		require.NoError(t, repo.Create(ctx, audit.Entry{
			Actor:      "HR Admin",
			Action:     action,
			EntityType: audit.EntityEmployee,
			EntityID:   "emp-1",
			Details:    map[string]interface{}{"step": i},
			CreatedAt:  baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}

	entityType := audit.EntityEmployee
	entries, total, err := repo.List(ctx, audit.Filter{EntityType: &entityType})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionUpdate, entries[0].Action)
	assert.EqualValues(t, 1, entries[0].Details["step"])
}

func TestNotificationRepository_Recipients(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(newTestDB(t))

	require.NoError(t, repo.CreateBatch(ctx, []*notification.Notification{
		{RecipientID: notification.RecipientHR, Type: notification.TypeDocumentExpired, Title: "Expired", Message: "m", CreatedAt: baseTime},
		{RecipientID: "emp-1", Type: notification.TypeWorkflowDecided, Title: "Decided", Message: "m", CreatedAt: baseTime.Add(time.Minute)},
		{RecipientID: "emp-2", Type: notification.TypeWorkflowDecided, Title: "Other", Message: "m", CreatedAt: baseTime},
	}))

	inboxes := []string{"emp-1", notification.RecipientHR}
	list, total, err := repo.GetByRecipients(ctx, inboxes, 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Decided", list[0].Title)

	require.NoError(t, repo.MarkAsRead(ctx, []string{list[0].ID}, inboxes, baseTime.Add(time.Hour)))
	unread, err := repo.GetUnreadCount(ctx, inboxes)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, repo.MarkAllAsRead(ctx, inboxes, baseTime.Add(time.Hour)))
	unread, err = repo.GetUnreadCount(ctx, inboxes)
	require.NoError(t, err)
	assert.Zero(t, unread)

	assert.ErrorIs(t, repo.Delete(ctx, list[0].ID, []string{"emp-2"}), notification.ErrNotificationNotFound)
	require.NoError(t, repo.Delete(ctx, list[0].ID, inboxes))
}

func TestSettingsRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t))

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, settings.ErrSettingsNotFound)

	require.NoError(t, repo.Upsert(ctx, settings.Settings{WarnDays: 30, AuditActor: "HR Admin", UpdatedAt: baseTime}))
	require.NoError(t, repo.Upsert(ctx, settings.Settings{WarnDays: 45, AuditActor: "People Ops", UpdatedAt: baseTime}))

	s, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, s.WarnDays)
	assert.Equal(t, "People Ops", s.AuditActor)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSettingsRepository(db)

	err := WithTransaction(ctx, db, func(ctx context.Context) error {
		require.NoError(t, repo.Upsert(ctx, settings.Settings{WarnDays: 30, AuditActor: "x", UpdatedAt: baseTime}))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = repo.Get(ctx)
	assert.ErrorIs(t, err, settings.ErrSettingsNotFound)
}
