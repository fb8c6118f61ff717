package workflow

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/notification"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requesterID = "0190f7a4-7c1e-7000-8000-000000000001"

type fakeRepo struct {
	mu   sync.Mutex
	rows map[string]workflow.Request
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[string]workflow.Request{}}
}

func (r *fakeRepo) Create(ctx context.Context, req workflow.Request) (workflow.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.Version = 1
	r.rows[req.ID] = req
	return req, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (workflow.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.rows[id]
	if !ok {
		return workflow.Request{}, workflow.ErrRequestNotFound
	}
	return req, nil
}

func (r *fakeRepo) List(ctx context.Context, filter workflow.Filter) ([]workflow.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []workflow.Request
	for _, req := range r.rows {
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) Update(ctx context.Context, req workflow.Request, expectedVersion int) (workflow.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[req.ID]
	if !ok {
		return workflow.Request{}, workflow.ErrRequestNotFound
	}
	if stored.Version != expectedVersion {
		return workflow.Request{}, &workflow.ConflictError{ID: req.ID, ExpectedVersion: expectedVersion}
	}
	req.Version = expectedVersion + 1
	r.rows[req.ID] = req
	return req, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[id]
	if !ok {
		return workflow.ErrRequestNotFound
	}
	if stored.Version != expectedVersion {
		return &workflow.ConflictError{ID: id, ExpectedVersion: expectedVersion}
	}
	delete(r.rows, id)
	return nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	actions []audit.Action
}

func (f *fakeRecorder) Record(ctx context.Context, action audit.Action, entityType audit.EntityType, entityID string, details map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (f *fakeNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil
}

type fakeFiles struct {
	uploaded []string
	deleted  []string
}

func (f *fakeFiles) UploadDocument(ctx context.Context, employeeID string, file io.Reader, filename string, category string) (string, error) {
	return "documents/" + filename, nil
}

func (f *fakeFiles) UploadWorkflowAttachment(ctx context.Context, requestID string, file io.Reader, filename string) (string, error) {
	path := "workflows/" + requestID + "/" + filename
	f.uploaded = append(f.uploaded, path)
	return path, nil
}

func (f *fakeFiles) DeleteFile(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeFiles) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "http://files.test/" + path, nil
}

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

type fixture struct {
	svc      *WorkflowServiceImpl
	repo     *fakeRepo
	recorder *fakeRecorder
	notifier *fakeNotifier
	files    *fakeFiles
}

func newFixture() fixture {
	f := fixture{
		repo:     newFakeRepo(),
		recorder: &fakeRecorder{},
		notifier: &fakeNotifier{},
		files:    &fakeFiles{},
	}
	var mu sync.Mutex
	clock := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	f.svc = NewWorkflowService(f.repo, f.files, f.recorder, f.notifier).(*WorkflowServiceImpl)
	f.svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}
	return f
}

func intPtr(v int) *int { return &v }

func (f fixture) createLeave(t *testing.T, submit bool) workflow.RequestResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), workflow.CreateRequestRequest{
		Type:        string(workflow.TypeLeave),
		RequesterID: requesterID,
		Reason:      "family trip",
		Days:        intPtr(3),
		Submit:      submit,
	})
	require.NoError(t, err)
	return resp
}

func decide(step workflow.Step, decision workflow.Decision, role user.Role, id string, version int) workflow.DecideRequest {
	return workflow.DecideRequest{
		VersionedRequest: workflow.VersionedRequest{ID: id, Version: &version},
		Step:             string(step),
		Decision:         string(decision),
		ApproverID:       "approver-" + string(role),
		ApproverRole:     string(role),
	}
}

func TestWorkflowService_FullApproval(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created := f.createLeave(t, false)
	assert.Equal(t, workflow.StatusDraft, created.Status)
	assert.Equal(t, workflow.NextDraft, created.NextStep)

	submitted, err := f.svc.Submit(ctx, workflow.SubmitRequest{VersionedRequest: workflow.VersionedRequest{ID: created.ID}})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPending, submitted.Status)
	assert.Equal(t, string(workflow.StepManager), submitted.NextStep)
	assert.Equal(t, 2, submitted.Version)

	resp := submitted
	steps := []struct {
		step workflow.Step
		role user.Role
		next string
	}{
		{workflow.StepManager, user.RoleManager, string(workflow.StepHR)},
		{workflow.StepHR, user.RoleHR, string(workflow.StepFinance)},
		{workflow.StepFinance, user.RoleFinance, workflow.NextDone},
	}
	for _, s := range steps {
		resp, err = f.svc.Decide(ctx, decide(s.step, workflow.DecisionApproved, s.role, created.ID, resp.Version))
		require.NoError(t, err, s.step)
		assert.Equal(t, s.next, resp.NextStep)
	}
	assert.Equal(t, workflow.StatusApproved, resp.Status)
	assert.Equal(t, 5, resp.Version)
	// placeholder + three decisions
	assert.Len(t, resp.Approvals, 4)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, got.Status)

	assert.Equal(t, []audit.Action{
		audit.ActionCreate, audit.ActionSubmit, audit.ActionDecide, audit.ActionDecide, audit.ActionDecide,
	}, f.recorder.actions)

	require.Len(t, f.notifier.sent, 4)
	assert.Equal(t, notification.RecipientHR, f.notifier.sent[0].RecipientID)
	assert.Equal(t, notification.TypeWorkflowSubmitted, f.notifier.sent[0].Type)
	for _, n := range f.notifier.sent[1:] {
		assert.Equal(t, requesterID, n.RecipientID)
		assert.Equal(t, notification.TypeWorkflowDecided, n.Type)
	}
}

func TestWorkflowService_RejectionIsFinal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created := f.createLeave(t, true)

	resp, err := f.svc.Decide(ctx, decide(workflow.StepManager, workflow.DecisionRejected, user.RoleManager, created.ID, created.Version))
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, resp.Status)
	assert.Equal(t, workflow.NextRejected, resp.NextStep)

	_, err = f.svc.Decide(ctx, decide(workflow.StepHR, workflow.DecisionApproved, user.RoleHR, created.ID, resp.Version))
	var transition *workflow.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, workflow.StatusRejected, transition.From)

	// comments stay legal on terminal requests
	commented, err := f.svc.Comment(ctx, workflow.CommentRequest{
		VersionedRequest: workflow.VersionedRequest{ID: created.ID},
		Text:             "noted",
		AuthorID:         "hr-1",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, commented.Status)
	assert.Equal(t, workflow.NextRejected, commented.NextStep)
}

func TestWorkflowService_DecisionErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created := f.createLeave(t, true)

	_, err := f.svc.Decide(ctx, decide(workflow.StepHR, workflow.DecisionApproved, user.RoleHR, created.ID, created.Version))
	var seq *workflow.OutOfSequenceError
	require.ErrorAs(t, err, &seq)
	assert.Equal(t, string(workflow.StepManager), seq.Expected)

	_, err = f.svc.Decide(ctx, decide(workflow.StepManager, workflow.DecisionApproved, user.RoleFinance, created.ID, created.Version))
	assert.ErrorIs(t, err, workflow.ErrStepNotAllowed)

	_, err = f.svc.Decide(ctx, decide(workflow.StepManager, workflow.DecisionApproved, user.RoleHRAdmin, created.ID, created.Version+1))
	assert.ErrorIs(t, err, workflow.ErrConflict)

	_, err = f.svc.Decide(ctx, decide(workflow.StepManager, workflow.DecisionApproved, user.RoleHRAdmin, "missing", 1))
	assert.ErrorIs(t, err, workflow.ErrRequestNotFound)

	stored, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Version, stored.Version)
}

func TestWorkflowService_ConcurrentDecisionsOneWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created := f.createLeave(t, true)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Decide(ctx, decide(workflow.StepManager, workflow.DecisionApproved, user.RoleManager, created.ID, created.Version))
		}(i)
	}
	wg.Wait()

	succeeded := slices.IndexFunc(errs, func(err error) bool { return err == nil })
	require.NotEqual(t, -1, succeeded)
	for i, err := range errs {
		if i != succeeded {
			assert.ErrorIs(t, err, workflow.ErrConflict)
		}
	}

	stored, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, stored.Version)
	assert.NoError(t, workflow.CheckInvariants(stored))
}

func TestWorkflowService_RefusesInconsistentRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created := f.createLeave(t, true)

	// corrupt the stored record: Approved without the three approvals
	stored, _ := f.repo.GetByID(ctx, created.ID)
	stored.Status = workflow.StatusApproved
	f.repo.rows[created.ID] = stored

	_, err := f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, workflow.ErrInconsistentState)

	_, err = f.svc.Comment(ctx, workflow.CommentRequest{VersionedRequest: workflow.VersionedRequest{ID: created.ID}, Text: "hi"})
	assert.ErrorIs(t, err, workflow.ErrInconsistentState)
}

func TestWorkflowService_AttachAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created := f.createLeave(t, false)

	resp, err := f.svc.Attach(ctx, workflow.AttachRequest{
		VersionedRequest: workflow.VersionedRequest{ID: created.ID},
		File:             memFile{bytes.NewReader([]byte("ticket"))},
		FileHeader:       &multipart.FileHeader{Filename: "ticket.pdf", Size: 6},
	})
	require.NoError(t, err)
	require.Len(t, resp.Attachments, 1)
	assert.Equal(t, "application/pdf", resp.Attachments[0].FileType)
	assert.Equal(t, workflow.StatusDraft, resp.Status)

	// stale version: the uploaded file is cleaned up
	stale := 1
	_, err = f.svc.Attach(ctx, workflow.AttachRequest{
		VersionedRequest: workflow.VersionedRequest{ID: created.ID, Version: &stale},
		File:             memFile{bytes.NewReader([]byte("x"))},
		FileHeader:       &multipart.FileHeader{Filename: "late.pdf", Size: 1},
	})
	assert.ErrorIs(t, err, workflow.ErrConflict)
	assert.Contains(t, f.files.deleted, "workflows/"+created.ID+"/late.pdf")

	require.NoError(t, f.svc.Delete(ctx, workflow.DeleteRequest{VersionedRequest: workflow.VersionedRequest{ID: created.ID}}))
	assert.Contains(t, f.files.deleted, "workflows/"+created.ID+"/ticket.pdf")

	pending := f.createLeave(t, true)
	err = f.svc.Delete(ctx, workflow.DeleteRequest{VersionedRequest: workflow.VersionedRequest{ID: pending.ID}})
	assert.ErrorIs(t, err, workflow.ErrNotDeletable)
}

func TestWorkflowService_OwnerChecks(t *testing.T) {
	other := "0190f7a4-7c1e-7000-8000-000000000002"
	f := newFixture()
	created := f.createLeave(t, false)

	employeeCtx := user.WithIdentity(context.Background(), user.Identity{Subject: "x", Role: user.RoleEmployee, EmployeeID: &other})
	_, err := f.svc.Submit(employeeCtx, workflow.SubmitRequest{VersionedRequest: workflow.VersionedRequest{ID: created.ID}})
	assert.ErrorIs(t, err, workflow.ErrNotRequestOwner)

	_, err = f.svc.Create(employeeCtx, workflow.CreateRequestRequest{
		Type: string(workflow.TypeEquipment), RequesterID: requesterID, Reason: "laptop",
	})
	assert.ErrorIs(t, err, workflow.ErrNotRequestOwner)

	adminCtx := user.WithIdentity(context.Background(), user.Identity{Subject: "admin", Role: user.RoleHRAdmin})
	_, err = f.svc.Submit(adminCtx, workflow.SubmitRequest{VersionedRequest: workflow.VersionedRequest{ID: created.ID}})
	assert.NoError(t, err)
}
