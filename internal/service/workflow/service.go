package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/notification"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
	"github.com/lucidata/hr-core-go/internal/service/file"
)

type WorkflowServiceImpl struct {
	repo        workflow.Repository
	fileService file.FileService
	recorder    audit.Recorder
	notifier    notification.Notifier
	now         func() time.Time
}

func NewWorkflowService(
	repo workflow.Repository,
	fileService file.FileService,
	recorder audit.Recorder,
	notifier notification.Notifier,
) workflow.WorkflowService {
	return &WorkflowServiceImpl{
		repo:        repo,
		fileService: fileService,
		recorder:    recorder,
		notifier:    notifier,
		now:         time.Now,
	}
}

// checkOwner allows the requester and HR administrators. Calls without an
// identity (CLI, jobs) are trusted.
func checkOwner(ctx context.Context, req workflow.Request) error {
	id, ok := user.IdentityFromContext(ctx)
	if !ok || id.IsAdmin() {
		return nil
	}
	if id.EmployeeID == nil || *id.EmployeeID != req.RequesterID {
		return workflow.ErrNotRequestOwner
	}
	return nil
}

// mutate is the read-check-write cycle every state change goes through.
// The write only lands if the stored version still equals the one read.
func (s *WorkflowServiceImpl) mutate(
	ctx context.Context,
	vr workflow.VersionedRequest,
	op func(current workflow.Request, at time.Time) (workflow.Request, error),
) (workflow.Request, error) {
	current, err := s.repo.GetByID(ctx, vr.ID)
	if err != nil {
		return workflow.Request{}, err
	}
	if vr.Version != nil && *vr.Version != current.Version {
		return workflow.Request{}, &workflow.ConflictError{ID: vr.ID, ExpectedVersion: *vr.Version}
	}
	if err := workflow.CheckInvariants(current); err != nil {
		return workflow.Request{}, err
	}

	next, err := op(current, s.now().UTC())
	if err != nil {
		return workflow.Request{}, err
	}
	if err := workflow.CheckInvariants(next); err != nil {
		return workflow.Request{}, fmt.Errorf("refusing write: %w", err)
	}
	return s.repo.Update(ctx, next, current.Version)
}

func (s *WorkflowServiceImpl) Create(ctx context.Context, req workflow.CreateRequestRequest) (workflow.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.RequestResponse{}, err
	}

	now := s.now().UTC()
	draft := workflow.Request{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Type:        workflow.Type(req.Type),
		RequesterID: req.RequesterID,
		Payload: workflow.Payload{
			Reason:  strings.TrimSpace(req.Reason),
			Days:    req.Days,
			Details: req.Details,
		},
		Status:    workflow.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := checkOwner(ctx, draft); err != nil {
		return workflow.RequestResponse{}, err
	}
	if req.Submit {
		submitted, err := workflow.Submit(draft, now)
		if err != nil {
			return workflow.RequestResponse{}, err
		}
		draft = submitted
	}

	created, err := s.repo.Create(ctx, draft)
	if err != nil {
		return workflow.RequestResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionCreate, audit.EntityWorkflow, created.ID, map[string]interface{}{
		"type":         string(created.Type),
		"requester_id": created.RequesterID,
		"status":       string(created.Status),
	})
	if created.Status == workflow.StatusPending {
		s.notifySubmitted(ctx, created)
	}
	return workflow.NewRequestResponse(created), nil
}

func (s *WorkflowServiceImpl) Get(ctx context.Context, id string) (workflow.RequestResponse, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return workflow.RequestResponse{}, err
	}
	if err := workflow.CheckInvariants(req); err != nil {
		return workflow.RequestResponse{}, err
	}
	return workflow.NewRequestResponse(req), nil
}

func (s *WorkflowServiceImpl) List(ctx context.Context, filter workflow.RequestFilter) (workflow.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return workflow.ListRequestResponse{}, err
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	repoFilter := workflow.Filter{
		RequesterID: filter.RequesterID,
		SortOrder:   filter.SortOrder,
		Page:        page,
		Limit:       limit,
	}
	if filter.Type != nil {
		t := workflow.Type(*filter.Type)
		repoFilter.Type = &t
	}
	if filter.Status != nil {
		st := workflow.Status(*filter.Status)
		repoFilter.Status = &st
	}

	requests, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return workflow.ListRequestResponse{}, err
	}

	resp := make([]workflow.RequestResponse, len(requests))
	for i, r := range requests {
		if err := workflow.CheckInvariants(r); err != nil {
			slog.Warn("workflow request fails invariant check", "request_id", r.ID, "error", err)
		}
		resp[i] = workflow.NewRequestResponse(r)
	}
	return workflow.ListRequestResponse{
		Requests:   resp,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: pagination.TotalPages(total, limit),
	}, nil
}

func (s *WorkflowServiceImpl) Submit(ctx context.Context, req workflow.SubmitRequest) (workflow.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.RequestResponse{}, err
	}

	updated, err := s.mutate(ctx, req.VersionedRequest, func(current workflow.Request, at time.Time) (workflow.Request, error) {
		if err := checkOwner(ctx, current); err != nil {
			return current, err
		}
		return workflow.Submit(current, at)
	})
	if err != nil {
		return workflow.RequestResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionSubmit, audit.EntityWorkflow, updated.ID, map[string]interface{}{
		"version": updated.Version,
	})
	s.notifySubmitted(ctx, updated)
	return workflow.NewRequestResponse(updated), nil
}

func (s *WorkflowServiceImpl) Decide(ctx context.Context, req workflow.DecideRequest) (workflow.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.RequestResponse{}, err
	}
	step := workflow.Step(req.Step)
	if req.ApproverRole != "" && !user.CanDecide(user.Role(req.ApproverRole), step) {
		return workflow.RequestResponse{}, workflow.ErrStepNotAllowed
	}

	updated, err := s.mutate(ctx, req.VersionedRequest, func(current workflow.Request, at time.Time) (workflow.Request, error) {
		return workflow.RecordDecision(current, step, workflow.Decision(req.Decision), req.ApproverID, req.Comment, at)
	})
	if err != nil {
		return workflow.RequestResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionDecide, audit.EntityWorkflow, updated.ID, map[string]interface{}{
		"step":     req.Step,
		"decision": req.Decision,
		"status":   string(updated.Status),
		"version":  updated.Version,
	})
	s.notifyDecided(ctx, updated, step, workflow.Decision(req.Decision))
	return workflow.NewRequestResponse(updated), nil
}

func (s *WorkflowServiceImpl) Comment(ctx context.Context, req workflow.CommentRequest) (workflow.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.RequestResponse{}, err
	}

	updated, err := s.mutate(ctx, req.VersionedRequest, func(current workflow.Request, at time.Time) (workflow.Request, error) {
		return workflow.AddComment(current, req.AuthorID, req.Text, at)
	})
	if err != nil {
		return workflow.RequestResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionComment, audit.EntityWorkflow, updated.ID, map[string]interface{}{
		"version": updated.Version,
	})
	return workflow.NewRequestResponse(updated), nil
}

func (s *WorkflowServiceImpl) Attach(ctx context.Context, req workflow.AttachRequest) (workflow.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.RequestResponse{}, err
	}

	// Upload first so a failed upload never bumps the version.
	path, err := s.fileService.UploadWorkflowAttachment(ctx, req.ID, req.File, req.FileHeader.Filename)
	if err != nil {
		return workflow.RequestResponse{}, err
	}
	att := workflow.Attachment{
		FileName: req.FileHeader.Filename,
		FileType: file.ContentType(req.FileHeader.Filename),
		FileSize: req.FileHeader.Size,
		FilePath: path,
	}

	updated, err := s.mutate(ctx, req.VersionedRequest, func(current workflow.Request, at time.Time) (workflow.Request, error) {
		return workflow.AddAttachment(current, att, at), nil
	})
	if err != nil {
		if delErr := s.fileService.DeleteFile(ctx, path); delErr != nil {
			slog.Error("failed to remove orphaned attachment", "path", path, "error", delErr)
		}
		return workflow.RequestResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionAttach, audit.EntityWorkflow, updated.ID, map[string]interface{}{
		"file_name": att.FileName,
		"file_size": att.FileSize,
	})
	return workflow.NewRequestResponse(updated), nil
}

func (s *WorkflowServiceImpl) Delete(ctx context.Context, req workflow.DeleteRequest) error {
	current, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if current.Status != workflow.StatusDraft {
		return workflow.ErrNotDeletable
	}
	if err := checkOwner(ctx, current); err != nil {
		return err
	}

	expected := current.Version
	if req.Version != nil {
		expected = *req.Version
	}
	if err := s.repo.Delete(ctx, req.ID, expected); err != nil {
		return err
	}

	for _, att := range current.Attachments {
		if att.FilePath == "" {
			continue
		}
		if err := s.fileService.DeleteFile(ctx, att.FilePath); err != nil {
			slog.Error("failed to delete attachment", "request_id", req.ID, "path", att.FilePath, "error", err)
		}
	}

	s.recorder.Record(ctx, audit.ActionDelete, audit.EntityWorkflow, req.ID, map[string]interface{}{
		"type": string(current.Type),
	})
	return nil
}

func (s *WorkflowServiceImpl) notifySubmitted(ctx context.Context, req workflow.Request) {
	s.notify(ctx, notification.CreateNotificationRequest{
		RecipientID: notification.RecipientHR,
		Type:        notification.TypeWorkflowSubmitted,
		Title:       "New request awaiting approval",
		Message:     fmt.Sprintf("A %s request was submitted and awaits the %s step.", req.Type, workflow.NextStep(req)),
		Data: map[string]interface{}{
			"request_id":   req.ID,
			"requester_id": req.RequesterID,
			"type":         string(req.Type),
		},
	})
}

func (s *WorkflowServiceImpl) notifyDecided(ctx context.Context, req workflow.Request, step workflow.Step, decision workflow.Decision) {
	message := fmt.Sprintf("Your %s request was %s at the %s step.", req.Type, strings.ToLower(string(decision)), step)
	if req.Status == workflow.StatusPending {
		message += fmt.Sprintf(" Next step: %s.", workflow.NextStep(req))
	}
	s.notify(ctx, notification.CreateNotificationRequest{
		RecipientID: req.RequesterID,
		Type:        notification.TypeWorkflowDecided,
		Title:       fmt.Sprintf("Request %s", strings.ToLower(string(decision))),
		Message:     message,
		Data: map[string]interface{}{
			"request_id": req.ID,
			"step":       string(step),
			"decision":   string(decision),
			"status":     string(req.Status),
		},
	})
}

func (s *WorkflowServiceImpl) notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.QueueNotification(ctx, req); err != nil {
		slog.Error("failed to queue notification", "type", req.Type, "recipient_id", req.RecipientID, "error", err)
	}
}
