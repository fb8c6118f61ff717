package feedback

import (
	"context"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/feedback"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type FeedbackServiceImpl struct {
	repo     feedback.Repository
	recorder audit.Recorder
	now      func() time.Time
}

func NewFeedbackService(repo feedback.Repository, recorder audit.Recorder) feedback.FeedbackService {
	return &FeedbackServiceImpl{
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
}

func (s *FeedbackServiceImpl) Submit(ctx context.Context, req feedback.SubmitFeedbackRequest) (feedback.FeedbackResponse, error) {
	if err := req.Validate(); err != nil {
		return feedback.FeedbackResponse{}, err
	}

	item := feedback.Feedback{
		Department: req.DepartmentOrDefault(),
		Text:       req.Text,
		Label:      feedback.LabelUnanalyzed,
		CreatedAt:  s.now().UTC(),
	}
	if !req.Anonymous {
		item.EmployeeID = req.EmployeeID
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return feedback.FeedbackResponse{}, err
	}
	s.recorder.Record(ctx, audit.ActionCreate, audit.EntityFeedback, created.ID, map[string]interface{}{
		"department": created.Department,
		"anonymous":  created.IsAnonymous(),
	})
	return feedback.NewFeedbackResponse(created), nil
}

func (s *FeedbackServiceImpl) List(ctx context.Context, filter feedback.FeedbackFilter) (feedback.ListFeedbackResponse, error) {
	if err := filter.Validate(); err != nil {
		return feedback.ListFeedbackResponse{}, err
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	repoFilter := feedback.Filter{Department: filter.Department, Page: page, Limit: limit}
	if filter.Label != nil {
		l := feedback.Label(*filter.Label)
		repoFilter.Label = &l
	}

	items, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return feedback.ListFeedbackResponse{}, err
	}

	resp := make([]feedback.FeedbackResponse, len(items))
	for i, f := range items {
		resp[i] = feedback.NewFeedbackResponse(f)
	}
	return feedback.ListFeedbackResponse{
		Feedback:   resp,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: pagination.TotalPages(total, limit),
	}, nil
}

func (s *FeedbackServiceImpl) RecordAnalysis(ctx context.Context, req feedback.RecordAnalysisRequest) (feedback.FeedbackResponse, error) {
	if err := req.Validate(); err != nil {
		return feedback.FeedbackResponse{}, err
	}

	label := feedback.Label(req.Label)
	if err := s.repo.UpdateAnalysis(ctx, req.ID, req.Score, label, s.now().UTC()); err != nil {
		return feedback.FeedbackResponse{}, err
	}
	updated, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return feedback.FeedbackResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionAnalyze, audit.EntityFeedback, req.ID, map[string]interface{}{
		"score": req.Score,
		"label": req.Label,
	})
	return feedback.NewFeedbackResponse(updated), nil
}

func (s *FeedbackServiceImpl) Dashboard(ctx context.Context) (feedback.Dashboard, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return feedback.Dashboard{}, err
	}
	return feedback.Summarize(items), nil
}
