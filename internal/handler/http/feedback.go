package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lucidata/hr-core-go/internal/domain/feedback"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/handler/http/response"
)

type FeedbackHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	RecordAnalysis(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
}

type feedbackHandlerImpl struct {
	feedbackService feedback.FeedbackService
}

func NewFeedbackHandler(feedbackService feedback.FeedbackService) FeedbackHandler {
	return &feedbackHandlerImpl{feedbackService: feedbackService}
}

// Submit stores feedback. Unless the body asks for anonymity, it is tied
// to the caller's employee record.
func (h *feedbackHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req feedback.SubmitFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if id, ok := user.IdentityFromContext(r.Context()); ok && id.EmployeeID != nil {
		req.EmployeeID = id.EmployeeID
	}
	if req.EmployeeID == nil {
		req.Anonymous = true
	}

	result, err := h.feedbackService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Feedback submitted", result)
}

func (h *feedbackHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := feedback.FeedbackFilter{
		Department: queryPtr(r, "department"),
		Label:      queryPtr(r, "label"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	result, err := h.feedbackService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, result.Feedback, result.Page, result.Limit, result.TotalCount, result.TotalPages)
}

func (h *feedbackHandlerImpl) RecordAnalysis(w http.ResponseWriter, r *http.Request) {
	var req feedback.RecordAnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.feedbackService.RecordAnalysis(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Analysis recorded", result)
}

func (h *feedbackHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.feedbackService.Dashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
