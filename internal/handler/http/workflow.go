package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/lucidata/hr-core-go/internal/handler/http/response"
	"github.com/lucidata/hr-core-go/internal/service/file"
)

type WorkflowHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	Comment(w http.ResponseWriter, r *http.Request)
	Attach(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type workflowHandlerImpl struct {
	workflowService workflow.WorkflowService
}

func NewWorkflowHandler(workflowService workflow.WorkflowService) WorkflowHandler {
	return &workflowHandlerImpl{workflowService: workflowService}
}

// actorID is the id recorded on approvals and comments: the caller's
// employee record when the token links one, otherwise the token subject.
func actorID(id user.Identity) string {
	if id.EmployeeID != nil {
		return *id.EmployeeID
	}
	return id.Subject
}

func (h *workflowHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req workflow.CreateRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.workflowService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Workflow request created successfully", result)
}

func (h *workflowHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.workflowService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *workflowHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := workflow.RequestFilter{
		RequesterID: queryPtr(r, "requester_id"),
		Type:        queryPtr(r, "type"),
		Status:      queryPtr(r, "status"),
		SortOrder:   r.URL.Query().Get("sort_order"),
		Page:        getIntQueryParam(r, "page", 1),
		Limit:       getIntQueryParam(r, "limit", 20),
	}

	result, err := h.workflowService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, result.Requests, result.Page, result.Limit, result.TotalCount, result.TotalPages)
}

func (h *workflowHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req workflow.SubmitRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.workflowService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Workflow request submitted", result)
}

func (h *workflowHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	var req workflow.DecideRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	id, ok := user.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	req.ApproverID = actorID(id)
	req.ApproverRole = string(id.Role)

	result, err := h.workflowService.Decide(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Decision recorded", result)
}

func (h *workflowHandlerImpl) Comment(w http.ResponseWriter, r *http.Request) {
	var req workflow.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	if id, ok := user.IdentityFromContext(r.Context()); ok {
		req.AuthorID = actorID(id)
	}

	result, err := h.workflowService.Comment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Comment added", result)
}

// Attach expects a multipart form with the file in 'file' and an optional
// 'version' field.
func (h *workflowHandlerImpl) Attach(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(file.MaxUploadSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	req := workflow.AttachRequest{}
	req.ID = chi.URLParam(r, "id")
	if v := r.FormValue("version"); v != "" {
		version, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "version must be a number", nil)
			return
		}
		req.Version = &version
	}

	f, header, err := r.FormFile("file")
	if err == nil {
		defer f.Close()
		req.File = f
		req.FileHeader = header
	}

	result, err := h.workflowService.Attach(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attachment added", result)
}

func (h *workflowHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	req := workflow.DeleteRequest{}
	req.ID = chi.URLParam(r, "id")
	if v := r.URL.Query().Get("version"); v != "" {
		version, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "version must be a number", nil)
			return
		}
		req.Version = &version
	}

	if err := h.workflowService.Delete(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Workflow request deleted", nil)
}
