package http

import (
	"net/http"

	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/lucidata/hr-core-go/internal/handler/http/response"
)

// SelfServiceHandler serves the /me routes. Every query and create is
// pinned to the employee_id claim, whatever the request says.
type SelfServiceHandler interface {
	MyDocuments(w http.ResponseWriter, r *http.Request)
	MyWorkflows(w http.ResponseWriter, r *http.Request)
	CreateMyWorkflow(w http.ResponseWriter, r *http.Request)
}

type selfServiceHandlerImpl struct {
	documentService document.DocumentService
	workflowService workflow.WorkflowService
}

func NewSelfServiceHandler(documentService document.DocumentService, workflowService workflow.WorkflowService) SelfServiceHandler {
	return &selfServiceHandlerImpl{
		documentService: documentService,
		workflowService: workflowService,
	}
}

func callerEmployeeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := user.IdentityFromContext(r.Context())
	if !ok || id.EmployeeID == nil {
		response.HandleError(w, user.ErrNoEmployeeLink)
		return "", false
	}
	return *id.EmployeeID, true
}

func (h *selfServiceHandlerImpl) MyDocuments(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployeeID(w, r)
	if !ok {
		return
	}

	filter := documentFilterFromQuery(r)
	filter.EmployeeID = &employeeID

	result, err := h.documentService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, result.Documents, result.Page, result.Limit, result.TotalCount, result.TotalPages)
}

func (h *selfServiceHandlerImpl) MyWorkflows(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployeeID(w, r)
	if !ok {
		return
	}

	filter := workflow.RequestFilter{
		RequesterID: &employeeID,
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

func (h *selfServiceHandlerImpl) CreateMyWorkflow(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployeeID(w, r)
	if !ok {
		return
	}

	var req workflow.CreateRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RequesterID = employeeID

	result, err := h.workflowService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Workflow request created successfully", result)
}
