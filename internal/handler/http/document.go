package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/handler/http/response"
	"github.com/lucidata/hr-core-go/internal/service/file"
)

type DocumentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Expiring(w http.ResponseWriter, r *http.Request)
}

type documentHandlerImpl struct {
	documentService document.DocumentService
	now             func() time.Time
}

func NewDocumentHandler(documentService document.DocumentService) DocumentHandler {
	return &documentHandlerImpl{documentService: documentService, now: time.Now}
}

// parseCreateDocument reads either a JSON body or a multipart form with
// the JSON in the 'data' field and the file in 'file'.
func parseCreateDocument(w http.ResponseWriter, r *http.Request) (document.CreateDocumentRequest, func(), bool) {
	var req document.CreateDocumentRequest
	cleanup := func() {}

	if !isMultipart(r) {
		if err := decodeJSON(r, &req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return req, cleanup, false
		}
		return req, cleanup, true
	}

	if err := r.ParseMultipartForm(file.MaxUploadSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return req, cleanup, false
	}

	dataJSON := r.FormValue("data")
	if dataJSON == "" {
		response.BadRequest(w, "Field 'data' is required", nil)
		return req, cleanup, false
	}
	if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return req, cleanup, false
	}

	f, header, err := r.FormFile("file")
	if err == nil {
		req.File = f
		req.FileHeader = header
		cleanup = func() { f.Close() }
	}
	return req, cleanup, true
}

func (h *documentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	req, cleanup, ok := parseCreateDocument(w, r)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.documentService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Document created successfully", result)
}

func (h *documentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.documentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func documentFilterFromQuery(r *http.Request) document.DocumentFilter {
	return document.DocumentFilter{
		EmployeeID: queryPtr(r, "employee_id"),
		Category:   queryPtr(r, "category"),
		Status:     queryPtr(r, "status"),
		Search:     queryPtr(r, "search"),
		SortBy:     r.URL.Query().Get("sort_by"),
		SortOrder:  r.URL.Query().Get("sort_order"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}
}

func (h *documentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.documentService.List(r.Context(), documentFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, result.Documents, result.Page, result.Limit, result.TotalCount, result.TotalPages)
}

func (h *documentHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req document.UpdateDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.documentService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Document updated successfully", result)
}

func (h *documentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.documentService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Document deleted successfully", nil)
}

// Expiring lists Warning and Expired documents, most urgent first.
func (h *documentHandlerImpl) Expiring(w http.ResponseWriter, r *http.Request) {
	result, err := h.documentService.ListExpiring(r.Context(), h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
