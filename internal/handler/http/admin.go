package http

import (
	"net/http"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/settings"
	"github.com/lucidata/hr-core-go/internal/handler/http/response"
)

type AdminHandler interface {
	ListAudit(w http.ResponseWriter, r *http.Request)
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
}

type adminHandlerImpl struct {
	auditService    audit.AuditService
	settingsService settings.SettingsService
}

func NewAdminHandler(auditService audit.AuditService, settingsService settings.SettingsService) AdminHandler {
	return &adminHandlerImpl{
		auditService:    auditService,
		settingsService: settingsService,
	}
}

func (h *adminHandlerImpl) ListAudit(w http.ResponseWriter, r *http.Request) {
	filter := audit.EntryFilter{
		EntityType: queryPtr(r, "entity_type"),
		EntityID:   queryPtr(r, "entity_id"),
		Actor:      queryPtr(r, "actor"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	result, err := h.auditService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, result.Entries, result.Page, result.Limit, result.TotalCount, result.TotalPages)
}

func (h *adminHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settingsService.Get(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, settings.SettingsResponse{
		WarnDays:   s.WarnDays,
		AuditActor: s.AuditActor,
		UpdatedAt:  s.UpdatedAt,
	})
}

func (h *adminHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.settingsService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settings updated", result)
}
