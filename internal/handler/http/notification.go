package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lucidata/hr-core-go/internal/domain/notification"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/handler/http/response"
	"github.com/lucidata/hr-core-go/internal/pkg/sse"
)

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
	keepalive    time.Duration
}

func NewNotificationHandler(notifService notification.Service) NotificationHandler {
	return &notificationHandlerImpl{
		notifService: notifService,
		keepalive:    30 * time.Second,
	}
}

// withInbox resolves the inboxes of the authenticated caller before
// calling next.
func withInbox(w http.ResponseWriter, r *http.Request, next func(http.ResponseWriter, *http.Request, []string)) {
	id, ok := user.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	next(w, r, recipientsFor(id))
}

func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	withInbox(w, r, h.list)
}

func (h *notificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	withInbox(w, r, h.unreadCount)
}

func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	withInbox(w, r, h.markAsRead)
}

func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	withInbox(w, r, h.markAllAsRead)
}

func (h *notificationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	withInbox(w, r, h.delete)
}

// Stream pushes new notifications as Server-Sent Events. The token may be
// passed as the 'jwt' query parameter since EventSource cannot set headers.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	withInbox(w, r, h.stream)
}

func (h *notificationHandlerImpl) list(w http.ResponseWriter, r *http.Request, inboxes []string) {
	result, err := h.notifService.GetNotifications(r.Context(), inboxes,
		getIntQueryParam(r, "page", 1),
		getIntQueryParam(r, "page_size", 20),
		getBoolQueryParam(r, "unread_only", false))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *notificationHandlerImpl) unreadCount(w http.ResponseWriter, r *http.Request, inboxes []string) {
	count, err := h.notifService.GetUnreadCount(r.Context(), inboxes)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, notification.UnreadCountResponse{UnreadCount: count})
}

func (h *notificationHandlerImpl) markAsRead(w http.ResponseWriter, r *http.Request, inboxes []string) {
	var req notification.MarkAsReadRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := h.notifService.MarkAsRead(r.Context(), inboxes, req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notifications marked as read", nil)
}

func (h *notificationHandlerImpl) markAllAsRead(w http.ResponseWriter, r *http.Request, inboxes []string) {
	if err := h.notifService.MarkAllAsRead(r.Context(), inboxes); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

func (h *notificationHandlerImpl) delete(w http.ResponseWriter, r *http.Request, inboxes []string) {
	if err := h.notifService.Delete(r.Context(), inboxes, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notification deleted", nil)
}

func (h *notificationHandlerImpl) stream(w http.ResponseWriter, r *http.Request, inboxes []string) {
	out, err := sse.NewStream(w)
	if err != nil {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	events, cleanup := h.notifService.Subscribe(r.Context(), inboxes)
	defer cleanup()

	if err := out.Send("", "connected", map[string]interface{}{"status": "connected", "inboxes": inboxes}); err != nil {
		return
	}

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		var err error
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			err = out.Send(event.Data.ID, event.Event, event.Data)
		case <-keepalive.C:
			err = out.Send("", "ping", map[string]int64{"timestamp": time.Now().Unix()})
		case <-r.Context().Done():
			return
		}
		if err != nil {
			slog.Debug("SSE client write failed", "error", err)
			return
		}
	}
}
