package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/domain/employee"
	"github.com/lucidata/hr-core-go/internal/domain/feedback"
	"github.com/lucidata/hr-core-go/internal/domain/notification"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/lucidata/hr-core-go/internal/pkg/validator"
	"github.com/lucidata/hr-core-go/internal/service/file"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var dateErr *document.InvalidDateError
	if errors.As(err, &dateErr) {
		ValidationError(w, map[string]string{dateErr.Field: dateErr.Error()})
		return
	}

	switch {
	// Identity
	case errors.Is(err, user.ErrInvalidToken), errors.Is(err, user.ErrInvalidRole):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrNoEmployeeLink):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrManagerNotFound):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, employee.ErrSelfManager), errors.Is(err, employee.ErrManagerCycle):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Company email already registered")
	case errors.Is(err, employee.ErrHasReports), errors.Is(err, employee.ErrHasDependents):
		Conflict(w, err.Error())

	// Document domain errors
	case errors.Is(err, document.ErrDocumentNotFound):
		NotFound(w, "Document not found")
	case errors.Is(err, document.ErrEmployeeNotFound):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, document.ErrExpiryBeforeIssue),
		errors.Is(err, document.ErrInvalidDate),
		errors.Is(err, document.ErrInvalidWarnDays):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, file.ErrUnsupportedFileType):
		UnprocessableEntity(w, err.Error())

	// Workflow domain errors
	case errors.Is(err, workflow.ErrRequestNotFound):
		NotFound(w, "Workflow request not found")
	case errors.Is(err, workflow.ErrRequesterNotFound):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, workflow.ErrConflict),
		errors.Is(err, workflow.ErrOutOfSequence),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrNotDeletable):
		Conflict(w, err.Error())
	case errors.Is(err, workflow.ErrInconsistentState):
		slog.Error("workflow request failed invariant check", "error", err)
		Conflict(w, err.Error())
	case errors.Is(err, workflow.ErrInvalidDecision), errors.Is(err, workflow.ErrEmptyComment):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, workflow.ErrStepNotAllowed), errors.Is(err, workflow.ErrNotRequestOwner):
		Forbidden(w, err.Error())

	// Feedback, audit, notifications
	case errors.Is(err, feedback.ErrFeedbackNotFound):
		NotFound(w, "Feedback not found")
	case errors.Is(err, audit.ErrInvalidEntityType):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
