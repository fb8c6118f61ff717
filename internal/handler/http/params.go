package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/lucidata/hr-core-go/internal/domain/notification"
	"github.com/lucidata/hr-core-go/internal/domain/user"
)

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// queryPtr returns nil for an absent or blank query parameter.
func queryPtr(r *http.Request, key string) *string {
	val := strings.TrimSpace(r.URL.Query().Get(key))
	if val == "" {
		return nil
	}
	return &val
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeOptionalJSON accepts an empty body, leaving dst untouched.
func decodeOptionalJSON(r *http.Request, dst interface{}) error {
	if err := decodeJSON(r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// recipientsFor lists the notification inboxes the caller reads: their own
// subject, their employee record, and the shared HR inbox for HR roles.
func recipientsFor(id user.Identity) []string {
	recipients := []string{id.Subject}
	if id.EmployeeID != nil && *id.EmployeeID != id.Subject {
		recipients = append(recipients, *id.EmployeeID)
	}
	if id.Role == user.RoleHRAdmin || id.Role == user.RoleHR {
		recipients = append(recipients, notification.RecipientHR)
	}
	return recipients
}
