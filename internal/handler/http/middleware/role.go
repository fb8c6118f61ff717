package middleware

import (
	"fmt"
	"net/http"

	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/handler/http/response"
)

// RequirePermission checks if the caller's role grants permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := user.IdentityFromContext(r.Context())
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			if !user.HasPermission(id.Role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, id.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireEmployeeLink rejects tokens without an employee_id claim. Self
// service routes are scoped to that employee.
func RequireEmployeeLink(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := user.IdentityFromContext(r.Context())
		if !ok || id.EmployeeID == nil {
			response.HandleError(w, user.ErrNoEmployeeLink)
			return
		}
		next.ServeHTTP(w, r)
	})
}
