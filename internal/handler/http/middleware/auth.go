package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/handler/http/response"
)

// IdentityParser turns verified token claims into a caller identity.
type IdentityParser interface {
	ParseIdentity(claims map[string]interface{}) (user.Identity, error)
}

// AuthRequired runs after jwtauth.Verifier. It rejects requests without a
// valid token and attaches the caller identity and audit actor to the context.
func AuthRequired(parser IdentityParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			id, err := parser.ParseIdentity(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			ctx := user.WithIdentity(r.Context(), id)
			ctx = audit.WithActor(ctx, id.DisplayName())
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
