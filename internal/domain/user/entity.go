package user

import "context"

type Role string

const (
	RoleHRAdmin  Role = "hr_admin" // full access, may decide any step
	RoleManager  Role = "manager"  // decides the Manager step
	RoleHR       Role = "hr"       // decides the HR step
	RoleFinance  Role = "finance"  // decides the Finance step
	RoleEmployee Role = "employee" // self-service only
)

func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}

// Identity is the caller as described by a verified bearer token.
type Identity struct {
	Subject    string
	Name       string
	Role       Role
	EmployeeID *string
}

// DisplayName is what audit entries record as the actor.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Subject
}

// IsAdmin checks if the caller is an HR administrator
func (i Identity) IsAdmin() bool {
	return i.Role == RoleHRAdmin
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller attached by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
