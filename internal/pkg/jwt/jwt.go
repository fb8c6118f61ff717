package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/lucidata/hr-core-go/internal/domain/user"
)

// Claim names carried by bearer tokens.
const (
	ClaimRole       = "role"
	ClaimEmployeeID = "employee_id"
	ClaimName       = "name"
)

// Service verifies bearer tokens issued by the identity provider and, for
// operators, mints tokens with the same claim layout.
type Service interface {
	GenerateToken(subject string, role user.Role, employeeID *string, name string) (token string, expiresAt int64, err error)
	ParseIdentity(claims map[string]interface{}) (user.Identity, error)
	Verify(tokenString string) (user.Identity, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenExpiration time.Duration
	tokenAuth       *jwtauth.JWTAuth
	now             func() time.Time
}

func NewJWTService(secretKey string, tokenExpiration string) (*JWTService, error) {
	exp, err := time.ParseDuration(tokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("invalid token expiration %q: %w", tokenExpiration, err)
	}
	return &JWTService{
		tokenExpiration: exp,
		tokenAuth:       jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:             time.Now,
	}, nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateToken(subject string, role user.Role, employeeID *string, name string) (token string, expiresAt int64, err error) {
	if !role.IsValid() {
		return "", 0, user.ErrInvalidRole
	}
	now := j.now()
	expiresAt = now.Add(j.tokenExpiration).Unix()

	claims := map[string]interface{}{
		jwt.SubjectKey:    subject,
		jwt.IssuedAtKey:   now.Unix(),
		jwt.ExpirationKey: expiresAt,
		ClaimRole:         string(role),
	}
	if employeeID != nil {
		claims[ClaimEmployeeID] = *employeeID
	}
	if name != "" {
		claims[ClaimName] = name
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ParseIdentity turns verified claims into an Identity. The subject and a
// known role are required; employee_id is optional.
func (j *JWTService) ParseIdentity(claims map[string]interface{}) (user.Identity, error) {
	sub, _ := claims[jwt.SubjectKey].(string)
	if sub == "" {
		return user.Identity{}, user.ErrInvalidToken
	}
	roleStr, _ := claims[ClaimRole].(string)
	role := user.Role(roleStr)
	if !role.IsValid() {
		return user.Identity{}, user.ErrInvalidRole
	}

	id := user.Identity{Subject: sub, Role: role}
	if emp, ok := claims[ClaimEmployeeID].(string); ok && emp != "" {
		id.EmployeeID = &emp
	}
	if name, ok := claims[ClaimName].(string); ok {
		id.Name = name
	}
	return id, nil
}

// Verify decodes and validates tokenString outside of an HTTP request.
func (j *JWTService) Verify(tokenString string) (user.Identity, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return user.Identity{}, fmt.Errorf("%w: %v", user.ErrInvalidToken, err)
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return user.Identity{}, fmt.Errorf("%w: %v", user.ErrInvalidToken, err)
	}
	return j.ParseIdentity(claims)
}
