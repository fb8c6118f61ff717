package user

import "errors"

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidRole    = errors.New("invalid role")
	ErrNoEmployeeLink = errors.New("token is not linked to an employee")
)
