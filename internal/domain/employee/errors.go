package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmailExists      = errors.New("company email already registered")
	ErrManagerNotFound  = errors.New("manager not found")
	ErrSelfManager      = errors.New("employee cannot be their own manager")
	ErrManagerCycle     = errors.New("manager assignment would create a reporting cycle")
	ErrHasReports       = errors.New("employee still has direct reports")
	ErrHasDependents    = errors.New("employee still owns documents or requests")
	ErrInvalidStatus    = errors.New("status must be active or inactive")
)
