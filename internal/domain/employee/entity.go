package employee

import (
	"time"
)

type Employee struct {
	ID            string
	FirstName     string
	LastName      string
	EmailCompany  string
	EmailPersonal *string
	Phone         *string
	Department    string
	Role          string
	ManagerID     *string
	HireDate      *time.Time
	Status        EmploymentStatus
	Address       *string
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName returns "First Last".
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

func (s EmploymentStatus) IsValid() bool {
	return s == EmploymentStatusActive || s == EmploymentStatusInactive
}

// DefaultDepartment is used when an employee is created without one.
const DefaultDepartment = "General"
