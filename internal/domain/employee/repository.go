package employee

import "context"

type Filter struct {
	Department *string
	Status     *EmploymentStatus
	ManagerID  *string
	Search     *string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, e Employee) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) ([]Employee, int64, error)
	ListAll(ctx context.Context) ([]Employee, error)
	CountReports(ctx context.Context, managerID string) (int64, error)
}
