package employee

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/employee"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type EmployeeServiceImpl struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	recorder     audit.Recorder
	now          func() time.Time
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	recorder audit.Recorder,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		recorder:     recorder,
		now:          time.Now,
	}
}

// optional turns blank strings into nil so that "" clears a field.
func optional(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func parseHireDate(p *string) *time.Time {
	if p == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *p)
	if err != nil {
		return nil
	}
	return &t
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	now := s.now().UTC()
	newEmployee := employee.Employee{
		ID:            req.ID,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		EmailCompany:  strings.ToLower(strings.TrimSpace(req.EmailCompany)),
		EmailPersonal: optional(req.EmailPersonal),
		Phone:         optional(req.Phone),
		Department:    strings.TrimSpace(req.Department),
		Role:          strings.TrimSpace(req.Role),
		ManagerID:     optional(req.ManagerID),
		HireDate:      parseHireDate(req.HireDate),
		Status:        employee.EmploymentStatus(req.Status),
		Address:       optional(req.Address),
		Notes:         optional(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if newEmployee.ID == "" {
		newEmployee.ID = uuid.Must(uuid.NewV7()).String()
	}
	if newEmployee.Department == "" {
		newEmployee.Department = employee.DefaultDepartment
	}
	if newEmployee.Status == "" {
		newEmployee.Status = employee.EmploymentStatusActive
	}

	var created employee.Employee
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.employeeRepo.GetByEmail(ctx, newEmployee.EmailCompany); err == nil {
			return employee.ErrEmailExists
		} else if !errors.Is(err, employee.ErrEmployeeNotFound) {
			return err
		}
		if newEmployee.ManagerID != nil {
			if err := s.checkManager(ctx, newEmployee.ID, *newEmployee.ManagerID); err != nil {
				return err
			}
		}

		var err error
		created, err = s.employeeRepo.Create(ctx, newEmployee)
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionCreate, audit.EntityEmployee, created.ID, map[string]interface{}{
		"name":       created.FullName(),
		"department": created.Department,
	})
	return employee.NewEmployeeResponse(created), nil
}

// checkManager verifies managerID exists and that following its manager
// chain never reaches employeeID.
func (s *EmployeeServiceImpl) checkManager(ctx context.Context, employeeID, managerID string) error {
	if managerID == employeeID {
		return employee.ErrSelfManager
	}

	seen := map[string]bool{}
	current := managerID
	for {
		m, err := s.employeeRepo.GetByID(ctx, current)
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			if current == managerID {
				return employee.ErrManagerNotFound
			}
			return nil
		}
		if err != nil {
			return err
		}
		seen[current] = true
		if m.ManagerID == nil || seen[*m.ManagerID] {
			return nil
		}
		if *m.ManagerID == employeeID {
			return employee.ErrManagerCycle
		}
		current = *m.ManagerID
	}
}

func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var updated employee.Employee
	changed := []string{}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		e, err := s.employeeRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		if req.FirstName != nil {
			e.FirstName = strings.TrimSpace(*req.FirstName)
			changed = append(changed, "first_name")
		}
		if req.LastName != nil {
			e.LastName = strings.TrimSpace(*req.LastName)
			changed = append(changed, "last_name")
		}
		if req.EmailCompany != nil {
			email := strings.ToLower(strings.TrimSpace(*req.EmailCompany))
			if email != e.EmailCompany {
				if other, err := s.employeeRepo.GetByEmail(ctx, email); err == nil && other.ID != e.ID {
					return employee.ErrEmailExists
				} else if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
					return err
				}
			}
			e.EmailCompany = email
			changed = append(changed, "email_company")
		}
		if req.EmailPersonal != nil {
			e.EmailPersonal = optional(req.EmailPersonal)
			changed = append(changed, "email_personal")
		}
		if req.Phone != nil {
			e.Phone = optional(req.Phone)
			changed = append(changed, "phone")
		}
		if req.Department != nil {
			e.Department = strings.TrimSpace(*req.Department)
			if e.Department == "" {
				e.Department = employee.DefaultDepartment
			}
			changed = append(changed, "department")
		}
		if req.Role != nil {
			e.Role = strings.TrimSpace(*req.Role)
			changed = append(changed, "role")
		}
		switch {
		case req.ClearManager:
			e.ManagerID = nil
			changed = append(changed, "manager_id")
		case req.ManagerID != nil:
			if err := s.checkManager(ctx, e.ID, *req.ManagerID); err != nil {
				return err
			}
			e.ManagerID = req.ManagerID
			changed = append(changed, "manager_id")
		}
		if req.HireDate != nil {
			e.HireDate = parseHireDate(req.HireDate)
			changed = append(changed, "hire_date")
		}
		if req.Status != nil {
			e.Status = employee.EmploymentStatus(*req.Status)
			changed = append(changed, "status")
		}
		if req.Address != nil {
			e.Address = optional(req.Address)
			changed = append(changed, "address")
		}
		if req.Notes != nil {
			e.Notes = optional(req.Notes)
			changed = append(changed, "notes")
		}
		e.UpdatedAt = s.now().UTC()

		if err := s.employeeRepo.Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionUpdate, audit.EntityEmployee, updated.ID, map[string]interface{}{
		"fields": changed,
	})
	return employee.NewEmployeeResponse(updated), nil
}

func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	var name string
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		e, err := s.employeeRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		reports, err := s.employeeRepo.CountReports(ctx, id)
		if err != nil {
			return err
		}
		if reports > 0 {
			return employee.ErrHasReports
		}
		name = e.FullName()
		return s.employeeRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, audit.ActionDelete, audit.EntityEmployee, id, map[string]interface{}{"name": name})
	return nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	repoFilter := employee.Filter{
		Department: filter.Department,
		ManagerID:  filter.ManagerID,
		Search:     filter.Search,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
		Page:       page,
		Limit:      limit,
	}
	if filter.Status != nil {
		st := employee.EmploymentStatus(*filter.Status)
		repoFilter.Status = &st
	}

	employees, total, err := s.employeeRepo.List(ctx, repoFilter)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	resp := make([]employee.EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = employee.NewEmployeeResponse(e)
	}
	return employee.ListEmployeeResponse{
		Employees:  resp,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: pagination.TotalPages(total, limit),
	}, nil
}

func (s *EmployeeServiceImpl) OrgChart(ctx context.Context) (employee.OrgChart, error) {
	employees, err := s.employeeRepo.ListAll(ctx)
	if err != nil {
		return employee.OrgChart{}, err
	}
	return employee.BuildOrgChart(employees), nil
}

func (s *EmployeeServiceImpl) Stats(ctx context.Context) (employee.StatsResponse, error) {
	employees, err := s.employeeRepo.ListAll(ctx)
	if err != nil {
		return employee.StatsResponse{}, err
	}

	stats := employee.StatsResponse{Total: len(employees)}
	perDept := map[string]int{}
	for _, e := range employees {
		if e.Status == employee.EmploymentStatusActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		perDept[e.Department]++
	}

	stats.Departments = make([]employee.DepartmentCount, 0, len(perDept))
	for dept, n := range perDept {
		stats.Departments = append(stats.Departments, employee.DepartmentCount{Department: dept, Count: n})
	}
	sort.Slice(stats.Departments, func(i, j int) bool {
		if stats.Departments[i].Count != stats.Departments[j].Count {
			return stats.Departments[i].Count > stats.Departments[j].Count
		}
		return stats.Departments[i].Department < stats.Departments[j].Department
	})
	return stats, nil
}
