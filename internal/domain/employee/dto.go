package employee

import (
	"strings"
	"time"

	"github.com/lucidata/hr-core-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	ID            string  `json:"id,omitempty"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	EmailCompany  string  `json:"email_company"`
	EmailPersonal *string `json:"email_personal,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Department    string  `json:"department"`
	Role          string  `json:"role"`
	ManagerID     *string `json:"manager_id,omitempty"`
	HireDate      *string `json:"hire_date,omitempty"`
	Status        string  `json:"status"`
	Address       *string `json:"address,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ID != "" && !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	errs.Required("first_name", r.FirstName)
	errs.Required("last_name", r.LastName)
	errs.MaxLen("first_name", r.FirstName, 100)
	errs.MaxLen("last_name", r.LastName, 100)
	errs.Required("email_company", r.EmailCompany)
	if !validator.IsEmpty(r.EmailCompany) && !validator.IsValidEmail(r.EmailCompany) {
		errs.Add("email_company", "email_company must be a valid email")
	}
	validateOptional(&errs, r.EmailPersonal, r.Phone, r.ManagerID, r.HireDate)
	errs.Required("role", r.Role)
	if r.Status != "" && !EmploymentStatus(r.Status).IsValid() {
		errs.Add("status", ErrInvalidStatus.Error())
	}

	return errs.Err()
}

type UpdateEmployeeRequest struct {
	ID            string  `json:"-"`
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	EmailCompany  *string `json:"email_company,omitempty"`
	EmailPersonal *string `json:"email_personal,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Department    *string `json:"department,omitempty"`
	Role          *string `json:"role,omitempty"`
	ManagerID     *string `json:"manager_id,omitempty"`
	ClearManager  bool    `json:"clear_manager,omitempty"`
	HireDate      *string `json:"hire_date,omitempty"`
	Status        *string `json:"status,omitempty"`
	Address       *string `json:"address,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("id", r.ID)
	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs.Add("first_name", "first_name must not be empty")
	}
	if r.LastName != nil && validator.IsEmpty(*r.LastName) {
		errs.Add("last_name", "last_name must not be empty")
	}
	if r.EmailCompany != nil && !validator.IsValidEmail(*r.EmailCompany) {
		errs.Add("email_company", "email_company must be a valid email")
	}
	validateOptional(&errs, r.EmailPersonal, r.Phone, r.ManagerID, r.HireDate)
	if r.Role != nil && validator.IsEmpty(*r.Role) {
		errs.Add("role", "role must not be empty")
	}
	if r.Status != nil && !EmploymentStatus(*r.Status).IsValid() {
		errs.Add("status", ErrInvalidStatus.Error())
	}
	if r.ManagerID != nil && *r.ManagerID == r.ID {
		errs.Add("manager_id", ErrSelfManager.Error())
	}

	return errs.Err()
}

func validateOptional(errs *validator.ValidationErrors, emailPersonal, phone, managerID, hireDate *string) {
	if emailPersonal != nil && *emailPersonal != "" && !validator.IsValidEmail(*emailPersonal) {
		errs.Add("email_personal", "email_personal must be a valid email")
	}
	if phone != nil && *phone != "" && !validator.IsValidPhoneNumber(*phone) {
		errs.Add("phone", "phone must be 10-15 digits, optionally starting with +")
	}
	if managerID != nil && !validator.IsValidUUID(*managerID) {
		errs.Add("manager_id", "manager_id must be a valid UUID")
	}
	if hireDate != nil {
		if _, ok := validator.IsValidDate(*hireDate); !ok {
			errs.Add("hire_date", "hire_date must be in YYYY-MM-DD format")
		}
	}
}

type EmployeeFilter struct {
	Department *string
	Status     *string
	ManagerID  *string
	Search     *string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

var sortableFields = []string{"last_name", "first_name", "department", "hire_date", "created_at"}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !EmploymentStatus(*f.Status).IsValid() {
		errs.Add("status", ErrInvalidStatus.Error())
	}
	if f.ManagerID != nil && !validator.IsValidUUID(*f.ManagerID) {
		errs.Add("manager_id", "manager_id must be a valid UUID")
	}
	if f.SortBy != "" && !validator.IsInSlice(f.SortBy, sortableFields) {
		errs.Add("sort_by", "sort_by must be one of "+strings.Join(sortableFields, ", "))
	}
	if f.SortOrder != "" && !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs.Add("sort_order", "sort_order must be asc or desc")
	}

	return errs.Err()
}

type EmployeeResponse struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	FullName      string    `json:"full_name"`
	EmailCompany  string    `json:"email_company"`
	EmailPersonal *string   `json:"email_personal,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Department    string    `json:"department"`
	Role          string    `json:"role"`
	ManagerID     *string   `json:"manager_id,omitempty"`
	HireDate      *string   `json:"hire_date,omitempty"`
	Status        string    `json:"status"`
	Address       *string   `json:"address,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:            e.ID,
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		FullName:      e.FullName(),
		EmailCompany:  e.EmailCompany,
		EmailPersonal: e.EmailPersonal,
		Phone:         e.Phone,
		Department:    e.Department,
		Role:          e.Role,
		ManagerID:     e.ManagerID,
		Status:        string(e.Status),
		Address:       e.Address,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.HireDate != nil {
		d := e.HireDate.Format("2006-01-02")
		resp.HireDate = &d
	}
	return resp
}

type ListEmployeeResponse struct {
	Employees  []EmployeeResponse `json:"employees"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type StatsResponse struct {
	Total       int               `json:"total"`
	Active      int               `json:"active"`
	Inactive    int               `json:"inactive"`
	Departments []DepartmentCount `json:"departments"`
}
