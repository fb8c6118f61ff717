package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/domain/employee"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type employeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, first_name, last_name, email_company, email_personal, phone, department,
	role, manager_id, hire_date, status, address, notes, created_at, updated_at`

var employeeSortColumns = map[string]string{
	"last_name":  "last_name",
	"first_name": "first_name",
	"department": "department",
	"hire_date":  "hire_date",
	"created_at": "created_at",
}

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var e employee.Employee
	var status, createdAt, updatedAt string
	var hireDate sql.NullString
	if err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.EmailCompany,
		&e.EmailPersonal,
		&e.Phone,
		&e.Department,
		&e.Role,
		&e.ManagerID,
		&hireDate,
		&status,
		&e.Address,
		&e.Notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return e, err
	}
	e.Status = employee.EmploymentStatus(status)

	var err error
	if e.HireDate, err = parseNullTime(hireDate); err != nil {
		return e, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return e, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	return e, err
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := getQuerier(ctx, r.db)
	e, err := scanEmployee(q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, err
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	q := getQuerier(ctx, r.db)
	e, err := scanEmployee(q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE lower(email_company)=lower(?)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, err
}

func (r *employeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := getQuerier(ctx, r.db)
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	_, err := q.ExecContext(ctx, `INSERT INTO employees(`+employeeColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.FirstName, e.LastName, e.EmailCompany, nullable(e.EmailPersonal), nullable(e.Phone), e.Department,
		e.Role, nullable(e.ManagerID), formatTimePtr(e.HireDate), string(e.Status), nullable(e.Address), nullable(e.Notes),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	switch {
	case isUniqueViolation(err):
		return employee.Employee{}, employee.ErrEmailExists
	case isForeignKeyViolation(err):
		return employee.Employee{}, employee.ErrManagerNotFound
	case err != nil:
		return employee.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) error {
	q := getQuerier(ctx, r.db)
	res, err := q.ExecContext(ctx, `UPDATE employees SET first_name=?, last_name=?, email_company=?, email_personal=?, phone=?,
department=?, role=?, manager_id=?, hire_date=?, status=?, address=?, notes=?, updated_at=? WHERE id=?`,
		e.FirstName, e.LastName, e.EmailCompany, nullable(e.EmailPersonal), nullable(e.Phone),
		e.Department, e.Role, nullable(e.ManagerID), formatTimePtr(e.HireDate), string(e.Status), nullable(e.Address), nullable(e.Notes),
		formatTime(e.UpdatedAt), e.ID)
	switch {
	case isUniqueViolation(err):
		return employee.ErrEmailExists
	case isForeignKeyViolation(err):
		return employee.ErrManagerNotFound
	case err != nil:
		return fmt.Errorf("update employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	q := getQuerier(ctx, r.db)
	res, err := q.ExecContext(ctx, `DELETE FROM employees WHERE id=?`, id)
	if isForeignKeyViolation(err) {
		return employee.ErrHasDependents
	}
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) List(ctx context.Context, filter employee.Filter) ([]employee.Employee, int64, error) {
	q := getQuerier(ctx, r.db)

	where := " WHERE 1=1"
	var args []any
	if filter.Department != nil {
		where += " AND department=?"
		args = append(args, *filter.Department)
	}
	if filter.Status != nil {
		where += " AND status=?"
		args = append(args, string(*filter.Status))
	}
	if filter.ManagerID != nil {
		where += " AND manager_id=?"
		args = append(args, *filter.ManagerID)
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		like := "%" + strings.TrimSpace(*filter.Search) + "%"
		where += " AND (first_name LIKE ? OR last_name LIKE ? OR email_company LIKE ? OR role LIKE ?)"
		args = append(args, like, like, like, like)
	}

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	sortColumn, ok := employeeSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "last_name"
	}
	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM employees%s ORDER BY %s %s, id LIMIT ? OFFSET ?`,
		employeeColumns, where, sortColumn, orderDirection(filter.SortOrder, "asc"))
	args = append(args, limit, pagination.Offset(page, limit))

	employees, err := r.query(ctx, q, query, args...)
	return employees, total, err
}

func (r *employeeRepository) ListAll(ctx context.Context) ([]employee.Employee, error) {
	q := getQuerier(ctx, r.db)
	return r.query(ctx, q, `SELECT `+employeeColumns+` FROM employees ORDER BY last_name, first_name, id`)
}

func (r *employeeRepository) CountReports(ctx context.Context, managerID string) (int64, error) {
	q := getQuerier(ctx, r.db)
	var n int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE manager_id=?`, managerID).Scan(&n)
	return n, err
}

func (r *employeeRepository) query(ctx context.Context, q querier, query string, args ...any) ([]employee.Employee, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()
	var res []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
