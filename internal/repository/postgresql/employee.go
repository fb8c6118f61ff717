package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lucidata/hr-core-go/internal/domain/employee"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
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
	var status string
	err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.EmailCompany,
		&e.EmailPersonal,
		&e.Phone,
		&e.Department,
		&e.Role,
		&e.ManagerID,
		&e.HireDate,
		&status,
		&e.Address,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	e.Status = employee.EmploymentStatus(status)
	return e, err
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE lower(email_company) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by email: %w", err)
	}
	return e, nil
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := q.Exec(ctx, query,
		e.ID,
		e.FirstName,
		e.LastName,
		e.EmailCompany,
		e.EmailPersonal,
		e.Phone,
		e.Department,
		e.Role,
		e.ManagerID,
		e.HireDate,
		string(e.Status),
		e.Address,
		e.Notes,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, codeUniqueViolation) {
			return employee.Employee{}, employee.ErrEmailExists
		}
		if isPgError(err, codeForeignKeyViolation) {
			return employee.Employee{}, employee.ErrManagerNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees SET
			first_name = $1, last_name = $2, email_company = $3, email_personal = $4, phone = $5,
			department = $6, role = $7, manager_id = $8, hire_date = $9, status = $10,
			address = $11, notes = $12, updated_at = $13
		WHERE id = $14
	`
	tag, err := q.Exec(ctx, query,
		e.FirstName,
		e.LastName,
		e.EmailCompany,
		e.EmailPersonal,
		e.Phone,
		e.Department,
		e.Role,
		e.ManagerID,
		e.HireDate,
		string(e.Status),
		e.Address,
		e.Notes,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		if isPgError(err, codeUniqueViolation) {
			return employee.ErrEmailExists
		}
		if isPgError(err, codeForeignKeyViolation) {
			return employee.ErrManagerNotFound
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, codeForeignKeyViolation) {
			return employee.ErrHasDependents
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.Filter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Department != nil {
		whereClause += fmt.Sprintf(" AND department = $%d", argIndex)
		args = append(args, *filter.Department)
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}
	if filter.ManagerID != nil {
		whereClause += fmt.Sprintf(" AND manager_id = $%d", argIndex)
		args = append(args, *filter.ManagerID)
		argIndex++
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		whereClause += fmt.Sprintf(
			" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email_company ILIKE $%d OR role ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex,
		)
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employees "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	sortColumn, ok := employeeSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "last_name"
	}
	page, limit := pagination.Normalize(filter.Page, filter.Limit)

	query := fmt.Sprintf(`
		SELECT %s FROM employees
		%s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, employeeColumns, whereClause, sortColumn, orderDirection(defaultOrder(filter.SortOrder, "asc")), argIndex, argIndex+1)
	args = append(args, limit, pagination.Offset(page, limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func (r *employeeRepositoryImpl) ListAll(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY last_name, first_name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *employeeRepositoryImpl) CountReports(ctx context.Context, managerID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE manager_id = $1`, managerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

func defaultOrder(order, fallback string) string {
	if order == "" {
		return fallback
	}
	return strings.ToLower(order)
}
