package employee

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	rows map[string]employee.Employee
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := r.rows[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *fakeRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	for _, e := range r.rows {
		if e.EmailCompany == email {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.rows[e.ID] = e
	return e, nil
}

func (r *fakeRepo) Update(ctx context.Context, e employee.Employee) error {
	r.rows[e.ID] = e
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter employee.Filter) ([]employee.Employee, int64, error) {
	all, _ := r.ListAll(ctx)
	var out []employee.Employee
	for _, e := range all {
		if filter.Search != nil && !strings.Contains(strings.ToLower(e.FullName()), strings.ToLower(*filter.Search)) {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) ListAll(ctx context.Context) ([]employee.Employee, error) {
	out := make([]employee.Employee, 0, len(r.rows))
	for _, e := range r.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) CountReports(ctx context.Context, managerID string) (int64, error) {
	var n int64
	for _, e := range r.rows {
		if e.ManagerID != nil && *e.ManagerID == managerID {
			n++
		}
	}
	return n, nil
}

type fakeRecorder struct{ actions []audit.Action }

func (f *fakeRecorder) Record(ctx context.Context, action audit.Action, entityType audit.EntityType, entityID string, details map[string]interface{}) {
	f.actions = append(f.actions, action)
}

const (
	ceoID = "0190f7a4-7c1e-7000-8000-000000000c00"
	ctoID = "0190f7a4-7c1e-7000-8000-000000000c01"
	devID = "0190f7a4-7c1e-7000-8000-000000000c02"
)

func newService() (*EmployeeServiceImpl, *fakeRepo, *fakeRecorder) {
	repo := &fakeRepo{rows: map[string]employee.Employee{}}
	rec := &fakeRecorder{}
	svc := NewEmployeeService(passthroughTx{}, repo, rec).(*EmployeeServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC) }
	return svc, repo, rec
}

func create(t *testing.T, svc *EmployeeServiceImpl, id, first, dept string, manager *string) employee.EmployeeResponse {
	t.Helper()
	resp, err := svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{
		ID:           id,
		FirstName:    first,
		LastName:     "Ionescu",
		EmailCompany: strings.ToLower(first) + "@lucidata.io",
		Department:   dept,
		Role:         "Staff",
		ManagerID:    manager,
	})
	require.NoError(t, err)
	return resp
}

func strPtr(s string) *string { return &s }

func TestEmployeeService_CreateDefaults(t *testing.T) {
	svc, _, rec := newService()
	resp := create(t, svc, "", "Ana", "", nil)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, employee.DefaultDepartment, resp.Department)
	assert.Equal(t, string(employee.EmploymentStatusActive), resp.Status)
	assert.Equal(t, "Ana Ionescu", resp.FullName)
	assert.Equal(t, []audit.Action{audit.ActionCreate}, rec.actions)

	_, err := svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{
		FirstName: "Other", LastName: "Ana", EmailCompany: "ANA@lucidata.io", Role: "Staff",
	})
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestEmployeeService_ManagerValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()
	create(t, svc, ceoID, "Ceo", "Board", nil)
	create(t, svc, ctoID, "Cto", "Engineering", strPtr(ceoID))
	create(t, svc, devID, "Dev", "Engineering", strPtr(ctoID))

	_, err := svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{
		FirstName: "Ghost", LastName: "Report", EmailCompany: "ghost@lucidata.io", Role: "Staff",
		ManagerID: strPtr("0190f7a4-7c1e-7000-8000-00000000ffff"),
	})
	assert.ErrorIs(t, err, employee.ErrManagerNotFound)

	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: ceoID, ManagerID: strPtr(devID)})
	assert.ErrorIs(t, err, employee.ErrManagerCycle)

	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: ceoID, ManagerID: strPtr(ceoID)})
	assert.Error(t, err)

	resp, err := svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: devID, ClearManager: true, Department: strPtr("Platform")})
	require.NoError(t, err)
	assert.Nil(t, resp.ManagerID)
	assert.Equal(t, "Platform", resp.Department)
}

func TestEmployeeService_DeleteWithReports(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService()
	create(t, svc, ceoID, "Ceo", "Board", nil)
	create(t, svc, ctoID, "Cto", "Engineering", strPtr(ceoID))

	assert.ErrorIs(t, svc.DeleteEmployee(ctx, ceoID), employee.ErrHasReports)
	require.NoError(t, svc.DeleteEmployee(ctx, ctoID))
	require.NoError(t, svc.DeleteEmployee(ctx, ceoID))
	assert.Empty(t, repo.rows)
	assert.ErrorIs(t, svc.DeleteEmployee(ctx, ceoID), employee.ErrEmployeeNotFound)
}

func TestEmployeeService_OrgChartAndStats(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()
	create(t, svc, ceoID, "Ceo", "Board", nil)
	create(t, svc, ctoID, "Cto", "Engineering", strPtr(ceoID))
	create(t, svc, devID, "Dev", "Engineering", strPtr(ctoID))

	chart, err := svc.OrgChart(ctx)
	require.NoError(t, err)
	require.Len(t, chart.Roots, 1)
	assert.Equal(t, ceoID, chart.Roots[0].ID)
	require.Len(t, chart.Roots[0].Reports, 1)
	require.Len(t, chart.Roots[0].Reports[0].Reports, 1)
	assert.Equal(t, devID, chart.Roots[0].Reports[0].Reports[0].ID)

	inactive := string(employee.EmploymentStatusInactive)
	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: devID, Status: &inactive})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Inactive)
	assert.Equal(t, []employee.DepartmentCount{
		{Department: "Engineering", Count: 2},
		{Department: "Board", Count: 1},
	}, stats.Departments)
}
