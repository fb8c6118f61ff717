package user

import (
	"context"
	"testing"

	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleHRAdmin, PermissionSettingsManage))
	assert.True(t, HasPermission(RoleHR, PermissionDocumentManage))
	assert.False(t, HasPermission(RoleManager, PermissionDocumentManage))
	assert.False(t, HasPermission(RoleEmployee, PermissionWorkflowView))
	assert.True(t, HasPermission(RoleEmployee, PermissionSelfCreate))
	assert.False(t, HasPermission(Role("owner"), PermissionSelfView))
}

func TestCanDecide(t *testing.T) {
	tests := []struct {
		role Role
		step workflow.Step
		want bool
	}{
		{RoleManager, workflow.StepManager, true},
		{RoleManager, workflow.StepHR, false},
		{RoleHR, workflow.StepHR, true},
		{RoleHR, workflow.StepFinance, false},
		{RoleFinance, workflow.StepFinance, true},
		{RoleEmployee, workflow.StepManager, false},
		{RoleHRAdmin, workflow.StepFinance, true},
		{RoleManager, workflow.StepComment, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.step), func(t *testing.T) {
			assert.Equal(t, tt.want, CanDecide(tt.role, tt.step))
		})
	}
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	emp := "01939b2e-5c4f-7a3b-8d1e-2f3a4b5c6d7e"
	ctx := WithIdentity(context.Background(), Identity{Subject: "ana", Role: RoleHR, EmployeeID: &emp})
	id, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ana", id.Subject)
	assert.False(t, id.IsAdmin())
	assert.True(t, Role("finance").IsValid())
	assert.False(t, Role("owner").IsValid())
}
