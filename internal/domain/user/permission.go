package user

import "github.com/lucidata/hr-core-go/internal/domain/workflow"

type Permission string

const (
	// Self service
	PermissionSelfView   Permission = "self.view"
	PermissionSelfCreate Permission = "self.create"

	// Employee records
	PermissionEmployeeView   Permission = "employee.view"
	PermissionEmployeeManage Permission = "employee.manage"

	// Documents
	PermissionDocumentView   Permission = "document.view"
	PermissionDocumentManage Permission = "document.manage"

	// Workflows
	PermissionWorkflowView    Permission = "workflow.view"
	PermissionWorkflowManage  Permission = "workflow.manage"
	PermissionWorkflowDecide  Permission = "workflow.decide"
	PermissionWorkflowComment Permission = "workflow.comment"

	// Feedback
	PermissionFeedbackSubmit Permission = "feedback.submit"
	PermissionFeedbackView   Permission = "feedback.view"
	PermissionFeedbackManage Permission = "feedback.manage"

	// Administration
	PermissionAuditView      Permission = "audit.view"
	PermissionSettingsManage Permission = "settings.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleHRAdmin: {
		PermissionSelfView,
		PermissionSelfCreate,
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionDocumentView,
		PermissionDocumentManage,
		PermissionWorkflowView,
		PermissionWorkflowManage,
		PermissionWorkflowDecide,
		PermissionWorkflowComment,
		PermissionFeedbackSubmit,
		PermissionFeedbackView,
		PermissionFeedbackManage,
		PermissionAuditView,
		PermissionSettingsManage,
	},
	RoleHR: {
		PermissionSelfView,
		PermissionSelfCreate,
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionDocumentView,
		PermissionDocumentManage,
		PermissionWorkflowView,
		PermissionWorkflowDecide,
		PermissionWorkflowComment,
		PermissionFeedbackSubmit,
		PermissionFeedbackView,
	},
	RoleManager: {
		PermissionSelfView,
		PermissionSelfCreate,
		PermissionEmployeeView,
		PermissionDocumentView,
		PermissionWorkflowView,
		PermissionWorkflowDecide,
		PermissionWorkflowComment,
		PermissionFeedbackSubmit,
	},
	RoleFinance: {
		PermissionSelfView,
		PermissionSelfCreate,
		PermissionWorkflowView,
		PermissionWorkflowDecide,
		PermissionWorkflowComment,
		PermissionFeedbackSubmit,
	},
	RoleEmployee: {
		PermissionSelfView,
		PermissionSelfCreate,
		PermissionFeedbackSubmit,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

var stepDeciders = map[workflow.Step]Role{
	workflow.StepManager: RoleManager,
	workflow.StepHR:      RoleHR,
	workflow.StepFinance: RoleFinance,
}

// CanDecide reports whether role may record a decision for step.
func CanDecide(role Role, step workflow.Step) bool {
	if role == RoleHRAdmin {
		return true
	}
	decider, ok := stepDeciders[step]
	return ok && decider == role
}
