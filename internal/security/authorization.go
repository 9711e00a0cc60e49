package security

import (
	"fmt"
	"log/slog"
)

// Role represents a user role
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleHR       Role = "HR"
	RoleAdmin    Role = "Admin"
)

// Permission represents an action permission
type Permission string

const (
	PermAddWorksheet    Permission = "add_worksheet"
	PermListWorksheets  Permission = "list_worksheets"
	PermEditWorksheet   Permission = "edit_worksheet"
	PermDeleteWorksheet Permission = "delete_worksheet"
	PermViewOwnPayments Permission = "view_own_payments"

	PermListEmployees       Permission = "list_employees"
	PermViewEmployeeDetails Permission = "view_employee_details"
	PermToggleVerified      Permission = "toggle_verified"
	PermRequestPayroll      Permission = "request_payroll"

	PermListPayroll       Permission = "list_payroll"
	PermPayPayroll        Permission = "pay_payroll"
	PermListVerifiedStaff Permission = "list_verified_staff"
	PermFireUser          Permission = "fire_user"
	PermPromoteUser       Permission = "promote_user"
	PermAdjustSalary      Permission = "adjust_salary"
	PermViewMessages      Permission = "view_messages"
)

// RolePermissions maps roles to their permissions. Every protected endpoint is
// declared here once instead of checking role strings per handler.
var RolePermissions = map[Role][]Permission{
	RoleEmployee: {
		PermAddWorksheet,
		PermListWorksheets,
		PermEditWorksheet,
		PermDeleteWorksheet,
		PermViewOwnPayments,
	},
	RoleHR: {
		PermListWorksheets,
		PermListEmployees,
		PermViewEmployeeDetails,
		PermToggleVerified,
		PermRequestPayroll,
	},
	RoleAdmin: {
		PermToggleVerified,
		PermListPayroll,
		PermPayPayroll,
		PermListVerifiedStaff,
		PermFireUser,
		PermPromoteUser,
		PermAdjustSalary,
		PermViewMessages,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role Role, permission Permission) bool {
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

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("permission denied: %s role cannot %s", role, permission)
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role Role) []Permission {
	return RolePermissions[role]
}

// ValidateOwnership checks that the actor owns the resource. Admins do not
// bypass this check: worksheet entries are editable only by their owner.
func (as *AuthorizationService) ValidateOwnership(actorID, ownerID, resource string) error {
	if actorID != ownerID {
		as.logger.Warn("resource access denied",
			slog.String("actor_id", actorID),
			slog.String("owner_id", ownerID),
			slog.String("resource", resource),
		)
		return fmt.Errorf("access denied: you do not own this %s", resource)
	}
	return nil
}
