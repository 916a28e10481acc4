// Package rbac derives permission sets from the three fixed roles.
package rbac

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Permission is the full capability record for a role. It is a pure function
// of the role and is never stored or mutated per user.
type Permission struct {
	CanViewDashboard    bool `json:"canViewDashboard"`
	CanViewInventory    bool `json:"canViewInventory"`
	CanViewDistribution bool `json:"canViewDistribution"`
	CanEditResources    bool `json:"canEditResources"`
	CanApproveRequests  bool `json:"canApproveRequests"`
	CanCreateRequests   bool `json:"canCreateRequests"`
	CanManageUsers      bool `json:"canManageUsers"`
	CanViewReports      bool `json:"canViewReports"`
}

// PermissionsFor returns the capability record for a role. Unknown or absent
// roles get the zero record, so an unauthenticated caller can do nothing.
func PermissionsFor(role Role) Permission {
	switch role {
	case RoleAdmin:
		return Permission{
			CanViewDashboard:    true,
			CanViewInventory:    true,
			CanViewDistribution: true,
			CanEditResources:    true,
			CanApproveRequests:  true,
			CanCreateRequests:   true,
			CanManageUsers:      true,
			CanViewReports:      true,
		}
	case RoleOperator:
		return Permission{
			CanViewDashboard:    true,
			CanViewInventory:    true,
			CanViewDistribution: true,
			CanEditResources:    true,
			CanApproveRequests:  true,
			CanCreateRequests:   true,
			CanViewReports:      true,
		}
	case RoleViewer:
		return Permission{
			CanViewDashboard:    true,
			CanViewInventory:    true,
			CanViewDistribution: true,
			CanCreateRequests:   true,
		}
	default:
		return Permission{}
	}
}

func Valid(role Role) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}
