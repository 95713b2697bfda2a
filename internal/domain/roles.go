package domain

// UserRoleType represents a role a user can have
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RoleManager    UserRoleType = "manager"
	RoleSales      UserRoleType = "sales"
	RoleAPIService UserRoleType = "api_service"
)

// PipelineEditorRoles may change pipeline structure (stages and their order)
var PipelineEditorRoles = []UserRoleType{RoleAdmin, RoleManager, RoleAPIService}

// IsValid reports whether r is a known role
func (r UserRoleType) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSales, RoleAPIService:
		return true
	}
	return false
}
