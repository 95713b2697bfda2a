package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
)

// SystemUserID identifies requests authenticated with the admin API key
var SystemUserID = uuid.Nil

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Roles       []domain.UserRoleType
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}

// SystemUser is the identity attached to API key requests
func SystemUser() *UserContext {
	return &UserContext{
		UserID:      SystemUserID,
		DisplayName: "System",
		Email:       "system@straye.io",
		Roles:       []domain.UserRoleType{domain.RoleAdmin, domain.RoleAPIService},
	}
}
