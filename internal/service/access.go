package service

import (
	"context"
	"fmt"

	"github.com/straye-as/crm-core/internal/auth"
	"github.com/straye-as/crm-core/internal/domain"
)

// requireRole rejects callers that carry a user context without any of the
// given roles. Calls without a user context come from internal jobs and pass.
func requireRole(ctx context.Context, roles ...domain.UserRoleType) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil
	}
	if !userCtx.HasAnyRole(roles...) {
		return fmt.Errorf("%w: requires one of roles %v", ErrForbidden, roles)
	}
	return nil
}

// actor returns the id and display name recorded on audit rows
func actor(ctx context.Context) (string, string) {
	if userCtx, ok := auth.FromContext(ctx); ok {
		return userCtx.UserID.String(), userCtx.DisplayName
	}
	return "", "System"
}
