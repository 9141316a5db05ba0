package service

import (
	"context"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

// Requirement lists what a route demands. Either list may be empty.
type Requirement struct {
	Roles       []string
	Permissions []string
}

// AccessPolicy evaluates role and permission requirements against the
// current store state rather than the roles embedded in the token.
type AccessPolicy struct {
	Store store.Store
}

// Authorize allows p if it holds any of the required roles and any of the
// required permissions. An empty list is not checked.
func (a *AccessPolicy) Authorize(ctx context.Context, p *domain.Principal, req Requirement) error {
	if p == nil || p.Identity.ID == "" {
		return ErrUnauthenticated
	}
	users := a.Store.Users()

	if len(req.Roles) > 0 {
		ok, err := anyOf(req.Roles, func(role string) (bool, error) {
			return users.HasRole(ctx, p.Identity.ID, role)
		})
		if err != nil {
			return Internal(err)
		}
		if !ok {
			return ErrRoleDenied
		}
	}

	if len(req.Permissions) > 0 {
		ok, err := anyOf(req.Permissions, func(perm string) (bool, error) {
			return users.HasPermissionByName(ctx, p.Identity.ID, perm)
		})
		if err != nil {
			return Internal(err)
		}
		if !ok {
			return ErrPermissionDenied
		}
	}
	return nil
}

func anyOf(names []string, has func(string) (bool, error)) (bool, error) {
	for _, name := range names {
		ok, err := has(name)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
