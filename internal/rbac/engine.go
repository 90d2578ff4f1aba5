// Package rbac evaluates the role/permission graph: permission-set
// computation, role membership, admin checks, and role grant
// management.
package rbac

import (
	"context"
	"errors"
	"time"

	"rolegate/internal/models"
	"rolegate/internal/store"
)

var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrAlreadyAssigned    = errors.New("user already has role")
	ErrNotAssigned        = errors.New("user does not have role")
)

// Admin is decided by role name, not level: a user is an admin when
// they hold "admin" or "super_admin". This matches the shipped data,
// where levels and names agree; IsAdminByLevel offers the
// level-threshold reading for callers that define custom roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"

	// AdminLevel is the hierarchy level of the admin system role.
	AdminLevel = 30
)

// Engine answers authorization questions against the identity store.
// It fails closed: a nil or inactive user has no roles and no
// permissions, and absence of permission is an answer, not an error.
type Engine struct {
	store store.Store
}

func NewEngine(st store.Store) *Engine {
	return &Engine{store: st}
}

// RolesOf returns the names of the user's unexpired roles.
func (e *Engine) RolesOf(ctx context.Context, user *models.User) ([]string, error) {
	if user == nil || !user.IsActive {
		return nil, nil
	}
	roles, err := e.store.ListRolesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}

// PermissionsOf computes the union of permission names over all of the
// user's unexpired roles. A nil or inactive user gets the empty set.
func (e *Engine) PermissionsOf(ctx context.Context, user *models.User) (map[string]bool, error) {
	perms := make(map[string]bool)
	if user == nil || !user.IsActive {
		return perms, nil
	}
	roles, err := e.store.ListRolesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		rolePerms, err := e.store.ListPermissionsForRole(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range rolePerms {
			perms[p.Name] = true
		}
	}
	return perms, nil
}

func (e *Engine) HasPermission(ctx context.Context, user *models.User, name string) (bool, error) {
	perms, err := e.PermissionsOf(ctx, user)
	if err != nil {
		return false, err
	}
	return perms[name], nil
}

func (e *Engine) HasRole(ctx context.Context, user *models.User, name string) (bool, error) {
	if user == nil || !user.IsActive {
		return false, nil
	}
	roles, err := e.store.ListRolesForUser(ctx, user.ID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// IsAdmin reports whether the user holds the admin or super_admin role.
func (e *Engine) IsAdmin(ctx context.Context, user *models.User) (bool, error) {
	if user == nil || !user.IsActive {
		return false, nil
	}
	roles, err := e.store.ListRolesForUser(ctx, user.ID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Name == RoleAdmin || r.Name == RoleSuperAdmin {
			return true, nil
		}
	}
	return false, nil
}

// IsAdminByLevel is the level-threshold alternative to IsAdmin: any
// role at or above AdminLevel qualifies, named or not.
func (e *Engine) IsAdminByLevel(ctx context.Context, user *models.User) (bool, error) {
	if user == nil || !user.IsActive {
		return false, nil
	}
	roles, err := e.store.ListRolesForUser(ctx, user.ID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Level >= AdminLevel {
			return true, nil
		}
	}
	return false, nil
}

// AssignRole grants roleName to the user. Granting an already-held
// role fails with ErrAlreadyAssigned rather than silently succeeding.
func (e *Engine) AssignRole(ctx context.Context, user *models.User, roleName string, assignedBy *string) error {
	role, err := e.store.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	err = e.store.AppendRoleToUser(ctx, user.ID, role.ID, assignedBy, nil)
	if errors.Is(err, store.ErrAlreadyAssigned) {
		return ErrAlreadyAssigned
	}
	return err
}

// AssignRoleUntil grants a time-bounded role. Once expiresAt passes,
// the grant stops counting toward permission computation.
func (e *Engine) AssignRoleUntil(ctx context.Context, user *models.User, roleName string, assignedBy *string, expiresAt time.Time) error {
	role, err := e.store.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	err = e.store.AppendRoleToUser(ctx, user.ID, role.ID, assignedBy, &expiresAt)
	if errors.Is(err, store.ErrAlreadyAssigned) {
		return ErrAlreadyAssigned
	}
	return err
}

func (e *Engine) RemoveRole(ctx context.Context, user *models.User, roleName string) error {
	role, err := e.store.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	err = e.store.RemoveRoleFromUser(ctx, user.ID, role.ID)
	if errors.Is(err, store.ErrNotAssigned) {
		return ErrNotAssigned
	}
	return err
}
