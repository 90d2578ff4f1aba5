package rbac

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rolegate/internal/models"
)

// SystemRole is a seed definition for one of the five fixed roles.
type SystemRole struct {
	Name        string
	Description string
	Level       int
}

// SystemRoles are the fixed roles created at bootstrap. Higher level
// means more privilege. The grant table below is explicit per role;
// the engine never derives permissions from levels.
var SystemRoles = []SystemRole{
	{Name: "super_admin", Description: "Super administrator with full system access", Level: 40},
	{Name: "admin", Description: "Administrator with full access except system settings", Level: 30},
	{Name: "editor", Description: "Editor who can manage all content", Level: 20},
	{Name: "author", Description: "Author who can create and edit own content", Level: 10},
	{Name: "user", Description: "Regular user with basic access", Level: 0},
}

// Permissions lists every capability by module, name and description.
var Permissions = map[string][][2]string{
	"users": {
		{"users:list", "List all users"},
		{"users:create", "Create new user"},
		{"users:read", "View user details"},
		{"users:update", "Update user"},
		{"users:delete", "Delete user"},
		{"users:manage_roles", "Assign roles to users"},
		{"users:view_activity", "View user activity logs"},
	},
	"posts": {
		{"posts:create", "Create blog post"},
		{"posts:read", "Read blog posts"},
		{"posts:update", "Update blog post"},
		{"posts:delete", "Delete blog post"},
		{"posts:publish", "Publish blog post"},
		{"posts:schedule", "Schedule blog post"},
		{"posts:bulk_update", "Bulk update posts"},
	},
	"comments": {
		{"comments:create", "Create comment"},
		{"comments:read", "Read comments"},
		{"comments:update", "Update own comment"},
		{"comments:delete", "Delete comment"},
		{"comments:moderate", "Moderate comments"},
		{"comments:approve", "Approve comments"},
	},
	"analytics": {
		{"analytics:view", "View analytics"},
		{"analytics:export", "Export analytics"},
	},
	"settings": {
		{"settings:manage", "Manage system settings"},
		{"settings:manage_roles", "Manage roles and permissions"},
	},
}

// RolePermissions maps each system role to its grants. The shipped
// data happens to be additive up the hierarchy, but that is data, not
// an engine rule.
var RolePermissions = map[string][]string{
	"super_admin": {
		"users:list", "users:create", "users:read", "users:update", "users:delete",
		"users:manage_roles", "users:view_activity",
		"posts:create", "posts:read", "posts:update", "posts:delete", "posts:publish",
		"posts:schedule", "posts:bulk_update",
		"comments:create", "comments:read", "comments:update", "comments:delete",
		"comments:moderate", "comments:approve",
		"analytics:view", "analytics:export",
		"settings:manage", "settings:manage_roles",
	},
	"admin": {
		"users:list", "users:create", "users:read", "users:update", "users:delete",
		"users:manage_roles", "users:view_activity",
		"posts:create", "posts:read", "posts:update", "posts:delete", "posts:publish",
		"posts:schedule", "posts:bulk_update",
		"comments:create", "comments:read", "comments:update", "comments:delete",
		"comments:moderate", "comments:approve",
		"analytics:view", "analytics:export",
		"settings:manage_roles",
	},
	"editor": {
		"posts:create", "posts:read", "posts:update", "posts:delete", "posts:publish",
		"posts:schedule", "posts:bulk_update",
		"comments:read", "comments:moderate", "comments:approve",
		"users:read",
	},
	"author": {
		"posts:create", "posts:read", "posts:update",
		"comments:create", "comments:read",
	},
	"user": {
		"posts:read",
		"comments:create", "comments:read",
	},
}

// Seed creates the system roles, permissions, and role->permission
// grants. It is idempotent: existing rows are left untouched, so it is
// safe to run on every startup.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		permsByName := make(map[string]*models.Permission)
		for module, perms := range Permissions {
			for _, p := range perms {
				perm := &models.Permission{Name: p[0], Description: p[1], Module: module, CreatedAt: now}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "name"}},
					DoNothing: true,
				}).Create(perm).Error; err != nil {
					return fmt.Errorf("seed permission %s: %w", p[0], err)
				}
				// Re-read so existing rows carry their real IDs.
				if err := tx.First(perm, "name = ?", p[0]).Error; err != nil {
					return err
				}
				permsByName[perm.Name] = perm
			}
		}

		for _, sr := range SystemRoles {
			role := &models.Role{
				Name:        sr.Name,
				Description: sr.Description,
				Level:       sr.Level,
				IsSystem:    true,
				CreatedAt:   now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", sr.Name, err)
			}
			if err := tx.First(role, "name = ?", sr.Name).Error; err != nil {
				return err
			}
			for _, permName := range RolePermissions[sr.Name] {
				perm, ok := permsByName[permName]
				if !ok {
					return fmt.Errorf("seed role %s: unknown permission %s", sr.Name, permName)
				}
				if err := tx.Exec(
					"INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
					role.ID, perm.ID,
				).Error; err != nil {
					return fmt.Errorf("seed grant %s -> %s: %w", sr.Name, permName, err)
				}
			}
		}
		return nil
	})
}
