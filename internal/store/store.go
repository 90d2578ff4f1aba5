// Package store is the persistence boundary for identities, role
// grants, sessions and audit records. Services depend on the Store
// interface only; the GORM implementation lives in gorm.go.
package store

import (
	"context"
	"errors"
	"time"

	"rolegate/internal/models"
)

var (
	// ErrDuplicateIdentity covers both the pre-check and the unique
	// constraint firing at insert time; concurrent registrations racing
	// past the pre-check land here, not in a fatal error.
	ErrDuplicateIdentity = errors.New("email or username already taken")

	ErrNotFound        = errors.New("record not found")
	ErrAlreadyAssigned = errors.New("role already assigned")
	ErrNotAssigned     = errors.New("role not assigned")
)

// Store is the capability set required by the auth service and the
// RBAC engine. All lookups are exact-match. User lookups exclude
// soft-deleted rows.
//
// Each mutating operation runs as a single transaction. Concurrent
// assign and remove of the same role grant serialize on the row: the
// last transaction to commit wins.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	SoftDeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]models.User, error)

	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	FindPermissionByName(ctx context.Context, name string) (*models.Permission, error)

	// AppendRoleToUser fails with ErrAlreadyAssigned when an unexpired
	// grant for the pair exists. An expired grant is replaced.
	AppendRoleToUser(ctx context.Context, userID string, roleID int, assignedBy *string, expiresAt *time.Time) error
	RemoveRoleFromUser(ctx context.Context, userID string, roleID int) error
	// ListRolesForUser returns roles from unexpired grants only.
	ListRolesForUser(ctx context.Context, userID string) ([]models.Role, error)
	ListPermissionsForRole(ctx context.Context, roleID int) ([]models.Permission, error)

	CreateSession(ctx context.Context, s *models.Session) error
	CreatePasswordResetToken(ctx context.Context, t *models.PasswordResetToken) error
	CreateEmailVerificationToken(ctx context.Context, t *models.EmailVerificationToken) error
	// ConsumeEmailVerificationToken deletes the token row and returns
	// the user it belonged to. Unknown or expired tokens fail with
	// ErrNotFound.
	ConsumeEmailVerificationToken(ctx context.Context, token string) (string, error)

	RecordActivity(ctx context.Context, entry *models.ActivityLog) error
	ListActivity(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error)
	ListAllActivity(ctx context.Context, limit int) ([]models.ActivityLog, error)
}
