package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"rolegate/internal/models"
)

// Gorm implements Store on a *gorm.DB. Open the DB with
// TranslateError enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// AutoMigrate creates the schema, including the user_roles join table
// with its assigned_at/assigned_by/expires_at columns.
func (s *Gorm) AutoMigrate() error {
	if err := s.db.SetupJoinTable(&models.User{}, "Roles", &models.UserRole{}); err != nil {
		return err
	}
	return s.db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.User{},
		&models.Session{},
		&models.ActivityLog{},
		&models.PasswordResetToken{},
		&models.EmailVerificationToken{},
	)
}

// DB exposes the underlying handle for seeding.
func (s *Gorm) DB() *gorm.DB { return s.db }

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateIdentity
	default:
		return err
	}
}

func (s *Gorm) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("deleted_at IS NULL").First(&u, query, arg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Gorm) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *Gorm) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Gorm) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *Gorm) InsertUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Gorm) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	return translate(s.db.WithContext(ctx).Save(u).Error)
}

func (s *Gorm) SoftDeleteUser(ctx context.Context, id string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{"deleted_at": &now, "is_active": false, "updated_at": now})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Where("deleted_at IS NULL").
		Preload("Roles").Order("created_at desc").Find(&users).Error
	return users, translate(err)
}

func (s *Gorm) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var r models.Role
	if err := s.db.WithContext(ctx).First(&r, "name = ?", name).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Gorm) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).Preload("Permissions").Order("level desc").Find(&roles).Error
	return roles, translate(err)
}

func (s *Gorm) FindPermissionByName(ctx context.Context, name string) (*models.Permission, error) {
	var p models.Permission
	if err := s.db.WithContext(ctx).First(&p, "name = ?", name).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Gorm) AppendRoleToUser(ctx context.Context, userID string, roleID int, assignedBy *string, expiresAt *time.Time) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A lapsed grant does not block a fresh one.
		if err := tx.Where("user_id = ? AND role_id = ? AND expires_at IS NOT NULL AND expires_at <= ?",
			userID, roleID, now).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRole{
			UserID:     userID,
			RoleID:     roleID,
			AssignedAt: now,
			AssignedBy: assignedBy,
			ExpiresAt:  expiresAt,
		}).Error
	})
	if errors.Is(translate(err), ErrDuplicateIdentity) {
		return ErrAlreadyAssigned
	}
	return translate(err)
}

func (s *Gorm) RemoveRoleFromUser(ctx context.Context, userID string, roleID int) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotAssigned
	}
	return nil
}

func (s *Gorm) ListRolesForUser(ctx context.Context, userID string) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Where("user_roles.expires_at IS NULL OR user_roles.expires_at > ?", time.Now()).
		Order("roles.level desc").
		Find(&roles).Error
	return roles, translate(err)
}

func (s *Gorm) ListPermissionsForRole(ctx context.Context, roleID int) ([]models.Permission, error) {
	var perms []models.Permission
	err := s.db.WithContext(ctx).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&perms).Error
	return perms, translate(err)
}

func (s *Gorm) CreateSession(ctx context.Context, sess *models.Session) error {
	if sess.LastActivity.IsZero() {
		sess.LastActivity = time.Now()
	}
	return translate(s.db.WithContext(ctx).Create(sess).Error)
}

func (s *Gorm) CreatePasswordResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *Gorm) CreateEmailVerificationToken(ctx context.Context, t *models.EmailVerificationToken) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *Gorm) ConsumeEmailVerificationToken(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.EmailVerificationToken
		if err := tx.First(&t, "token = ?", token).Error; err != nil {
			return err
		}
		if time.Now().After(t.ExpiresAt) {
			return gorm.ErrRecordNotFound
		}
		userID = t.UserID
		return tx.Delete(&t).Error
	})
	if err != nil {
		return "", translate(err)
	}
	return userID, nil
}

func (s *Gorm) RecordActivity(ctx context.Context, entry *models.ActivityLog) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error)
}

func (s *Gorm) ListActivity(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc").Limit(limit).Find(&logs).Error
	return logs, translate(err)
}

func (s *Gorm) ListAllActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&logs).Error
	return logs, translate(err)
}
