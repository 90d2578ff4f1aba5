package models

import "time"

// Role is a named bundle of permissions. System roles (is_system) are
// seeded at startup and cannot be deleted.
type Role struct {
	ID          int          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string       `json:"description,omitempty"`
	Level       int          `gorm:"not null;default:0" json:"level"`
	IsSystem    bool         `gorm:"not null;default:false" json:"is_system"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Permission is an atomic capability named "module:action".
type Permission struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string    `json:"description,omitempty"`
	Module      string    `gorm:"index;size:50;not null" json:"module"`
	CreatedAt   time.Time `json:"created_at"`
}

type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FirstName    string     `gorm:"size:100" json:"first_name,omitempty"`
	LastName     string     `gorm:"size:100" json:"last_name,omitempty"`
	IsActive     bool       `gorm:"not null;default:true;index" json:"is_active"`
	IsVerified   bool       `gorm:"not null;default:false" json:"is_verified"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	Roles        []Role     `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID" json:"roles,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// FullName returns "First Last" when both are set, falling back to the
// first name alone or the username.
func (u User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// UserRole is the user_roles join row. A non-nil ExpiresAt makes the
// grant time-bounded; expired grants do not count toward permissions.
type UserRole struct {
	UserID     string     `gorm:"type:uuid;primaryKey" json:"user_id"`
	RoleID     int        `gorm:"primaryKey" json:"role_id"`
	AssignedAt time.Time  `gorm:"not null" json:"assigned_at"`
	AssignedBy *string    `gorm:"type:uuid" json:"assigned_by,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (UserRole) TableName() string { return "user_roles" }

// Session is login audit metadata. Token validation is stateless;
// sessions are never consulted to accept or reject a token.
type Session struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Token        string    `gorm:"uniqueIndex;size:512;not null" json:"-"`
	IPAddress    string    `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActivityLog is the audit trail for account and security events.
type ActivityLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Action     string    `gorm:"index;size:100;not null" json:"action"`
	EntityType string    `gorm:"size:50" json:"entity_type,omitempty"`
	EntityID   string    `gorm:"size:100" json:"entity_id,omitempty"`
	IPAddress  string    `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Metadata   JSONB     `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// PasswordResetToken is generated on a reset request. Delivery is the
// caller's problem; only generation and lookup live here.
type PasswordResetToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;size:255;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type EmailVerificationToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;size:255;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
