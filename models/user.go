package models

import (
	"time"
)

// Role is the single role held by an account. Exactly one role per
// account at any time; mutated only through the admin user endpoints.
type Role string

const (
	RoleAuthor     Role = "author"
	RoleReviewer   Role = "reviewer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAuthor, RoleReviewer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r carries admin-level privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	UserID      int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserUUID    string     `gorm:"column:user_uuid;unique" json:"user_uuid"`
	FirstName   string     `gorm:"column:first_name" json:"first_name"`
	LastName    string     `gorm:"column:last_name" json:"last_name"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Password    string     `gorm:"column:password" json:"-"`
	Role        Role       `gorm:"column:role" json:"role"`
	Institution *string    `gorm:"column:institution" json:"institution,omitempty"`
	Bio         *string    `gorm:"column:bio" json:"bio,omitempty"`
	Expertise   *string    `gorm:"column:expertise" json:"expertise,omitempty"` // JSON-encoded string list
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// UserToken stores refresh and password-reset tokens. The token value
// is a bcrypt hash of the raw token handed to the client.
type UserToken struct {
	TokenID    int       `gorm:"primaryKey;column:token_id" json:"token_id"`
	UserID     int       `gorm:"column:user_id" json:"user_id"`
	TokenType  string    `gorm:"column:token_type" json:"token_type"` // refresh|password_reset
	Token      string    `gorm:"column:token" json:"-"`
	ExpiresAt  time.Time `gorm:"column:expires_at" json:"expires_at"`
	IsRevoked  bool      `gorm:"column:is_revoked" json:"is_revoked"`
	DeviceInfo string    `gorm:"column:device_info" json:"device_info"`
	IPAddress  string    `gorm:"column:ip_address" json:"ip_address"`
	UserAgent  string    `gorm:"column:user_agent" json:"user_agent"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (UserToken) TableName() string {
	return "user_tokens"
}
