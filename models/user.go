package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAuthor   UserRole = "author"
	RoleReviewer UserRole = "reviewer"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAuthor, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"not null"`
	Email       string         `json:"email" gorm:"uniqueIndex;not null"`
	Password    string         `json:"-" gorm:"not null"`
	Role        UserRole       `json:"role" gorm:"default:'author'"`
	FirstName   string         `json:"first_name,omitempty"`
	LastName    string         `json:"last_name,omitempty"`
	Affiliation string         `json:"affiliation,omitempty"`
	ORCID       string         `json:"orcid,omitempty" gorm:"column:orcid"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// CurrentUser is the caller identity handed to every workflow operation.
// It comes straight from the auth token and is trusted as-is.
type CurrentUser struct {
	ID   uint
	Role UserRole
}

func (u CurrentUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PasswordResetTTL is how long an emailed reset link stays usable.
const PasswordResetTTL = 10 * time.Minute

// PasswordReset is a single-use reset token. Only the bcrypt hash of the
// emailed token is stored.
type PasswordReset struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	TokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	Revoked   bool      `json:"revoked" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
