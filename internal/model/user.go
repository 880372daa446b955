package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a member of a student organization or one of the
// approval-role officers.
type User struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName      string        `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName       string        `gorm:"type:varchar(100);not null" json:"last_name"`
	Email          string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string        `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role           Role          `gorm:"type:varchar(20);not null" json:"role"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
