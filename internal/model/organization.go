package model

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a registered student organization. Proposals are tied to
// the submitter's organization at creation time and never move.
type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Logo      string    `gorm:"type:varchar(512)" json:"logo"` // storage key, e.g. organizations-logo/AAA.jpg
	AdminName string    `gorm:"type:varchar(100)" json:"admin_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
