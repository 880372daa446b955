package model

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus is the domain of both the per-approver fields and the
// aggregate proposal status.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// ActivityProposal represents one submitted Activity Proposal Form (APF).
// Four sign-off authorities (head, OSA, VPA, VPAA) each own a per-approver
// status; Status is the aggregate derived from them.
type ActivityProposal struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Purpose      string    `gorm:"type:text;not null" json:"purpose"`
	Participants string    `gorm:"type:text;not null" json:"participants"`
	Attendees    int       `gorm:"not null" json:"attendees"`
	Requirements string    `gorm:"type:text;not null" json:"requirements"`
	Date         time.Time `gorm:"type:date;not null" json:"date"`
	StartTime    string    `gorm:"type:varchar(5);not null" json:"start_time"` // "HH:MM"
	EndTime      string    `gorm:"type:varchar(5);not null" json:"end_time"`

	// Attachment storage keys, each either empty or a blob-store key.
	CashForm         string `gorm:"type:varchar(512)" json:"cash_form"`
	FoodForm         string `gorm:"type:varchar(512)" json:"food_form"`
	SupplyForm       string `gorm:"type:varchar(512)" json:"supply_form"`
	ReproductionForm string `gorm:"type:varchar(512)" json:"reproduction_form"`
	OtherForm        string `gorm:"type:varchar(512)" json:"other_form"`

	HeadStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"head_status"`
	OsaStatus  ApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"osa_status"`
	VpaStatus  ApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"vpa_status"`
	VpaaStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING';column:vpaa_status" json:"vpaa_status"`
	Status     ApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	UserID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	VenueID        uuid.UUID     `gorm:"type:uuid;not null" json:"venue_id"`
	Venue          *Venue        `gorm:"foreignKey:VenueID" json:"venue,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the proposal can no longer receive decisions.
func (p *ActivityProposal) IsTerminal() bool {
	return p.Status == StatusApproved || p.Status == StatusRejected
}

// DeriveStatus recomputes the aggregate from the four per-approver fields:
// any rejection makes the whole proposal REJECTED; all four approvals make
// it APPROVED; anything else stays PENDING.
func (p *ActivityProposal) DeriveStatus() ApprovalStatus {
	statuses := [4]ApprovalStatus{p.HeadStatus, p.OsaStatus, p.VpaStatus, p.VpaaStatus}

	approved := 0
	for _, s := range statuses {
		if s == StatusRejected {
			return StatusRejected
		}
		if s == StatusApproved {
			approved++
		}
	}
	if approved == len(statuses) {
		return StatusApproved
	}
	return StatusPending
}
