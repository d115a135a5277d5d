package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ApplicationPending     = "pending"
	ApplicationUnderReview = "under-review"
	ApplicationApproved    = "approved"
	ApplicationRejected    = "rejected"
	ApplicationWithdrawn   = "withdrawn"
)

// Application records one user's submission against one opportunity. The
// partial unique index allows a fresh application after a withdrawal while
// rejecting concurrent duplicates at the storage layer.
type Application struct {
	gorm.Model

	UserID        uint   `gorm:"not null;uniqueIndex:idx_applicant_opportunity,where:status <> 'withdrawn'"`
	OpportunityID uint   `gorm:"not null;uniqueIndex:idx_applicant_opportunity"`
	Status        string `gorm:"not null;default:pending;index"`

	CoverLetter string
	Resume      string
	Documents   datatypes.JSON `gorm:"type:jsonb"`
	Answers     datatypes.JSON `gorm:"type:jsonb"`

	// Review tracking
	ReviewedByID *uint
	ReviewedAt   *time.Time
	Notes        string

	// Relationships
	User        User        `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Opportunity Opportunity `gorm:"foreignKey:OpportunityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ReviewedBy  *User       `gorm:"foreignKey:ReviewedByID"`
}

// ValidReviewStatus reports whether a reviewer may set the given status.
// Withdrawal is applicant-only and handled separately.
func ValidReviewStatus(status string) bool {
	switch status {
	case ApplicationPending, ApplicationUnderReview, ApplicationApproved, ApplicationRejected:
		return true
	default:
		return false
	}
}
