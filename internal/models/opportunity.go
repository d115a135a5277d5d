package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OpportunityPending  = "pending"
	OpportunityApproved = "approved"
	OpportunityRejected = "rejected"
)

// DefaultRejectionReason keeps the rejection reason populated when an admin
// rejects without providing one.
const DefaultRejectionReason = "No reason provided"

var OpportunityCategories = []string{
	"bursary", "career", "learnership", "business", "event", "success-story",
}

type Opportunity struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	Category    string `gorm:"not null;index:idx_opportunity_category_status"`
	Subcategory string

	// Organization details
	Organization string
	ContactEmail string
	ContactPhone string
	Website      string
	ApplyURL     string

	// Internal application system
	AllowInternalApplication bool           `gorm:"default:false"`
	ApplicationQuestions     datatypes.JSON `gorm:"type:jsonb"`
	RequiredDocuments        datatypes.JSON `gorm:"type:jsonb"`

	// Location and eligibility
	Location     string `gorm:"index"`
	Eligibility  string
	Requirements datatypes.JSON `gorm:"type:jsonb"`

	// Dates
	Deadline    *time.Time
	ClosingDate *time.Time `gorm:"index"`
	StartDate   *time.Time
	EndDate     *time.Time

	// Financial (bursaries/funding)
	Amount      string
	FundingType string

	// Employment (careers)
	EmploymentType string
	Salary         string
	Experience     string

	// Media and search
	ImageURL string
	Tags     datatypes.JSON `gorm:"type:jsonb"`

	// Status and moderation
	Status          string `gorm:"not null;default:pending;index:idx_opportunity_category_status"`
	RejectionReason string

	// Analytics counters, approximate by design
	Views        int `gorm:"default:0"`
	Applications int `gorm:"default:0"`

	// Meta
	CreatedByID uint `gorm:"not null;index"`
	UpdatedByID *uint
	Featured    bool `gorm:"default:false"`
	Urgent      bool `gorm:"default:false"`

	// Relationships
	CreatedBy User  `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	UpdatedBy *User `gorm:"foreignKey:UpdatedByID"`
}

func ValidCategory(category string) bool {
	for _, c := range OpportunityCategories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidOpportunityStatus(status string) bool {
	switch status {
	case OpportunityPending, OpportunityApproved, OpportunityRejected:
		return true
	default:
		return false
	}
}

// Expired reports whether the listing's closing date has passed. A listing
// without a closing date never expires.
func (o *Opportunity) Expired(now time.Time) bool {
	return o.ClosingDate != nil && o.ClosingDate.Before(now)
}

// Visible reports whether the listing belongs in public results: approved and
// not past its closing date.
func (o *Opportunity) Visible(now time.Time) bool {
	return o.Status == OpportunityApproved && !o.Expired(now)
}
