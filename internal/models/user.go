package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser        = "user"
	RoleStakeholder = "stakeholder"
	RoleAdmin       = "admin"
)

const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:user;index"`

	// Profile
	Bio              string
	Location         string
	Phone            string
	EducationLevel   string
	EmploymentStatus string
	Skills           datatypes.JSON `gorm:"type:jsonb"`
	Interests        datatypes.JSON `gorm:"type:jsonb"`
	Preferences      datatypes.JSON `gorm:"type:jsonb"`

	// Uploaded CV
	CVURL        string
	CVFileName   string
	CVUploadedAt *time.Time

	// Stakeholder company profile
	CompanyName        string
	CompanyDescription string
	CompanyWebsite     string
	CompanyIndustry    string
	CompanySize        string
	VerificationStatus string `gorm:"default:pending"`

	// Account state
	IsActive         bool `gorm:"default:true"`
	IsSuspended      bool `gorm:"default:false"`
	SuspensionReason string
	LastLogin        *time.Time

	// Relationships
	SavedOpportunities []SavedOpportunity `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// SavedOpportunity is the bookmark join between a user and a listing.
type SavedOpportunity struct {
	gorm.Model

	UserID        uint `gorm:"not null;uniqueIndex:idx_user_saved_opportunity"`
	OpportunityID uint `gorm:"not null;uniqueIndex:idx_user_saved_opportunity"`

	// Relationships
	User        User        `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Opportunity Opportunity `gorm:"foreignKey:OpportunityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleStakeholder, RoleAdmin:
		return true
	default:
		return false
	}
}

func ValidVerificationStatus(status string) bool {
	switch status {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	default:
		return false
	}
}
