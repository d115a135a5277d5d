package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReportPending     = "pending"
	ReportUnderReview = "under-review"
	ReportResolved    = "resolved"
	ReportDismissed   = "dismissed"
)

var ReportTypes = []string{"opportunity", "user", "comment", "other"}

var ReportReasons = []string{
	"spam", "inappropriate", "misinformation", "scam", "harassment", "other",
}

type Report struct {
	gorm.Model

	ReportedByID uint `gorm:"not null;index"`

	// What is being reported
	ReportType   string `gorm:"not null"`
	ReportedItem uint   `gorm:"not null"`

	Reason      string `gorm:"not null"`
	Description string `gorm:"not null"`

	Status string `gorm:"not null;default:pending;index"`

	// Resolution, populated only on terminal transition
	ResolvedByID *uint
	ResolvedAt   *time.Time
	Resolution   string
	ActionTaken  string

	// Relationships
	ReportedBy User  `gorm:"foreignKey:ReportedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ResolvedBy *User `gorm:"foreignKey:ResolvedByID"`
}

func ValidReportType(reportType string) bool {
	for _, t := range ReportTypes {
		if t == reportType {
			return true
		}
	}
	return false
}

func ValidReportStatus(status string) bool {
	switch status {
	case ReportPending, ReportUnderReview, ReportResolved, ReportDismissed:
		return true
	default:
		return false
	}
}

func ValidReportReason(reason string) bool {
	for _, r := range ReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}
