package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// SubmissionParsedData holds the structured candidate-listing fields an admin
// may fill in or correct before approving a submission. Stored as jsonb.
type SubmissionParsedData struct {
	Title        string     `json:"title,omitempty"`
	Description  string     `json:"description,omitempty"`
	Organization string     `json:"organization,omitempty"`
	Location     string     `json:"location,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	ContactEmail string     `json:"contactEmail,omitempty"`
	ContactPhone string     `json:"contactPhone,omitempty"`
	Website      string     `json:"website,omitempty"`
	Requirements []string   `json:"requirements,omitempty"`
	Amount       string     `json:"amount,omitempty"`
}

// SubmissionMetadata captures the WhatsApp business account context a message
// arrived through.
type SubmissionMetadata struct {
	PhoneNumberID      string `json:"phoneNumberId,omitempty"`
	DisplayPhoneNumber string `json:"displayPhoneNumber,omitempty"`
}

type WhatsAppSubmission struct {
	gorm.Model

	MessageID      string `gorm:"uniqueIndex;not null"`
	SenderPhone    string `gorm:"not null;index"`
	SenderName     string `gorm:"default:Unknown"`
	MessageType    string `gorm:"not null"`
	MessageContent string `gorm:"not null"`
	MediaURL       string

	Category string `gorm:"default:general;index:idx_submission_category_status"`
	Status   string `gorm:"not null;default:pending;index:idx_submission_category_status"`

	Timestamp time.Time `gorm:"not null"`

	// Set when approval produces a listing
	OpportunityID *uint

	// Review tracking
	ReviewedByID *uint
	ReviewedAt   *time.Time
	ReviewNotes  string

	ParsedData datatypes.JSON `gorm:"type:jsonb"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Opportunity *Opportunity `gorm:"foreignKey:OpportunityID"`
	ReviewedBy  *User        `gorm:"foreignKey:ReviewedByID"`
}
