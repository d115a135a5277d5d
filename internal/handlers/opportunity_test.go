package handlers

import (
	"testing"

	"github.com/ecyouth/portal/internal/models"
	"gorm.io/datatypes"
)

func TestInitialStatus(t *testing.T) {
	if got := initialStatus(models.RoleAdmin); got != models.OpportunityApproved {
		t.Errorf("admin listing status = %s, want approved", got)
	}

	if got := initialStatus(models.RoleStakeholder); got != models.OpportunityPending {
		t.Errorf("stakeholder listing status = %s, want pending", got)
	}

	if got := initialStatus(models.RoleUser); got != models.OpportunityPending {
		t.Errorf("user listing status = %s, want pending", got)
	}
}

func TestOpportunityFromSubmission(t *testing.T) {
	submission := models.WhatsAppSubmission{
		SenderName:     "Thandi",
		SenderPhone:    "27821234567",
		MessageContent: "Bursary applications open at Walter Sisulu University",
		Category:       "bursary",
		ParsedData: datatypes.JSON(`{
			"title": "WSU Bursary 2026",
			"organization": "Walter Sisulu University",
			"contactEmail": "bursaries@wsu.ac.za",
			"requirements": ["Matric certificate", "Proof of income"]
		}`),
	}

	opportunity := opportunityFromSubmission(&submission)

	if opportunity.Title != "WSU Bursary 2026" {
		t.Errorf("Title = %q", opportunity.Title)
	}

	// Description falls back to the raw message when the parsed data has none
	if opportunity.Description != submission.MessageContent {
		t.Errorf("Description = %q", opportunity.Description)
	}

	if opportunity.Category != "bursary" {
		t.Errorf("Category = %q", opportunity.Category)
	}

	if opportunity.Status != models.OpportunityApproved {
		t.Errorf("Status = %q, want approved", opportunity.Status)
	}

	if opportunity.ContactEmail != "bursaries@wsu.ac.za" {
		t.Errorf("ContactEmail = %q", opportunity.ContactEmail)
	}

	// No parsed phone, so the sender's number is kept as contact
	if opportunity.ContactPhone != "27821234567" {
		t.Errorf("ContactPhone = %q", opportunity.ContactPhone)
	}

	if len(opportunity.Requirements) == 0 {
		t.Error("Requirements not carried over")
	}
}

func TestOpportunityFromSubmissionDefaults(t *testing.T) {
	submission := models.WhatsAppSubmission{
		SenderName:     "Unknown",
		SenderPhone:    "27800000000",
		MessageContent: "Some opportunity text",
		Category:       "not-a-real-category",
	}

	opportunity := opportunityFromSubmission(&submission)

	if opportunity.Title != "WhatsApp submission from Unknown" {
		t.Errorf("Title = %q", opportunity.Title)
	}

	if opportunity.Category != "career" {
		t.Errorf("invalid category should default to career, got %q", opportunity.Category)
	}

	// Without parsed fields the sender becomes the organization and the
	// province-wide default is used for location
	if opportunity.Organization != "Unknown" {
		t.Errorf("Organization = %q, want sender name", opportunity.Organization)
	}

	if opportunity.Location != "Eastern Cape" {
		t.Errorf("Location = %q, want Eastern Cape", opportunity.Location)
	}
}
