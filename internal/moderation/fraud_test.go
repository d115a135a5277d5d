package moderation

import (
	"reflect"
	"strings"
	"testing"
)

const cleanDescription = "The Eastern Cape Department of Education invites applications for its annual " +
	"teaching bursary programme. Successful candidates receive full tuition and a monthly stipend " +
	"while completing a BEd degree at an accredited public university."

func TestAnalyzeCleanListing(t *testing.T) {
	assessment := Analyze(Listing{
		Title:        "Teaching Bursary Programme 2026",
		Description:  cleanDescription,
		Organization: "Eastern Cape Department of Education",
		ContactEmail: "bursaries@ecdoe.gov.za",
		ContactPhone: "0401234567",
	})

	if assessment.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %s, want %s", assessment.RiskLevel, RiskLow)
	}

	if assessment.Score != 0 {
		t.Errorf("Score = %d, want 0", assessment.Score)
	}

	if len(assessment.Flags) != 1 || assessment.Flags[0] != "No obvious red flags detected" {
		t.Errorf("Flags = %v, want the no-red-flags placeholder", assessment.Flags)
	}

	if assessment.UsedAI {
		t.Error("UsedAI = true for rule-based assessment")
	}
}

func TestAnalyzeScamListing(t *testing.T) {
	assessment := Analyze(Listing{
		Title: "SUPER JOB OPPORTUNITY",
		Description: "Earn easy money with this work from home job. No experience needed. " +
			"Pay a small processing fee to secure your spot and start earning today.",
	})

	if assessment.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %s, want %s", assessment.RiskLevel, RiskHigh)
	}

	// Four keyword hits plus missing organization, missing contact info and
	// the all-caps title push the raw score past the clamp.
	if assessment.Score != 100 {
		t.Errorf("Score = %d, want 100", assessment.Score)
	}

	if !hasFlagContaining(assessment.Flags, "processing fee") {
		t.Errorf("Flags = %v, want a processing fee flag", assessment.Flags)
	}

	if !hasFlagContaining(assessment.Flags, "ALL CAPS") {
		t.Errorf("Flags = %v, want an all-caps title flag", assessment.Flags)
	}

	found := false
	for _, rec := range assessment.Recommendations {
		if strings.Contains(rec, "upfront payment") {
			found = true
		}
	}
	if !found {
		t.Errorf("Recommendations = %v, want the upfront payment warning", assessment.Recommendations)
	}
}

func TestAnalyzeMediumRisk(t *testing.T) {
	// Short organization (+20), personal email (+10), short description (+10).
	assessment := Analyze(Listing{
		Title:        "Driver needed",
		Description:  "Looking for a driver.",
		Organization: "AB",
		ContactEmail: "somebody@gmail.com",
	})

	if assessment.Score != 40 {
		t.Errorf("Score = %d, want 40", assessment.Score)
	}

	if assessment.RiskLevel != RiskMedium {
		t.Errorf("RiskLevel = %s, want %s", assessment.RiskLevel, RiskMedium)
	}

	found := false
	for _, rec := range assessment.Recommendations {
		if strings.Contains(rec, "official domain") {
			found = true
		}
	}
	if !found {
		t.Errorf("Recommendations = %v, want the email domain check", assessment.Recommendations)
	}
}

func TestAnalyzeThresholds(t *testing.T) {
	// Exactly 25: only the missing contact info rule fires.
	atMedium := Analyze(Listing{
		Title:        "Community Volunteer Programme",
		Description:  cleanDescription,
		Organization: "Local Youth Centre",
	})

	if atMedium.Score != 25 || atMedium.RiskLevel != RiskMedium {
		t.Errorf("got score %d level %s, want 25 %s", atMedium.Score, atMedium.RiskLevel, RiskMedium)
	}

	// Exactly 50: missing contacts (25), missing organization (20), caps (5).
	atHigh := Analyze(Listing{
		Title:       "VOLUNTEERS NEEDED",
		Description: cleanDescription,
	})

	if atHigh.Score != 50 || atHigh.RiskLevel != RiskHigh {
		t.Errorf("got score %d level %s, want 50 %s", atHigh.Score, atHigh.RiskLevel, RiskHigh)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	listing := Listing{
		Title:        "Earn thousands working from home",
		Description:  "Guaranteed income, act now. Limited time offer.",
		ContactEmail: "scammer@hotmail.com",
	}

	first := Analyze(listing)
	second := Analyze(listing)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Analyze is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func hasFlagContaining(flags []string, substr string) bool {
	for _, flag := range flags {
		if strings.Contains(flag, substr) {
			return true
		}
	}
	return false
}
