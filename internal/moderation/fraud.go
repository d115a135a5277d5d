package moderation

import (
	"fmt"
	"strings"
)

const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Listing is the textual slice of an opportunity the fraud rules inspect.
type Listing struct {
	Title        string
	Description  string
	Requirements string
	Organization string
	ContactEmail string
	ContactPhone string
	ApplyURL     string
}

// Assessment is the shared result shape of the rule-based scorer and the
// remote AI path.
type Assessment struct {
	RiskLevel       string   `json:"riskLevel"`
	Score           int      `json:"riskScore"`
	Flags           []string `json:"flags"`
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
	UsedAI          bool     `json:"usedAI"`
	Model           string   `json:"model,omitempty"`
}

var scamKeywords = []string{
	"easy money", "work from home", "no experience needed", "guaranteed income",
	"make money fast", "limited time", "act now", "urgent", "western union",
	"money transfer", "processing fee", "registration fee", "application fee",
	"training fee", "deposit required", "pay upfront", "bitcoin", "cryptocurrency",
}

var unrealisticPhrases = []string{
	"high salary", "earn thousands", "luxury", "millionaire", "get rich",
}

var personalEmailDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
}

// fraudRule contributes a fixed point value and flag when its predicate
// matches. Rules are independent; the score is the clamped sum.
type fraudRule struct {
	points int
	check  func(l Listing, text string) (bool, string)
}

var fraudRules = []fraudRule{
	{20, func(l Listing, _ string) (bool, string) {
		if len(l.Organization) < 3 {
			return true, "Missing or incomplete organization name"
		}
		return false, ""
	}},
	{25, func(l Listing, _ string) (bool, string) {
		if l.ContactEmail == "" && l.ContactPhone == "" && l.ApplyURL == "" {
			return true, "No valid contact information provided"
		}
		return false, ""
	}},
	{10, func(l Listing, _ string) (bool, string) {
		if l.ContactEmail == "" {
			return false, ""
		}
		parts := strings.SplitN(l.ContactEmail, "@", 2)
		if len(parts) != 2 {
			return false, ""
		}
		domain := strings.ToLower(parts[1])
		for _, suspicious := range personalEmailDomains {
			if domain == suspicious {
				return true, "Using personal email instead of company domain"
			}
		}
		return false, ""
	}},
	{10, func(l Listing, _ string) (bool, string) {
		if l.Description != "" && len(l.Description) < 100 {
			return true, "Very short or vague description"
		}
		return false, ""
	}},
	{5, func(l Listing, _ string) (bool, string) {
		if len(l.Title) > 10 && l.Title == strings.ToUpper(l.Title) {
			return true, "Title in ALL CAPS (aggressive marketing)"
		}
		return false, ""
	}},
}

// Analyze runs the deterministic rule table over a listing. Identical input
// always yields an identical assessment; the score is clamped to [0, 100].
func Analyze(l Listing) Assessment {
	var flags []string
	score := 0

	text := strings.ToLower(l.Title + " " + l.Description + " " + l.Requirements)

	for _, keyword := range scamKeywords {
		if strings.Contains(text, keyword) {
			flags = append(flags, fmt.Sprintf("Suspicious keyword detected: %q", keyword))
			score += 15
		}
	}

	for _, rule := range fraudRules {
		if matched, flag := rule.check(l, text); matched {
			flags = append(flags, flag)
			score += rule.points
		}
	}

	for _, phrase := range unrealisticPhrases {
		if strings.Contains(text, phrase) {
			flags = append(flags, fmt.Sprintf("Unrealistic promise detected: %q", phrase))
			score += 15
		}
	}

	if score > 100 {
		score = 100
	}

	riskLevel := RiskLow
	switch {
	case score >= 50:
		riskLevel = RiskHigh
	case score >= 25:
		riskLevel = RiskMedium
	}

	return Assessment{
		RiskLevel:       riskLevel,
		Score:           score,
		Flags:           flagsOrDefault(flags),
		Analysis:        summarize(flags),
		Recommendations: recommend(flags, score),
	}
}

func flagsOrDefault(flags []string) []string {
	if len(flags) == 0 {
		return []string{"No obvious red flags detected"}
	}
	return flags
}

func summarize(flags []string) string {
	if len(flags) == 0 {
		return "No obvious fraud indicators detected. Appears legitimate but always verify independently."
	}
	return fmt.Sprintf("Found %d potential concern(s). Manual verification recommended.", len(flags))
}

func recommend(flags []string, score int) []string {
	var recommendations []string

	if score > 0 {
		recommendations = append(recommendations,
			"Verify organization legitimacy through official channels",
			"Check if organization has official website and social media presence",
			"Contact organization directly using publicly listed contact information",
		)
	}

	for _, flag := range flags {
		if strings.Contains(flag, "fee") || strings.Contains(flag, "payment") {
			recommendations = append(recommendations, "WARNING: Legitimate opportunities never require upfront payment")
			break
		}
	}

	for _, flag := range flags {
		if strings.Contains(flag, "email") {
			recommendations = append(recommendations, "Verify the contact email matches the organization's official domain")
			break
		}
	}

	if len(recommendations) == 0 {
		recommendations = []string{"Standard verification: Check organization background and credentials"}
	}

	return recommendations
}
