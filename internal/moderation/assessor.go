package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"

	"github.com/ecyouth/portal/internal/services"
)

// RiskAssessor produces a fraud assessment for a listing. Two implementations
// exist: the remote AI path and the local rule table. Selection happens once,
// at construction, never per call site.
type RiskAssessor interface {
	Assess(ctx context.Context, l Listing) (Assessment, error)
}

// NewAssessor picks the remote assessor with a local fallback when a chat
// client is configured, otherwise the local rules alone.
func NewAssessor(client *services.ChatClient) RiskAssessor {
	if client == nil {
		return LocalAssessor{}
	}
	return fallbackAssessor{
		primary:  &RemoteAssessor{client: client},
		fallback: LocalAssessor{},
	}
}

// LocalAssessor wraps the deterministic rule table.
type LocalAssessor struct{}

func (LocalAssessor) Assess(_ context.Context, l Listing) (Assessment, error) {
	return Analyze(l), nil
}

// RemoteAssessor asks the completion service for a structured assessment.
type RemoteAssessor struct {
	client *services.ChatClient
}

const assessorSystemPrompt = "You are an expert fraud detection analyst specializing in identifying job scams, " +
	"fake opportunities, and fraudulent postings. Analyze opportunities for South African youth " +
	"and provide detailed, actionable fraud risk assessments."

var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

func (a *RemoteAssessor) Assess(ctx context.Context, l Listing) (Assessment, error) {
	prompt := fmt.Sprintf(`Analyze this opportunity posting for potential fraud or scam indicators.

Title: %s
Organization: %s
Description: %s
Requirements: %s
Contact Email: %s
Contact Phone: %s
Application Link: %s

Respond with JSON only:
{"riskLevel": "LOW/MEDIUM/HIGH", "riskScore": 0-100, "flags": ["..."], "analysis": "...", "recommendations": ["..."]}`,
		l.Title, l.Organization, l.Description, l.Requirements,
		l.ContactEmail, l.ContactPhone, l.ApplyURL)

	reply, err := a.client.Complete(ctx, assessorSystemPrompt, nil, prompt, 0.3)
	if err != nil {
		return Assessment{}, err
	}

	// The model sometimes wraps the JSON in prose; take the outermost object.
	block := jsonBlockPattern.FindString(reply)
	if block == "" {
		return Assessment{}, fmt.Errorf("no JSON object in assessment reply")
	}

	var assessment Assessment
	if err := json.Unmarshal([]byte(block), &assessment); err != nil {
		return Assessment{}, err
	}

	if assessment.Score < 0 {
		assessment.Score = 0
	}
	if assessment.Score > 100 {
		assessment.Score = 100
	}

	assessment.UsedAI = true
	assessment.Model = a.client.Model()
	return assessment, nil
}

// fallbackAssessor downgrades every primary failure to the deterministic
// local result; remote errors are never surfaced to the caller.
type fallbackAssessor struct {
	primary  RiskAssessor
	fallback RiskAssessor
}

func (f fallbackAssessor) Assess(ctx context.Context, l Listing) (Assessment, error) {
	assessment, err := f.primary.Assess(ctx, l)
	if err == nil {
		return assessment, nil
	}

	log.Printf("Remote fraud assessment unavailable, using rules: %v", err)
	return f.fallback.Assess(ctx, l)
}
