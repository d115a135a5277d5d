package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}

	return parsed
}

func TestToggleLike(t *testing.T) {
	likes := datatypes.JSON("[]")

	likes, liked := ToggleLike(likes, 7)
	if !liked {
		t.Error("first toggle should like")
	}
	if CountLikes(likes) != 1 {
		t.Errorf("CountLikes = %d, want 1", CountLikes(likes))
	}

	likes, liked = ToggleLike(likes, 12)
	if !liked || CountLikes(likes) != 2 {
		t.Errorf("second user: liked=%v count=%d", liked, CountLikes(likes))
	}

	// Toggling again removes only that user
	likes, liked = ToggleLike(likes, 7)
	if liked {
		t.Error("second toggle should unlike")
	}
	if CountLikes(likes) != 1 {
		t.Errorf("CountLikes after unlike = %d, want 1", CountLikes(likes))
	}
}

func TestToggleLikeEmptyAndCorrupt(t *testing.T) {
	likes, liked := ToggleLike(nil, 3)
	if !liked || CountLikes(likes) != 1 {
		t.Errorf("nil set: liked=%v count=%d", liked, CountLikes(likes))
	}

	// Corrupt jsonb degrades to an empty set instead of failing
	likes, liked = ToggleLike(datatypes.JSON(`{"not":"an array"}`), 3)
	if !liked || CountLikes(likes) != 1 {
		t.Errorf("corrupt set: liked=%v count=%d", liked, CountLikes(likes))
	}
}

func TestDisplayContent(t *testing.T) {
	comment := ForumComment{Content: "Good advice, thanks!"}

	if got := comment.DisplayContent(); got != "Good advice, thanks!" {
		t.Errorf("DisplayContent = %q", got)
	}

	comment.IsDeleted = true

	if got := comment.DisplayContent(); got != DeletedCommentPlaceholder {
		t.Errorf("deleted DisplayContent = %q, want %q", got, DeletedCommentPlaceholder)
	}
}

func TestOpportunityVisible(t *testing.T) {
	now := mustParse(t, "2026-03-01T12:00:00Z")
	past := mustParse(t, "2026-02-01T00:00:00Z")
	future := mustParse(t, "2026-04-01T00:00:00Z")

	open := Opportunity{Status: OpportunityApproved, ClosingDate: &future}
	if !open.Visible(now) {
		t.Error("approved listing with future closing date should be visible")
	}

	expired := Opportunity{Status: OpportunityApproved, ClosingDate: &past}
	if expired.Visible(now) {
		t.Error("expired listing should not be visible")
	}

	// No closing date means the listing never expires
	evergreen := Opportunity{Status: OpportunityApproved}
	if !evergreen.Visible(now) {
		t.Error("listing without closing date should be visible")
	}

	pending := Opportunity{Status: OpportunityPending, ClosingDate: &future}
	if pending.Visible(now) {
		t.Error("pending listing should not be visible")
	}
}
