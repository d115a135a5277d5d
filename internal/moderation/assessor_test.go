package moderation

import (
	"context"
	"errors"
	"testing"
)

type stubAssessor struct {
	assessment Assessment
	err        error
	calls      int
}

func (s *stubAssessor) Assess(_ context.Context, _ Listing) (Assessment, error) {
	s.calls++
	return s.assessment, s.err
}

func TestNewAssessorWithoutClient(t *testing.T) {
	if _, ok := NewAssessor(nil).(LocalAssessor); !ok {
		t.Error("nil client should select the local assessor")
	}
}

func TestFallbackAssessor(t *testing.T) {
	remote := &stubAssessor{assessment: Assessment{RiskLevel: RiskHigh, Score: 80, UsedAI: true}}
	local := &stubAssessor{assessment: Assessment{RiskLevel: RiskLow, Score: 0}}
	assessor := fallbackAssessor{primary: remote, fallback: local}

	got, err := assessor.Assess(context.Background(), Listing{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.UsedAI || got.Score != 80 {
		t.Errorf("primary result not used: %+v", got)
	}
	if local.calls != 0 {
		t.Error("fallback called although primary succeeded")
	}

	// Primary failure degrades silently to the local result
	remote.err = errors.New("upstream unavailable")

	got, err = assessor.Assess(context.Background(), Listing{})
	if err != nil {
		t.Fatalf("fallback surfaced an error: %v", err)
	}
	if got.UsedAI || got.RiskLevel != RiskLow {
		t.Errorf("fallback result not used: %+v", got)
	}
	if local.calls != 1 {
		t.Errorf("fallback calls = %d, want 1", local.calls)
	}
}
