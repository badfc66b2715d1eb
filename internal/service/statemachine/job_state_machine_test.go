package statemachine

import "testing"

func TestAllowedTransitions(t *testing.T) {
	sm := NewJobStateMachine()

	allowed := []JobTransition{
		{JobStatusPending, JobStatusProcessing},
		{JobStatusProcessing, JobStatusCompleted},
		{JobStatusProcessing, JobStatusFailed},
		{JobStatusProcessing, JobStatusPending},
	}
	for _, tr := range allowed {
		if !sm.CanTransition(tr.From, tr.To) {
			t.Errorf("expected %s -> %s to be allowed", tr.From, tr.To)
		}
	}

	denied := []JobTransition{
		{JobStatusPending, JobStatusCompleted},
		{JobStatusPending, JobStatusFailed},
		{JobStatusCompleted, JobStatusProcessing},
		{JobStatusFailed, JobStatusPending},
		{JobStatusCompleted, JobStatusPending},
		{JobStatusPending, JobStatusPending},
	}
	for _, tr := range denied {
		if sm.CanTransition(tr.From, tr.To) {
			t.Errorf("expected %s -> %s to be denied", tr.From, tr.To)
		}
	}
}

func TestValidateTransitionError(t *testing.T) {
	sm := NewJobStateMachine()
	err := sm.ValidateTransition(JobStatusCompleted, JobStatusFailed)
	if err == nil {
		t.Fatalf("expected error for terminal transition")
	}
	if _, ok := err.(*InvalidStateTransitionError); !ok {
		t.Fatalf("expected InvalidStateTransitionError, got %T", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(JobStatusCompleted) || !IsTerminal(JobStatusFailed) {
		t.Fatalf("completed and failed must be terminal")
	}
	if IsTerminal(JobStatusPending) || IsTerminal(JobStatusProcessing) {
		t.Fatalf("pending and processing must not be terminal")
	}
}
