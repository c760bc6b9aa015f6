package proposal

import (
	"context"
	"errors"
	"testing"

	"pookal/agent/capability"
	"pookal/internal/logging"
)

func TestIsConsent(t *testing.T) {
	yes := []string{
		"yes", "Yes", "YES!", "yeah", "ok", "Okay.", "sure", "do it",
		"yes please", "go ahead", "Go ahead and send it to her",
		"please place the call now",
	}
	no := []string{
		"", "no", "not now", "what does it cost?",
		"is it ok to walk there?", // "ok" inside a question is not consent
		"call my mom instead",
		"yesterday was hard",
	}
	for _, s := range yes {
		if !IsConsent(s) {
			t.Errorf("IsConsent(%q) = false, want true", s)
		}
	}
	for _, s := range no {
		if IsConsent(s) {
			t.Errorf("IsConsent(%q) = true, want false", s)
		}
	}
}

func TestTryAutoConsentResolvesMostRecent(t *testing.T) {
	s := NewStore()
	inv := okInvoker()
	s.Create("sess", "maps.safe_route", map[string]any{}, "", false)
	p2 := s.Create("sess", "twilio.sms", map[string]any{"to": "+91", "body": "hi"}, "", true)

	got, ok := TryAutoConsent(context.Background(), s, "sess", "yes", inv)
	if !ok {
		t.Fatal("TryAutoConsent = false")
	}
	if got.ID != p2.ID || got.Status != StatusAccepted {
		t.Errorf("resolved = %+v", got)
	}
	if inv.lastName != "twilio.sms" {
		t.Errorf("invoked %q", inv.lastName)
	}

	// The older proposal is untouched.
	if _, ok := s.MostRecentPending("sess"); !ok {
		t.Error("older proposal should still be pending")
	}
}

func TestTryAutoConsentAppliesOverrides(t *testing.T) {
	s := NewStore()
	inv := okInvoker()
	p := s.Create("sess", "twilio.call", map[string]any{"to": "+911111111111"}, "", true)
	if _, err := s.SetOverride(p.ID, "to", "+922222222222"); err != nil {
		t.Fatalf("SetOverride: %v", err)
	}

	if _, ok := TryAutoConsent(context.Background(), s, "sess", "go ahead", inv); !ok {
		t.Fatal("TryAutoConsent = false")
	}
	if inv.lastArgs["to"] != "+922222222222" {
		t.Errorf("executed to = %v", inv.lastArgs["to"])
	}
}

func TestTryAutoConsentNoPending(t *testing.T) {
	s := NewStore()
	inv := okInvoker()
	if _, ok := TryAutoConsent(context.Background(), s, "sess", "yes", inv); ok {
		t.Fatal("consented with nothing pending")
	}
	if inv.calls != 0 {
		t.Errorf("invoker ran %d times", inv.calls)
	}
}

func TestTryAutoConsentNonAffirmative(t *testing.T) {
	s := NewStore()
	inv := okInvoker()
	s.Create("sess", "twilio.sms", map[string]any{}, "", true)

	if _, ok := TryAutoConsent(context.Background(), s, "sess", "how far is it?", inv); ok {
		t.Fatal("non-affirmative consumed the proposal")
	}
	if inv.calls != 0 {
		t.Errorf("invoker ran %d times", inv.calls)
	}
}

func TestTryAutoConsentDomainFailureDeclines(t *testing.T) {
	s := NewStore()
	inv := &fakeInvoker{result: &capability.ExecutionResult{OK: false, Error: "no route found between those places"}}
	p := s.Create("sess", "maps.safe_route", map[string]any{}, "", false)

	got, ok := TryAutoConsent(context.Background(), s, "sess", "yes", inv)
	if !ok {
		t.Fatal("a domain failure still resolves the proposal")
	}
	if got.ID != p.ID || got.Status != StatusDeclined {
		t.Errorf("resolved = %+v, want declined", got)
	}
	if got.Result == nil || got.Result.OK {
		t.Errorf("Result = %+v", got.Result)
	}
}

func TestTryAutoConsentTransportFailureLeavesPending(t *testing.T) {
	logging.Disable()
	defer logging.Enable()

	s := NewStore()
	inv := &fakeInvoker{err: errors.New("dial tcp: connection refused")}
	p := s.Create("sess", "twilio.sms", map[string]any{"to": "+91"}, "", true)

	if _, ok := TryAutoConsent(context.Background(), s, "sess", "yes", inv); ok {
		t.Fatal("consent should fail on transport error")
	}

	got, err := s.Get(p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}

	// The guard must be released: a later confirm still works.
	if _, err := s.Confirm(context.Background(), p.ID, okInvoker()); err != nil {
		t.Fatalf("Confirm after failed consent: %v", err)
	}
}
