package proposal

import (
	"context"
	"errors"
	"testing"

	"pookal/agent/capability"
)

// fakeInvoker records invocations and returns a scripted outcome.
type fakeInvoker struct {
	calls    int
	lastName string
	lastArgs map[string]any
	result   *capability.ExecutionResult
	err      error
}

func (f *fakeInvoker) Invoke(_ context.Context, name string, args map[string]any) (*capability.ExecutionResult, error) {
	f.calls++
	f.lastName = name
	f.lastArgs = args
	return f.result, f.err
}

func okInvoker() *fakeInvoker {
	return &fakeInvoker{result: &capability.ExecutionResult{OK: true, Data: map[string]any{"sid": "SM1"}}}
}

func TestConfirmExecutesOnce(t *testing.T) {
	s := NewStore()
	inv := okInvoker()
	p := s.Create("sess", "twilio.sms", map[string]any{"to": "+919876543210", "body": "hi"}, "", true)

	got, err := s.Confirm(context.Background(), p.ID, inv)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got.Status != StatusAccepted {
		t.Errorf("Status = %q", got.Status)
	}
	if got.Result == nil || !got.Result.OK {
		t.Errorf("Result = %+v", got.Result)
	}
	if inv.calls != 1 || inv.lastName != "twilio.sms" {
		t.Errorf("invoker calls = %d name = %q", inv.calls, inv.lastName)
	}

	// A second confirm must not re-execute.
	if _, err := s.Confirm(context.Background(), p.ID, inv); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second Confirm err = %v, want ErrNotPending", err)
	}
	if inv.calls != 1 {
		t.Errorf("invoker ran %d times, want 1", inv.calls)
	}
}

func TestDeclineSkipsExecution(t *testing.T) {
	s := NewStore()
	inv := okInvoker()
	p := s.Create("sess", "twilio.call", map[string]any{"to": "+91"}, "", true)

	got, err := s.Decline(p.ID)
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if got.Status != StatusDeclined {
		t.Errorf("Status = %q", got.Status)
	}

	if _, err := s.Confirm(context.Background(), p.ID, inv); !errors.Is(err, ErrNotPending) {
		t.Fatalf("Confirm after decline err = %v", err)
	}
	if inv.calls != 0 {
		t.Errorf("invoker ran %d times after decline", inv.calls)
	}
}

func TestConfirmMergesOverrides(t *testing.T) {
	s := NewStore()
	inv := okInvoker()
	p := s.Create("sess", "twilio.sms", map[string]any{"to": "+911111111111", "body": "hi"}, "", true)

	if _, err := s.SetOverride(p.ID, "to", "+922222222222"); err != nil {
		t.Fatalf("SetOverride: %v", err)
	}

	got, err := s.Confirm(context.Background(), p.ID, inv)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if inv.lastArgs["to"] != "+922222222222" {
		t.Errorf("executed to = %v, want override", inv.lastArgs["to"])
	}
	if inv.lastArgs["body"] != "hi" {
		t.Errorf("executed body = %v, want original", inv.lastArgs["body"])
	}
	if got.Args["to"] != "+922222222222" {
		t.Errorf("recorded args = %v", got.Args)
	}
	if got.Overrides != nil {
		t.Errorf("overrides not cleared: %v", got.Overrides)
	}
}

func TestOverrideAfterResolveRejected(t *testing.T) {
	s := NewStore()
	p := s.Create("sess", "twilio.sms", map[string]any{"to": "+91"}, "", true)
	if _, err := s.Decline(p.ID); err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if _, err := s.SetOverride(p.ID, "to", "+92"); !errors.Is(err, ErrNotPending) {
		t.Fatalf("SetOverride err = %v, want ErrNotPending", err)
	}
}

func TestConfirmInvokerFailureDeclines(t *testing.T) {
	s := NewStore()
	inv := &fakeInvoker{err: errors.New("connection refused")}
	p := s.Create("sess", "maps.safe_route", map[string]any{"from": "MG Road", "to": "Indiranagar"}, "", false)

	got, err := s.Confirm(context.Background(), p.ID, inv)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got.Status != StatusDeclined {
		t.Errorf("Status = %q, want declined", got.Status)
	}
	if got.Result == nil || got.Result.OK || got.Result.Error != "connection refused" {
		t.Errorf("Result = %+v", got.Result)
	}

	if _, err := s.Confirm(context.Background(), p.ID, inv); !errors.Is(err, ErrNotPending) {
		t.Fatalf("retry err = %v, want ErrNotPending", err)
	}
}

func TestConfirmDomainFailureDeclines(t *testing.T) {
	s := NewStore()
	inv := &fakeInvoker{result: &capability.ExecutionResult{
		OK:    false,
		Error: "route planning is not configured (missing OpenRouteService API key)",
	}}
	p := s.Create("sess", "maps.safe_route", map[string]any{"from": "MG Road", "to": "Indiranagar"}, "", false)

	got, err := s.Confirm(context.Background(), p.ID, inv)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got.Status != StatusDeclined {
		t.Errorf("Status = %q, want declined when the capability reports failure", got.Status)
	}
	if got.Result == nil || got.Result.OK || got.Result.Error == "" {
		t.Errorf("Result = %+v", got.Result)
	}

	// Resolution still happens at most once.
	if _, err := s.Confirm(context.Background(), p.ID, inv); !errors.Is(err, ErrNotPending) {
		t.Fatalf("retry err = %v, want ErrNotPending", err)
	}
}

func TestMostRecentPending(t *testing.T) {
	s := NewStore()
	s.Create("sess", "maps.safe_route", map[string]any{}, "", false)
	p2 := s.Create("sess", "twilio.sms", map[string]any{}, "", true)
	s.Create("other", "twilio.call", map[string]any{}, "", true)

	got, ok := s.MostRecentPending("sess")
	if !ok || got.ID != p2.ID {
		t.Fatalf("MostRecentPending = %+v, %v; want %s", got, ok, p2.ID)
	}

	if _, err := s.Decline(p2.ID); err != nil {
		t.Fatalf("Decline: %v", err)
	}
	got, ok = s.MostRecentPending("sess")
	if !ok || got.Capability != "maps.safe_route" {
		t.Fatalf("after decline = %+v, %v", got, ok)
	}
}

func TestGetUnknown(t *testing.T) {
	s := NewStore()
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
