package session

import "testing"

func TestGetOrCreate(t *testing.T) {
	m := NewManager()

	s := m.GetOrCreate("", "lily")
	if s.ID == "" {
		t.Fatal("empty session id")
	}
	if s.Persona != "lily" {
		t.Errorf("Persona = %q", s.Persona)
	}

	again := m.GetOrCreate(s.ID, "sage")
	if again.ID != s.ID {
		t.Errorf("got new session %q, want %q", again.ID, s.ID)
	}
	if again.Persona != "lily" {
		t.Errorf("existing session persona changed to %q", again.Persona)
	}

	other := m.GetOrCreate("", "lily")
	if other.ID == s.ID {
		t.Error("distinct sessions share an id")
	}
}

func TestAppendAndHistory(t *testing.T) {
	m := NewManager()
	s := m.GetOrCreate("", "lily")

	m.Append(s.ID, RoleUser, "hello", "")
	msg := m.Append(s.ID, RoleAssistant, "hi there", "prop-1")
	if msg.ID == "" || msg.CreatedAt.IsZero() {
		t.Errorf("msg = %+v", msg)
	}
	if msg.ProposalID != "prop-1" {
		t.Errorf("ProposalID = %q", msg.ProposalID)
	}

	hist := m.History(s.ID, 0)
	if len(hist) != 2 {
		t.Fatalf("len = %d", len(hist))
	}
	if hist[0].Content != "hello" || hist[1].Content != "hi there" {
		t.Errorf("hist = %+v", hist)
	}
}

func TestHistoryLimit(t *testing.T) {
	m := NewManager()
	s := m.GetOrCreate("", "lily")
	for _, c := range []string{"a", "b", "c", "d"} {
		m.Append(s.ID, RoleUser, c, "")
	}

	hist := m.History(s.ID, 2)
	if len(hist) != 2 || hist[0].Content != "c" || hist[1].Content != "d" {
		t.Errorf("hist = %+v", hist)
	}

	if got := m.History("unknown", 2); got != nil {
		t.Errorf("unknown session history = %v", got)
	}
}
