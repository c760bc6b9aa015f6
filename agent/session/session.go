// Package session keeps per-conversation message history in memory.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a conversation. ProposalID links an assistant
// message to the proposal it surfaced, when there is one.
type Message struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ProposalID string    `json:"proposal_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session is a single conversation.
type Session struct {
	ID        string    `json:"id"`
	Persona   string    `json:"persona"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager holds sessions in memory. History exists for prompt context, not
// for the record: nothing survives a restart.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session with the given id, creating it with the
// persona when it does not exist yet. An empty id gets a fresh session.
func (m *Manager) GetOrCreate(id, persona string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return s.snapshot()
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{ID: id, Persona: persona, CreatedAt: time.Now()}
	m.sessions[id] = s
	return s.snapshot()
}

// Append adds a message to a session and returns the stored message.
func (m *Manager) Append(sessionID, role, content, proposalID string) Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := Message{
		ID:         uuid.NewString(),
		Role:       role,
		Content:    content,
		ProposalID: proposalID,
		CreatedAt:  time.Now(),
	}
	if s, ok := m.sessions[sessionID]; ok {
		s.Messages = append(s.Messages, msg)
	}
	return msg
}

// History returns up to limit most recent messages of a session, oldest
// first. limit <= 0 means everything.
func (m *Manager) History(sessionID string, limit int) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	msgs := s.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

func (s *Session) snapshot() *Session {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}
