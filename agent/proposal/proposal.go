// Package proposal implements the confirmation gate between model output
// and capability execution. A proposed action sits pending until the user
// confirms or declines it; nothing with side effects runs before that.
package proposal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"pookal/agent/capability"
)

// Status is the lifecycle state of a proposal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

var (
	// ErrNotFound means no proposal exists with the given id.
	ErrNotFound = errors.New("proposal not found")
	// ErrNotPending means the proposal was already resolved, or is being
	// resolved right now. Resolution happens at most once.
	ErrNotPending = errors.New("proposal is not pending")
)

// Proposal is one capability invocation awaiting (or past) user decision.
type Proposal struct {
	ID         string                      `json:"id"`
	SessionID  string                      `json:"session_id"`
	Capability string                      `json:"capability"`
	Args       map[string]any              `json:"args"`
	Rationale  string                      `json:"rationale,omitempty"`
	Sensitive  bool                        `json:"sensitive"`
	Status     Status                      `json:"status"`
	Overrides  map[string]any              `json:"overrides,omitempty"`
	Result     *capability.ExecutionResult `json:"result,omitempty"`
	CreatedAt  time.Time                   `json:"created_at"`
	ResolvedAt time.Time                   `json:"resolved_at,omitzero"`

	// resolving guards the window between the decision and the executor
	// returning, so the store lock is not held across network calls.
	resolving bool
}

// Invoker executes a named capability. The registry implements it; tests
// substitute fakes. A returned error is a transport or validation failure,
// distinct from a domain failure reported inside ExecutionResult.
type Invoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) (*capability.ExecutionResult, error)
}

// Store holds proposals in memory. Nothing is persisted; a restart clears
// all pending proposals, which is the safe direction to fail.
type Store struct {
	mu    sync.Mutex
	byID  map[string]*Proposal
	order []string // creation order, for most-recent-pending lookup
}

// NewStore creates an empty proposal store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*Proposal)}
}

// Create registers a new pending proposal and returns a snapshot of it.
func (s *Store) Create(sessionID, capName string, args map[string]any, rationale string, sensitive bool) *Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Proposal{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Capability: capName,
		Args:       cloneArgs(args),
		Rationale:  rationale,
		Sensitive:  sensitive,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	return p.snapshot()
}

// Get returns a snapshot of the proposal with the given id.
func (s *Store) Get(id string) (*Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.snapshot(), nil
}

// SetOverride records a field override on a pending proposal. Overrides
// are merged over the proposed args when the proposal is confirmed.
func (s *Store) SetOverride(id, field string, value any) (*Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != StatusPending || p.resolving {
		return nil, ErrNotPending
	}
	if p.Overrides == nil {
		p.Overrides = make(map[string]any)
	}
	p.Overrides[field] = value
	return p.snapshot(), nil
}

// MostRecentPending returns the newest pending proposal for a session.
func (s *Store) MostRecentPending(sessionID string) (*Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		p := s.byID[s.order[i]]
		if p.SessionID == sessionID && p.Status == StatusPending && !p.resolving {
			return p.snapshot(), true
		}
	}
	return nil, false
}

// Confirm resolves a pending proposal by executing its capability with
// overrides merged over the proposed args. Any execution failure, whether
// a transport error from the invoker or a domain failure reported in the
// result, declines the proposal with the failure attached; accepted means
// the action actually happened.
func (s *Store) Confirm(ctx context.Context, id string, inv Invoker) (*Proposal, error) {
	args, err := s.beginResolve(id)
	if err != nil {
		return nil, err
	}

	res, invErr := inv.Invoke(ctx, s.capabilityName(id), args)
	if invErr != nil {
		return s.finishResolve(id, StatusDeclined, args, &capability.ExecutionResult{
			OK:    false,
			Error: invErr.Error(),
		}), nil
	}
	return s.finishResolve(id, statusForResult(res), args, res), nil
}

// statusForResult maps an execution result onto the resolved status.
func statusForResult(res *capability.ExecutionResult) Status {
	if res == nil || !res.OK {
		return StatusDeclined
	}
	return StatusAccepted
}

// Decline resolves a pending proposal without executing anything.
func (s *Store) Decline(id string) (*Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != StatusPending || p.resolving {
		return nil, ErrNotPending
	}
	p.Status = StatusDeclined
	p.Overrides = nil
	p.ResolvedAt = time.Now()
	return p.snapshot(), nil
}

// beginResolve claims a pending proposal for resolution and returns the
// merged args to execute with. The claim keeps concurrent confirms out
// while the lock is released for the network call.
func (s *Store) beginResolve(id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != StatusPending || p.resolving {
		return nil, ErrNotPending
	}
	p.resolving = true

	args := cloneArgs(p.Args)
	for k, v := range p.Overrides {
		args[k] = v
	}
	return args, nil
}

// abortResolve releases the claim, leaving the proposal pending.
func (s *Store) abortResolve(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.byID[id]; ok {
		p.resolving = false
	}
}

// finishResolve finalizes a claimed proposal.
func (s *Store) finishResolve(id string, status Status, args map[string]any, res *capability.ExecutionResult) *Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.byID[id]
	p.resolving = false
	p.Status = status
	p.Args = args
	p.Overrides = nil
	p.Result = res
	p.ResolvedAt = time.Now()
	return p.snapshot()
}

func (s *Store) capabilityName(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id].Capability
}

func (p *Proposal) snapshot() *Proposal {
	c := *p
	c.Args = cloneArgs(p.Args)
	c.Overrides = cloneArgs(p.Overrides)
	c.resolving = false
	return &c
}

func cloneArgs(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
