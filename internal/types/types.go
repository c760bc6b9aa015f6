// Package types defines the request and response shapes of the HTTP API.
package types

import (
	"pookal/agent/capability"
	"pookal/agent/proposal"
	"pookal/agent/session"
)

// SendMessageRequest is one user turn. An empty SessionID starts a new
// conversation.
type SendMessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

// SendMessageResponse carries the assistant reply and, when the turn
// produced or resolved one, the proposal.
type SendMessageResponse struct {
	SessionID string             `json:"session_id"`
	Message   session.Message    `json:"message"`
	Proposal  *proposal.Proposal `json:"proposal,omitempty"`
}

// ListCapabilitiesResponse lists what the agent can propose.
type ListCapabilitiesResponse struct {
	Capabilities []capability.Descriptor `json:"capabilities"`
}

// ExecuteCapabilityRequest runs a capability directly. This is the
// user-initiated path; it does not go through a proposal because the
// request itself is the consent.
type ExecuteCapabilityRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ProposalRequest addresses one proposal by id.
type ProposalRequest struct {
	ID string `path:"id"`
}

// OverrideProposalRequest edits fields of a pending proposal before it is
// confirmed.
type OverrideProposalRequest struct {
	ID        string         `path:"id"`
	Overrides map[string]any `json:"overrides"`
}

// ResolveProposalResponse is the outcome of confirming or declining.
type ResolveProposalResponse struct {
	Proposal *proposal.Proposal `json:"proposal"`
	Message  session.Message    `json:"message"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider,omitempty"`
	Version  string `json:"version"`
}
