// Package runner orchestrates one conversational turn: consent check,
// prompt assembly, inference, interpretation, and proposal creation.
package runner

import (
	"context"
	"fmt"
	"strings"

	"pookal/agent/ai"
	"pookal/agent/capability"
	"pookal/agent/interpret"
	"pookal/agent/personality"
	"pookal/agent/proposal"
	"pookal/agent/session"
	"pookal/internal/logging"
)

// historyLimit bounds how many past messages go into the prompt.
const historyLimit = 20

const protocolPrompt = `You support someone who may be anxious or in an unsafe situation. Be warm, brief and practical.

You can request real-world actions, but you never perform them yourself; the user must confirm each one first.

Reply with EXACTLY ONE JSON object and nothing else, in one of two shapes:
{"type":"final","message":"<your reply to the user>"}
{"type":"propose","tool":"<capability name>","args":{...},"why":"<one short sentence>"}

Only propose capabilities from the list below. If no action is needed, reply with a final message.`

// fewshot teaches the reply shapes by example.
var fewshot = []ai.Message{
	{Role: "user", Content: "I'm at MG Road and need to get to Indiranagar safely"},
	{Role: "assistant", Content: `{"type":"propose","tool":"maps.safe_route","args":{"from":"MG Road, Bengaluru","to":"Indiranagar, Bengaluru","mode":"walking"},"why":"You asked for a safe way to get there."}`},
	{Role: "user", Content: "I'm feeling really anxious right now"},
	{Role: "assistant", Content: `{"type":"final","message":"I'm right here with you. Take a slow breath with me. You're doing okay, and we'll figure this out together."}`},
	{Role: "user", Content: "Please call my emergency contact +919876543210"},
	{Role: "assistant", Content: `{"type":"propose","tool":"twilio.call","args":{"to":"+919876543210","message":"This is a safety check-in call. Your contact needs you to reach out."},"why":"You asked me to call your emergency contact."}`},
}

// Runner processes conversation turns.
type Runner struct {
	Sessions  *session.Manager
	Proposals *proposal.Store
	Registry  *capability.Registry
	Provider  ai.Provider // nil means canned fallback replies only
	PersonaID string
}

// TurnResult is what one processed turn produced.
type TurnResult struct {
	SessionID string             `json:"session_id"`
	Message   session.Message    `json:"message"`
	Proposal  *proposal.Proposal `json:"proposal,omitempty"`
}

// ProcessTurn handles one user message: a pending proposal may be resolved
// by consent, otherwise the message goes through the model and the reply is
// interpreted into a final answer or a new proposal.
func (r *Runner) ProcessTurn(ctx context.Context, sessionID, text string) (*TurnResult, error) {
	sess := r.Sessions.GetOrCreate(sessionID, r.PersonaID)
	r.Sessions.Append(sess.ID, session.RoleUser, text, "")

	if p, ok := proposal.TryAutoConsent(ctx, r.Proposals, sess.ID, text, r.Registry); ok {
		reply := DescribeOutcome(p)
		msg := r.Sessions.Append(sess.ID, session.RoleAssistant, reply, p.ID)
		return &TurnResult{SessionID: sess.ID, Message: msg, Proposal: p}, nil
	}

	raw, err := r.complete(ctx, sess.ID)
	if err != nil {
		logging.Warnf("turn: inference failed, using fallback: %v", err)
		reply := personality.FallbackLine(r.PersonaID)
		msg := r.Sessions.Append(sess.ID, session.RoleAssistant, reply, "")
		return &TurnResult{SessionID: sess.ID, Message: msg}, nil
	}

	in := interpret.Interpret(raw)
	switch in.Kind {
	case interpret.KindFinal:
		msg := r.Sessions.Append(sess.ID, session.RoleAssistant, in.Message, "")
		return &TurnResult{SessionID: sess.ID, Message: msg}, nil

	case interpret.KindPropose:
		c, ok := r.Registry.Get(in.Capability)
		if !ok {
			// The model invented a tool. Never surface a proposal the
			// registry cannot execute.
			logging.Warnf("turn: model proposed unknown capability %q", in.Capability)
			reply := "I can't do that directly, but let's think it through together."
			msg := r.Sessions.Append(sess.ID, session.RoleAssistant, reply, "")
			return &TurnResult{SessionID: sess.ID, Message: msg}, nil
		}
		p := r.Proposals.Create(sess.ID, in.Capability, in.Args, in.Rationale, c.Sensitive)
		reply := describeProposal(p)
		msg := r.Sessions.Append(sess.ID, session.RoleAssistant, reply, p.ID)
		return &TurnResult{SessionID: sess.ID, Message: msg, Proposal: p}, nil

	default:
		// No structure recovered. The text itself is still the best reply
		// we have.
		msg := r.Sessions.Append(sess.ID, session.RoleAssistant, in.Raw, "")
		return &TurnResult{SessionID: sess.ID, Message: msg}, nil
	}
}

// Respond produces a plain persona reply with no proposal protocol and no
// session history. The voice pipeline uses this path: a spoken reply that
// asks the user to confirm a JSON proposal makes no sense.
func (r *Runner) Respond(ctx context.Context, text string) string {
	persona := personality.Get(r.PersonaID)
	if r.Provider == nil {
		return personality.FallbackLine(r.PersonaID)
	}

	reply, err := r.Provider.Complete(ctx, &ai.ChatRequest{
		System:      persona.SystemPrompt + "\n\nReply in one or two short spoken sentences, plain text only.",
		Messages:    []ai.Message{{Role: "user", Content: text}},
		Temperature: 0.7,
		MaxTokens:   150,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			logging.Warnf("respond: inference failed, using fallback: %v", err)
		}
		return personality.FallbackLine(r.PersonaID)
	}
	return strings.TrimSpace(reply)
}

func (r *Runner) complete(ctx context.Context, sessionID string) (string, error) {
	if r.Provider == nil {
		return "", ai.ErrNoProvider
	}

	persona := personality.Get(r.PersonaID)
	system := persona.SystemPrompt + "\n\n" + protocolPrompt + "\n\n" + capabilityContext(r.Registry)

	msgs := make([]ai.Message, 0, len(fewshot)+historyLimit)
	msgs = append(msgs, fewshot...)
	for _, m := range r.Sessions.History(sessionID, historyLimit) {
		msgs = append(msgs, ai.Message{Role: m.Role, Content: m.Content})
	}

	return r.Provider.Complete(ctx, &ai.ChatRequest{
		System:      system,
		Messages:    msgs,
		Temperature: 0.4,
		MaxTokens:   400,
	})
}

// capabilityContext renders the registry into prompt text. The model sees
// names and descriptions only; argument schemas stay server-side, where the
// registry validates whatever the model guessed.
func capabilityContext(reg *capability.Registry) string {
	var b strings.Builder
	b.WriteString("Available capabilities:\n")
	for _, d := range reg.List() {
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
	}
	return b.String()
}

// describeProposal phrases a pending proposal for the user.
func describeProposal(p *proposal.Proposal) string {
	var b strings.Builder
	switch p.Capability {
	case "maps.safe_route":
		fmt.Fprintf(&b, "I'd like to plan a route from %v to %v.", p.Args["from"], p.Args["to"])
	case "twilio.sms":
		fmt.Fprintf(&b, "I'd like to send an SMS to %v.", p.Args["to"])
	case "twilio.call":
		fmt.Fprintf(&b, "I'd like to place a call to %v.", p.Args["to"])
	default:
		fmt.Fprintf(&b, "I'd like to run %s.", p.Capability)
	}
	if p.Rationale != "" {
		b.WriteString(" " + p.Rationale)
	}
	b.WriteString(" Shall I go ahead?")
	return b.String()
}

// DescribeOutcome phrases a resolved proposal's result for the user. The
// HTTP confirm handler uses it too, so every path reads the same.
func DescribeOutcome(p *proposal.Proposal) string {
	if p.Status == proposal.StatusDeclined && p.Result == nil {
		return "Okay, I won't do that."
	}
	if p.Result == nil {
		return "Done."
	}
	if !p.Result.OK {
		return fmt.Sprintf("I tried, but it didn't work: %s. Want me to try again?", p.Result.Error)
	}

	switch p.Capability {
	case "maps.safe_route":
		summary, _ := p.Result.Data["summary"].(string)
		gmaps, _ := p.Result.Data["gmaps_url"].(string)
		s := fmt.Sprintf("Here's your route: %s.", summary)
		if gmaps != "" {
			s += " Open it in Maps: " + gmaps
		}
		if notes, ok := p.Result.Data["safety_notes"].([]string); ok && len(notes) > 0 {
			s += " " + notes[0]
		}
		return s
	case "twilio.sms":
		return fmt.Sprintf("Done, your message to %v is on its way.", p.Result.Data["to"])
	case "twilio.call":
		return fmt.Sprintf("Okay, I'm placing the call to %v now.", p.Result.Data["to"])
	}
	return "Done."
}
