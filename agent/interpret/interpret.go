// Package interpret turns raw model output into a typed intent. Model text
// is an untrusted wire format: it should be a single JSON object but often
// is not, so parsing is total. Malformed input degrades to an unparsed
// result instead of an error.
package interpret

import (
	"encoding/json"
	"strings"
)

// Kind discriminates the interpretation of a model reply.
type Kind string

const (
	// KindFinal is a direct answer for the user.
	KindFinal Kind = "final"
	// KindPropose asks to invoke a named capability, pending confirmation.
	KindPropose Kind = "propose"
	// KindUnparsed carries the raw text when no structure was recovered.
	KindUnparsed Kind = "unparsed"
)

// Interpretation is the typed result of interpreting one model reply.
type Interpretation struct {
	Kind Kind

	// Final answer text (KindFinal).
	Message string

	// Proposal fields (KindPropose).
	Capability string
	Args       map[string]any
	Rationale  string

	// Original text, verbatim (KindUnparsed), so the caller can still show
	// something to the user.
	Raw string
}

// reply is the wire shape the model is instructed to emit:
//
//	{"type":"final","message":"..."}
//	{"type":"propose","tool":"...","args":{...},"why":"..."}
type reply struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Tool    string         `json:"tool"`
	Args    map[string]any `json:"args"`
	Why     string         `json:"why"`
}

// Interpret parses raw model output into an Interpretation. It never fails:
// a strict parse is attempted first, then a parse of the first-{ to last-}
// substring (models love to wrap JSON in prose), and finally the text is
// returned as KindUnparsed.
func Interpret(raw string) Interpretation {
	if r, ok := parse(raw); ok {
		return r
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if r, ok := parse(raw[start : end+1]); ok {
			return r
		}
	}

	return Interpretation{Kind: KindUnparsed, Raw: raw}
}

// parse attempts one strict decode + classification. ok is false when the
// text is not a recognizable reply object.
func parse(text string) (Interpretation, bool) {
	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return Interpretation{}, false
	}

	switch r.Type {
	case "final":
		if r.Message == "" {
			return Interpretation{}, false
		}
		return Interpretation{Kind: KindFinal, Message: r.Message}, true

	case "propose":
		// Args must be an object-typed bag; a propose without one is not
		// actionable and degrades to unparsed.
		if r.Tool == "" || r.Args == nil {
			return Interpretation{}, false
		}
		return Interpretation{
			Kind:       KindPropose,
			Capability: r.Tool,
			Args:       r.Args,
			Rationale:  r.Why,
		}, true
	}

	return Interpretation{}, false
}
