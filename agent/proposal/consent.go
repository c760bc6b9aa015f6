package proposal

import (
	"context"
	"strings"

	"pookal/internal/logging"
)

// bareAffirmatives match only when the whole (normalized) message is the
// phrase. "ok" buried in a longer sentence is not consent.
var bareAffirmatives = map[string]bool{
	"yes":        true,
	"yeah":       true,
	"yep":        true,
	"ok":         true,
	"okay":       true,
	"sure":       true,
	"confirm":    true,
	"confirmed":  true,
	"do it":      true,
	"send it":    true,
	"yes please": true,
	"please do":  true,
}

// phraseAffirmatives are specific enough to match as substrings.
var phraseAffirmatives = []string{
	"go ahead",
	"place the call",
	"send the message",
	"send the sms",
}

// IsConsent reports whether a user message reads as confirmation of a
// pending proposal.
func IsConsent(text string) bool {
	norm := normalize(text)
	if norm == "" {
		return false
	}
	if bareAffirmatives[norm] {
		return true
	}
	for _, p := range phraseAffirmatives {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}

func normalize(text string) string {
	norm := strings.ToLower(strings.TrimSpace(text))
	return strings.TrimRight(norm, ".!?, ")
}

// TryAutoConsent resolves the session's most recent pending proposal when
// the message is an affirmative. Consent applies uniformly to every
// capability, sensitive ones included: the pending proposal was already
// surfaced to the user, and "yes" means yes.
//
// A transport failure from the invoker is swallowed: the proposal stays
// pending and the message falls through to normal turn processing, so the
// user can try again.
func TryAutoConsent(ctx context.Context, s *Store, sessionID, text string, inv Invoker) (*Proposal, bool) {
	if !IsConsent(text) {
		return nil, false
	}
	p, ok := s.MostRecentPending(sessionID)
	if !ok {
		return nil, false
	}

	args, err := s.beginResolve(p.ID)
	if err != nil {
		// Lost a race with an explicit confirm or decline.
		return nil, false
	}

	res, err := inv.Invoke(ctx, p.Capability, args)
	if err != nil {
		logging.Warnf("auto-consent: %s failed, leaving proposal pending: %v", p.Capability, err)
		s.abortResolve(p.ID)
		return nil, false
	}

	// A domain failure still resolves the proposal: the action ran and
	// reported its outcome, so there is nothing left to confirm.
	return s.finishResolve(p.ID, statusForResult(res), args, res), true
}
