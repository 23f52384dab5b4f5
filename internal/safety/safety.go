// Package safety implements the content policy gate that runs before any
// model backend is consulted.
package safety

import (
	"fmt"
	"strings"
)

// defaultBannedTerms is policy data, not code: any message containing one of
// these substrings (case-insensitive) is refused.
var defaultBannedTerms = []string{
	"minor",
	"under 18",
	"teen",
	"child",
	"high school",
}

const (
	// PolicyReply is the canned assistant reply returned and persisted for
	// blocked turns.
	PolicyReply = "I can't engage with that topic. Let's talk about something else!"

	// PolicyReplyLatencyMs is the sentinel latency recorded for blocked turns.
	// No backend is consulted on that path, so there is nothing to measure.
	PolicyReplyLatencyMs int64 = 5
)

// Verdict is the outcome of a policy check. Reason is set only when the
// message is unsafe and names the matched term.
type Verdict struct {
	Safe   bool
	Reason string
}

// Gate checks messages against a fixed banned-term list. It holds no mutable
// state and is safe for concurrent use.
type Gate struct {
	terms []string
}

// NewGate builds a gate over the given terms. Terms are lower-cased once so
// Check only lower-cases the message.
func NewGate(terms []string) *Gate {
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	return &Gate{terms: lowered}
}

// Default returns a gate over the built-in policy terms.
func Default() *Gate {
	return NewGate(defaultBannedTerms)
}

// Check scans message for banned terms. Pure substring containment, no word
// boundaries, first match wins.
func (g *Gate) Check(message string) Verdict {
	lower := strings.ToLower(message)
	for _, term := range g.terms {
		if strings.Contains(lower, term) {
			return Verdict{
				Safe:   false,
				Reason: fmt.Sprintf("Message contains restricted content: %q", term),
			}
		}
	}
	return Verdict{Safe: true}
}
