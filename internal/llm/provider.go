// Package llm unifies the reply-generation backends behind a single Provider
// contract. Each adapter makes at most one blocking call per invocation, maps
// the backend's reply and usage fields into ReplyResult, and surfaces any
// failure instead of defaulting it.
package llm

import "context"

// ReplyResult is the uniform shape every backend maps into. LatencyMs is the
// wall-clock time of the backend call measured from just before the request
// to just after the response is parsed.
type ReplyResult struct {
	Reply      string
	LatencyMs  int64
	TokensUsed *int
}

// Provider generates a single assistant reply from a system prompt and one
// user message. No conversation history is carried: each call stands alone.
// Implementations honor ctx cancellation but set no deadline of their own;
// the caller owns the timeout policy.
type Provider interface {
	GenerateReply(ctx context.Context, systemPrompt, userMessage string) (*ReplyResult, error)
}
