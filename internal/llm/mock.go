package llm

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Bounds for synthesized latency and token usage. The latency is actually
// slept so downstream timing code sees realistic values without network I/O.
const (
	mockLatencyMinMs = 100
	mockLatencyMaxMs = 300
	mockTokensMin    = 50
	mockTokensMax    = 150
)

// cannedReplies is keyed by the first whitespace-delimited token of the
// lower-cased user message.
var cannedReplies = map[string]string{
	"hello": "Hello! How can I help you today?",
	"hi":    "Hi there! What can I do for you?",
	"how":   "I am doing great, thanks for asking!",
}

// MockProvider answers from a canned table without touching the network.
// Used in tests and local development.
type MockProvider struct{}

// NewMockProvider returns a provider that never leaves the process.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// GenerateReply picks a canned reply by the first token of the message and
// falls back to an echo template. Latency and token usage are randomized
// within fixed bounds.
func (p *MockProvider) GenerateReply(ctx context.Context, systemPrompt, userMessage string) (*ReplyResult, error) {
	latency := int64(mockLatencyMinMs + rand.Intn(mockLatencyMaxMs-mockLatencyMinMs))

	select {
	case <-time.After(time.Duration(latency) * time.Millisecond):
	case <-ctx.Done():
		return nil, &UpstreamError{Backend: "mock", Err: ctx.Err()}
	}

	reply := fmt.Sprintf("I understand you said: %q. That's interesting! How can I assist you further?", userMessage)
	if fields := strings.Fields(strings.ToLower(userMessage)); len(fields) > 0 {
		if canned, ok := cannedReplies[fields[0]]; ok {
			reply = canned
		}
	}

	tokens := mockTokensMin + rand.Intn(mockTokensMax-mockTokensMin)
	return &ReplyResult{
		Reply:      reply,
		LatencyMs:  latency,
		TokensUsed: &tokens,
	}, nil
}
