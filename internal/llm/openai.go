package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com"
	openAIDefaultModel   = "gpt-3.5-turbo"

	// Request shaping for persona replies.
	openAITemperature = 0.7
	openAIMaxTokens   = 500
)

// OpenAIProvider calls the hosted Chat Completions API. One request per
// invocation, no retry, no streaming.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIProvider builds a hosted provider. baseURL and model fall back to
// the API defaults when empty. The client carries no timeout of its own; the
// per-request context bounds the call.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAIProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateReply issues one chat-completion call and maps the first choice
// plus usage counters into a ReplyResult.
func (p *OpenAIProvider) GenerateReply(ctx context.Context, systemPrompt, userMessage string) (*ReplyResult, error) {
	payload := openAIRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: openAITemperature,
		MaxTokens:   openAIMaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProtocolError{Backend: "openai", Reason: "encoding request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &UpstreamError{Backend: "openai", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Backend: "openai", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Backend: "openai", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Backend: "openai", Status: resp.StatusCode, Body: truncate(respBody)}
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &ProtocolError{Backend: "openai", Reason: "decoding response", Err: err}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, &ProtocolError{Backend: "openai", Reason: "no reply content in response"}
	}
	latency := time.Since(start).Milliseconds()

	result := &ReplyResult{
		Reply:     parsed.Choices[0].Message.Content,
		LatencyMs: latency,
	}
	if parsed.Usage != nil {
		tokens := parsed.Usage.TotalTokens
		result.TokensUsed = &tokens
	}
	return result, nil
}

// truncate caps error bodies so upstream failures don't flood logs.
func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
