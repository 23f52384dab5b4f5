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
	ollamaDefaultBaseURL = "http://localhost:11434"
	ollamaDefaultModel   = "gemma3:1b"
)

// OllamaProvider calls a locally hosted model through the Ollama chat API.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaProvider builds a local provider, defaulting to the standard
// Ollama address when baseURL is empty.
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	if model == "" {
		model = ollamaDefaultModel
	}
	return &OllamaProvider{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{},
	}
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

// GenerateReply issues one non-streaming chat call and maps the reply plus
// eval counters into a ReplyResult.
func (p *OllamaProvider) GenerateReply(ctx context.Context, systemPrompt, userMessage string) (*ReplyResult, error) {
	payload := ollamaRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Stream: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProtocolError{Backend: "ollama", Reason: "encoding request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &UpstreamError{Backend: "ollama", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Backend: "ollama", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Backend: "ollama", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Backend: "ollama", Status: resp.StatusCode, Body: truncate(respBody)}
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &ProtocolError{Backend: "ollama", Reason: "decoding response", Err: err}
	}
	if parsed.Message.Content == "" {
		return nil, &ProtocolError{Backend: "ollama", Reason: "no reply content in response"}
	}
	latency := time.Since(start).Milliseconds()

	result := &ReplyResult{
		Reply:     parsed.Message.Content,
		LatencyMs: latency,
	}
	if total := parsed.PromptEvalCount + parsed.EvalCount; total > 0 {
		result.TokensUsed = &total
	}
	return result, nil
}
