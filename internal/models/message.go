package models

// Message roles. Every persisted message carries exactly one of these.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single side of a chat turn. Rows are append-only: they are
// written once by the chat service and never updated or deleted.
// LatencyMs and TokensUsed are only set on assistant rows; blocked turns
// record a fixed sentinel latency instead of a measured one.
type Message struct {
	ID         string `json:"id" gorm:"primaryKey"`
	UserID     string `json:"user_id" gorm:"index;not null"`
	PersonaID  string `json:"persona_id" gorm:"index;not null"`
	Role       string `json:"role" gorm:"not null"`
	Content    string `json:"content" gorm:"not null"`
	LatencyMs  *int64 `json:"latency_ms,omitempty"`
	TokensUsed *int   `json:"tokens_used,omitempty"`
	CreatedAt  int64  `json:"created_at" gorm:"not null"`
}

// ChatRequest is one inbound chat turn. UserID is caller-chosen and not
// authenticated here; all three fields are required.
type ChatRequest struct {
	UserID    string `json:"user_id"`
	PersonaID string `json:"persona_id"`
	Message   string `json:"message"`
}

// ChatResponse is the caller-facing result of a completed turn.
type ChatResponse struct {
	Reply      string `json:"reply"`
	LatencyMs  int64  `json:"latency_ms"`
	TokensUsed *int   `json:"tokens_used,omitempty"`
}

// PersonaMetrics is one row of the per-persona message breakdown.
type PersonaMetrics struct {
	PersonaID    string `json:"persona_id"`
	PersonaName  string `json:"persona_name"`
	MessageCount int64  `json:"message_count"`
}

// MetricsSummary aggregates the message log for the dashboard.
type MetricsSummary struct {
	TotalUsers    int64            `json:"total_users"`
	TotalMessages int64            `json:"total_messages"`
	Personas      []PersonaMetrics `json:"personas"`
}
