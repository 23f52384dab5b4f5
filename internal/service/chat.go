// Package service implements the core operations behind the HTTP surface:
// the chat turn pipeline, persona management, and the metrics summary.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ai-persona-chat/backend/internal/llm"
	"ai-persona-chat/backend/internal/models"
	"ai-persona-chat/backend/internal/safety"
	"ai-persona-chat/backend/internal/store"
	apperrors "ai-persona-chat/backend/pkg/errors"
	"ai-persona-chat/backend/pkg/logger"
	"ai-persona-chat/backend/pkg/observability"
)

// turnState names the stages a chat turn moves through. Blocked is a
// terminal success, distinct from Responded only in that no backend was
// consulted.
type turnState string

const (
	turnReceived        turnState = "received"
	turnSafetyChecked   turnState = "safety_checked"
	turnBlocked         turnState = "blocked"
	turnPersonaResolved turnState = "persona_resolved"
	turnResponded       turnState = "responded"
	turnFailed          turnState = "failed"
)

// ChatService runs the end-to-end turn pipeline: validate, gate, resolve
// persona, generate, persist. It holds no per-turn state, so any number of
// turns may run concurrently; the only ordering guarantee is user row before
// assistant row within one turn.
type ChatService struct {
	personas        PersonaStore
	messages        MessageStore
	provider        llm.Provider
	gate            *safety.Gate
	log             *logger.Logger
	metrics         *observability.ChatMetrics
	providerTimeout time.Duration
}

// NewChatService wires the turn pipeline. providerTimeout bounds the backend
// call per turn; zero disables the deadline.
func NewChatService(
	personas PersonaStore,
	messages MessageStore,
	provider llm.Provider,
	gate *safety.Gate,
	log *logger.Logger,
	metrics *observability.ChatMetrics,
	providerTimeout time.Duration,
) *ChatService {
	return &ChatService{
		personas:        personas,
		messages:        messages,
		provider:        provider,
		gate:            gate,
		log:             log,
		metrics:         metrics,
		providerTimeout: providerTimeout,
	}
}

// HandleTurn processes one chat turn to a terminal state.
//
//	Received -> SafetyChecked -> {Blocked | PersonaResolved} -> {Responded | Failed}
//
// On the blocked path both rows are persisted with the canned policy reply
// and the provider is never invoked. On the normal path the user row is
// persisted before the provider call, so a failed call leaves the turn
// recorded as asked-but-unanswered.
func (s *ChatService) HandleTurn(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	ctx, span := otel.Tracer("chat").Start(ctx, "chat.handle_turn")
	state := turnReceived
	defer func() {
		span.SetAttributes(attribute.String("chat.turn_state", string(state)))
		span.End()
		s.metrics.TurnCompleted(outcomeFor(state))
	}()

	if req.UserID == "" || req.PersonaID == "" || req.Message == "" {
		state = turnFailed
		return nil, apperrors.NewBadRequestError(apperrors.CodeValidation,
			"user_id, persona_id and message are required")
	}

	verdict := s.gate.Check(req.Message)
	state = turnSafetyChecked

	if !verdict.Safe {
		resp, err := s.blockTurn(ctx, req, verdict)
		if err != nil {
			state = turnFailed
			return nil, err
		}
		state = turnBlocked
		return resp, nil
	}

	persona, err := s.personas.GetByID(ctx, req.PersonaID)
	if err != nil {
		state = turnFailed
		if errors.Is(err, store.ErrPersonaNotFound) {
			return nil, apperrors.NewNotFoundError(apperrors.CodePersonaNotFound, "Persona not found")
		}
		return nil, persistenceError(err)
	}
	state = turnPersonaResolved

	if err := s.appendTurnMessage(ctx, req, models.RoleUser, req.Message, nil, nil); err != nil {
		state = turnFailed
		return nil, err
	}

	callCtx := ctx
	if s.providerTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
	}

	result, err := s.provider.GenerateReply(callCtx, persona.SystemPrompt, req.Message)
	if err != nil {
		// The user row stays: the turn is recorded as asked-but-unanswered.
		state = turnFailed
		s.log.LogError(err, "reply provider failed",
			"persona_id", req.PersonaID,
			"user_id", req.UserID,
		)
		return nil, upstreamError(err)
	}
	s.metrics.ObserveProviderLatency(result.LatencyMs)

	if err := s.appendTurnMessage(ctx, req, models.RoleAssistant, result.Reply, &result.LatencyMs, result.TokensUsed); err != nil {
		state = turnFailed
		return nil, err
	}
	state = turnResponded

	s.log.Info("chat turn completed",
		"persona_id", req.PersonaID,
		"user_id", req.UserID,
		"latency_ms", result.LatencyMs,
	)

	return &models.ChatResponse{
		Reply:      result.Reply,
		LatencyMs:  result.LatencyMs,
		TokensUsed: result.TokensUsed,
	}, nil
}

// blockTurn persists both sides of a policy-blocked exchange. The persona id
// is recorded as supplied, even if no such persona exists, so blocked
// attempts keep their audit trail.
func (s *ChatService) blockTurn(ctx context.Context, req *models.ChatRequest, verdict safety.Verdict) (*models.ChatResponse, error) {
	s.log.Warn("message blocked by safety gate",
		"user_id", req.UserID,
		"persona_id", req.PersonaID,
		"reason", verdict.Reason,
	)

	if err := s.appendTurnMessage(ctx, req, models.RoleUser, req.Message, nil, nil); err != nil {
		return nil, err
	}

	latency := safety.PolicyReplyLatencyMs
	if err := s.appendTurnMessage(ctx, req, models.RoleAssistant, safety.PolicyReply, &latency, nil); err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		Reply:     safety.PolicyReply,
		LatencyMs: latency,
	}, nil
}

func (s *ChatService) appendTurnMessage(ctx context.Context, req *models.ChatRequest, role, content string, latencyMs *int64, tokensUsed *int) error {
	msg := &models.Message{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		PersonaID:  req.PersonaID,
		Role:       role,
		Content:    content,
		LatencyMs:  latencyMs,
		TokensUsed: tokensUsed,
		CreatedAt:  time.Now().UnixMilli(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return persistenceError(err)
	}
	return nil
}

func outcomeFor(state turnState) string {
	switch state {
	case turnResponded:
		return observability.OutcomeResponded
	case turnBlocked:
		return observability.OutcomeBlocked
	default:
		return observability.OutcomeFailed
	}
}

// upstreamError maps provider failures onto the server-fault taxonomy.
func upstreamError(err error) *apperrors.AppError {
	var protoErr *llm.ProtocolError
	if errors.As(err, &protoErr) {
		return apperrors.NewBadGatewayError(apperrors.CodeUpstreamProtocol,
			"The reply backend returned an unexpected response")
	}
	return apperrors.NewBadGatewayError(apperrors.CodeUpstream,
		"The reply backend is unavailable")
}

func persistenceError(err error) *apperrors.AppError {
	return apperrors.NewInternalServerError(apperrors.CodePersistence,
		"Storage operation failed").WithDetails(err.Error())
}
