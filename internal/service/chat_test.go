package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-persona-chat/backend/internal/llm"
	"ai-persona-chat/backend/internal/models"
	"ai-persona-chat/backend/internal/safety"
	"ai-persona-chat/backend/internal/store"
	apperrors "ai-persona-chat/backend/pkg/errors"
	"ai-persona-chat/backend/pkg/logger"
	"ai-persona-chat/backend/pkg/observability"
)

type fakePersonaStore struct {
	personas map[string]*models.Persona
	err      error
}

func newFakePersonaStore(personas ...*models.Persona) *fakePersonaStore {
	s := &fakePersonaStore{personas: make(map[string]*models.Persona)}
	for _, p := range personas {
		s.personas[p.ID] = p
	}
	return s
}

func (s *fakePersonaStore) Create(_ context.Context, p *models.Persona) error {
	if s.err != nil {
		return s.err
	}
	s.personas[p.ID] = p
	return nil
}

func (s *fakePersonaStore) GetByID(_ context.Context, id string) (*models.Persona, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.personas[id]
	if !ok {
		return nil, store.ErrPersonaNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *fakePersonaStore) List(_ context.Context) ([]models.Persona, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Persona, 0, len(s.personas))
	for _, p := range s.personas {
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakePersonaStore) Update(_ context.Context, p *models.Persona) error {
	if s.err != nil {
		return s.err
	}
	s.personas[p.ID] = p
	return nil
}

func (s *fakePersonaStore) Count(_ context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.personas)), nil
}

type fakeMessageStore struct {
	appended []*models.Message
	err      error
	summary  *models.MetricsSummary
}

func (s *fakeMessageStore) Append(_ context.Context, m *models.Message) error {
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, m)
	return nil
}

func (s *fakeMessageStore) Summary(_ context.Context) (*models.MetricsSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

type fakeProvider struct {
	result *llm.ReplyResult
	err    error
	calls  int
}

func (p *fakeProvider) GenerateReply(_ context.Context, systemPrompt, userMessage string) (*llm.ReplyResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", JSON: true, Output: io.Discard})
}

func testPersona() *models.Persona {
	now := time.Now().UnixMilli()
	return &models.Persona{
		ID:           "persona-1",
		Name:         "Test Persona",
		SystemPrompt: "You are a helpful test assistant.",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newTestChatService(personas PersonaStore, messages MessageStore, provider llm.Provider) *ChatService {
	return NewChatService(
		personas,
		messages,
		provider,
		safety.Default(),
		testLogger(),
		observability.NewChatMetrics(prometheus.NewRegistry()),
		time.Minute,
	)
}

func TestHandleTurnNormalPath(t *testing.T) {
	personas := newFakePersonaStore(testPersona())
	messages := &fakeMessageStore{}
	tokens := 77
	provider := &fakeProvider{result: &llm.ReplyResult{Reply: "generated reply", LatencyMs: 123, TokensUsed: &tokens}}

	svc := newTestChatService(personas, messages, provider)

	resp, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		UserID:    "user-1",
		PersonaID: "persona-1",
		Message:   "Hello there",
	})
	require.NoError(t, err)

	assert.Equal(t, "generated reply", resp.Reply)
	assert.Equal(t, int64(123), resp.LatencyMs)
	require.NotNil(t, resp.TokensUsed)
	assert.Equal(t, 77, *resp.TokensUsed)

	require.Len(t, messages.appended, 2)
	userRow, assistantRow := messages.appended[0], messages.appended[1]

	assert.Equal(t, models.RoleUser, userRow.Role)
	assert.Equal(t, "Hello there", userRow.Content)
	assert.Nil(t, userRow.LatencyMs)

	assert.Equal(t, models.RoleAssistant, assistantRow.Role)
	assert.Equal(t, "generated reply", assistantRow.Content)
	require.NotNil(t, assistantRow.LatencyMs)
	assert.Equal(t, int64(123), *assistantRow.LatencyMs)
	require.NotNil(t, assistantRow.TokensUsed)
	assert.Equal(t, 77, *assistantRow.TokensUsed)

	// Paired rows share identity and ordering.
	assert.Equal(t, userRow.UserID, assistantRow.UserID)
	assert.Equal(t, userRow.PersonaID, assistantRow.PersonaID)
	assert.LessOrEqual(t, userRow.CreatedAt, assistantRow.CreatedAt)

	assert.Equal(t, 1, provider.calls)
}

func TestHandleTurnBlockedBySafetyGate(t *testing.T) {
	personas := newFakePersonaStore(testPersona())
	messages := &fakeMessageStore{}
	provider := &fakeProvider{result: &llm.ReplyResult{Reply: "should never be used"}}

	svc := newTestChatService(personas, messages, provider)

	resp, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		UserID:    "user-1",
		PersonaID: "persona-1",
		Message:   "I am a teen and need help",
	})
	require.NoError(t, err)

	assert.Equal(t, safety.PolicyReply, resp.Reply)
	assert.Less(t, resp.LatencyMs, int64(10))
	assert.Nil(t, resp.TokensUsed)

	assert.Zero(t, provider.calls, "provider must not be consulted on the blocked path")

	require.Len(t, messages.appended, 2)
	assert.Equal(t, models.RoleUser, messages.appended[0].Role)
	assert.Equal(t, "I am a teen and need help", messages.appended[0].Content)
	assert.Equal(t, models.RoleAssistant, messages.appended[1].Role)
	assert.Equal(t, safety.PolicyReply, messages.appended[1].Content)
	require.NotNil(t, messages.appended[1].LatencyMs)
	assert.Equal(t, safety.PolicyReplyLatencyMs, *messages.appended[1].LatencyMs)
}

func TestHandleTurnBlockedPathSkipsPersonaValidation(t *testing.T) {
	// The gate runs before persona resolution, so blocked attempts against
	// unknown personas are still recorded with the supplied id.
	personas := newFakePersonaStore()
	messages := &fakeMessageStore{}
	provider := &fakeProvider{}

	svc := newTestChatService(personas, messages, provider)

	resp, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		UserID:    "user-1",
		PersonaID: "no-such-persona",
		Message:   "something about a minor",
	})
	require.NoError(t, err)
	assert.Equal(t, safety.PolicyReply, resp.Reply)

	require.Len(t, messages.appended, 2)
	assert.Equal(t, "no-such-persona", messages.appended[0].PersonaID)
	assert.Equal(t, "no-such-persona", messages.appended[1].PersonaID)
}

func TestHandleTurnValidation(t *testing.T) {
	cases := []struct {
		name string
		req  models.ChatRequest
	}{
		{"missing user_id", models.ChatRequest{PersonaID: "p", Message: "m"}},
		{"missing persona_id", models.ChatRequest{UserID: "u", Message: "m"}},
		{"missing message", models.ChatRequest{UserID: "u", PersonaID: "p"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			messages := &fakeMessageStore{}
			provider := &fakeProvider{}
			svc := newTestChatService(newFakePersonaStore(testPersona()), messages, provider)

			_, err := svc.HandleTurn(context.Background(), &tc.req)
			require.Error(t, err)

			appErr := apperrors.FromError(err)
			assert.Equal(t, apperrors.CodeValidation, appErr.Code)
			assert.Equal(t, 400, appErr.StatusCode)

			assert.Empty(t, messages.appended, "validation failures must not persist anything")
			assert.Zero(t, provider.calls)
		})
	}
}

func TestHandleTurnUnknownPersona(t *testing.T) {
	messages := &fakeMessageStore{}
	provider := &fakeProvider{}
	svc := newTestChatService(newFakePersonaStore(), messages, provider)

	_, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		UserID:    "user-1",
		PersonaID: "ghost",
		Message:   "Hello",
	})
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.CodePersonaNotFound, appErr.Code)
	assert.Equal(t, 404, appErr.StatusCode)

	assert.Empty(t, messages.appended, "no rows may be written for an unknown persona on the safe path")
	assert.Zero(t, provider.calls)
}

func TestHandleTurnProviderFailureLeavesUserRow(t *testing.T) {
	messages := &fakeMessageStore{}
	provider := &fakeProvider{err: &llm.UpstreamError{Backend: "openai", Status: 500, Body: "boom"}}
	svc := newTestChatService(newFakePersonaStore(testPersona()), messages, provider)

	_, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		UserID:    "user-1",
		PersonaID: "persona-1",
		Message:   "Hello",
	})
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.CodeUpstream, appErr.Code)
	assert.Equal(t, 502, appErr.StatusCode)

	// Asked-but-unanswered: the user row stays, no assistant row appears.
	require.Len(t, messages.appended, 1)
	assert.Equal(t, models.RoleUser, messages.appended[0].Role)
}

func TestHandleTurnProtocolFailureMapsToProtocolCode(t *testing.T) {
	provider := &fakeProvider{err: &llm.ProtocolError{Backend: "ollama", Reason: "no reply content"}}
	svc := newTestChatService(newFakePersonaStore(testPersona()), &fakeMessageStore{}, provider)

	_, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		UserID:    "user-1",
		PersonaID: "persona-1",
		Message:   "Hello",
	})
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.CodeUpstreamProtocol, appErr.Code)
	assert.Equal(t, 502, appErr.StatusCode)
}

func TestHandleTurnPersistenceFailure(t *testing.T) {
	messages := &fakeMessageStore{err: errors.New("connection refused")}
	provider := &fakeProvider{result: &llm.ReplyResult{Reply: "r"}}
	svc := newTestChatService(newFakePersonaStore(testPersona()), messages, provider)

	_, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		UserID:    "user-1",
		PersonaID: "persona-1",
		Message:   "Hello",
	})
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.CodePersistence, appErr.Code)
	assert.Zero(t, provider.calls, "failed user-row insert must short-circuit the provider call")
}
