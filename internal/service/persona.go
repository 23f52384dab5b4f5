package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ai-persona-chat/backend/internal/models"
	"ai-persona-chat/backend/internal/store"
	apperrors "ai-persona-chat/backend/pkg/errors"
	"ai-persona-chat/backend/pkg/logger"
)

// Default persona seeded on an empty database so the app is usable out of
// the box.
const (
	defaultPersonaName   = "Helpful Assistant"
	defaultPersonaPrompt = "You are a helpful, friendly AI assistant. Be concise and clear."
)

// PersonaService implements persona management on top of the store.
type PersonaService struct {
	store PersonaStore
	log   *logger.Logger
}

func NewPersonaService(store PersonaStore, log *logger.Logger) *PersonaService {
	return &PersonaService{store: store, log: log}
}

// CreatePersona inserts a new persona with a generated id. Name and prompt
// are both required.
func (s *PersonaService) CreatePersona(ctx context.Context, req *models.CreatePersonaRequest) (*models.Persona, error) {
	if req.Name == "" || req.SystemPrompt == "" {
		return nil, apperrors.NewBadRequestError(apperrors.CodeValidation,
			"name and system_prompt are required")
	}

	now := time.Now().UnixMilli()
	persona := &models.Persona{
		ID:           uuid.NewString(),
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, persona); err != nil {
		return nil, persistenceError(err)
	}

	s.log.Info("persona created", "persona_id", persona.ID, "name", persona.Name)
	return persona, nil
}

// UpdatePersona replaces a persona's name and prompt in full. Concurrent
// updates are last-write-wins; persona records are never read mid-turn after
// resolution, so no optimistic check is needed.
func (s *PersonaService) UpdatePersona(ctx context.Context, id string, req *models.UpdatePersonaRequest) (*models.Persona, error) {
	if id == "" || req.Name == "" || req.SystemPrompt == "" {
		return nil, apperrors.NewBadRequestError(apperrors.CodeValidation,
			"id, name and system_prompt are required")
	}

	persona, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrPersonaNotFound) {
			return nil, apperrors.NewNotFoundError(apperrors.CodePersonaNotFound, "Persona not found")
		}
		return nil, persistenceError(err)
	}

	persona.Name = req.Name
	persona.SystemPrompt = req.SystemPrompt
	persona.UpdatedAt = time.Now().UnixMilli()

	if err := s.store.Update(ctx, persona); err != nil {
		return nil, persistenceError(err)
	}

	s.log.Info("persona updated", "persona_id", persona.ID, "name", persona.Name)
	return persona, nil
}

// ListPersonas returns all personas, most recently created first.
func (s *PersonaService) ListPersonas(ctx context.Context) ([]models.Persona, error) {
	personas, err := s.store.List(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	return personas, nil
}

// EnsureDefault seeds the default persona when the table is empty.
func (s *PersonaService) EnsureDefault(ctx context.Context) error {
	count, err := s.store.Count(ctx)
	if err != nil {
		return persistenceError(err)
	}
	if count > 0 {
		return nil
	}

	_, err = s.CreatePersona(ctx, &models.CreatePersonaRequest{
		Name:         defaultPersonaName,
		SystemPrompt: defaultPersonaPrompt,
	})
	return err
}
