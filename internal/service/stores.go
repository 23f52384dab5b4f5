package service

import (
	"context"

	"ai-persona-chat/backend/internal/models"
)

// PersonaStore is the persona persistence contract the services consume.
// A missing id surfaces as store.ErrPersonaNotFound.
type PersonaStore interface {
	Create(ctx context.Context, p *models.Persona) error
	GetByID(ctx context.Context, id string) (*models.Persona, error)
	List(ctx context.Context) ([]models.Persona, error)
	Update(ctx context.Context, p *models.Persona) error
	Count(ctx context.Context) (int64, error)
}

// MessageStore is the append-only conversation log contract. Append either
// fully succeeds or reports failure; there are no partial writes.
type MessageStore interface {
	Append(ctx context.Context, m *models.Message) error
	Summary(ctx context.Context) (*models.MetricsSummary, error)
}
