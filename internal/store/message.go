package store

import (
	"context"

	"gorm.io/gorm"

	"ai-persona-chat/backend/internal/models"
)

// MessageStore appends to and aggregates the conversation log. Rows are
// never updated or deleted here.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append inserts one message row. The insert either fully succeeds or
// reports an error; there is no partial write.
func (s *MessageStore) Append(ctx context.Context, m *models.Message) error {
	return s.db.WithContext(ctx).Create(m).Error
}

// Summary aggregates the log: distinct users, total messages, and the
// per-persona breakdown ordered by message count descending.
func (s *MessageStore) Summary(ctx context.Context) (*models.MetricsSummary, error) {
	var summary models.MetricsSummary

	if err := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Distinct("user_id").
		Count(&summary.TotalUsers).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Count(&summary.TotalMessages).Error; err != nil {
		return nil, err
	}

	summary.Personas = []models.PersonaMetrics{}
	if err := s.db.WithContext(ctx).
		Table("personas").
		Select("personas.id AS persona_id, personas.name AS persona_name, COUNT(messages.id) AS message_count").
		Joins("LEFT JOIN messages ON messages.persona_id = personas.id").
		Group("personas.id, personas.name").
		Order("message_count DESC").
		Scan(&summary.Personas).Error; err != nil {
		return nil, err
	}

	return &summary, nil
}
