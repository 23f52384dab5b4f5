package service

import (
	"context"

	"ai-persona-chat/backend/internal/models"
)

// MetricsService surfaces aggregates over the message log for the analytics
// dashboard. Distinct from the Prometheus exposition, which tracks process
// health rather than conversation content.
type MetricsService struct {
	messages MessageStore
}

func NewMetricsService(messages MessageStore) *MetricsService {
	return &MetricsService{messages: messages}
}

// Summary returns distinct user count, total message count, and per-persona
// counts ordered by count descending.
func (s *MetricsService) Summary(ctx context.Context) (*models.MetricsSummary, error) {
	summary, err := s.messages.Summary(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	return summary, nil
}
