// Package store holds the GORM-backed persistence layer for personas and
// the append-only message log.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"ai-persona-chat/backend/internal/models"
	"ai-persona-chat/backend/pkg/cache"
)

// ErrPersonaNotFound reports a lookup of a persona id that does not exist.
var ErrPersonaNotFound = errors.New("persona not found")

// PersonaStore reads and writes persona records. Reads go through the cache;
// writes invalidate it. Concurrent updates to the same persona are
// last-write-wins.
type PersonaStore struct {
	db       *gorm.DB
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewPersonaStore builds a store. cache may be nil to disable read caching.
func NewPersonaStore(db *gorm.DB, c cache.Cache, cacheTTL time.Duration) *PersonaStore {
	return &PersonaStore{db: db, cache: c, cacheTTL: cacheTTL}
}

func personaCacheKey(id string) string {
	return "persona:" + id
}

// Create inserts a new persona row.
func (s *PersonaStore) Create(ctx context.Context, p *models.Persona) error {
	return s.db.WithContext(ctx).Create(p).Error
}

// GetByID fetches a persona, preferring the cache.
func (s *PersonaStore) GetByID(ctx context.Context, id string) (*models.Persona, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, personaCacheKey(id)); ok {
			var cached models.Persona
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var p models.Persona
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonaNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(&p); err == nil {
			s.cache.Set(ctx, personaCacheKey(id), string(raw), s.cacheTTL)
		}
	}
	return &p, nil
}

// List returns all personas, most recently created first.
func (s *PersonaStore) List(ctx context.Context) ([]models.Persona, error) {
	var personas []models.Persona
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&personas).Error; err != nil {
		return nil, err
	}
	return personas, nil
}

// Update saves the full persona row and drops the cached copy.
func (s *PersonaStore) Update(ctx context.Context, p *models.Persona) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(ctx, personaCacheKey(p.ID))
	}
	return nil
}

// Count returns the number of persona rows.
func (s *PersonaStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Persona{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
