package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ai-persona-chat/backend/internal/models"
	"ai-persona-chat/backend/pkg/cache"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "store_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Persona{}, &models.Message{}))
	return db
}

func storedPersona(id, name string, createdAt int64) *models.Persona {
	return &models.Persona{
		ID:           id,
		Name:         name,
		SystemPrompt: "You are " + name + ".",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func storedMessage(id, userID, personaID string) *models.Message {
	return &models.Message{
		ID:        id,
		UserID:    userID,
		PersonaID: personaID,
		Role:      models.RoleUser,
		Content:   "hello",
		CreatedAt: time.Now().UnixMilli(),
	}
}

func TestPersonaStoreRoundTrip(t *testing.T) {
	s := NewPersonaStore(newTestDB(t), nil, 0)
	ctx := context.Background()

	created := storedPersona("p1", "Pirate", 1000)
	require.NoError(t, s.Create(ctx, created))

	got, err := s.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.SystemPrompt, got.SystemPrompt)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestPersonaStoreGetMissing(t *testing.T) {
	s := NewPersonaStore(newTestDB(t), nil, 0)

	_, err := s.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrPersonaNotFound)
}

func TestPersonaStoreListNewestFirst(t *testing.T) {
	s := NewPersonaStore(newTestDB(t), nil, 0)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, storedPersona("old", "Old", 1000)))
	require.NoError(t, s.Create(ctx, storedPersona("new", "New", 2000)))

	personas, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, personas, 2)
	assert.Equal(t, "new", personas[0].ID)
	assert.Equal(t, "old", personas[1].ID)
}

func TestPersonaStoreCount(t *testing.T) {
	s := NewPersonaStore(newTestDB(t), nil, 0)
	ctx := context.Background()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, s.Create(ctx, storedPersona("p1", "One", 1000)))

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPersonaStoreCacheServesReadsAndUpdateInvalidates(t *testing.T) {
	db := newTestDB(t)
	s := NewPersonaStore(db, cache.NewMemoryCache(0), time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, storedPersona("p1", "Original", 1000)))

	// First read populates the cache.
	first, err := s.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Original", first.Name)

	// A write that bypasses the store is shadowed by the cached copy.
	require.NoError(t, db.Model(&models.Persona{}).Where("id = ?", "p1").Update("name", "Sneaky").Error)
	cached, err := s.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Original", cached.Name)

	// Updating through the store drops the cached copy.
	updated := storedPersona("p1", "Renamed", 1000)
	updated.UpdatedAt = 2000
	require.NoError(t, s.Update(ctx, updated))

	fresh, err := s.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fresh.Name)
}

func TestMessageStoreSummary(t *testing.T) {
	db := newTestDB(t)
	personas := NewPersonaStore(db, nil, 0)
	messages := NewMessageStore(db)
	ctx := context.Background()

	require.NoError(t, personas.Create(ctx, storedPersona("p1", "Busy", 1000)))
	require.NoError(t, personas.Create(ctx, storedPersona("p2", "Quiet", 2000)))
	require.NoError(t, personas.Create(ctx, storedPersona("p3", "Unused", 3000)))

	require.NoError(t, messages.Append(ctx, storedMessage("m1", "alice", "p1")))
	require.NoError(t, messages.Append(ctx, storedMessage("m2", "alice", "p1")))
	require.NoError(t, messages.Append(ctx, storedMessage("m3", "bob", "p1")))
	require.NoError(t, messages.Append(ctx, storedMessage("m4", "bob", "p2")))

	summary, err := messages.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalUsers)
	assert.Equal(t, int64(4), summary.TotalMessages)

	require.Len(t, summary.Personas, 3)
	assert.Equal(t, "p1", summary.Personas[0].PersonaID)
	assert.Equal(t, "Busy", summary.Personas[0].PersonaName)
	assert.Equal(t, int64(3), summary.Personas[0].MessageCount)
	assert.Equal(t, "p2", summary.Personas[1].PersonaID)
	assert.Equal(t, int64(1), summary.Personas[1].MessageCount)

	// Personas with no traffic still appear, with a zero count.
	assert.Equal(t, "p3", summary.Personas[2].PersonaID)
	assert.Equal(t, int64(0), summary.Personas[2].MessageCount)
}

func TestMessageStoreSummaryEmptyLog(t *testing.T) {
	messages := NewMessageStore(newTestDB(t))

	summary, err := messages.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalUsers)
	assert.Equal(t, int64(0), summary.TotalMessages)
	assert.Empty(t, summary.Personas)
}
