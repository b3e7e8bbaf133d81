// File: internal/repository/message/message_repository_test.go

package message

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rfaizy/govassist/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ChatSession{}, &domain.ChatMessage{}, &domain.Citation{}))
	return db
}

func seedSession(t *testing.T, db *gorm.DB) string {
	t.Helper()
	s := &domain.ChatSession{ID: uuid.NewString(), Title: "Test session"}
	require.NoError(t, db.Create(s).Error)
	return s.ID
}

func TestMessageRepositoryCreateAndRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	sessionID := seedSession(t, db)

	userMsg := &domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   "What is the flood relief budget?",
	}
	_, err := repo.Create(ctx, userMsg)
	require.NoError(t, err)

	reply := &domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   "The 2025 relief budget is published by the finance department.",
		Citations: []domain.Citation{
			{Label: "1", Title: "Budget White Paper", URL: "https://kp.gov.pk/budget", Snippet: "relief allocation"},
			{Label: "2", Title: "PDMA Bulletin", URL: "https://pdma.gkp.pk/bulletin", Snippet: "district figures"},
		},
	}
	_, err = repo.Create(ctx, reply)
	require.NoError(t, err)

	msgs, err := repo.FindBySessionID(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Empty(t, msgs[0].Citations)
	assert.False(t, msgs[0].CreatedAt.IsZero())

	got := msgs[1]
	assert.Equal(t, domain.RoleAssistant, got.Role)
	assert.Equal(t, reply.Content, got.Content)
	require.Len(t, got.Citations, 2)
	assert.Equal(t, "1", got.Citations[0].Label)
	assert.Equal(t, 0, got.Citations[0].Position)
	assert.Equal(t, got.ID, got.Citations[0].MessageID)
	assert.Equal(t, "PDMA Bulletin", got.Citations[1].Title)
	assert.Equal(t, 1, got.Citations[1].Position)
}

func TestMessageRepositoryInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	sessionID := seedSession(t, db)

	base := time.Now().Add(-time.Minute).Truncate(time.Second)
	for i := 0; i < 5; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		_, err := repo.Create(ctx, &domain.ChatMessage{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Role:      role,
			Content:   fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	msgs, err := repo.FindBySessionID(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i, msg := range msgs {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
	}
}

func TestMessageRepositoryScopedToSession(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	first := seedSession(t, db)
	second := seedSession(t, db)

	_, err := repo.Create(ctx, &domain.ChatMessage{
		ID: uuid.NewString(), SessionID: first, Role: domain.RoleUser, Content: "in first",
	})
	require.NoError(t, err)

	msgs, err := repo.FindBySessionID(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	count, err := repo.CountBySessionID(ctx, first)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = repo.CountBySessionID(ctx, second)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMessageRepositoryValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	sessionID := seedSession(t, db)

	tests := []struct {
		name string
		msg  *domain.ChatMessage
	}{
		{"nil message", nil},
		{"missing id", &domain.ChatMessage{SessionID: sessionID, Role: domain.RoleUser, Content: "x"}},
		{"missing session", &domain.ChatMessage{ID: uuid.NewString(), Role: domain.RoleUser, Content: "x"}},
		{"bad role", &domain.ChatMessage{ID: uuid.NewString(), SessionID: sessionID, Role: "system", Content: "x"}},
		{"empty content", &domain.ChatMessage{ID: uuid.NewString(), SessionID: sessionID, Role: domain.RoleUser}},
		{"citations on user message", &domain.ChatMessage{
			ID: uuid.NewString(), SessionID: sessionID, Role: domain.RoleUser, Content: "x",
			Citations: []domain.Citation{{Label: "1"}},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tc.msg)
			assert.Error(t, err)
		})
	}
}
