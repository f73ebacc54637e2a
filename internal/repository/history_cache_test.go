package repository

import (
	"context"
	"testing"
	"time"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHistoryCacheAppendAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewChatHistoryCache(time.Hour, time.Hour)

	repo.EnsureSession(ctx, "s1")

	require.NoError(t, repo.AppendTurn(ctx, "s1", entity.ChatTurn{Role: entity.RoleUser, Content: "hi"}))
	require.NoError(t, repo.AppendTurn(ctx, "s1", entity.ChatTurn{Role: entity.RoleAssistant, Content: "hello"}))

	turns, err := repo.GetTurns(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entity.RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[1].Content)
}

func TestChatHistoryCacheUnknownSession(t *testing.T) {
	ctx := context.Background()
	repo := NewChatHistoryCache(time.Hour, time.Hour)

	_, err := repo.GetTurns(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	err = repo.AppendTurn(ctx, "missing", entity.ChatTurn{Role: entity.RoleUser, Content: "hi"})
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestChatHistoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewChatHistoryCache(20*time.Millisecond, time.Hour)

	repo.EnsureSession(ctx, "s1")
	time.Sleep(50 * time.Millisecond)

	_, err := repo.GetTurns(ctx, "s1")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestChatHistoryCacheEnsureSessionKeepsExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewChatHistoryCache(time.Hour, time.Hour)

	repo.EnsureSession(ctx, "s1")
	require.NoError(t, repo.AppendTurn(ctx, "s1", entity.ChatTurn{Role: entity.RoleUser, Content: "hi"}))

	repo.EnsureSession(ctx, "s1")

	turns, err := repo.GetTurns(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}
