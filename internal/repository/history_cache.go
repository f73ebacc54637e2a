package repository

import (
	"context"
	"time"

	"github.com/croftt/kbchat-backend/internal/entity"
	gocache "github.com/patrickmn/go-cache"
)

// ChatHistoryRepository stores per-session conversation turns. History lives
// only as long as the UI session, so entries expire rather than persist.
type ChatHistoryRepository interface {
	EnsureSession(ctx context.Context, sessionID string)
	AppendTurn(ctx context.Context, sessionID string, turn entity.ChatTurn) error
	GetTurns(ctx context.Context, sessionID string) ([]entity.ChatTurn, error)
}

var _ ChatHistoryRepository = &ChatHistoryCache{}

// ChatHistoryCache implements ChatHistoryRepository on an expiring in-memory
// cache. Every write refreshes the session's TTL.
type ChatHistoryCache struct {
	cache *gocache.Cache
}

func NewChatHistoryCache(sessionTTL, cleanupInterval time.Duration) *ChatHistoryCache {
	return &ChatHistoryCache{
		cache: gocache.New(sessionTTL, cleanupInterval),
	}
}

// EnsureSession creates an empty history for the session if none exists.
func (r *ChatHistoryCache) EnsureSession(ctx context.Context, sessionID string) {
	if _, found := r.cache.Get(sessionID); !found {
		r.cache.SetDefault(sessionID, []entity.ChatTurn{})
	}
}

func (r *ChatHistoryCache) AppendTurn(ctx context.Context, sessionID string, turn entity.ChatTurn) error {
	turns, err := r.GetTurns(ctx, sessionID)
	if err != nil {
		return err
	}

	r.cache.SetDefault(sessionID, append(turns, turn))
	return nil
}

func (r *ChatHistoryCache) GetTurns(ctx context.Context, sessionID string) ([]entity.ChatTurn, error) {
	v, found := r.cache.Get(sessionID)
	if !found {
		return nil, entity.ErrSessionNotFound
	}

	turns, ok := v.([]entity.ChatTurn)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}

	return turns, nil
}
