package chat

import (
	"context"

	"github.com/croftt/kbchat-backend/internal/entity"
)

type ChatUsecase interface {
	Answer(ctx context.Context, req entity.AnswerRequest) (string, error)
}

type HistoryRepository interface {
	EnsureSession(ctx context.Context, sessionID string)
	AppendTurn(ctx context.Context, sessionID string, turn entity.ChatTurn) error
	GetTurns(ctx context.Context, sessionID string) ([]entity.ChatTurn, error)
}
