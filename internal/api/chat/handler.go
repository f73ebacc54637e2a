package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/croftt/kbchat-backend/internal/config"
	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/croftt/kbchat-backend/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase  ChatUsecase
	history  HistoryRepository
	defaults config.ModelConnectorConfig
}

func NewHandler(
	usecase ChatUsecase,
	history HistoryRepository,
	defaults config.ModelConnectorConfig,
) *Handler {
	return &Handler{
		usecase:  usecase,
		history:  history,
		defaults: defaults,
	}
}

// HandleChat handles POST /chat - one conversation turn
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "HandleChat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validateChatRequest(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", sessionID))
	h.history.EnsureSession(ctx, sessionID)

	if err := h.history.AppendTurn(ctx, sessionID, entity.ChatTurn{
		Role:    entity.RoleUser,
		Content: req.Message,
	}); err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "record user turn", err)
		return
	}

	answerReq := h.toAnswerRequest(&req)

	ctxzap.Info(ctx, "handling chat turn",
		zap.String("model_id", answerReq.ModelID),
		zap.Int("message_length", len(req.Message)),
	)

	answer, err := h.usecase.Answer(ctx, answerReq)
	if err != nil {
		// Generation failure is the one terminal error of a turn. The UI
		// gets a uniform notice, never transport detail.
		h.respondError(ctx, w, http.StatusBadGateway, "failed to generate an answer, please try again later", err)
		return
	}

	if err := h.history.AppendTurn(ctx, sessionID, entity.ChatTurn{
		Role:    entity.RoleAssistant,
		Content: answer,
	}); err != nil {
		ctxzap.Warn(ctx, "failed to record assistant turn", zap.Error(err))
	}

	h.respondJSON(w, http.StatusOK, entity.ChatResponse{
		SessionID: sessionID,
		Answer:    answer,
	})
}

// HandleHistory handles GET /chat/{session_id}/history
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "HandleHistory")
	sessionID := chi.URLParam(r, "session_id")

	turns, err := h.history.GetTurns(ctx, sessionID)
	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
			return
		}
		h.respondError(ctx, w, http.StatusInternalServerError, "load history", err)
		return
	}

	h.respondJSON(w, http.StatusOK, entity.HistoryResponse{
		SessionID: sessionID,
		Turns:     turns,
	})
}

func (h *Handler) validateChatRequest(req *entity.ChatRequest) error {
	if req.Message == "" {
		return entity.ErrEmptyMessage
	}

	if req.ModelID != "" && !entity.IsSupportedModel(req.ModelID) {
		return entity.ErrUnsupportedModel
	}

	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 1) {
		return entity.ErrInvalidParameter
	}

	if req.TopP != nil && (*req.TopP < 0 || *req.TopP > 1) {
		return entity.ErrInvalidParameter
	}

	return nil
}

// toAnswerRequest fills unset model parameters from the configured defaults.
func (h *Handler) toAnswerRequest(req *entity.ChatRequest) entity.AnswerRequest {
	out := entity.AnswerRequest{
		Prompt:      req.Message,
		ModelID:     h.defaults.DefaultModelID,
		Temperature: h.defaults.Temperature,
		TopP:        h.defaults.TopP,
	}

	if req.ModelID != "" {
		out.ModelID = req.ModelID
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		out.TopP = *req.TopP
	}

	return out
}

// Helper methods
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
