package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/croftt/kbchat-backend/internal/config"
	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/croftt/kbchat-backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	answer string
	err    error
	calls  int
	last   entity.AnswerRequest
}

func (s *stubUsecase) Answer(ctx context.Context, req entity.AnswerRequest) (string, error) {
	s.calls++
	s.last = req
	return s.answer, s.err
}

func testDefaults() config.ModelConnectorConfig {
	return config.ModelConnectorConfig{
		DefaultModelID: "anthropic.claude-3-haiku-20240307-v1:0",
		Temperature:    0.1,
		TopP:           1,
		MaxTokens:      512,
	}
}

func newTestRouter(uc ChatUsecase) (http.Handler, *repository.ChatHistoryCache) {
	history := repository.NewChatHistoryCache(time.Hour, time.Hour)
	h := NewHandler(uc, history, testDefaults())
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r, history
}

func postChat(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleChatSuccess(t *testing.T) {
	uc := &stubUsecase{answer: "here is your answer"}
	router, history := newTestRouter(uc)

	w := postChat(t, router, entity.ChatRequest{Message: "what is a duck?"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "here is your answer", resp.Answer)
	assert.NotEmpty(t, resp.SessionID)

	// Both turns recorded under the generated session.
	turns, err := history.GetTurns(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entity.RoleUser, turns[0].Role)
	assert.Equal(t, "what is a duck?", turns[0].Content)
	assert.Equal(t, entity.RoleAssistant, turns[1].Role)
}

func TestHandleChatAppliesDefaults(t *testing.T) {
	uc := &stubUsecase{answer: "ok"}
	router, _ := newTestRouter(uc)

	w := postChat(t, router, entity.ChatRequest{Message: "hello"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", uc.last.ModelID)
	assert.Equal(t, 0.1, uc.last.Temperature)
	assert.Equal(t, float64(1), uc.last.TopP)
}

func TestHandleChatOverrides(t *testing.T) {
	uc := &stubUsecase{answer: "ok"}
	router, _ := newTestRouter(uc)

	temp := 0.7
	topP := 0.5
	w := postChat(t, router, entity.ChatRequest{
		Message:     "hello",
		ModelID:     "anthropic.claude-3-5-sonnet-20240620-v1:0",
		Temperature: &temp,
		TopP:        &topP,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", uc.last.ModelID)
	assert.Equal(t, 0.7, uc.last.Temperature)
	assert.Equal(t, 0.5, uc.last.TopP)
}

func TestHandleChatValidation(t *testing.T) {
	badTemp := 1.5

	cases := []struct {
		name string
		req  entity.ChatRequest
	}{
		{"empty message", entity.ChatRequest{}},
		{"unknown model", entity.ChatRequest{Message: "hi", ModelID: "mystery.model-v9"}},
		{"temperature out of range", entity.ChatRequest{Message: "hi", Temperature: &badTemp}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &stubUsecase{answer: "ok"}
			router, _ := newTestRouter(uc)

			w := postChat(t, router, tc.req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, uc.calls)
		})
	}
}

func TestHandleChatInvalidJSON(t *testing.T) {
	router, _ := newTestRouter(&stubUsecase{})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChatGenerationFailure(t *testing.T) {
	uc := &stubUsecase{err: entity.ErrGenerationFailed}
	router, _ := newTestRouter(uc)

	w := postChat(t, router, entity.ChatRequest{Message: "hello"})

	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// Uniform notice, no transport detail leaked.
	assert.NotContains(t, resp.Message, "generation failed")
	assert.Contains(t, resp.Message, "try again later")
}

func TestHandleChatRejectionIsANormalAnswer(t *testing.T) {
	uc := &stubUsecase{answer: entity.RejectionMessage}
	router, _ := newTestRouter(uc)

	w := postChat(t, router, entity.ChatRequest{Message: "hello"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.RejectionMessage, resp.Answer)
}

func TestHandleHistory(t *testing.T) {
	uc := &stubUsecase{answer: "fine"}
	router, _ := newTestRouter(uc)

	w := postChat(t, router, entity.ChatRequest{SessionID: "known-session", Message: "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/chat/known-session/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "known-session", resp.SessionID)
	require.Len(t, resp.Turns, 2)
}

func TestHandleHistoryUnknownSession(t *testing.T) {
	router, _ := newTestRouter(&stubUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/chat/missing/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
