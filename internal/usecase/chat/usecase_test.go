package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubKnowledgeBase struct {
	resp  map[string]any
	err   error
	calls int
}

func (s *stubKnowledgeBase) Retrieve(ctx context.Context, query string, topK int) (map[string]any, error) {
	s.calls++
	return s.resp, s.err
}

type invocation struct {
	modelID string
	payload []byte
}

// stubModelRuntime replays scripted responses in invocation order. The first
// call in a full turn is the gate's, the second the generation call.
type stubModelRuntime struct {
	responses   [][]byte
	errs        []error
	invocations []invocation
}

func (s *stubModelRuntime) InvokeModel(ctx context.Context, modelID string, payload []byte) ([]byte, error) {
	i := len(s.invocations)
	s.invocations = append(s.invocations, invocation{modelID: modelID, payload: payload})

	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	var resp []byte
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	return resp, err
}

func newTestUsecase(kb *stubKnowledgeBase, runtime *stubModelRuntime) *Usecase {
	return NewUsecase(kb, runtime, 3, zap.NewNop())
}

func TestAnswerGateRejectionShortCircuits(t *testing.T) {
	kb := &stubKnowledgeBase{}
	runtime := &stubModelRuntime{
		responses: [][]byte{[]byte(`{"output": "404"}`)},
	}
	uc := newTestUsecase(kb, runtime)

	answer, err := uc.Answer(context.Background(), entity.AnswerRequest{
		Prompt:  "tell me something",
		ModelID: "meta.llama3-8b-instruct-v1:0",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RejectionMessage, answer)

	// Rejection happens before any retrieval or generation call.
	assert.Equal(t, 0, kb.calls)
	assert.Len(t, runtime.invocations, 1)
}

func TestAnswerGateFailureShortCircuits(t *testing.T) {
	kb := &stubKnowledgeBase{}
	runtime := &stubModelRuntime{
		errs: []error{errors.New("access denied")},
	}
	uc := newTestUsecase(kb, runtime)

	answer, err := uc.Answer(context.Background(), entity.AnswerRequest{
		Prompt:  "tell me something",
		ModelID: "meta.llama3-8b-instruct-v1:0",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RejectionMessage, answer)
	assert.Equal(t, 0, kb.calls)
}

func TestAnswerHappyPath(t *testing.T) {
	kb := &stubKnowledgeBase{
		resp: map[string]any{
			"retrievalResults": []any{
				map[string]any{"content": map[string]any{"text": "ducks are birds"}},
			},
		},
	}
	runtime := &stubModelRuntime{
		responses: [][]byte{
			[]byte(`{"output": "Category B"}`),
			[]byte(`{"output": "Ducks are indeed birds."}`),
		},
	}
	uc := newTestUsecase(kb, runtime)

	answer, err := uc.Answer(context.Background(), entity.AnswerRequest{
		Prompt:      "are ducks birds?",
		ModelID:     "meta.llama3-8b-instruct-v1:0",
		Temperature: 0.4,
		TopP:        0.9,
	})

	require.NoError(t, err)
	assert.Equal(t, "Ducks are indeed birds.", answer)
	assert.Equal(t, 1, kb.calls)
	require.Len(t, runtime.invocations, 2)

	// The generation prompt carries the retrieved context and the raw user
	// prompt under their literal section markers.
	genPayload := string(runtime.invocations[1].payload)
	assert.Contains(t, genPayload, "Context: ducks are birds")
	assert.Contains(t, genPayload, "User: are ducks birds?")
}

func TestAnswerEmptyRetrievalStillGenerates(t *testing.T) {
	kb := &stubKnowledgeBase{resp: map[string]any{"retrievalResults": []any{}}}
	runtime := &stubModelRuntime{
		responses: [][]byte{
			[]byte(`{"output": "Category A"}`),
			[]byte(`{"output": "answer without context"}`),
		},
	}
	uc := newTestUsecase(kb, runtime)

	answer, err := uc.Answer(context.Background(), entity.AnswerRequest{
		Prompt:  "hello",
		ModelID: "meta.llama3-8b-instruct-v1:0",
	})

	require.NoError(t, err)
	assert.Equal(t, "answer without context", answer)
	require.Len(t, runtime.invocations, 2)

	genPayload := string(runtime.invocations[1].payload)
	assert.Contains(t, genPayload, `Context: \n\nUser: hello`)
}

func TestAnswerRetrievalErrorDegradesToNoContext(t *testing.T) {
	kb := &stubKnowledgeBase{err: errors.New("knowledge base not found")}
	runtime := &stubModelRuntime{
		responses: [][]byte{
			[]byte(`{"output": "Category C"}`),
			[]byte(`{"output": "best effort answer"}`),
		},
	}
	uc := newTestUsecase(kb, runtime)

	answer, err := uc.Answer(context.Background(), entity.AnswerRequest{
		Prompt:  "hello",
		ModelID: "meta.llama3-8b-instruct-v1:0",
	})

	require.NoError(t, err)
	assert.Equal(t, "best effort answer", answer)
	assert.Equal(t, 1, kb.calls)
	assert.Len(t, runtime.invocations, 2)
}

func TestAnswerGenerationFailure(t *testing.T) {
	kb := &stubKnowledgeBase{resp: map[string]any{}}
	runtime := &stubModelRuntime{
		responses: [][]byte{[]byte(`{"output": "Category E"}`), nil},
		errs:      []error{nil, errors.New("throttled")},
	}
	uc := newTestUsecase(kb, runtime)

	answer, err := uc.Answer(context.Background(), entity.AnswerRequest{
		Prompt:  "hello",
		ModelID: "meta.llama3-8b-instruct-v1:0",
	})

	assert.ErrorIs(t, err, entity.ErrGenerationFailed)
	assert.Empty(t, answer)
}

func TestAnswerGenerationUsesDefaultMaxTokens(t *testing.T) {
	kb := &stubKnowledgeBase{resp: map[string]any{}}
	runtime := &stubModelRuntime{
		responses: [][]byte{
			[]byte(`{"output": "Category A"}`),
			[]byte(`{"output": "ok"}`),
		},
	}
	uc := newTestUsecase(kb, runtime)

	_, err := uc.Answer(context.Background(), entity.AnswerRequest{
		Prompt:  "hello",
		ModelID: "meta.llama3-8b-instruct-v1:0",
	})
	require.NoError(t, err)

	require.Len(t, runtime.invocations, 2)
	gatePayload := string(runtime.invocations[0].payload)
	genPayload := string(runtime.invocations[1].payload)
	assert.Contains(t, gatePayload, fmt.Sprintf(`"max_tokens":%d`, gateMaxTokens))
	assert.Contains(t, genPayload, fmt.Sprintf(`"max_tokens":%d`, entity.DefaultMaxTokens))
}

func TestRetrievePassagesBoundsAndOrder(t *testing.T) {
	kb := &stubKnowledgeBase{
		resp: map[string]any{
			"hits": []any{
				map[string]any{"text": "one"},
				map[string]any{"text": "two"},
			},
		},
	}
	uc := newTestUsecase(kb, &stubModelRuntime{})

	passages := uc.RetrievePassages(context.Background(), "query")

	require.Len(t, passages, 2)
	assert.Equal(t, "one", passages[0].Text)
	assert.Equal(t, "two", passages[1].Text)
}

func TestAnswerLongContextStaysBounded(t *testing.T) {
	items := make([]any, 8)
	for i := range items {
		items[i] = map[string]any{"text": strings.Repeat("w", 6000)}
	}
	kb := &stubKnowledgeBase{resp: map[string]any{"results": items}}
	runtime := &stubModelRuntime{
		responses: [][]byte{
			[]byte(`{"output": "Category D"}`),
			[]byte(`{"output": "done"}`),
		},
	}
	uc := newTestUsecase(kb, runtime)

	_, err := uc.Answer(context.Background(), entity.AnswerRequest{
		Prompt:  "hello",
		ModelID: "meta.llama3-8b-instruct-v1:0",
	})
	require.NoError(t, err)

	require.Len(t, runtime.invocations, 2)
	// The generation payload holds the capped context plus fixed framing; it
	// can never grow with retrieval volume.
	assert.Less(t, len(runtime.invocations[1].payload), maxContextChars+2000)
}
