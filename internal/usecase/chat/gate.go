package chat

import (
	"context"
	"strings"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	classifierInstruction = "Classify the user request into one category: A,B,C,D,E. " +
		"Respond with a single line like: 'Category E'"

	// gateMaxTokens keeps the classification call cheap. One category letter
	// is all we need back.
	gateMaxTokens = 8
)

// Classify runs the prompt gate: a tiny deterministic model call whose
// output is scanned for a category letter. It never returns an error; any
// failure yields CategoryNone with the error text attached for diagnostics.
func (uc *Usecase) Classify(ctx context.Context, prompt, modelID string) entity.ClassificationResult {
	full := classifierInstruction + "\n\n" + prompt

	raw, err := uc.Generate(ctx, entity.ModelRequest{
		ModelID:     modelID,
		Prompt:      full,
		Temperature: 0,
		TopP:        1,
		MaxTokens:   gateMaxTokens,
	})
	if err != nil {
		ctxzap.Warn(ctx, "prompt classification failed", zap.Error(err))
		return entity.ClassificationResult{Category: entity.CategoryNone, Raw: err.Error()}
	}

	upper := strings.ToUpper(raw)
	for _, c := range entity.Categories {
		if strings.Contains(upper, string(c)) {
			return entity.ClassificationResult{Category: c, Raw: raw}
		}
	}

	return entity.ClassificationResult{Category: entity.CategoryNone, Raw: raw}
}
