package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/croftt/kbchat-backend/internal/pkg/probe"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// BuildModelPayload serializes a model request into the shape its model
// family expects: a messages-style body for Claude models, a flat input body
// for everything else.
func BuildModelPayload(req entity.ModelRequest) ([]byte, error) {
	if req.IsClaudeFamily() {
		payload := entity.AnthropicPayload{
			AnthropicVersion: entity.AnthropicVersion,
			Messages: []entity.AnthropicMessage{
				{
					Role: entity.RoleUser,
					Content: []entity.AnthropicBlock{
						{Type: "text", Text: req.Prompt},
					},
				},
			},
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
			TopP:        req.TopP,
		}
		return json.Marshal(payload)
	}

	payload := entity.GenericPayload{
		Input:       req.Prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	return json.Marshal(payload)
}

// ExtractModelText pulls generated text out of a raw model response by
// probing the response dialects of the supported model families. When no
// known location matches, the whole parsed response is returned as text: the
// result is best-effort, never malformed.
func ExtractModelText(body []byte) (string, error) {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("parse model response: %w", err)
	}

	// Claude-style: content list of typed text blocks
	if content, ok := probe.Slice(data, "content"); ok {
		if first, ok := probe.FirstMap(content); ok {
			if s, ok := probe.String(first, "text"); ok {
				return s, nil
			}
		}
	}

	// Generic: direct string fields
	if s, ok := probe.String(data, "output", "generatedText", "text", "result"); ok {
		return s, nil
	}

	// Some models wrap text in a results list
	if results, ok := probe.Slice(data, "results"); ok {
		if first, ok := probe.FirstMap(results); ok {
			if s, ok := probe.String(first, "output", "text", "generatedText"); ok {
				return s, nil
			}
		}
	}

	return serializeRaw(data), nil
}

// Generate runs one inference call end to end: build the family-specific
// payload, invoke the model, extract text. Every failure is logged and
// surfaced as an error return; nothing panics or propagates transport detail.
func (uc *Usecase) Generate(ctx context.Context, req entity.ModelRequest) (string, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = entity.DefaultMaxTokens
	}

	payload, err := BuildModelPayload(req)
	if err != nil {
		ctxzap.Error(ctx, "failed to build model payload", zap.Error(err))
		return "", fmt.Errorf("build model payload: %w", err)
	}

	body, err := uc.modelRuntime.InvokeModel(ctx, req.ModelID, payload)
	if err != nil {
		ctxzap.Error(ctx, "model invocation failed",
			zap.String("model_id", req.ModelID),
			zap.Error(err),
		)
		return "", err
	}

	text, err := ExtractModelText(body)
	if err != nil {
		ctxzap.Error(ctx, "failed to extract model response text", zap.Error(err))
		return "", err
	}

	return text, nil
}
