package modelruntime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a stand-in for the inference service, used when
// ENABLE_MOCKS is set. It answers in the response dialect the requested
// model family would use.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) InvokeModel(ctx context.Context, modelID string, payload []byte) ([]byte, error) {
	ctxzap.Info(ctx, "[MOCK] invoking foundation model", zap.String("model_id", modelID))

	id := strings.ToLower(modelID)
	if strings.Contains(id, "anthropic.") || strings.Contains(id, "claude") {
		return json.Marshal(map[string]any{
			"content": []any{
				map[string]any{"type": "text", "text": "This is a mock answer from a Claude-family model."},
			},
		})
	}

	return json.Marshal(map[string]any{
		"output": "This is a mock answer from a generic model.",
	})
}

func (m *MockConnector) ListFoundationModels(ctx context.Context) ([]entity.FoundationModel, error) {
	ctxzap.Info(ctx, "[MOCK] listing foundation models")

	models := make([]entity.FoundationModel, 0, len(entity.SupportedModelIDs))
	for _, id := range entity.SupportedModelIDs {
		models = append(models, entity.FoundationModel{
			ModelID:      id,
			ModelName:    id,
			ProviderName: "mock",
		})
	}

	return models, nil
}
