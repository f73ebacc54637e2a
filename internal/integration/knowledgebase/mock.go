package knowledgebase

import (
	"context"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a stand-in for the knowledge-base service, used when
// ENABLE_MOCKS is set.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Retrieve(ctx context.Context, query string, topK int) (map[string]any, error) {
	ctxzap.Info(ctx, "[MOCK] retrieving passages from knowledge base", zap.Int("top_k", topK))

	return map[string]any{
		"retrievalResults": []any{
			map[string]any{
				"content":  map[string]any{"text": "Mock passage one about " + query + "."},
				"score":    0.92,
				"metadata": map[string]any{"source": "mock://doc-1"},
			},
			map[string]any{
				"content":  map[string]any{"text": "Mock passage two with supporting detail."},
				"score":    0.81,
				"metadata": map[string]any{"source": "mock://doc-2"},
			},
		},
	}, nil
}

func (m *MockConnector) StartIngestionJob(ctx context.Context) (*entity.IngestionJob, error) {
	ctxzap.Info(ctx, "[MOCK] starting ingestion job")

	return &entity.IngestionJob{ID: "mock-job-1", Status: entity.IngestionStarting}, nil
}

func (m *MockConnector) GetIngestionJob(ctx context.Context, jobID string) (*entity.IngestionJob, error) {
	ctxzap.Info(ctx, "[MOCK] getting ingestion job", zap.String("job_id", jobID))

	return &entity.IngestionJob{ID: jobID, Status: entity.IngestionComplete}, nil
}
