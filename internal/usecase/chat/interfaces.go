package chat

import "context"

type KnowledgeBaseConnector interface {
	Retrieve(ctx context.Context, query string, topK int) (map[string]any, error)
}

type ModelRuntimeConnector interface {
	InvokeModel(ctx context.Context, modelID string, payload []byte) ([]byte, error)
}
