package knowledgebase

import (
	"context"
	"fmt"
	"net/http"

	"github.com/croftt/kbchat-backend/internal/config"
	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/croftt/kbchat-backend/internal/integration/common"
	pkghttp "github.com/croftt/kbchat-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.KBConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.KBConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type retrievalQuery struct {
	Text string `json:"text"`
}

type vectorSearchConfiguration struct {
	NumberOfResults int `json:"numberOfResults"`
}

type retrievalConfiguration struct {
	VectorSearchConfiguration vectorSearchConfiguration `json:"vectorSearchConfiguration"`
}

type retrieveRequest struct {
	RetrievalQuery         retrievalQuery         `json:"retrievalQuery"`
	RetrievalConfiguration retrievalConfiguration `json:"retrievalConfiguration"`
}

type ingestionJobEnvelope struct {
	IngestionJob entity.IngestionJob `json:"ingestionJob"`
}

// Retrieve runs a semantic search against the knowledge base and returns the
// raw response document. The shape of that document is not guaranteed across
// service versions, so no decoding beyond JSON happens here.
func (c *Connector) Retrieve(ctx context.Context, query string, topK int) (map[string]any, error) {
	ctxzap.Debug(ctx, "retrieving passages from knowledge base",
		zap.String("knowledge_base_id", c.config.KnowledgeBaseID),
		zap.Int("top_k", topK),
	)

	req := retrieveRequest{
		RetrievalQuery: retrievalQuery{Text: query},
		RetrievalConfiguration: retrievalConfiguration{
			VectorSearchConfiguration: vectorSearchConfiguration{NumberOfResults: topK},
		},
	}

	endpoint := fmt.Sprintf("/knowledgebases/%s/retrieve", c.config.KnowledgeBaseID)

	var raw map[string]any
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &raw); err != nil {
		return nil, fmt.Errorf("retrieve from knowledge base: %w", err)
	}

	return raw, nil
}

// StartIngestionJob triggers a sync of the configured data source into the
// knowledge base.
func (c *Connector) StartIngestionJob(ctx context.Context) (*entity.IngestionJob, error) {
	ctxzap.Info(ctx, "starting knowledge base ingestion job",
		zap.String("knowledge_base_id", c.config.KnowledgeBaseID),
		zap.String("data_source_id", c.config.DataSourceID),
	)

	endpoint := fmt.Sprintf("/knowledgebases/%s/datasources/%s/ingestionjobs",
		c.config.KnowledgeBaseID, c.config.DataSourceID)

	var resp ingestionJobEnvelope
	if err := c.connector.DoRequest(ctx, http.MethodPut, endpoint, struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("start ingestion job: %w", err)
	}

	ctxzap.Info(ctx, "ingestion job started",
		zap.String("job_id", resp.IngestionJob.ID),
		zap.String("status", string(resp.IngestionJob.Status)),
	)

	return &resp.IngestionJob, nil
}

// GetIngestionJob reports the current status of a running sync.
func (c *Connector) GetIngestionJob(ctx context.Context, jobID string) (*entity.IngestionJob, error) {
	endpoint := fmt.Sprintf("/knowledgebases/%s/datasources/%s/ingestionjobs/%s",
		c.config.KnowledgeBaseID, c.config.DataSourceID, jobID)

	var resp ingestionJobEnvelope
	if err := c.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("get ingestion job: %w", err)
	}

	return &resp.IngestionJob, nil
}
