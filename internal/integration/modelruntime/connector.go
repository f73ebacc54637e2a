package modelruntime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/croftt/kbchat-backend/internal/config"
	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/croftt/kbchat-backend/internal/integration/common"
	pkghttp "github.com/croftt/kbchat-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.ModelConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ModelConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// InvokeModel sends a pre-serialized payload to the inference service and
// returns the raw response bytes. Payload construction and response parsing
// belong to the caller because every model family speaks its own dialect.
func (c *Connector) InvokeModel(ctx context.Context, modelID string, payload []byte) ([]byte, error) {
	ctxzap.Debug(ctx, "invoking foundation model",
		zap.String("model_id", modelID),
		zap.Int("payload_bytes", len(payload)),
	)

	endpoint := fmt.Sprintf("/model/%s/invoke", url.PathEscape(modelID))

	body, err := c.connector.DoRawRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("invoke model %s: %w", modelID, err)
	}

	return body, nil
}

type modelCatalog struct {
	ModelSummaries []entity.FoundationModel `json:"modelSummaries"`
}

// ListFoundationModels returns the model catalog, used by diagnostics only.
func (c *Connector) ListFoundationModels(ctx context.Context) ([]entity.FoundationModel, error) {
	var catalog modelCatalog
	if err := c.connector.DoRequest(ctx, http.MethodGet, "/foundation-models", nil, &catalog); err != nil {
		return nil, fmt.Errorf("list foundation models: %w", err)
	}

	return catalog.ModelSummaries, nil
}
