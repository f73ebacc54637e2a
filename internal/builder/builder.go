package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/croftt/kbchat-backend/internal/api"
	chatapi "github.com/croftt/kbchat-backend/internal/api/chat"
	"github.com/croftt/kbchat-backend/internal/config"
	"github.com/croftt/kbchat-backend/internal/integration/knowledgebase"
	"github.com/croftt/kbchat-backend/internal/integration/modelruntime"
	"github.com/croftt/kbchat-backend/internal/repository"
	"github.com/croftt/kbchat-backend/internal/usecase/chat"
	"github.com/croftt/kbchat-backend/internal/usecase/kbsync"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Initialize external service connectors (with mock support)
	var kbConnector chat.KnowledgeBaseConnector
	var modelConnector chat.ModelRuntimeConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		kbConnector = knowledgebase.NewMockConnector(logger)
		modelConnector = modelruntime.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		kbConnector = knowledgebase.NewConnector(cfg.KBConnectorCfg, logger)
		modelConnector = modelruntime.NewConnector(cfg.ModelConnectorCfg, logger)
	}

	// Initialize history store
	historyRepo := repository.NewChatHistoryCache(
		cfg.ChatHistoryCfg.SessionTTL,
		cfg.ChatHistoryCfg.CleanupInterval,
	)
	logger.Info("Session history store initialized",
		zap.Duration("session_ttl", cfg.ChatHistoryCfg.SessionTTL),
	)

	// Initialize use cases
	chatUC := chat.NewUsecase(
		kbConnector,
		modelConnector,
		cfg.KBConnectorCfg.TopK,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	chatHandler := chatapi.NewHandler(chatUC, historyRepo, cfg.ModelConnectorCfg)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 125 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// BuildSyncer creates the ingestion-sync use case for the kb-sync binary.
func BuildSyncer() (*kbsync.Usecase, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building ingestion syncer",
		zap.String("environment", cfg.Environment),
		zap.String("knowledge_base_id", cfg.KBConnectorCfg.KnowledgeBaseID),
		zap.String("data_source_id", cfg.KBConnectorCfg.DataSourceID),
	)

	var kbConnector kbsync.KnowledgeBaseConnector
	if cfg.EnableMocks {
		kbConnector = knowledgebase.NewMockConnector(logger)
	} else {
		if cfg.KBConnectorCfg.DataSourceID == "" {
			return nil, nil, fmt.Errorf("KB_DATA_SOURCE_ID is required to run ingestion")
		}
		kbConnector = knowledgebase.NewConnector(cfg.KBConnectorCfg, logger)
	}

	uc := kbsync.NewUsecase(kbConnector, &cfg.KBConnectorCfg.Poll, logger)
	return uc, logger, nil
}

// Diagnostics bundles the pieces the kb-diagnose binary works with.
// The database pool is opened on demand since most diagnostic runs
// only talk to the hosted services.
type Diagnostics struct {
	Cfg           *config.Config
	Logger        *zap.Logger
	KnowledgeBase *knowledgebase.Connector
	ModelRuntime  *modelruntime.Connector
}

// BuildDiagnostics creates the diagnostics toolkit. Mocks are not
// honored here: diagnosing mocks diagnoses nothing.
func BuildDiagnostics() (*Diagnostics, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	return &Diagnostics{
		Cfg:           cfg,
		Logger:        logger,
		KnowledgeBase: knowledgebase.NewConnector(cfg.KBConnectorCfg, logger),
		ModelRuntime:  modelruntime.NewConnector(cfg.ModelConnectorCfg, logger),
	}, nil
}

// OpenDatabase connects to the knowledge base's backing store.
// The caller owns the returned pool.
func (d *Diagnostics) OpenDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	if d.Cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for database diagnostics")
	}
	return setupDatabase(ctx, d.Cfg, d.Logger)
}

// ApplySchema runs the schema migrations against the backing store.
func (d *Diagnostics) ApplySchema() error {
	if d.Cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required to apply the schema")
	}
	d.Logger.Info("Running database migrations")
	if err := repository.RunMigrations(d.Cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	d.Logger.Info("Database migrations completed successfully")
	return nil
}
