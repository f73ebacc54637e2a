package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/croftt/kbchat-backend/internal/builder"
	"go.uber.org/zap"
)

func main() {
	syncer, logger, err := builder.BuildSyncer()
	if err != nil {
		log.Fatal("Failed to build syncer:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal",
			zap.String("signal", sig.String()))
		cancel()
	}()

	job, err := syncer.Run(ctx)
	if err != nil {
		if job != nil {
			logger.Error("ingestion did not complete",
				zap.String("job_id", job.ID),
				zap.String("status", string(job.Status)),
				zap.Error(err))
		} else {
			logger.Error("ingestion failed to start", zap.Error(err))
		}
		os.Exit(1)
	}

	logger.Info("ingestion completed",
		zap.String("job_id", job.ID),
		zap.String("status", string(job.Status)))
}
