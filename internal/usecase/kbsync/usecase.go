package kbsync

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/croftt/kbchat-backend/internal/entity"
	pkgRetry "github.com/croftt/kbchat-backend/internal/pkg/retry"
	"go.uber.org/zap"
)

type KnowledgeBaseConnector interface {
	StartIngestionJob(ctx context.Context) (*entity.IngestionJob, error)
	GetIngestionJob(ctx context.Context, jobID string) (*entity.IngestionJob, error)
}

// Usecase triggers a knowledge-base sync and follows it to completion.
type Usecase struct {
	connector KnowledgeBaseConnector
	poll      *pkgRetry.PollConfig
	logger    *zap.Logger
}

func NewUsecase(
	connector KnowledgeBaseConnector,
	poll *pkgRetry.PollConfig,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		connector: connector,
		poll:      poll,
		logger:    logger,
	}
}

// Run starts an ingestion job and polls its status until the job reaches a
// terminal state or the poll budget runs out. The last observed job is
// returned even on failure so callers can report where it got stuck.
func (uc *Usecase) Run(ctx context.Context) (*entity.IngestionJob, error) {
	job, err := uc.connector.StartIngestionJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("start ingestion job: %w", err)
	}

	uc.logger.Info("ingestion job started, polling until terminal state",
		zap.String("job_id", job.ID),
		zap.String("status", string(job.Status)),
	)

	current := job
	opts := append(uc.poll.ToRetryOptions(), retry.Context(ctx))

	err = retry.Do(func() error {
		j, err := uc.connector.GetIngestionJob(ctx, job.ID)
		if err != nil {
			return err
		}

		current = j
		uc.logger.Info("ingestion job status", zap.String("status", string(j.Status)))

		if !j.Status.Terminal() {
			return fmt.Errorf("ingestion job %s still %s", j.ID, j.Status)
		}
		return nil
	}, opts...)
	if err != nil {
		return current, fmt.Errorf("poll ingestion job: %w", err)
	}

	if current.Status == entity.IngestionFailed {
		return current, fmt.Errorf("ingestion job %s failed", current.ID)
	}

	return current, nil
}
