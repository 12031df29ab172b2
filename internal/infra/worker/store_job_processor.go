package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/repository"
	"shopify-store-builder/internal/infra/metrics"
	red "shopify-store-builder/internal/infra/redis"
	"shopify-store-builder/internal/usecase"
)

// StoreJobProcessor drains the queued-job table and runs each job through
// the workflow. A Redis lock guards every job so one worker owns its whole
// run even when several processor instances poll the same database.
type StoreJobProcessor struct {
	jobs         repository.StoreJobRepository
	uc           usecase.StoreCreationUseCase
	locker       red.Locker
	pollInterval time.Duration
	lockTTL      time.Duration
	log          *zerolog.Logger
}

func NewStoreJobProcessor(
	jobs repository.StoreJobRepository,
	uc usecase.StoreCreationUseCase,
	locker red.Locker,
	pollInterval, lockTTL time.Duration,
	log *zerolog.Logger,
) *StoreJobProcessor {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if lockTTL <= 0 {
		lockTTL = 15 * time.Minute
	}
	return &StoreJobProcessor{
		jobs:         jobs,
		uc:           uc,
		locker:       locker,
		pollInterval: pollInterval,
		lockTTL:      lockTTL,
		log:          log,
	}
}

// Start runs a loop to fetch and process jobs.
// This should be run in a goroutine.
func (p *StoreJobProcessor) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Msg("Store job processor started")
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("Store job processor stopping")
			return
		case <-ticker.C:
			_ = pool.Submit(func(ctx context.Context) error {
				p.processOne(ctx)
				return nil
			})
		}
	}
}

func (p *StoreJobProcessor) processOne(ctx context.Context) {
	job, err := p.jobs.FetchAndMarkRunning(ctx)
	if err != nil {
		if err != domain.ErrNotFound {
			p.log.Error().Err(err).Msg("Failed to fetch store job")
		}
		return
	}

	lockKey := red.JobLockKey(job.ID)
	token, err := p.locker.TryLock(ctx, lockKey, p.lockTTL)
	if err != nil {
		if err == domain.ErrJobLocked {
			p.log.Warn().Str("job_id", job.ID).Msg("Job already locked by another worker")
		} else {
			p.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to acquire job lock")
		}
		return
	}
	defer func() {
		if err := p.locker.Unlock(context.Background(), lockKey, token); err != nil {
			p.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to release job lock")
		}
	}()

	p.log.Info().Str("job_id", job.ID).Str("user_id", job.UserID).Msg("Processing store job")
	start := time.Now()

	result, err := p.uc.ExecuteJob(ctx, job)
	latency := time.Since(start)

	status := "failed"
	if err == nil && result != nil && result.Success {
		status = "live"
	}
	metrics.IncStoreJob(status)
	metrics.ObserveStoreJobDuration(latency.Seconds())
	if result != nil {
		p.recordOutcomes(result)
	}

	logEvent := p.log.Info()
	if status == "failed" {
		logEvent = p.log.Error().Err(err)
	}
	logEvent.Str("job_id", job.ID).Str("status", status).Dur("duration_ms", latency).Msg("Store job finished")
}

func (p *StoreJobProcessor) recordOutcomes(result *model.WorkflowResult) {
	for _, o := range result.ProductOutcomes {
		if o.Success {
			metrics.IncProductOutcome("success")
		} else {
			metrics.IncProductOutcome("failed")
		}
	}
	for _, e := range result.Progress {
		if e.Status == model.StepFailed && e.Step != model.StepError {
			metrics.IncStageFailure(e.Step)
		}
	}
}
