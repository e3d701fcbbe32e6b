package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/internal/enrichment/service"
	"estate_portal_backend/platform/config"
	"estate_portal_backend/platform/logger"
)

// Worker consumes enrichment tasks from the Redis queue and executes the
// pipeline. Handler errors are logged by asynq; with MaxRetry(0) on every
// task there is no retry, so each dequeue is a single attempt.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	svc    *service.Service
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		svc:    service.New(repository.New(pool), log),
		log:    log,
	}

	mux.HandleFunc(TaskLeadEnrichmentRun, w.handleLeadEnrichmentRun)
	mux.HandleFunc(TaskDealMarginCheck, w.handleDealMarginCheck)

	return w, nil
}

func (w *Worker) handleLeadEnrichmentRun(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadEnrichmentRunPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	// Stage failures are logged inside the run; the task itself succeeds
	// either way.
	result := w.svc.RunFullEnrichment(ctx, leadID)
	if result.FailedStage == "" {
		w.log.WithLead(leadID).Info("enrichment_run_completed",
			"intent_index", result.IntentIndex,
			"classification", result.Classification,
		)
	}
	return nil
}

func (w *Worker) handleDealMarginCheck(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDealMarginCheckPayload(task)
	if err != nil {
		return err
	}

	dealID, err := uuid.Parse(payload.DealID)
	if err != nil {
		return err
	}

	open, err := w.svc.DetectMarginOpportunity(ctx, dealID)
	if err != nil {
		w.log.Error("margin_check_failed", "deal_id", dealID.String(), "error", err.Error())
		return nil
	}
	w.log.Info("margin_check_completed", "deal_id", dealID.String(), "negotiation_window", open)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
