package enrichment

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"estate_portal_backend/internal/enrichment/service"
	"estate_portal_backend/platform/logger"
)

// Dispatcher hands a pipeline run off for background execution. The caller
// never waits for the run; a dispatch error only means the hand-off itself
// failed.
type Dispatcher interface {
	DispatchLeadEnrichment(ctx context.Context, leadID uuid.UUID) error
	DispatchDealMarginCheck(ctx context.Context, dealID uuid.UUID) error
}

// LocalDispatcher runs pipeline work in-process on bounded goroutines. Used
// when no Redis queue is configured. The semaphore caps concurrent runs so a
// burst of triggers cannot spawn unbounded work.
type LocalDispatcher struct {
	svc *service.Service
	log *logger.Logger
	sem *semaphore.Weighted
}

func NewLocalDispatcher(svc *service.Service, log *logger.Logger, maxInflight int64) *LocalDispatcher {
	if maxInflight < 1 {
		maxInflight = 1
	}
	return &LocalDispatcher{
		svc: svc,
		log: log,
		sem: semaphore.NewWeighted(maxInflight),
	}
}

// DispatchLeadEnrichment acquires a slot and runs the full pipeline on a
// detached goroutine. Blocks only while all slots are busy.
func (d *LocalDispatcher) DispatchLeadEnrichment(ctx context.Context, leadID uuid.UUID) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer d.sem.Release(1)
		// Detached from the triggering request's lifetime.
		result := d.svc.RunFullEnrichment(context.Background(), leadID)
		if result.FailedStage != "" {
			return
		}
		d.log.WithLead(leadID).Info("enrichment_run_completed",
			"intent_index", result.IntentIndex,
			"classification", result.Classification,
		)
	}()
	return nil
}

func (d *LocalDispatcher) DispatchDealMarginCheck(ctx context.Context, dealID uuid.UUID) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer d.sem.Release(1)
		if _, err := d.svc.DetectMarginOpportunity(context.Background(), dealID); err != nil {
			d.log.Error("margin_check_failed", "deal_id", dealID.String(), "error", err.Error())
		}
	}()
	return nil
}

var _ Dispatcher = (*LocalDispatcher)(nil)
