package services

import (
	"context"
	"time"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/channel_utils"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type sweepOutcome struct {
	lineID string
	status domain.AvatarStatus
	err    error
}

type reconciler struct {
	logger     outbound.LoggerPort
	store      outbound.PipelineStorePort
	poller     inbound.AvatarPollerPort
	workerPool outbound.TaskDispatcher
	interval   time.Duration
}

func NewReconciler(
	logger outbound.LoggerPort,
	store outbound.PipelineStorePort,
	poller inbound.AvatarPollerPort,
	workerPool outbound.TaskDispatcher,
	pipelineConfig *config.PipelineConfig,
) inbound.ReconcilerPort {
	return &reconciler{
		logger:     logger,
		store:      store,
		poller:     poller,
		workerPool: workerPool,
		interval:   pipelineConfig.ReconcileInterval,
	}
}

// Sweep re-polls every line stuck in avatar processing with a recorded job
// handle. Each line is checked on the worker pool; outcomes are merged off
// the pool, so the sweep terminates even when every pool slot is taken. One
// line's failure is tallied, not propagated, so the rest of the sweep always
// runs.
func (r *reconciler) Sweep(ctx context.Context) (*inbound.SweepReport, error) {
	stuck, err := r.store.LinesInAvatarProcessing(ctx)
	if err != nil {
		return nil, err
	}

	report := &inbound.SweepReport{Processed: len(stuck)}
	if len(stuck) == 0 {
		return report, nil
	}

	outcomeChannels := make([]<-chan sweepOutcome, 0, len(stuck))
	for _, line := range stuck {
		lineID := line.ID
		outcomes := make(chan sweepOutcome, 1)
		outcomeChannels = append(outcomeChannels, outcomes)
		if err := r.workerPool.Submit(func() {
			defer close(outcomes)
			result, checkErr := r.poller.CheckLine(ctx, lineID)
			if checkErr != nil {
				outcomes <- sweepOutcome{lineID: lineID, err: checkErr}
				return
			}
			outcomes <- sweepOutcome{lineID: lineID, status: result.Status}
		}); err != nil {
			return nil, err
		}
	}

	for outcome := range channel_utils.MergeChannels(outcomeChannels...) {
		switch {
		case outcome.err != nil:
			report.Errors++
			r.logger.ErrorWithFields(outcome.err, "Reconciler check failed", map[string]interface{}{
				"line_id": outcome.lineID,
			})
		case outcome.status == domain.AvatarComplete || outcome.status == domain.AvatarFailed:
			report.Updated++
		default:
			report.StillProcessing++
		}
	}

	r.logger.InfoWithFields("Reconciler sweep finished", map[string]interface{}{
		"processed":        report.Processed,
		"updated":          report.Updated,
		"still_processing": report.StillProcessing,
		"errors":           report.Errors,
	})

	return report, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (r *reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.logger.Error(err, "Reconciler sweep failed")
			}
		}
	}
}
