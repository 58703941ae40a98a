package services

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
)

type stitchGate struct {
	logger       outbound.LoggerPort
	store        outbound.PipelineStorePort
	stitchWorker inbound.StitchWorkerPort
	workerPool   outbound.TaskDispatcher
}

func NewStitchGate(
	logger outbound.LoggerPort,
	store outbound.PipelineStorePort,
	stitchWorker inbound.StitchWorkerPort,
	workerPool outbound.TaskDispatcher,
) inbound.StitchGatePort {
	return &stitchGate{
		logger:       logger,
		store:        store,
		stitchWorker: stitchWorker,
		workerPool:   workerPool,
	}
}

// Evaluate counts the script's finished lines and, when all of them are done,
// tries to admit the script into the stitch stage. Admission is a single
// conditional update, so any number of concurrent evaluations dispatch the
// stitch exactly once. A script with no lines is never admitted.
func (g *stitchGate) Evaluate(ctx context.Context, scriptID string) (*inbound.GateReport, error) {
	total, done, err := g.store.CountLines(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	report := &inbound.GateReport{Total: total, Done: done}
	if total == 0 || done < total {
		return report, nil
	}
	report.Ready = true

	admitted, err := g.store.AdmitScriptForStitch(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	if !admitted {
		g.logger.DebugWithFields("Stitch admission lost, already admitted", map[string]interface{}{
			"script_id": scriptID,
		})
		return report, nil
	}
	report.Admitted = true

	g.logger.InfoWithFields("Script admitted for stitching", map[string]interface{}{
		"script_id": scriptID,
		"lines":     total,
	})

	if err := g.workerPool.Submit(func() {
		if err := g.stitchWorker.Stitch(context.Background(), scriptID); err != nil {
			g.logger.ErrorWithFields(err, "Stitch failed", map[string]interface{}{
				"script_id": scriptID,
			})
		}
	}); err != nil {
		return nil, err
	}

	return report, nil
}
