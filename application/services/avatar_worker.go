package services

import (
	"context"
	"fmt"
	"time"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type avatarWorker struct {
	logger          outbound.LoggerPort
	store           outbound.PipelineStorePort
	renderer        outbound.AvatarRendererPort
	mediaStore      outbound.MediaStorePort
	poller          inbound.AvatarPollerPort
	retryPolicy     domain.RetryPolicy
	pollInterval    time.Duration
	maxPollAttempts int
}

func NewAvatarWorker(
	logger outbound.LoggerPort,
	store outbound.PipelineStorePort,
	renderer outbound.AvatarRendererPort,
	mediaStore outbound.MediaStorePort,
	poller inbound.AvatarPollerPort,
	pipelineConfig *config.PipelineConfig,
) inbound.AvatarWorkerPort {
	return &avatarWorker{
		logger:     logger,
		store:      store,
		renderer:   renderer,
		mediaStore: mediaStore,
		poller:     poller,
		retryPolicy: domain.RetryPolicy{
			MaxAttempts:   pipelineConfig.RetryMaxAttempts,
			Delay:         pipelineConfig.RetryDelay,
			BackoffFactor: pipelineConfig.RetryBackoffFactor,
		},
		pollInterval:    pipelineConfig.AvatarPollInterval,
		maxPollAttempts: pipelineConfig.AvatarMaxPollAttempts,
	}
}

// ProcessLine claims the line, submits the avatar generation to the provider
// and drives the job to resolution by polling. A lost claim means another
// worker owns the line. Terminal failures are recorded on the line; they do
// not propagate.
func (w *avatarWorker) ProcessLine(ctx context.Context, lineID string) error {
	line, err := w.store.GetLine(ctx, lineID)
	if err != nil {
		return err
	}
	if line == nil {
		return domain.InputError("line %s not found", lineID)
	}

	claimed, err := w.store.ClaimLineAvatar(ctx, lineID)
	if err != nil {
		return err
	}
	if !claimed {
		w.logger.DebugWithFields("Avatar claim lost, skipping line", map[string]interface{}{
			"line_id": lineID,
			"status":  line.AvatarStatus,
		})
		return nil
	}

	if line.AudioKey == "" {
		return w.failLine(ctx, lineID, domain.InputError("line %s has no audio artifact", lineID))
	}

	job, err := w.submitGeneration(ctx, line)
	if err != nil {
		return w.failLine(ctx, lineID, err)
	}

	// A claimed line without a recorded job handle is invisible to the
	// reconciler sweep, so a failed handle write must fail the line, not
	// strand it in processing.
	if err := w.store.SetAvatarJob(ctx, lineID, job.GenerationID, job.AssetID); err != nil {
		return w.failLine(ctx, lineID, err)
	}

	w.logger.InfoWithFields("Avatar generation submitted", map[string]interface{}{
		"line_id":       lineID,
		"generation_id": job.GenerationID,
	})

	return w.pollUntilResolved(ctx, lineID)
}

// submitGeneration uploads the audio artifact (and the speaker portrait when
// one exists) and starts the provider job.
func (w *avatarWorker) submitGeneration(ctx context.Context, line *domain.Line) (*outbound.GenerationJob, error) {
	var audio []byte
	err := w.retryPolicy.Do(ctx, func() error {
		var getErr error
		audio, getErr = w.mediaStore.Get(ctx, line.AudioKey)
		return getErr
	})
	if err != nil {
		return nil, err
	}

	var audioAssetID string
	err = w.retryPolicy.Do(ctx, func() error {
		var uploadErr error
		audioAssetID, uploadErr = w.renderer.UploadAsset(ctx, outbound.UploadAssetRequest{
			Name:    line.ID + ".mp3",
			Kind:    "audio",
			Content: audio,
		})
		return uploadErr
	})
	if err != nil {
		return nil, err
	}

	var imageAssetID string
	if line.PortraitKey != "" {
		var portrait []byte
		err = w.retryPolicy.Do(ctx, func() error {
			var getErr error
			portrait, getErr = w.mediaStore.Get(ctx, line.PortraitKey)
			return getErr
		})
		if err != nil {
			return nil, err
		}
		err = w.retryPolicy.Do(ctx, func() error {
			var uploadErr error
			imageAssetID, uploadErr = w.renderer.UploadAsset(ctx, outbound.UploadAssetRequest{
				Name:    line.ID + ".png",
				Kind:    "image",
				Content: portrait,
			})
			return uploadErr
		})
		if err != nil {
			return nil, err
		}
	}

	var job *outbound.GenerationJob
	err = w.retryPolicy.Do(ctx, func() error {
		var submitErr error
		job, submitErr = w.renderer.SubmitGeneration(ctx, outbound.SubmitGenerationRequest{
			AudioAssetID: audioAssetID,
			ImageAssetID: imageAssetID,
		})
		return submitErr
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// pollUntilResolved checks the job at a fixed interval until the line reaches
// a terminal avatar status or the poll budget runs out. Poll errors consume
// an attempt but do not abort the loop.
func (w *avatarWorker) pollUntilResolved(ctx context.Context, lineID string) error {
	for attempt := 1; attempt <= w.maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.pollInterval):
		}

		result, err := w.poller.CheckLine(ctx, lineID)
		if err != nil {
			w.logger.ErrorWithFields(err, "Avatar poll attempt failed", map[string]interface{}{
				"line_id": lineID,
				"attempt": attempt,
			})
			continue
		}
		if result.Status == domain.AvatarComplete || result.Status == domain.AvatarFailed {
			return nil
		}
	}

	return w.failLine(ctx, lineID,
		domain.TimeoutError("avatar job unresolved after %d polls %s apart",
			w.maxPollAttempts, w.pollInterval))
}

func (w *avatarWorker) failLine(ctx context.Context, lineID string, cause error) error {
	w.logger.ErrorWithFields(cause, "Avatar stage failed", map[string]interface{}{
		"line_id": lineID,
		"kind":    string(domain.Classify(cause)),
	})
	reason := fmt.Sprintf("%v", cause)
	return w.store.FailLineAvatar(ctx, lineID, reason)
}
