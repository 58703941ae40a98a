package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type stitchWorker struct {
	logger       outbound.LoggerPort
	store        outbound.PipelineStorePort
	mediaStore   outbound.MediaStorePort
	concatenator outbound.VideoConcatenatorPort
	registry     outbound.EpisodeRegistryPort
	retryPolicy  domain.RetryPolicy
}

func NewStitchWorker(
	logger outbound.LoggerPort,
	store outbound.PipelineStorePort,
	mediaStore outbound.MediaStorePort,
	concatenator outbound.VideoConcatenatorPort,
	registry outbound.EpisodeRegistryPort,
	pipelineConfig *config.PipelineConfig,
) inbound.StitchWorkerPort {
	return &stitchWorker{
		logger:       logger,
		store:        store,
		mediaStore:   mediaStore,
		concatenator: concatenator,
		registry:     registry,
		retryPolicy: domain.RetryPolicy{
			MaxAttempts:   pipelineConfig.StitchMaxAttempts,
			Delay:         pipelineConfig.RetryDelay,
			BackoffFactor: pipelineConfig.RetryBackoffFactor,
		},
	}
}

// Stitch concatenates the admitted script's line videos, in line order, into
// one episode, stores it, and completes the script. The script must already
// hold the stitching status; the gate is the only admitter. Failures are
// recorded as stitching_failed, never thrown past this boundary.
func (w *stitchWorker) Stitch(ctx context.Context, scriptID string) error {
	script, err := w.store.GetScript(ctx, scriptID)
	if err != nil {
		return err
	}
	if script == nil {
		return domain.InputError("script %s not found", scriptID)
	}
	if script.Status != domain.ScriptStitching {
		w.logger.WarnWithFields("Stitch invoked on a script not admitted for stitching", map[string]interface{}{
			"script_id": scriptID,
			"status":    string(script.Status),
		})
		return nil
	}

	lines, err := w.store.LinesByScript(ctx, scriptID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if line.AvatarStatus != domain.AvatarComplete || line.VideoKey == "" {
			return w.failStitch(ctx, scriptID,
				domain.PreconditionError("line %d (%s) has no completed video", line.LineOrder, line.ID))
		}
	}

	var episodeKey string
	err = w.retryPolicy.Do(ctx, func() error {
		var stitchErr error
		episodeKey, stitchErr = w.produceEpisode(ctx, script, lines)
		return stitchErr
	})
	if err != nil {
		return w.failStitch(ctx, scriptID, err)
	}

	if err := w.store.CompleteScript(ctx, scriptID, episodeKey); err != nil {
		return err
	}

	w.logger.InfoWithFields("Episode complete", map[string]interface{}{
		"script_id":   scriptID,
		"episode_key": episodeKey,
	})

	// Registry trouble must not fail an already-produced episode.
	if err := w.registry.Record(ctx, outbound.EpisodeRecord{
		ScriptID:   scriptID,
		Title:      script.Title,
		EpisodeKey: episodeKey,
		LineCount:  len(lines),
	}); err != nil {
		w.logger.ErrorWithFields(err, "Failed to record episode in the registry", map[string]interface{}{
			"script_id": scriptID,
		})
	}

	return nil
}

// produceEpisode downloads the line videos to temp files in line order, joins
// them, and uploads the result. Temp files are cleaned up on every path.
func (w *stitchWorker) produceEpisode(ctx context.Context, script *domain.Script, lines []*domain.Line) (string, error) {
	fileNames := make([]string, 0, len(lines))
	cleanup := func() {
		for _, name := range fileNames {
			if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
				w.logger.Error(err, "Failed to remove temp video file")
			}
		}
	}

	for _, line := range lines {
		video, err := w.mediaStore.Get(ctx, line.VideoKey)
		if err != nil {
			cleanup()
			return "", err
		}
		fileName := filepath.Join(os.TempDir(), line.ID+".mp4")
		if err := os.WriteFile(fileName, video, 0o600); err != nil {
			cleanup()
			return "", domain.TransientError("write temp video file: %v", err)
		}
		fileNames = append(fileNames, fileName)
	}

	// Concatenate consumes the inputs on success.
	episodeFile, err := w.concatenator.Concatenate(fileNames)
	if err != nil {
		cleanup()
		return "", err
	}
	defer func() {
		if err := os.Remove(episodeFile); err != nil {
			w.logger.Error(err, "Failed to remove stitched episode file")
		}
	}()

	episode, err := os.ReadFile(episodeFile)
	if err != nil {
		return "", domain.TransientError("read stitched episode file: %v", err)
	}

	episodeKey := fmt.Sprintf("episodes/%s/%s.mp4", script.ID, uuid.NewString())
	if _, err := w.mediaStore.Put(ctx, episodeKey, episode); err != nil {
		return "", err
	}
	return episodeKey, nil
}

func (w *stitchWorker) failStitch(ctx context.Context, scriptID string, cause error) error {
	w.logger.ErrorWithFields(cause, "Stitch stage failed", map[string]interface{}{
		"script_id": scriptID,
		"kind":      string(domain.Classify(cause)),
	})
	return w.store.FailScriptStitch(ctx, scriptID, cause.Error())
}
