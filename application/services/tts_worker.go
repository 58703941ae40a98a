package services

import (
	"context"
	"fmt"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type ttsWorker struct {
	logger       outbound.LoggerPort
	store        outbound.PipelineStorePort
	synthesizer  outbound.SpeechSynthesizerPort
	mediaStore   outbound.MediaStorePort
	avatarWorker inbound.AvatarWorkerPort
	workerPool   outbound.TaskDispatcher
	retryPolicy  domain.RetryPolicy
}

func NewTTSWorker(
	logger outbound.LoggerPort,
	store outbound.PipelineStorePort,
	synthesizer outbound.SpeechSynthesizerPort,
	mediaStore outbound.MediaStorePort,
	avatarWorker inbound.AvatarWorkerPort,
	workerPool outbound.TaskDispatcher,
	pipelineConfig *config.PipelineConfig,
) inbound.TTSWorkerPort {
	return &ttsWorker{
		logger:       logger,
		store:        store,
		synthesizer:  synthesizer,
		mediaStore:   mediaStore,
		avatarWorker: avatarWorker,
		workerPool:   workerPool,
		retryPolicy: domain.RetryPolicy{
			MaxAttempts:   pipelineConfig.RetryMaxAttempts,
			Delay:         pipelineConfig.RetryDelay,
			BackoffFactor: pipelineConfig.RetryBackoffFactor,
		},
	}
}

// ProcessScript moves the script into tts_processing and dispatches every
// pending line onto the worker pool. Lines already past pending are left
// alone, so re-triggering a script is safe.
func (w *ttsWorker) ProcessScript(ctx context.Context, scriptID string) (int, error) {
	script, err := w.store.GetScript(ctx, scriptID)
	if err != nil {
		return 0, err
	}
	if script == nil {
		return 0, domain.InputError("script %s not found", scriptID)
	}

	// Both marks are conditional; losing them just means another trigger got
	// here first.
	if _, err := w.store.MarkScriptProcessing(ctx, scriptID); err != nil {
		return 0, err
	}
	if _, err := w.store.MarkScriptTTSProcessing(ctx, scriptID); err != nil {
		return 0, err
	}

	lines, err := w.store.LinesByScript(ctx, scriptID)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, line := range lines {
		if line.TTSStatus != domain.TTSPending {
			continue
		}
		lineID := line.ID
		if err := w.workerPool.Submit(func() {
			if err := w.ProcessLine(context.Background(), lineID); err != nil {
				w.logger.ErrorWithFields(err, "TTS line processing failed", map[string]interface{}{
					"line_id": lineID,
				})
			}
		}); err != nil {
			return dispatched, err
		}
		dispatched++
	}

	w.logger.InfoWithFields("Dispatched script lines to TTS", map[string]interface{}{
		"script_id":  scriptID,
		"dispatched": dispatched,
	})

	return dispatched, nil
}

// ProcessLine claims the line, synthesizes its speech with bounded retries,
// stores the audio, and hands the line to the avatar stage. If the claim
// loses, another worker owns the line and this call is a no-op.
func (w *ttsWorker) ProcessLine(ctx context.Context, lineID string) error {
	line, err := w.store.GetLine(ctx, lineID)
	if err != nil {
		return err
	}
	if line == nil {
		return domain.InputError("line %s not found", lineID)
	}

	claimed, err := w.store.ClaimLineTTS(ctx, lineID)
	if err != nil {
		return err
	}
	if !claimed {
		w.logger.DebugWithFields("TTS claim lost, skipping line", map[string]interface{}{
			"line_id": lineID,
			"status":  line.TTSStatus,
		})
		return nil
	}

	var audio []byte
	err = w.retryPolicy.Do(ctx, func() error {
		var synthErr error
		audio, synthErr = w.synthesizer.Synthesize(ctx, outbound.SynthesizeRequest{
			Text:    line.Text,
			VoiceID: line.VoiceID,
		})
		return synthErr
	})
	if err != nil {
		return w.failLine(ctx, lineID, err)
	}

	audioKey := fmt.Sprintf("scripts/%s/audio/%s.mp3", line.ScriptID, line.ID)
	err = w.retryPolicy.Do(ctx, func() error {
		_, putErr := w.mediaStore.Put(ctx, audioKey, audio)
		return putErr
	})
	if err != nil {
		return w.failLine(ctx, lineID, err)
	}

	moved, err := w.store.CompleteLineTTS(ctx, lineID, audioKey)
	if err != nil {
		return err
	}
	if !moved {
		w.logger.WarnWithFields("TTS completion lost the row, not dispatching avatar", map[string]interface{}{
			"line_id": lineID,
		})
		return nil
	}

	w.logger.InfoWithFields("TTS complete", map[string]interface{}{
		"line_id":   lineID,
		"audio_key": audioKey,
	})

	return w.workerPool.Submit(func() {
		if err := w.avatarWorker.ProcessLine(context.Background(), lineID); err != nil {
			w.logger.ErrorWithFields(err, "Avatar line processing failed", map[string]interface{}{
				"line_id": lineID,
			})
		}
	})
}

// failLine records the terminal failure on the line; the error stops here.
func (w *ttsWorker) failLine(ctx context.Context, lineID string, cause error) error {
	w.logger.ErrorWithFields(cause, "TTS stage failed", map[string]interface{}{
		"line_id": lineID,
		"kind":    string(domain.Classify(cause)),
	})
	return w.store.FailLineTTS(ctx, lineID, cause.Error())
}
