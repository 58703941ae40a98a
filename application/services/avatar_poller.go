package services

import (
	"context"
	"fmt"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type avatarPoller struct {
	logger     outbound.LoggerPort
	store      outbound.PipelineStorePort
	renderer   outbound.AvatarRendererPort
	mediaStore outbound.MediaStorePort
	stitchGate inbound.StitchGatePort
}

func NewAvatarPoller(
	logger outbound.LoggerPort,
	store outbound.PipelineStorePort,
	renderer outbound.AvatarRendererPort,
	mediaStore outbound.MediaStorePort,
	stitchGate inbound.StitchGatePort,
) inbound.AvatarPollerPort {
	return &avatarPoller{
		logger:     logger,
		store:      store,
		renderer:   renderer,
		mediaStore: mediaStore,
		stitchGate: stitchGate,
	}
}

// CheckLine resolves the current provider state of a line's avatar job and
// applies it. On a terminal line this is a pure read: the worker-loop poll
// and the reconciler sweep can race here without a second download, upload
// or fan-in dispatch, because only the winner of the conditional completion
// update evaluates the gate.
func (p *avatarPoller) CheckLine(ctx context.Context, lineID string) (*inbound.AvatarCheckResult, error) {
	line, err := p.store.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, domain.InputError("line %s not found", lineID)
	}

	if line.AvatarStatus == domain.AvatarComplete || line.AvatarStatus == domain.AvatarFailed {
		return &inbound.AvatarCheckResult{
			Status:   line.AvatarStatus,
			Progress: line.AvatarProgress,
			Message:  line.ErrorMessage,
		}, nil
	}

	if line.AvatarJobID == "" {
		return &inbound.AvatarCheckResult{
			Status:   line.AvatarStatus,
			Progress: line.AvatarProgress,
			Message:  "no generation submitted yet",
		}, nil
	}

	jobStatus, err := p.renderer.JobStatus(ctx, line.AvatarJobID)
	if err != nil {
		return nil, err
	}

	switch jobStatus.Status {
	case domain.ProviderComplete:
		return p.completeLine(ctx, line, jobStatus)
	case domain.ProviderFailed:
		reason := jobStatus.ErrorMessage
		if reason == "" {
			reason = "avatar generation failed"
		}
		if err := p.store.FailLineAvatar(ctx, lineID, reason); err != nil {
			return nil, err
		}
		p.logger.WarnWithFields("Avatar generation reported failure", map[string]interface{}{
			"line_id": lineID,
			"job_id":  line.AvatarJobID,
			"reason":  reason,
		})
		return &inbound.AvatarCheckResult{Status: domain.AvatarFailed, Message: reason}, nil
	default:
		if err := p.store.SetAvatarProgress(ctx, lineID, jobStatus.Progress); err != nil {
			return nil, err
		}
		return &inbound.AvatarCheckResult{
			Status:   domain.AvatarRunning,
			Progress: jobStatus.Progress,
		}, nil
	}
}

func (p *avatarPoller) completeLine(ctx context.Context, line *domain.Line, jobStatus *domain.AvatarJobStatus) (*inbound.AvatarCheckResult, error) {
	if jobStatus.URL == "" {
		reason := "avatar generation completed without a download url"
		if err := p.store.FailLineAvatar(ctx, line.ID, reason); err != nil {
			return nil, err
		}
		return &inbound.AvatarCheckResult{Status: domain.AvatarFailed, Message: reason}, nil
	}

	video, err := p.renderer.Download(ctx, jobStatus.URL)
	if err != nil {
		return nil, err
	}

	videoKey := fmt.Sprintf("scripts/%s/video/%s.mp4", line.ScriptID, line.ID)
	if _, err := p.mediaStore.Put(ctx, videoKey, video); err != nil {
		return nil, err
	}

	moved, err := p.store.CompleteLineAvatar(ctx, line.ID, videoKey)
	if err != nil {
		return nil, err
	}
	if !moved {
		// A concurrent check won the completion; it owns the gate evaluation.
		return &inbound.AvatarCheckResult{Status: domain.AvatarComplete, Progress: 1}, nil
	}

	p.logger.InfoWithFields("Avatar video stored", map[string]interface{}{
		"line_id":   line.ID,
		"video_key": videoKey,
	})

	if _, err := p.stitchGate.Evaluate(ctx, line.ScriptID); err != nil {
		p.logger.ErrorWithFields(err, "Stitch gate evaluation failed", map[string]interface{}{
			"script_id": line.ScriptID,
		})
	}

	return &inbound.AvatarCheckResult{Status: domain.AvatarComplete, Progress: 1}, nil
}
