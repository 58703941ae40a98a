package services

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type statusReader struct {
	store outbound.PipelineStorePort
}

func NewStatusReader(store outbound.PipelineStorePort) inbound.StatusReaderPort {
	return &statusReader{store: store}
}

func (r *statusReader) ScriptStatus(ctx context.Context, scriptID string) (*inbound.ScriptStatusView, error) {
	script, err := r.store.GetScript(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	if script == nil {
		return nil, nil
	}

	lines, err := r.store.LinesByScript(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	view := &inbound.ScriptStatusView{
		ScriptID:      script.ID,
		Title:         script.Title,
		LengthMinutes: script.LengthMinutes,
		Status:        string(script.Status),
		EpisodeKey:    script.EpisodeKey,
		ErrorMessage:  script.ErrorMessage,
		TotalLines:    len(lines),
		Lines:         make([]inbound.LineStatusView, 0, len(lines)),
	}
	for _, line := range lines {
		if line.AvatarStatus == domain.AvatarComplete {
			view.CompletedLines++
		}
		view.Lines = append(view.Lines, inbound.LineStatusView{
			LineID:         line.ID,
			SpeakerRole:    line.SpeakerRole,
			SpeakerName:    line.SpeakerName,
			Text:           line.Text,
			LineOrder:      line.LineOrder,
			TTSStatus:      string(line.TTSStatus),
			AvatarStatus:   string(line.AvatarStatus),
			AvatarProgress: line.AvatarProgress,
			ErrorMessage:   line.ErrorMessage,
		})
	}

	return view, nil
}

func (r *statusReader) ListScripts(ctx context.Context, status domain.ScriptStatus) ([]inbound.ScriptSummaryView, error) {
	scripts, err := r.store.ListScripts(ctx, status)
	if err != nil {
		return nil, err
	}

	views := make([]inbound.ScriptSummaryView, 0, len(scripts))
	for _, script := range scripts {
		views = append(views, inbound.ScriptSummaryView{
			ScriptID:      script.ID,
			Title:         script.Title,
			LengthMinutes: script.LengthMinutes,
			Status:        string(script.Status),
		})
	}
	return views, nil
}
