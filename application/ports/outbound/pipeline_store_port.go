package outbound

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

// PipelineStorePort is the single source of truth for pipeline state. Every
// transition that gates a downstream dispatch is a conditional update: it
// only moves the row when the current status still matches the expected
// predecessor, and reports whether the row moved. Reads never take the guard.
type PipelineStorePort interface {
	CreateScript(ctx context.Context, script *domain.Script, lines []*domain.Line) error
	GetScript(ctx context.Context, scriptID string) (*domain.Script, error)
	ListScripts(ctx context.Context, status domain.ScriptStatus) ([]*domain.Script, error)
	GetLine(ctx context.Context, lineID string) (*domain.Line, error)
	LinesByScript(ctx context.Context, scriptID string) ([]*domain.Line, error)

	// TTS stage.
	ClaimLineTTS(ctx context.Context, lineID string) (bool, error)
	CompleteLineTTS(ctx context.Context, lineID, audioKey string) (bool, error)
	FailLineTTS(ctx context.Context, lineID, reason string) error

	// Avatar stage.
	ClaimLineAvatar(ctx context.Context, lineID string) (bool, error)
	SetAvatarJob(ctx context.Context, lineID, jobID, assetID string) error
	SetAvatarProgress(ctx context.Context, lineID string, progress float64) error
	CompleteLineAvatar(ctx context.Context, lineID, videoKey string) (bool, error)
	FailLineAvatar(ctx context.Context, lineID, reason string) error
	RequeueFailedAvatar(ctx context.Context, lineID string) (bool, error)
	LinesInAvatarProcessing(ctx context.Context) ([]*domain.Line, error)

	// Script lifecycle.
	MarkScriptProcessing(ctx context.Context, scriptID string) (bool, error)
	MarkScriptTTSProcessing(ctx context.Context, scriptID string) (bool, error)
	CountLines(ctx context.Context, scriptID string) (total int, avatarComplete int, err error)
	AdmitScriptForStitch(ctx context.Context, scriptID string) (bool, error)
	CompleteScript(ctx context.Context, scriptID, episodeKey string) error
	FailScriptStitch(ctx context.Context, scriptID, reason string) error
}
