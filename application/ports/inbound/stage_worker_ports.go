package inbound

import "context"

// TTSWorkerPort performs exactly one TTS stage transition for a line.
// Invoking it on a line that is not pending is a no-op, not a re-execution.
type TTSWorkerPort interface {
	ProcessLine(ctx context.Context, lineID string) error
	// ProcessScript pushes every still-pending line of a script through TTS
	// and returns how many lines were processed.
	ProcessScript(ctx context.Context, scriptID string) (int, error)
}

// AvatarWorkerPort submits the avatar generation for a line whose TTS output
// is ready and drives it to resolution by polling the provider job.
type AvatarWorkerPort interface {
	ProcessLine(ctx context.Context, lineID string) error
}
