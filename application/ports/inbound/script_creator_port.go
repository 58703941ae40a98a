package inbound

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type CreateScriptParams struct {
	Title         string
	Speakers      []domain.Speaker
	LengthMinutes int
}

// ScriptCreatorPort generates the dialogue for a new episode, persists the
// script with its ordered lines, and pushes every line into the TTS stage.
type ScriptCreatorPort interface {
	Create(ctx context.Context, params CreateScriptParams) (*domain.Script, error)
}
