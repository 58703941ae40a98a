package outbound

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type GenerateDialogueRequest struct {
	Title         string
	Speakers      []domain.Speaker
	LengthMinutes int
}

// DialogueGeneratorPort produces the ordered dialogue for an episode.
// Generation failures propagate to the caller; there is no retry here.
type DialogueGeneratorPort interface {
	Generate(ctx context.Context, req GenerateDialogueRequest) ([]domain.DialogueLine, error)
}
