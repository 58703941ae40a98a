package outbound

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

// VoiceStorePort is the durable voice catalog. SetVoicePortrait reports
// whether the voice existed.
type VoiceStorePort interface {
	CreateVoice(ctx context.Context, voice *domain.Voice) error
	GetVoice(ctx context.Context, voiceID string) (*domain.Voice, error)
	ListVoices(ctx context.Context) ([]*domain.Voice, error)
	SetVoicePortrait(ctx context.Context, voiceID, portraitKey string) (bool, error)
}
