package inbound

import "context"

// VoiceSampleUpload is one uploaded audio recording for cloning.
type VoiceSampleUpload struct {
	Name        string
	ContentType string
	Content     []byte
}

// PortraitUpload is an uploaded speaker image.
type PortraitUpload struct {
	ContentType string
	Content     []byte
}

type CreateVoiceParams struct {
	Name     string
	Samples  []VoiceSampleUpload
	Portrait *PortraitUpload
}

type VoiceView struct {
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	PortraitKey string `json:"portrait_key,omitempty"`
}

// VoiceManagerPort manages the speaker voice catalog: cloning voices at the
// speech provider and attaching the portrait images later used as avatar
// keyframes. A nil view from SetPortrait means the voice does not exist.
type VoiceManagerPort interface {
	CreateVoice(ctx context.Context, params CreateVoiceParams) (*VoiceView, error)
	SetPortrait(ctx context.Context, voiceID string, portrait PortraitUpload) (*VoiceView, error)
	ListVoices(ctx context.Context) ([]VoiceView, error)
}
