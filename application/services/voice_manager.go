package services

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

var sampleContentTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/x-wav": true,
}

var portraitExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type voiceManager struct {
	logger     outbound.LoggerPort
	store      outbound.VoiceStorePort
	cloner     outbound.VoiceClonerPort
	mediaStore outbound.MediaStorePort
}

func NewVoiceManager(
	logger outbound.LoggerPort,
	store outbound.VoiceStorePort,
	cloner outbound.VoiceClonerPort,
	mediaStore outbound.MediaStorePort,
) inbound.VoiceManagerPort {
	return &voiceManager{
		logger:     logger,
		store:      store,
		cloner:     cloner,
		mediaStore: mediaStore,
	}
}

// CreateVoice clones a voice at the provider from the sample recordings and
// catalogs it. A failed portrait upload does not fail the voice; the portrait
// can be attached again through SetPortrait.
func (m *voiceManager) CreateVoice(ctx context.Context, params inbound.CreateVoiceParams) (*inbound.VoiceView, error) {
	if err := validateVoiceParams(params); err != nil {
		return nil, err
	}

	samples := make([]outbound.VoiceSample, 0, len(params.Samples))
	for _, sample := range params.Samples {
		samples = append(samples, outbound.VoiceSample{Name: sample.Name, Content: sample.Content})
	}

	voiceID, err := m.cloner.CreateClone(ctx, params.Name, samples)
	if err != nil {
		return nil, err
	}

	portraitKey := ""
	if params.Portrait != nil {
		key, putErr := m.storePortrait(ctx, voiceID, *params.Portrait)
		if putErr != nil {
			m.logger.ErrorWithFields(putErr, "Portrait upload failed, voice kept without portrait", map[string]interface{}{
				"voice_id": voiceID,
			})
		} else {
			portraitKey = key
		}
	}

	voice := &domain.Voice{VoiceID: voiceID, Name: params.Name, PortraitKey: portraitKey}
	if err := m.store.CreateVoice(ctx, voice); err != nil {
		if portraitKey != "" {
			if delErr := m.mediaStore.Delete(ctx, portraitKey); delErr != nil {
				m.logger.Error(delErr, "Failed to remove portrait of uncataloged voice")
			}
		}
		return nil, err
	}

	m.logger.InfoWithFields("Voice cataloged", map[string]interface{}{
		"voice_id": voiceID,
		"name":     params.Name,
	})
	return voiceView(voice), nil
}

// SetPortrait uploads a new portrait for an existing voice and removes the
// previous one. A nil view means the voice does not exist.
func (m *voiceManager) SetPortrait(ctx context.Context, voiceID string, portrait inbound.PortraitUpload) (*inbound.VoiceView, error) {
	if _, ok := portraitExtensions[portrait.ContentType]; !ok {
		return nil, domain.InputError("unsupported portrait type %q", portrait.ContentType)
	}
	if len(portrait.Content) == 0 {
		return nil, domain.InputError("portrait is empty")
	}

	voice, err := m.store.GetVoice(ctx, voiceID)
	if err != nil {
		return nil, err
	}
	if voice == nil {
		return nil, nil
	}

	newKey, err := m.storePortrait(ctx, voiceID, portrait)
	if err != nil {
		return nil, err
	}
	if _, err := m.store.SetVoicePortrait(ctx, voiceID, newKey); err != nil {
		return nil, err
	}

	if voice.PortraitKey != "" && voice.PortraitKey != newKey {
		if delErr := m.mediaStore.Delete(ctx, voice.PortraitKey); delErr != nil {
			m.logger.ErrorWithFields(delErr, "Failed to remove replaced portrait", map[string]interface{}{
				"voice_id": voiceID,
				"key":      voice.PortraitKey,
			})
		}
	}

	voice.PortraitKey = newKey
	return voiceView(voice), nil
}

func (m *voiceManager) ListVoices(ctx context.Context) ([]inbound.VoiceView, error) {
	voices, err := m.store.ListVoices(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]inbound.VoiceView, 0, len(voices))
	for _, voice := range voices {
		views = append(views, *voiceView(voice))
	}
	return views, nil
}

func (m *voiceManager) storePortrait(ctx context.Context, voiceID string, portrait inbound.PortraitUpload) (string, error) {
	key := "portraits/" + voiceID + portraitExtensions[portrait.ContentType]
	return m.mediaStore.Put(ctx, key, portrait.Content)
}

func validateVoiceParams(params inbound.CreateVoiceParams) error {
	if params.Name == "" {
		return domain.InputError("voice name is required")
	}
	if len(params.Samples) == 0 {
		return domain.InputError("at least one sample recording is required")
	}
	for _, sample := range params.Samples {
		if !sampleContentTypes[sample.ContentType] {
			return domain.InputError("unsupported sample type %q, use MP3 or WAV", sample.ContentType)
		}
		if len(sample.Content) == 0 {
			return domain.InputError("sample %s is empty", sample.Name)
		}
	}
	if params.Portrait != nil {
		if _, ok := portraitExtensions[params.Portrait.ContentType]; !ok {
			return domain.InputError("unsupported portrait type %q, use JPEG, PNG, or WebP", params.Portrait.ContentType)
		}
	}
	return nil
}

func voiceView(voice *domain.Voice) *inbound.VoiceView {
	return &inbound.VoiceView{
		VoiceID:     voice.VoiceID,
		Name:        voice.Name,
		PortraitKey: voice.PortraitKey,
	}
}
