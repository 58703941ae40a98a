package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type ElevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelId       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechSynthesizer struct {
	ContentFetcher
	logger           outbound.LoggerPort
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewSpeechSynthesizer(contentFetcher ContentFetcher, elevenLabsConfig *config.ElevenLabsConfig, logger outbound.LoggerPort) outbound.SpeechSynthesizerPort {
	return &speechSynthesizer{
		ContentFetcher:   contentFetcher,
		logger:           logger,
		elevenLabsConfig: elevenLabsConfig,
	}
}

func (s *speechSynthesizer) Synthesize(ctx context.Context, synthesizeReq outbound.SynthesizeRequest) ([]byte, error) {
	req, err := s.getRequest(ctx, synthesizeReq.Text, synthesizeReq.VoiceID)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to construct the speech synthesis request", map[string]interface{}{
			"voice_id": synthesizeReq.VoiceID,
		})
		return nil, err
	}

	return s.FetchContent(req)
}

func (s *speechSynthesizer) getRequest(ctx context.Context, text string, voiceID string) (*http.Request, error) {
	reqBody := ElevenLabsRequest{
		Text:    text,
		ModelId: s.elevenLabsConfig.ModelId,
		VoiceSettings: VoiceSettings{
			Stability:       s.elevenLabsConfig.Stability,
			SimilarityBoost: s.elevenLabsConfig.SimilarityBoost,
		},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, domain.InputError("marshal synthesis request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.elevenLabsConfig.ApiUrl+"/"+voiceID, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, domain.InputError("create synthesis request: %v", err)
	}

	req.Header.Add("Accept", "audio/mpeg")
	req.Header.Add("xi-api-key", s.elevenLabsConfig.ApiKey)
	req.Header.Add("Content-Type", "application/json")

	return req, nil
}
