package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type elevenLabsVoiceResponse struct {
	VoiceID string `json:"voice_id"`
}

type voiceCloner struct {
	ContentFetcher
	logger           outbound.LoggerPort
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewVoiceCloner(contentFetcher ContentFetcher, elevenLabsConfig *config.ElevenLabsConfig, logger outbound.LoggerPort) outbound.VoiceClonerPort {
	return &voiceCloner{
		ContentFetcher:   contentFetcher,
		logger:           logger,
		elevenLabsConfig: elevenLabsConfig,
	}
}

// CreateClone submits the sample recordings as one multipart request to the
// voice-add endpoint and returns the new provider voice id.
func (v *voiceCloner) CreateClone(ctx context.Context, name string, samples []outbound.VoiceSample) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("name", name); err != nil {
		return "", domain.InputError("write name field: %v", err)
	}
	for _, sample := range samples {
		part, err := writer.CreateFormFile("files", sample.Name)
		if err != nil {
			return "", domain.InputError("create multipart file %s: %v", sample.Name, err)
		}
		if _, err := part.Write(sample.Content); err != nil {
			return "", domain.InputError("write multipart file %s: %v", sample.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", domain.InputError("close multipart writer: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", v.elevenLabsConfig.VoicesUrl+"/add", &body)
	if err != nil {
		return "", domain.InputError("create voice clone request: %v", err)
	}
	req.Header.Set("xi-api-key", v.elevenLabsConfig.ApiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	payload, err := v.FetchContent(req)
	if err != nil {
		return "", err
	}

	var voice elevenLabsVoiceResponse
	if err := json.Unmarshal(payload, &voice); err != nil {
		return "", domain.ProviderError("unmarshal voice clone response: %v", err)
	}
	if voice.VoiceID == "" {
		return "", domain.ProviderError("voice clone response has no voice_id")
	}

	v.logger.InfoWithFields("Voice clone created", map[string]interface{}{
		"voice_id": voice.VoiceID,
		"name":     name,
		"samples":  len(samples),
	})
	return voice.VoiceID, nil
}
