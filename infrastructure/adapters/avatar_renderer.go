package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type hedraCreateAssetRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type hedraAssetResponse struct {
	ID string `json:"id"`
}

type hedraGenerationInputs struct {
	TextPrompt  string `json:"text_prompt"`
	Resolution  string `json:"resolution"`
	AspectRatio string `json:"aspect_ratio"`
}

type hedraGenerationRequest struct {
	Type                 string                `json:"type"`
	AiModelID            string                `json:"ai_model_id"`
	AudioID              string                `json:"audio_id"`
	StartKeyframeID      string                `json:"start_keyframe_id,omitempty"`
	GeneratedVideoInputs hedraGenerationInputs `json:"generated_video_inputs"`
}

type hedraGenerationResponse struct {
	ID      string `json:"id"`
	AssetID string `json:"asset_id"`
}

type hedraStatusResponse struct {
	Status       string  `json:"status"`
	Progress     float64 `json:"progress"`
	URL          string  `json:"url"`
	ErrorMessage string  `json:"error_message"`
}

type avatarRenderer struct {
	ContentFetcher
	logger      outbound.LoggerPort
	hedraConfig *config.HedraConfig
}

func NewAvatarRenderer(contentFetcher ContentFetcher, hedraConfig *config.HedraConfig, logger outbound.LoggerPort) outbound.AvatarRendererPort {
	return &avatarRenderer{
		ContentFetcher: contentFetcher,
		logger:         logger,
		hedraConfig:    hedraConfig,
	}
}

// UploadAsset registers the asset record first, then streams the bytes to the
// upload endpoint for the returned id.
func (a *avatarRenderer) UploadAsset(ctx context.Context, uploadReq outbound.UploadAssetRequest) (string, error) {
	createBody, err := json.Marshal(hedraCreateAssetRequest{
		Name: uploadReq.Name,
		Type: uploadReq.Kind,
	})
	if err != nil {
		return "", domain.InputError("marshal create asset request: %v", err)
	}

	req, err := a.newRequest(ctx, "POST", "/public/assets", bytes.NewReader(createBody), "application/json")
	if err != nil {
		return "", err
	}
	payload, err := a.FetchContent(req)
	if err != nil {
		return "", err
	}

	var asset hedraAssetResponse
	if err := json.Unmarshal(payload, &asset); err != nil {
		return "", domain.ProviderError("unmarshal create asset response: %v", err)
	}
	if asset.ID == "" {
		return "", domain.ProviderError("create asset response has no id")
	}

	var fileBody bytes.Buffer
	writer := multipart.NewWriter(&fileBody)
	part, err := writer.CreateFormFile("file", uploadReq.Name)
	if err != nil {
		return "", domain.InputError("create multipart file: %v", err)
	}
	if _, err := part.Write(uploadReq.Content); err != nil {
		return "", domain.InputError("write multipart file: %v", err)
	}
	if err := writer.Close(); err != nil {
		return "", domain.InputError("close multipart writer: %v", err)
	}

	req, err = a.newRequest(ctx, "POST", "/public/assets/"+asset.ID+"/upload", &fileBody, writer.FormDataContentType())
	if err != nil {
		return "", err
	}
	if _, err := a.FetchContent(req); err != nil {
		return "", err
	}

	return asset.ID, nil
}

func (a *avatarRenderer) SubmitGeneration(ctx context.Context, genReq outbound.SubmitGenerationRequest) (*outbound.GenerationJob, error) {
	body, err := json.Marshal(hedraGenerationRequest{
		Type:            "video",
		AiModelID:       a.hedraConfig.ModelID,
		AudioID:         genReq.AudioAssetID,
		StartKeyframeID: genReq.ImageAssetID,
		GeneratedVideoInputs: hedraGenerationInputs{
			TextPrompt:  a.hedraConfig.TextPrompt,
			Resolution:  a.hedraConfig.Resolution,
			AspectRatio: a.hedraConfig.AspectRatio,
		},
	})
	if err != nil {
		return nil, domain.InputError("marshal generation request: %v", err)
	}

	req, err := a.newRequest(ctx, "POST", "/public/generations", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	payload, err := a.FetchContent(req)
	if err != nil {
		return nil, err
	}

	var generation hedraGenerationResponse
	if err := json.Unmarshal(payload, &generation); err != nil {
		return nil, domain.ProviderError("unmarshal generation response: %v", err)
	}
	if generation.ID == "" {
		return nil, domain.ProviderError("generation response has no id")
	}

	return &outbound.GenerationJob{
		GenerationID: generation.ID,
		AssetID:      generation.AssetID,
	}, nil
}

func (a *avatarRenderer) JobStatus(ctx context.Context, generationID string) (*domain.AvatarJobStatus, error) {
	req, err := a.newRequest(ctx, "GET", "/public/generations/"+generationID+"/status", nil, "")
	if err != nil {
		return nil, err
	}
	payload, err := a.FetchContent(req)
	if err != nil {
		return nil, err
	}

	var status hedraStatusResponse
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, domain.ProviderError("unmarshal status response: %v", err)
	}

	return &domain.AvatarJobStatus{
		Status:       mapProviderStatus(status.Status),
		Progress:     status.Progress,
		URL:          status.URL,
		ErrorMessage: status.ErrorMessage,
	}, nil
}

func (a *avatarRenderer) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, domain.InputError("create download request: %v", err)
	}
	return a.FetchContent(req)
}

func (a *avatarRenderer) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.hedraConfig.BaseUrl+path, body)
	if err != nil {
		return nil, domain.InputError("create %s %s request: %v", method, path, err)
	}
	req.Header.Set("X-API-Key", a.hedraConfig.ApiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// mapProviderStatus normalizes the provider's status vocabulary; anything
// unrecognized is treated as still in flight.
func mapProviderStatus(raw string) domain.ProviderStatus {
	switch raw {
	case "complete":
		return domain.ProviderComplete
	case "error", "failed":
		return domain.ProviderFailed
	case "queued", "pending":
		return domain.ProviderQueued
	case "finalizing":
		return domain.ProviderFinalizing
	default:
		return domain.ProviderProcessing
	}
}
