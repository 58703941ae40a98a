package outbound

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type UploadAssetRequest struct {
	Name    string
	Kind    string
	Content []byte
}

type SubmitGenerationRequest struct {
	AudioAssetID string
	// ImageAssetID is optional; when empty the provider renders without a
	// custom portrait keyframe.
	ImageAssetID string
}

type GenerationJob struct {
	GenerationID string
	AssetID      string
}

// AvatarRendererPort wraps the long-running avatar provider: submitting a
// generation returns a handle immediately, completion is discovered by
// polling the handle.
type AvatarRendererPort interface {
	UploadAsset(ctx context.Context, req UploadAssetRequest) (string, error)
	SubmitGeneration(ctx context.Context, req SubmitGenerationRequest) (*GenerationJob, error)
	JobStatus(ctx context.Context, generationID string) (*domain.AvatarJobStatus, error)
	Download(ctx context.Context, url string) ([]byte, error)
}
