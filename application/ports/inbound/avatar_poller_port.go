package inbound

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type AvatarCheckResult struct {
	Status   domain.AvatarStatus
	Progress float64
	Message  string
}

// AvatarPollerPort resolves the current state of a line's avatar job. A check
// on a line already complete or failed is a pure read: no downloads, no
// uploads, no second fan-in dispatch.
type AvatarPollerPort interface {
	CheckLine(ctx context.Context, lineID string) (*AvatarCheckResult, error)
}
