package outbound

import "context"

type EpisodeRecord struct {
	ScriptID   string
	Title      string
	EpisodeKey string
	LineCount  int
}

// EpisodeRegistryPort records finished episodes for downstream consumers.
type EpisodeRegistryPort interface {
	Record(ctx context.Context, rec EpisodeRecord) error
}
