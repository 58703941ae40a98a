package inbound

import (
	"context"

	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type LineStatusView struct {
	LineID         string  `json:"line_id"`
	SpeakerRole    string  `json:"speaker_role"`
	SpeakerName    string  `json:"speaker_name"`
	Text           string  `json:"text"`
	LineOrder      int     `json:"line_order"`
	TTSStatus      string  `json:"tts_status"`
	AvatarStatus   string  `json:"avatar_status"`
	AvatarProgress float64 `json:"avatar_progress"`
	ErrorMessage   string  `json:"error_message,omitempty"`
}

type ScriptStatusView struct {
	ScriptID       string           `json:"script_id"`
	Title          string           `json:"title"`
	LengthMinutes  int              `json:"length_minutes"`
	Status         string           `json:"status"`
	EpisodeKey     string           `json:"episode_key,omitempty"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	TotalLines     int              `json:"total_lines"`
	CompletedLines int              `json:"completed_lines"`
	Lines          []LineStatusView `json:"lines"`
}

type ScriptSummaryView struct {
	ScriptID      string `json:"script_id"`
	Title         string `json:"title"`
	LengthMinutes int    `json:"length_minutes"`
	Status        string `json:"status"`
}

// StatusReaderPort is the read-only reporting surface. A failed entity is
// reported with its failure reason, not just the status.
type StatusReaderPort interface {
	ScriptStatus(ctx context.Context, scriptID string) (*ScriptStatusView, error)
	ListScripts(ctx context.Context, status domain.ScriptStatus) ([]ScriptSummaryView, error)
}
