package domain

import "time"

type ScriptStatus string

const (
	ScriptPending         ScriptStatus = "pending"
	ScriptProcessing      ScriptStatus = "processing"
	ScriptTTSProcessing   ScriptStatus = "tts_processing"
	ScriptStitching       ScriptStatus = "stitching"
	ScriptComplete        ScriptStatus = "complete"
	ScriptStitchingFailed ScriptStatus = "stitching_failed"
)

type TTSStatus string

const (
	TTSPending    TTSStatus = "pending"
	TTSProcessing TTSStatus = "processing"
	TTSComplete   TTSStatus = "complete"
	TTSFailed     TTSStatus = "failed"
)

type AvatarStatus string

const (
	AvatarPending  AvatarStatus = "pending"
	AvatarReady    AvatarStatus = "ready_for_processing"
	AvatarRunning  AvatarStatus = "processing"
	AvatarComplete AvatarStatus = "complete"
	AvatarFailed   AvatarStatus = "failed"
)

// scriptTransitions declares every legal script status edge. The store's
// conditional updates are the runtime guard; this table is the reference
// the guards are written against.
var scriptTransitions = map[ScriptStatus][]ScriptStatus{
	ScriptPending:         {ScriptProcessing},
	ScriptProcessing:      {ScriptTTSProcessing, ScriptStitching},
	ScriptTTSProcessing:   {ScriptStitching},
	ScriptStitching:       {ScriptComplete, ScriptStitchingFailed},
	ScriptStitchingFailed: {ScriptStitching},
}

var ttsTransitions = map[TTSStatus][]TTSStatus{
	TTSPending:    {TTSProcessing},
	TTSProcessing: {TTSComplete, TTSFailed},
}

// The failed -> ready_for_processing edge is the explicit administrative
// retry; the reconciler never takes it on its own.
var avatarTransitions = map[AvatarStatus][]AvatarStatus{
	AvatarPending: {AvatarReady},
	AvatarReady:   {AvatarRunning},
	AvatarRunning: {AvatarComplete, AvatarFailed},
	AvatarFailed:  {AvatarReady},
}

func ValidScriptTransition(from, to ScriptStatus) bool {
	for _, next := range scriptTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidTTSTransition(from, to TTSStatus) bool {
	for _, next := range ttsTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidAvatarTransition(from, to AvatarStatus) bool {
	for _, next := range avatarTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StitchBlockingStatuses are the script states that must reject a new stitch
// admission. Exactly-once dispatch hinges on the store checking against this
// set atomically.
var StitchBlockingStatuses = []ScriptStatus{ScriptStitching, ScriptComplete, ScriptStitchingFailed}

type Script struct {
	ID            string
	Title         string
	LengthMinutes int
	Status        ScriptStatus
	RawScriptJSON string
	EpisodeKey    string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Line struct {
	ID             string
	ScriptID       string
	SpeakerRole    string
	SpeakerName    string
	VoiceID        string
	Text           string
	LineOrder      int
	TTSStatus      TTSStatus
	AudioKey       string
	AvatarStatus   AvatarStatus
	AvatarJobID    string
	AvatarAssetID  string
	AvatarProgress float64
	VideoKey       string
	PortraitKey    string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Speaker struct {
	Role        string
	Name        string
	VoiceID     string
	PortraitKey string
}

// Voice is a cloned speaker voice in the catalog. VoiceID is the provider's
// identifier and is what script speakers reference; PortraitKey points at the
// stored portrait used as the avatar keyframe, empty when none was uploaded.
type Voice struct {
	VoiceID     string
	Name        string
	PortraitKey string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type DialogueLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ProviderStatus is the raw state reported by the avatar provider for an
// in-flight generation job.
type ProviderStatus string

const (
	ProviderQueued     ProviderStatus = "queued"
	ProviderProcessing ProviderStatus = "processing"
	ProviderFinalizing ProviderStatus = "finalizing"
	ProviderComplete   ProviderStatus = "complete"
	ProviderFailed     ProviderStatus = "error"
)

// Terminal reports whether the provider status needs no further polling.
func (s ProviderStatus) Terminal() bool {
	return s == ProviderComplete || s == ProviderFailed
}

type AvatarJobStatus struct {
	Status       ProviderStatus
	Progress     float64
	URL          string
	ErrorMessage string
}
