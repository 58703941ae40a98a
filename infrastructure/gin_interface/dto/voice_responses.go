package dto

type VoiceCreateResponse struct {
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	PortraitKey string `json:"portrait_key,omitempty"`
}

type VoicePortraitResponse struct {
	VoiceID     string `json:"voice_id"`
	PortraitKey string `json:"portrait_key"`
}
