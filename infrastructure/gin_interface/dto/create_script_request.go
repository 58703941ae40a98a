package dto

type SpeakerRequest struct {
	Role        string `json:"role" binding:"required"`
	Name        string `json:"name"`
	VoiceID     string `json:"voice_id" binding:"required"`
	PortraitKey string `json:"portrait_key"`
}

type CreateScriptRequest struct {
	Title         string           `json:"title" binding:"required"`
	LengthMinutes int              `json:"length_minutes" binding:"required"`
	Speakers      []SpeakerRequest `json:"speakers" binding:"required,dive"`
}

type CreateScriptResponse struct {
	ScriptID  string `json:"script_id"`
	Status    string `json:"status"`
	LineCount int    `json:"line_count"`
}
