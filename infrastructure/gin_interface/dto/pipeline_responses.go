package dto

type DispatchTTSResponse struct {
	ScriptID   string `json:"script_id"`
	Dispatched int    `json:"dispatched"`
}

type SweepResponse struct {
	Processed       int `json:"processed"`
	Updated         int `json:"updated"`
	StillProcessing int `json:"still_processing"`
	Errors          int `json:"errors"`
}

type RetryAvatarResponse struct {
	LineID   string `json:"line_id"`
	Requeued bool   `json:"requeued"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
