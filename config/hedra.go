package config

import (
	"fmt"
	"os"
)

type HedraConfig struct {
	BaseUrl     string
	ApiKey      string
	ModelID     string
	TextPrompt  string
	Resolution  string
	AspectRatio string
}

func GetHedraConfig() (*HedraConfig, error) {
	baseUrl := os.Getenv("HEDRA_BASE_URL")
	if baseUrl == "" {
		baseUrl = "https://api.hedra.com/web-app"
	}
	apiKey := os.Getenv("HEDRA_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("HEDRA_API_KEY must be set")
	}
	modelID := os.Getenv("HEDRA_MODEL_ID")
	if modelID == "" {
		modelID = "d1dd37a3-e39a-4854-a298-6510289f9cf2"
	}
	textPrompt := os.Getenv("HEDRA_TEXT_PROMPT")
	if textPrompt == "" {
		textPrompt = "minimal head movement and expressions"
	}
	resolution := os.Getenv("HEDRA_RESOLUTION")
	if resolution == "" {
		resolution = "720p"
	}
	aspectRatio := os.Getenv("HEDRA_ASPECT_RATIO")
	if aspectRatio == "" {
		aspectRatio = "16:9"
	}

	return &HedraConfig{
		BaseUrl:     baseUrl,
		ApiKey:      apiKey,
		ModelID:     modelID,
		TextPrompt:  textPrompt,
		Resolution:  resolution,
		AspectRatio: aspectRatio,
	}, nil
}
