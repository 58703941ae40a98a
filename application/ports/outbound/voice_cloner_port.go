package outbound

import "context"

// VoiceSample is one audio recording submitted for cloning.
type VoiceSample struct {
	Name    string
	Content []byte
}

// VoiceClonerPort creates speaker voices at the speech provider from sample
// recordings and returns the provider's voice id.
type VoiceClonerPort interface {
	CreateClone(ctx context.Context, name string, samples []VoiceSample) (string, error)
}
