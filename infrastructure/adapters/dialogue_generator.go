package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/donovanhide/eventsource"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

const DoneSignal = "[DONE]"
const MaxStreamRetries = 3

type chatGptRequest struct {
	Stream   bool             `json:"stream"`
	Model    string           `json:"model"`
	Messages []chatGptMessage `json:"messages"`
}

type chatGptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatGptChunkBody struct {
	Choices []chatGptResponseChoice `json:"choices"`
}

type chatGptResponseChoice struct {
	Index int `json:"index"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

type dialogueEnvelope struct {
	Dialogue []domain.DialogueLine `json:"dialogue"`
}

type dialogueGenerator struct {
	logger    outbound.LoggerPort
	gptConfig *config.GptConfig
}

func NewDialogueGenerator(gptConfig *config.GptConfig, logger outbound.LoggerPort) outbound.DialogueGeneratorPort {
	return &dialogueGenerator{
		logger:    logger,
		gptConfig: gptConfig,
	}
}

// Generate streams the model response over SSE, accumulating deltas until the
// done signal, then parses the full dialogue. The model sometimes wraps the
// array in a {"dialogue": [...]} object; both shapes are accepted.
func (d *dialogueGenerator) Generate(ctx context.Context, genReq outbound.GenerateDialogueRequest) ([]domain.DialogueLine, error) {
	req, err := d.createRequest(ctx, genReq)
	if err != nil {
		d.logger.Error(err, "Failed to create HTTP request for dialogue stream")
		return nil, err
	}

	stream, err := eventsource.SubscribeWithRequest("", req)
	if err != nil {
		d.logger.Error(err, "Failed to subscribe to dialogue stream")
		return nil, domain.ProviderError("subscribe to dialogue stream: %v", err)
	}
	defer stream.Close()

	var builder strings.Builder
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev := <-stream.Events:
			if ev.Data() == DoneSignal {
				return d.parseDialogue(builder.String())
			}
			payload, err := d.extractPayload(ev)
			if err != nil {
				return nil, err
			}
			builder.WriteString(payload)
			retryCount = 0
		case err := <-stream.Errors:
			if err == io.EOF {
				d.logger.Info("Dialogue stream closed")
				return d.parseDialogue(builder.String())
			}
			if retryCount < MaxStreamRetries {
				d.logger.ErrorWithFields(err, "Error occurred during streaming, retrying", map[string]interface{}{
					"retry_count": retryCount})
				retryCount++
				continue
			}
			d.logger.Error(err, "Error occurred during streaming, max retries reached")
			return nil, domain.ProviderError("dialogue stream: %v", err)
		}
	}
}

func (d *dialogueGenerator) extractPayload(event eventsource.Event) (string, error) {
	var chunkBody chatGptChunkBody
	if err := json.Unmarshal([]byte(event.Data()), &chunkBody); err != nil {
		d.logger.Error(err, "Failed to unmarshal event data")
		return "", domain.ProviderError("unmarshal stream chunk: %v", err)
	}
	if len(chunkBody.Choices) == 0 {
		return "", nil
	}
	return chunkBody.Choices[0].Delta.Content, nil
}

func (d *dialogueGenerator) parseDialogue(raw string) ([]domain.DialogueLine, error) {
	trimmed := strings.TrimSpace(raw)
	// The model is asked for raw JSON but occasionally fences it.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var lines []domain.DialogueLine
	if err := json.Unmarshal([]byte(trimmed), &lines); err == nil {
		return d.validateDialogue(lines)
	}

	var envelope dialogueEnvelope
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		d.logger.ErrorWithFields(err, "Failed to parse generated dialogue", map[string]interface{}{
			"payload_length": len(trimmed),
		})
		return nil, domain.ProviderError("parse generated dialogue: %v", err)
	}
	return d.validateDialogue(envelope.Dialogue)
}

func (d *dialogueGenerator) validateDialogue(lines []domain.DialogueLine) ([]domain.DialogueLine, error) {
	if len(lines) == 0 {
		return nil, domain.ProviderError("generated dialogue is empty")
	}
	for i, line := range lines {
		if line.Speaker == "" || line.Text == "" {
			return nil, domain.ProviderError("generated dialogue line %d is missing speaker or text", i)
		}
	}
	return lines, nil
}

func (d *dialogueGenerator) createRequest(ctx context.Context, genReq outbound.GenerateDialogueRequest) (*http.Request, error) {
	roles := make([]string, 0, len(genReq.Speakers))
	for _, speaker := range genReq.Speakers {
		name := speaker.Name
		if name == "" {
			name = speaker.Role
		}
		roles = append(roles, fmt.Sprintf("%q (the %s)", name, speaker.Role))
	}

	promptMessage := chatGptMessage{
		Role: "system",
		Content: fmt.Sprintf("Write a podcast dialogue on the topic: %s.\n"+
			"The speakers are: %s.\n"+
			"The dialogue should fill about %d minutes of spoken audio.\n"+
			"Respond with raw JSON only: an array of objects, each with a"+
			" \"speaker\" field holding the speaker's role and a \"text\" field"+
			" holding what they say. Alternate speakers naturally and keep each"+
			" turn short enough to speak in one breath group.",
			genReq.Title, strings.Join(roles, ", "), genReq.LengthMinutes),
	}

	promptReq := chatGptRequest{
		Stream:   true,
		Model:    d.gptConfig.Model,
		Messages: []chatGptMessage{promptMessage},
	}

	payloadBytes, err := json.Marshal(promptReq)
	if err != nil {
		return nil, domain.InputError("marshal dialogue request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.gptConfig.ApiUrl, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, domain.InputError("create dialogue request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+d.gptConfig.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
