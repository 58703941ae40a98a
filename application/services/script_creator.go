package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type scriptCreator struct {
	logger            outbound.LoggerPort
	store             outbound.PipelineStorePort
	dialogueGenerator outbound.DialogueGeneratorPort
	ttsWorker         inbound.TTSWorkerPort
	workerPool        outbound.TaskDispatcher
}

func NewScriptCreator(
	logger outbound.LoggerPort,
	store outbound.PipelineStorePort,
	dialogueGenerator outbound.DialogueGeneratorPort,
	ttsWorker inbound.TTSWorkerPort,
	workerPool outbound.TaskDispatcher,
) inbound.ScriptCreatorPort {
	return &scriptCreator{
		logger:            logger,
		store:             store,
		dialogueGenerator: dialogueGenerator,
		ttsWorker:         ttsWorker,
		workerPool:        workerPool,
	}
}

// Create generates the dialogue, persists the script with its ordered lines
// in one transaction, and hands the script to the TTS stage in the
// background. The caller gets the persisted script back immediately.
func (s *scriptCreator) Create(ctx context.Context, params inbound.CreateScriptParams) (*domain.Script, error) {
	if params.Title == "" {
		return nil, domain.InputError("script title is required")
	}
	if len(params.Speakers) == 0 {
		return nil, domain.InputError("at least one speaker is required")
	}
	for _, speaker := range params.Speakers {
		if speaker.Role == "" || speaker.VoiceID == "" {
			return nil, domain.InputError("every speaker needs a role and a voice_id")
		}
	}
	if params.LengthMinutes <= 0 {
		return nil, domain.InputError("length_minutes must be positive")
	}

	dialogue, err := s.dialogueGenerator.Generate(ctx, outbound.GenerateDialogueRequest{
		Title:         params.Title,
		Speakers:      params.Speakers,
		LengthMinutes: params.LengthMinutes,
	})
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to generate dialogue", map[string]interface{}{
			"title": params.Title,
		})
		return nil, err
	}

	speakersByRole := make(map[string]domain.Speaker, len(params.Speakers))
	for _, speaker := range params.Speakers {
		speakersByRole[strings.ToLower(speaker.Role)] = speaker
		if speaker.Name != "" {
			speakersByRole[strings.ToLower(speaker.Name)] = speaker
		}
	}

	script := &domain.Script{
		ID:            uuid.NewString(),
		Title:         params.Title,
		LengthMinutes: params.LengthMinutes,
		Status:        domain.ScriptPending,
	}

	lines := make([]*domain.Line, 0, len(dialogue))
	for i, dialogueLine := range dialogue {
		speaker, ok := speakersByRole[strings.ToLower(dialogueLine.Speaker)]
		if !ok {
			return nil, domain.InputError("dialogue line %d names unknown speaker %q", i, dialogueLine.Speaker)
		}
		lines = append(lines, &domain.Line{
			ID:          uuid.NewString(),
			ScriptID:    script.ID,
			SpeakerRole: speaker.Role,
			SpeakerName: speaker.Name,
			VoiceID:     speaker.VoiceID,
			PortraitKey: speaker.PortraitKey,
			Text:        dialogueLine.Text,
			LineOrder:   i,
		})
	}

	rawScript, err := json.Marshal(dialogue)
	if err != nil {
		return nil, domain.InputError("marshal dialogue: %v", err)
	}
	script.RawScriptJSON = string(rawScript)

	if err := s.store.CreateScript(ctx, script, lines); err != nil {
		s.logger.Error(err, "Failed to persist script")
		return nil, err
	}

	s.logger.InfoWithFields("Script created", map[string]interface{}{
		"script_id":  script.ID,
		"line_count": len(lines),
	})

	scriptID := script.ID
	if err := s.workerPool.Submit(func() {
		if _, err := s.ttsWorker.ProcessScript(context.Background(), scriptID); err != nil {
			s.logger.ErrorWithFields(err, "Failed to push script into the TTS stage", map[string]interface{}{
				"script_id": scriptID,
			})
		}
	}); err != nil {
		s.logger.Error(err, "Failed to submit TTS dispatch task")
		return nil, err
	}

	return script, nil
}
