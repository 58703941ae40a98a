package services

import (
	"context"
	"testing"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type fakeTTSWorker struct {
	scripts []string
}

func (f *fakeTTSWorker) ProcessLine(_ context.Context, _ string) error {
	return nil
}

func (f *fakeTTSWorker) ProcessScript(_ context.Context, scriptID string) (int, error) {
	f.scripts = append(f.scripts, scriptID)
	return 0, nil
}

func creatorParams() inbound.CreateScriptParams {
	return inbound.CreateScriptParams{
		Title:         "the future of sleep",
		LengthMinutes: 5,
		Speakers: []domain.Speaker{
			{Role: "host", Name: "Ana", VoiceID: "voice-host"},
			{Role: "guest", Name: "Bo", VoiceID: "voice-guest", PortraitKey: "portraits/bo.png"},
		},
	}
}

func TestCreatePersistsScriptAndDispatchesTTS(t *testing.T) {
	store := newPipelineStore(t)
	generator := &fakeDialogueGenerator{lines: []domain.DialogueLine{
		{Speaker: "host", Text: "welcome back"},
		{Speaker: "guest", Text: "glad to be here"},
		{Speaker: "host", Text: "let's begin"},
	}}
	tts := &fakeTTSWorker{}
	creator := NewScriptCreator(nopLogger{}, store, generator, tts, inlineDispatcher{})

	script, err := creator.Create(context.Background(), creatorParams())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if script.ID == "" {
		t.Fatal("script has no id")
	}

	lines, err := store.LinesByScript(context.Background(), script.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if lines[0].VoiceID != "voice-host" || lines[1].VoiceID != "voice-guest" {
		t.Error("voices not mapped from speakers")
	}
	if lines[1].PortraitKey != "portraits/bo.png" {
		t.Error("portrait key not carried to the line")
	}
	for i, line := range lines {
		if line.LineOrder != i {
			t.Errorf("lines[%d].LineOrder = %d", i, line.LineOrder)
		}
	}

	if len(tts.scripts) != 1 || tts.scripts[0] != script.ID {
		t.Errorf("tts dispatches = %v, want [%s]", tts.scripts, script.ID)
	}
}

func TestCreateRejectsInvalidParams(t *testing.T) {
	store := newPipelineStore(t)
	creator := NewScriptCreator(nopLogger{}, store, &fakeDialogueGenerator{}, &fakeTTSWorker{}, inlineDispatcher{})

	cases := []struct {
		name   string
		mutate func(*inbound.CreateScriptParams)
	}{
		{"empty title", func(p *inbound.CreateScriptParams) { p.Title = "" }},
		{"no speakers", func(p *inbound.CreateScriptParams) { p.Speakers = nil }},
		{"speaker without voice", func(p *inbound.CreateScriptParams) { p.Speakers[0].VoiceID = "" }},
		{"zero length", func(p *inbound.CreateScriptParams) { p.LengthMinutes = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := creatorParams()
			tc.mutate(&params)
			_, err := creator.Create(context.Background(), params)
			if domain.Classify(err) != domain.FailureInput {
				t.Errorf("expected input error, got %v", err)
			}
		})
	}
}

func TestCreateFailsOnUnknownSpeaker(t *testing.T) {
	store := newPipelineStore(t)
	generator := &fakeDialogueGenerator{lines: []domain.DialogueLine{
		{Speaker: "narrator", Text: "once upon a time"},
	}}
	creator := NewScriptCreator(nopLogger{}, store, generator, &fakeTTSWorker{}, inlineDispatcher{})

	_, err := creator.Create(context.Background(), creatorParams())
	if domain.Classify(err) != domain.FailureInput {
		t.Fatalf("expected input error for unknown speaker, got %v", err)
	}
}

func TestCreatePropagatesGeneratorFailure(t *testing.T) {
	store := newPipelineStore(t)
	generator := &fakeDialogueGenerator{err: domain.ProviderError("model overloaded")}
	tts := &fakeTTSWorker{}
	creator := NewScriptCreator(nopLogger{}, store, generator, tts, inlineDispatcher{})

	_, err := creator.Create(context.Background(), creatorParams())
	if err == nil {
		t.Fatal("expected generation failure to propagate")
	}
	if len(tts.scripts) != 0 {
		t.Error("nothing may be dispatched when generation fails")
	}

	scripts, err := store.ListScripts(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != 0 {
		t.Error("nothing may be persisted when generation fails")
	}
}
