package services

import (
	"context"
	"testing"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

func mp3Sample(name string) inbound.VoiceSampleUpload {
	return inbound.VoiceSampleUpload{Name: name, ContentType: "audio/mpeg", Content: []byte("sample")}
}

func TestVoiceManagerCreatesVoiceWithPortrait(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	cloner := &fakeVoiceCloner{}
	manager := NewVoiceManager(nopLogger{}, store, cloner, media)

	view, err := manager.CreateVoice(context.Background(), inbound.CreateVoiceParams{
		Name:     "alice",
		Samples:  []inbound.VoiceSampleUpload{mp3Sample("a.mp3"), mp3Sample("b.mp3")},
		Portrait: &inbound.PortraitUpload{ContentType: "image/png", Content: []byte("img")},
	})
	if err != nil {
		t.Fatalf("CreateVoice: %v", err)
	}

	if view.VoiceID != "voice-alice" {
		t.Errorf("VoiceID = %q, want voice-alice", view.VoiceID)
	}
	if view.PortraitKey != "portraits/voice-alice.png" {
		t.Errorf("PortraitKey = %q, want portraits/voice-alice.png", view.PortraitKey)
	}
	if !media.has("portraits/voice-alice.png") {
		t.Error("portrait not stored")
	}
	if cloner.samples != 2 {
		t.Errorf("cloned samples = %d, want 2", cloner.samples)
	}

	voice, err := store.GetVoice(context.Background(), "voice-alice")
	if err != nil {
		t.Fatal(err)
	}
	if voice == nil || voice.PortraitKey != "portraits/voice-alice.png" {
		t.Errorf("cataloged voice = %+v, want portrait reference persisted", voice)
	}
}

func TestVoiceManagerKeepsVoiceWhenPortraitUploadFails(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	media.putErr = domain.TransientError("storage unavailable")
	manager := NewVoiceManager(nopLogger{}, store, &fakeVoiceCloner{}, media)

	view, err := manager.CreateVoice(context.Background(), inbound.CreateVoiceParams{
		Name:     "bob",
		Samples:  []inbound.VoiceSampleUpload{mp3Sample("a.mp3")},
		Portrait: &inbound.PortraitUpload{ContentType: "image/jpeg", Content: []byte("img")},
	})
	if err != nil {
		t.Fatalf("CreateVoice: %v", err)
	}
	if view.PortraitKey != "" {
		t.Errorf("PortraitKey = %q, want empty after failed upload", view.PortraitKey)
	}

	voice, err := store.GetVoice(context.Background(), "voice-bob")
	if err != nil {
		t.Fatal(err)
	}
	if voice == nil {
		t.Fatal("voice must still be cataloged without its portrait")
	}
}

func TestVoiceManagerRejectsInvalidParams(t *testing.T) {
	manager := NewVoiceManager(nopLogger{}, newPipelineStore(t), &fakeVoiceCloner{}, newFakeMediaStore())

	cases := []struct {
		name   string
		params inbound.CreateVoiceParams
	}{
		{"missing name", inbound.CreateVoiceParams{Samples: []inbound.VoiceSampleUpload{mp3Sample("a.mp3")}}},
		{"no samples", inbound.CreateVoiceParams{Name: "x"}},
		{"bad sample type", inbound.CreateVoiceParams{
			Name:    "x",
			Samples: []inbound.VoiceSampleUpload{{Name: "a.ogg", ContentType: "audio/ogg", Content: []byte("s")}},
		}},
		{"bad portrait type", inbound.CreateVoiceParams{
			Name:     "x",
			Samples:  []inbound.VoiceSampleUpload{mp3Sample("a.mp3")},
			Portrait: &inbound.PortraitUpload{ContentType: "image/gif", Content: []byte("g")},
		}},
	}
	for _, tc := range cases {
		_, err := manager.CreateVoice(context.Background(), tc.params)
		if domain.Classify(err) != domain.FailureInput {
			t.Errorf("%s: err = %v, want input failure", tc.name, err)
		}
	}
}

func TestVoiceManagerSetPortraitReplacesOldImage(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	manager := NewVoiceManager(nopLogger{}, store, &fakeVoiceCloner{}, media)
	ctx := context.Background()

	view, err := manager.CreateVoice(ctx, inbound.CreateVoiceParams{
		Name:     "carol",
		Samples:  []inbound.VoiceSampleUpload{mp3Sample("a.mp3")},
		Portrait: &inbound.PortraitUpload{ContentType: "image/jpeg", Content: []byte("old")},
	})
	if err != nil {
		t.Fatal(err)
	}
	oldKey := view.PortraitKey

	updated, err := manager.SetPortrait(ctx, view.VoiceID, inbound.PortraitUpload{
		ContentType: "image/png",
		Content:     []byte("new"),
	})
	if err != nil {
		t.Fatalf("SetPortrait: %v", err)
	}
	if updated.PortraitKey != "portraits/voice-carol.png" {
		t.Errorf("PortraitKey = %q, want portraits/voice-carol.png", updated.PortraitKey)
	}
	if media.has(oldKey) {
		t.Error("replaced portrait must be removed")
	}
	if !media.has(updated.PortraitKey) {
		t.Error("new portrait not stored")
	}
}

func TestVoiceManagerSetPortraitOnMissingVoice(t *testing.T) {
	manager := NewVoiceManager(nopLogger{}, newPipelineStore(t), &fakeVoiceCloner{}, newFakeMediaStore())

	view, err := manager.SetPortrait(context.Background(), "ghost", inbound.PortraitUpload{
		ContentType: "image/png",
		Content:     []byte("img"),
	})
	if err != nil {
		t.Fatalf("SetPortrait: %v", err)
	}
	if view != nil {
		t.Errorf("view = %+v, want nil for a missing voice", view)
	}
}

func TestVoiceManagerListVoices(t *testing.T) {
	store := newPipelineStore(t)
	manager := NewVoiceManager(nopLogger{}, store, &fakeVoiceCloner{}, newFakeMediaStore())
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if _, err := manager.CreateVoice(ctx, inbound.CreateVoiceParams{
			Name:    name,
			Samples: []inbound.VoiceSampleUpload{mp3Sample("a.mp3")},
		}); err != nil {
			t.Fatal(err)
		}
	}

	views, err := manager.ListVoices(ctx)
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}
}
