package services

import (
	"context"
	"testing"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

// jobRecordFailingStore drops the job-handle write, as a crashed or
// unreachable store would mid-submit.
type jobRecordFailingStore struct {
	outbound.PipelineStorePort
}

func (jobRecordFailingStore) SetAvatarJob(context.Context, string, string, string) error {
	return domain.TransientError("store unavailable")
}

func TestAvatarWorkerDrivesJobToCompletion(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	renderer := &fakeRenderer{
		statuses: []domain.AvatarJobStatus{
			{Status: domain.ProviderQueued, Progress: 0.1},
			{Status: domain.ProviderProcessing, Progress: 0.6},
			{Status: domain.ProviderComplete, Progress: 1, URL: "https://provider/video"},
		},
	}
	gate := &fakeGate{}
	poller := NewAvatarPoller(nopLogger{}, store, renderer, media, gate)
	worker := NewAvatarWorker(nopLogger{}, store, renderer, media, poller, testPipelineConfig())

	script, lines := seedPipelineScript(t, store, 1)
	lineID := lines[0].ID
	ctx := context.Background()

	if _, err := store.ClaimLineTTS(ctx, lineID); err != nil {
		t.Fatal(err)
	}
	audioKey := "scripts/" + script.ID + "/audio/" + lineID + ".mp3"
	if _, err := media.Put(ctx, audioKey, []byte("audio")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CompleteLineTTS(ctx, lineID, audioKey); err != nil {
		t.Fatal(err)
	}

	if err := worker.ProcessLine(ctx, lineID); err != nil {
		t.Fatalf("ProcessLine: %v", err)
	}

	line, err := store.GetLine(ctx, lineID)
	if err != nil {
		t.Fatal(err)
	}
	if line.AvatarStatus != domain.AvatarComplete {
		t.Fatalf("AvatarStatus = %q, want %q", line.AvatarStatus, domain.AvatarComplete)
	}
	wantVideoKey := "scripts/" + script.ID + "/video/" + lineID + ".mp4"
	if line.VideoKey != wantVideoKey {
		t.Errorf("VideoKey = %q, want %q", line.VideoKey, wantVideoKey)
	}
	if !media.has(wantVideoKey) {
		t.Error("video artifact not stored")
	}
	if line.AvatarJobID == "" {
		t.Error("job handle not recorded")
	}
	if gate.callCount() != 1 {
		t.Errorf("gate evaluations = %d, want 1", gate.callCount())
	}
	if len(renderer.uploads) != 1 {
		t.Errorf("uploads = %d, want 1 (audio only, no portrait)", len(renderer.uploads))
	}
}

func TestAvatarWorkerUploadsPortraitWhenPresent(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	renderer := &fakeRenderer{
		statuses: []domain.AvatarJobStatus{
			{Status: domain.ProviderComplete, Progress: 1, URL: "https://provider/video"},
		},
	}
	poller := NewAvatarPoller(nopLogger{}, store, renderer, media, &fakeGate{})
	worker := NewAvatarWorker(nopLogger{}, store, renderer, media, poller, testPipelineConfig())

	ctx := context.Background()
	script := &domain.Script{ID: "script-portrait", Title: "t", LengthMinutes: 1}
	line := &domain.Line{
		ID:          "line-portrait",
		ScriptID:    script.ID,
		SpeakerRole: "host",
		VoiceID:     "voice-1",
		Text:        "hello",
		PortraitKey: "portraits/host.png",
	}
	if err := store.CreateScript(ctx, script, []*domain.Line{line}); err != nil {
		t.Fatal(err)
	}
	if _, err := media.Put(ctx, "portraits/host.png", []byte("portrait")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ClaimLineTTS(ctx, line.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := media.Put(ctx, "audio-key", []byte("audio")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CompleteLineTTS(ctx, line.ID, "audio-key"); err != nil {
		t.Fatal(err)
	}

	if err := worker.ProcessLine(ctx, line.ID); err != nil {
		t.Fatalf("ProcessLine: %v", err)
	}

	if len(renderer.uploads) != 2 {
		t.Fatalf("uploads = %d, want audio and portrait", len(renderer.uploads))
	}
	if len(renderer.submissions) != 1 {
		t.Fatal("expected one generation submission")
	}
	if renderer.submissions[0].ImageAssetID == "" {
		t.Error("portrait keyframe not passed to the provider")
	}
}

func TestAvatarWorkerTimesOutAfterPollBudget(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	renderer := &fakeRenderer{
		statuses: []domain.AvatarJobStatus{
			{Status: domain.ProviderProcessing, Progress: 0.5},
		},
	}
	poller := NewAvatarPoller(nopLogger{}, store, renderer, media, &fakeGate{})
	worker := NewAvatarWorker(nopLogger{}, store, renderer, media, poller, testPipelineConfig())

	_, lines := seedPipelineScript(t, store, 1)
	lineID := lines[0].ID
	ctx := context.Background()

	if _, err := store.ClaimLineTTS(ctx, lineID); err != nil {
		t.Fatal(err)
	}
	if _, err := media.Put(ctx, "audio-key", []byte("audio")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CompleteLineTTS(ctx, lineID, "audio-key"); err != nil {
		t.Fatal(err)
	}

	if err := worker.ProcessLine(ctx, lineID); err != nil {
		t.Fatalf("poll timeout must be recorded, not returned: %v", err)
	}

	line, err := store.GetLine(ctx, lineID)
	if err != nil {
		t.Fatal(err)
	}
	if line.AvatarStatus != domain.AvatarFailed {
		t.Errorf("AvatarStatus = %q, want %q", line.AvatarStatus, domain.AvatarFailed)
	}
	if line.ErrorMessage == "" {
		t.Error("timeout reason not recorded")
	}
}

// A submitted generation whose handle cannot be persisted must fail the
// line: a processing line with no job id is invisible to the reconciler
// sweep and would otherwise be stuck forever.
func TestAvatarWorkerFailsLineWhenJobHandleIsLost(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	renderer := &fakeRenderer{
		statuses: []domain.AvatarJobStatus{
			{Status: domain.ProviderComplete, Progress: 1, URL: "https://provider/video"},
		},
	}
	poller := NewAvatarPoller(nopLogger{}, store, renderer, media, &fakeGate{})
	worker := NewAvatarWorker(nopLogger{}, jobRecordFailingStore{store}, renderer, media, poller, testPipelineConfig())

	_, lines := seedPipelineScript(t, store, 1)
	lineID := lines[0].ID
	ctx := context.Background()

	if _, err := store.ClaimLineTTS(ctx, lineID); err != nil {
		t.Fatal(err)
	}
	if _, err := media.Put(ctx, "audio-key", []byte("audio")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CompleteLineTTS(ctx, lineID, "audio-key"); err != nil {
		t.Fatal(err)
	}

	if err := worker.ProcessLine(ctx, lineID); err != nil {
		t.Fatalf("handle loss must be recorded, not returned: %v", err)
	}

	line, err := store.GetLine(ctx, lineID)
	if err != nil {
		t.Fatal(err)
	}
	if line.AvatarStatus != domain.AvatarFailed {
		t.Errorf("AvatarStatus = %q, want %q", line.AvatarStatus, domain.AvatarFailed)
	}
	if line.ErrorMessage == "" {
		t.Error("failure reason not recorded")
	}
}

func TestAvatarWorkerSkipsLineWithoutClaim(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	renderer := &fakeRenderer{statuses: []domain.AvatarJobStatus{{Status: domain.ProviderComplete, URL: "u"}}}
	poller := NewAvatarPoller(nopLogger{}, store, renderer, media, &fakeGate{})
	worker := NewAvatarWorker(nopLogger{}, store, renderer, media, poller, testPipelineConfig())

	_, lines := seedPipelineScript(t, store, 1)

	// Line is still tts-pending, so the avatar claim must lose.
	if err := worker.ProcessLine(context.Background(), lines[0].ID); err != nil {
		t.Fatalf("ProcessLine: %v", err)
	}
	if len(renderer.submissions) != 0 {
		t.Error("no generation may be submitted without a claim")
	}
}
