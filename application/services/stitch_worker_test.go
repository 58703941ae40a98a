package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type fakeConcatenator struct {
	mu    sync.Mutex
	order []string
	err   error
}

func (f *fakeConcatenator) Concatenate(fileNames []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.order = append([]string(nil), fileNames...)
	out := filepath.Join(os.TempDir(), uuid.NewString()+".mp4")
	if err := os.WriteFile(out, []byte("episode"), 0o600); err != nil {
		return "", err
	}
	for _, name := range fileNames {
		_ = os.Remove(name)
	}
	return out, nil
}

func TestStitchWorkerProducesEpisodeInLineOrder(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	concat := &fakeConcatenator{}
	registry := &fakeRegistry{}
	worker := NewStitchWorker(nopLogger{}, store, media, concat, registry, testPipelineConfig())

	script, lines := seedPipelineScript(t, store, 3)
	ctx := context.Background()

	// Lines finish out of order; the episode must still follow line order.
	for _, idx := range []int{2, 0, 1} {
		line := lines[idx]
		videoKey := "video-" + line.ID
		finishLineThroughAvatar(t, store, line.ID, videoKey)
		if _, err := media.Put(ctx, videoKey, []byte("clip")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.AdmitScriptForStitch(ctx, script.ID); err != nil {
		t.Fatal(err)
	}

	if err := worker.Stitch(ctx, script.ID); err != nil {
		t.Fatalf("Stitch: %v", err)
	}

	if len(concat.order) != 3 {
		t.Fatalf("concatenated %d files, want 3", len(concat.order))
	}
	for i, line := range lines {
		if !strings.Contains(concat.order[i], line.ID) {
			t.Errorf("position %d holds %q, want line %s", i, concat.order[i], line.ID)
		}
	}

	got, err := store.GetScript(ctx, script.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.ScriptComplete {
		t.Errorf("script status = %q, want %q", got.Status, domain.ScriptComplete)
	}
	if got.EpisodeKey == "" || !strings.HasPrefix(got.EpisodeKey, "episodes/"+script.ID+"/") {
		t.Errorf("EpisodeKey = %q", got.EpisodeKey)
	}
	if !media.has(got.EpisodeKey) {
		t.Error("episode artifact not stored")
	}

	if len(registry.records) != 1 {
		t.Fatalf("registry records = %d, want 1", len(registry.records))
	}
	if registry.records[0].LineCount != 3 {
		t.Errorf("registry LineCount = %d, want 3", registry.records[0].LineCount)
	}
}

func TestStitchWorkerFailsOnMissingVideo(t *testing.T) {
	store := newPipelineStore(t)
	concat := &fakeConcatenator{}
	worker := NewStitchWorker(nopLogger{}, store, newFakeMediaStore(), concat, &fakeRegistry{}, testPipelineConfig())

	script, lines := seedPipelineScript(t, store, 2)
	ctx := context.Background()
	finishLineThroughAvatar(t, store, lines[0].ID, "v0")
	// lines[1] never finished its avatar stage.
	if _, err := store.AdmitScriptForStitch(ctx, script.ID); err != nil {
		t.Fatal(err)
	}

	if err := worker.Stitch(ctx, script.ID); err != nil {
		t.Fatalf("precondition failures must be recorded, not returned: %v", err)
	}

	got, err := store.GetScript(ctx, script.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.ScriptStitchingFailed {
		t.Errorf("script status = %q, want %q", got.Status, domain.ScriptStitchingFailed)
	}
	if got.ErrorMessage == "" {
		t.Error("failure reason not recorded")
	}
	if len(concat.order) != 0 {
		t.Error("nothing may be concatenated on a precondition failure")
	}
}

func TestStitchWorkerIgnoresUnadmittedScript(t *testing.T) {
	store := newPipelineStore(t)
	concat := &fakeConcatenator{}
	worker := NewStitchWorker(nopLogger{}, store, newFakeMediaStore(), concat, &fakeRegistry{}, testPipelineConfig())

	script, _ := seedPipelineScript(t, store, 1)

	if err := worker.Stitch(context.Background(), script.ID); err != nil {
		t.Fatalf("Stitch: %v", err)
	}

	got, err := store.GetScript(context.Background(), script.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.ScriptPending {
		t.Errorf("unadmitted script must be untouched, status = %q", got.Status)
	}
}

func TestStitchWorkerToleratesRegistryFailure(t *testing.T) {
	store := newPipelineStore(t)
	media := newFakeMediaStore()
	registry := &fakeRegistry{err: domain.TransientError("dynamo throttled")}
	worker := NewStitchWorker(nopLogger{}, store, media, &fakeConcatenator{}, registry, testPipelineConfig())

	script, lines := seedPipelineScript(t, store, 1)
	ctx := context.Background()
	videoKey := "video-" + lines[0].ID
	finishLineThroughAvatar(t, store, lines[0].ID, videoKey)
	if _, err := media.Put(ctx, videoKey, []byte("clip")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AdmitScriptForStitch(ctx, script.ID); err != nil {
		t.Fatal(err)
	}

	if err := worker.Stitch(ctx, script.ID); err != nil {
		t.Fatalf("registry trouble must not fail the episode: %v", err)
	}

	got, err := store.GetScript(ctx, script.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.ScriptComplete {
		t.Errorf("script status = %q, want %q", got.Status, domain.ScriptComplete)
	}
}
