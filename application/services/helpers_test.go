package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
	"github.com/parthmodi152/podcast-workflow-mvp/infrastructure/adapters"
)

// inlineDispatcher runs tasks synchronously so tests observe every downstream
// effect before asserting.
type inlineDispatcher struct{}

func (inlineDispatcher) Submit(task func()) error {
	task()
	return nil
}

// goDispatcher runs tasks concurrently, for code paths that would deadlock on
// inline execution (channel fan-in).
type goDispatcher struct{}

func (goDispatcher) Submit(task func()) error {
	go task()
	return nil
}

// boundedDispatcher mimics a fixed-size pool: Submit blocks until a slot
// frees, the way ants does at capacity.
type boundedDispatcher struct {
	slots chan struct{}
}

func newBoundedDispatcher(capacity int) *boundedDispatcher {
	return &boundedDispatcher{slots: make(chan struct{}, capacity)}
}

func (d *boundedDispatcher) Submit(task func()) error {
	d.slots <- struct{}{}
	go func() {
		defer func() { <-d.slots }()
		task()
	}()
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string)                                           {}
func (nopLogger) InfoWithFields(string, map[string]interface{})         {}
func (nopLogger) Error(error, string)                                   {}
func (nopLogger) ErrorWithFields(error, string, map[string]interface{}) {}
func (nopLogger) Debug(string)                                          {}
func (nopLogger) DebugWithFields(string, map[string]interface{})        {}
func (nopLogger) Warn(string)                                           {}
func (nopLogger) WarnWithFields(string, map[string]interface{})         {}

type fakeMediaStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	putErr error
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{blobs: make(map[string][]byte)}
}

func (f *fakeMediaStore) Put(_ context.Context, key string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.blobs[key] = append([]byte(nil), content...)
	return key, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}

func (f *fakeMediaStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.blobs[key]
	if !ok {
		return nil, domain.InputError("no blob at %s", key)
	}
	return append([]byte(nil), blob...), nil
}

func (f *fakeMediaStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[key]
	return ok
}

type fakeSynthesizer struct {
	mu       sync.Mutex
	calls    int
	failures int
	err      error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, req outbound.SynthesizeRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, domain.TransientError("synthesizer unavailable")
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("audio:" + req.Text), nil
}

// fakeRenderer serves a scripted sequence of job statuses; once the sequence
// is exhausted the last status repeats.
type fakeRenderer struct {
	mu           sync.Mutex
	statuses     []domain.AvatarJobStatus
	statusCalls  int
	uploads      []outbound.UploadAssetRequest
	submissions  []outbound.SubmitGenerationRequest
	submitErr    error
	downloadErr  error
	videoPayload []byte
}

func (f *fakeRenderer) UploadAsset(_ context.Context, req outbound.UploadAssetRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, req)
	return "asset-" + req.Name, nil
}

func (f *fakeRenderer) SubmitGeneration(_ context.Context, req outbound.SubmitGenerationRequest) (*outbound.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submissions = append(f.submissions, req)
	return &outbound.GenerationJob{
		GenerationID: "gen-" + uuid.NewString(),
		AssetID:      "asset-" + uuid.NewString(),
	}, nil
}

func (f *fakeRenderer) JobStatus(_ context.Context, _ string) (*domain.AvatarJobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.statusCalls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.statusCalls++
	status := f.statuses[idx]
	return &status, nil
}

func (f *fakeRenderer) Download(_ context.Context, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	if f.videoPayload != nil {
		return f.videoPayload, nil
	}
	return []byte("video"), nil
}

type fakeRegistry struct {
	mu      sync.Mutex
	records []outbound.EpisodeRecord
	err     error
}

func (f *fakeRegistry) Record(_ context.Context, rec outbound.EpisodeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type fakeDialogueGenerator struct {
	lines []domain.DialogueLine
	err   error
}

func (f *fakeDialogueGenerator) Generate(_ context.Context, _ outbound.GenerateDialogueRequest) ([]domain.DialogueLine, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lines, nil
}

type fakeGate struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeGate) Evaluate(_ context.Context, scriptID string) (*inbound.GateReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scriptID)
	return &inbound.GateReport{}, nil
}

func (f *fakeGate) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeStitchWorker struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeStitchWorker) Stitch(_ context.Context, scriptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scriptID)
	return nil
}

func (f *fakeStitchWorker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePoller struct {
	mu      sync.Mutex
	results map[string]*inbound.AvatarCheckResult
	errs    map[string]error
	calls   []string
}

func (f *fakePoller) CheckLine(_ context.Context, lineID string) (*inbound.AvatarCheckResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lineID)
	if err, ok := f.errs[lineID]; ok {
		return nil, err
	}
	if result, ok := f.results[lineID]; ok {
		return result, nil
	}
	return &inbound.AvatarCheckResult{Status: domain.AvatarRunning}, nil
}

type fakeVoiceCloner struct {
	mu      sync.Mutex
	names   []string
	samples int
	err     error
}

func (f *fakeVoiceCloner) CreateClone(_ context.Context, name string, samples []outbound.VoiceSample) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.names = append(f.names, name)
	f.samples += len(samples)
	return "voice-" + name, nil
}

func newPipelineStore(t *testing.T) *adapters.SQLitePipelineStore {
	t.Helper()
	store, err := adapters.NewSQLitePipelineStore(&config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "pipeline.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLitePipelineStore: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testPipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		WorkerPoolSize:        4,
		RetryMaxAttempts:      3,
		RetryDelay:            0,
		RetryBackoffFactor:    1,
		AvatarPollInterval:    0,
		AvatarMaxPollAttempts: 5,
		StitchMaxAttempts:     2,
		ReconcileInterval:     0,
	}
}

func seedPipelineScript(t *testing.T, store outbound.PipelineStorePort, lineCount int) (*domain.Script, []*domain.Line) {
	t.Helper()
	script := &domain.Script{
		ID:            uuid.NewString(),
		Title:         "episode under test",
		LengthMinutes: 3,
	}
	var lines []*domain.Line
	for i := 0; i < lineCount; i++ {
		lines = append(lines, &domain.Line{
			ID:          uuid.NewString(),
			ScriptID:    script.ID,
			SpeakerRole: "host",
			VoiceID:     "voice-1",
			Text:        "hello",
			LineOrder:   i,
		})
	}
	if err := store.CreateScript(context.Background(), script, lines); err != nil {
		t.Fatalf("CreateScript: %v", err)
	}
	return script, lines
}

func finishLineThroughAvatar(t *testing.T, store outbound.PipelineStorePort, lineID, videoKey string) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.ClaimLineTTS(ctx, lineID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CompleteLineTTS(ctx, lineID, "audio-"+lineID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ClaimLineAvatar(ctx, lineID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CompleteLineAvatar(ctx, lineID, videoKey); err != nil {
		t.Fatal(err)
	}
}
