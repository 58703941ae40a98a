package services

import (
	"context"
	"sync"
	"testing"

	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

func TestGateDoesNotAdmitWithUnfinishedLines(t *testing.T) {
	store := newPipelineStore(t)
	worker := &fakeStitchWorker{}
	gate := NewStitchGate(nopLogger{}, store, worker, inlineDispatcher{})

	_, lines := seedPipelineScript(t, store, 3)
	finishLineThroughAvatar(t, store, lines[0].ID, "v0")

	report, err := gate.Evaluate(context.Background(), lines[0].ScriptID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Ready || report.Admitted {
		t.Errorf("gate must not admit with %d/%d lines done", report.Done, report.Total)
	}
	if worker.callCount() != 0 {
		t.Error("stitch must not be dispatched")
	}
}

func TestGateAdmitsOnceWhenAllLinesDone(t *testing.T) {
	store := newPipelineStore(t)
	worker := &fakeStitchWorker{}
	gate := NewStitchGate(nopLogger{}, store, worker, inlineDispatcher{})

	script, lines := seedPipelineScript(t, store, 2)
	for _, line := range lines {
		finishLineThroughAvatar(t, store, line.ID, "v-"+line.ID)
	}

	report, err := gate.Evaluate(context.Background(), script.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !report.Ready || !report.Admitted {
		t.Fatalf("report = %+v, want ready and admitted", report)
	}

	// Redundant evaluations are safe and never dispatch again.
	report, err = gate.Evaluate(context.Background(), script.ID)
	if err != nil {
		t.Fatal(err)
	}
	if report.Admitted {
		t.Error("second evaluation must not admit")
	}
	if worker.callCount() != 1 {
		t.Errorf("stitch dispatches = %d, want 1", worker.callCount())
	}
}

func TestGateNeverAdmitsZeroLineScript(t *testing.T) {
	store := newPipelineStore(t)
	worker := &fakeStitchWorker{}
	gate := NewStitchGate(nopLogger{}, store, worker, inlineDispatcher{})

	script, _ := seedPipelineScript(t, store, 0)

	report, err := gate.Evaluate(context.Background(), script.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Ready || report.Admitted {
		t.Error("a script with no lines must never be admitted")
	}
}

func TestGateConcurrentEvaluationsAdmitExactlyOnce(t *testing.T) {
	store := newPipelineStore(t)
	worker := &fakeStitchWorker{}
	gate := NewStitchGate(nopLogger{}, store, worker, inlineDispatcher{})

	script, lines := seedPipelineScript(t, store, 3)
	for _, line := range lines {
		finishLineThroughAvatar(t, store, line.ID, "v-"+line.ID)
	}

	const evaluators = 8
	var wg sync.WaitGroup
	admissions := make(chan bool, evaluators)
	wg.Add(evaluators)
	for i := 0; i < evaluators; i++ {
		go func() {
			defer wg.Done()
			report, err := gate.Evaluate(context.Background(), script.ID)
			if err != nil {
				t.Errorf("Evaluate: %v", err)
				return
			}
			admissions <- report.Admitted
		}()
	}
	wg.Wait()
	close(admissions)

	admitted := 0
	for wasAdmitted := range admissions {
		if wasAdmitted {
			admitted++
		}
	}
	if admitted != 1 {
		t.Errorf("admissions = %d, want exactly 1", admitted)
	}
	if worker.callCount() != 1 {
		t.Errorf("stitch dispatches = %d, want exactly 1", worker.callCount())
	}

	got, err := store.GetScript(context.Background(), script.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.ScriptStitching {
		t.Errorf("script status = %q, want %q", got.Status, domain.ScriptStitching)
	}
}
