package inbound

import "context"

type GateReport struct {
	Total    int
	Done     int
	Ready    bool
	Admitted bool
}

// StitchGatePort is the fan-in gate: it admits a script into the stitch stage
// exactly once, when every line's avatar output is complete. Safe to call
// redundantly from any trigger.
type StitchGatePort interface {
	Evaluate(ctx context.Context, scriptID string) (*GateReport, error)
}

// StitchWorkerPort concatenates all line videos of an admitted script, in
// line order, into the final episode.
type StitchWorkerPort interface {
	Stitch(ctx context.Context, scriptID string) error
}
