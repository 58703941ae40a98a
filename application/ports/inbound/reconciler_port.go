package inbound

import "context"

type SweepReport struct {
	Processed       int
	Updated         int
	StillProcessing int
	Errors          int
}

// ReconcilerPort is the backstop against silently stalled avatar jobs: it
// re-polls every line stuck in processing with a recorded job handle. One
// line failing must not abort the sweep for the others.
type ReconcilerPort interface {
	Sweep(ctx context.Context) (*SweepReport, error)
	Run(ctx context.Context)
}
