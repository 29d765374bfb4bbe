// Package executor hands a report to the rendering engine, either by running
// the engine's command line or by calling its REST endpoint, and reports what
// happened as a Result.
package executor

import (
	"context"
	"errors"
	"time"

	"github.com/dharsanguruparan/rreport/internal/report"
)

// ErrExecution is returned when the engine ran but did not render the report.
var ErrExecution = errors.New("report execution failed")

// Result describes one engine run. CLI runs fill ExitCode, REST runs fill
// Status. Report holds the rendered bytes when they could be collected.
type Result struct {
	ExitCode int
	Status   int
	Messages []string
	Duration time.Duration
	Report   []byte
}

// OK reports whether the engine signalled success.
func (r *Result) OK() bool {
	if r.Status != 0 {
		return r.Status >= 200 && r.Status < 300
	}
	return r.ExitCode == 0
}

// Executor renders reports.
type Executor interface {
	Execute(ctx context.Context, r *report.Report) (*Result, error)
}
