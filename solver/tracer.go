package solver

import (
	"fmt"
	"io"

	"github.com/go-air/gini/z"
)

// SearchPosition is a snapshot of search state handed to a Tracer: the
// decisions on the current path and the reasons behind the most recent
// conflict, if any. It is produced by Engine on each call into the tracer
// and is only valid for the duration of that call.
type SearchPosition interface {
	// DecisionLevel is the number of open decision levels.
	DecisionLevel() int
	// Decisions returns the decision literal opening each currently open
	// level, outermost first.
	Decisions() []z.Lit
	// Conflict returns the clause derived from the most recent conflict,
	// or nil if the last step did not conflict.
	Conflict() []z.Lit
}

// Tracer observes search progress. It is an injection point for
// diagnostics, not part of the solving algorithm: DefaultTracer discards
// everything, LoggingTracer writes a human-readable trace.
type Tracer interface {
	Trace(p SearchPosition)
}

// DefaultTracer discards every trace event.
type DefaultTracer struct{}

// Trace implements Tracer.
func (DefaultTracer) Trace(_ SearchPosition) {}

// LoggingTracer writes one block per trace event to Writer, listing the
// open decisions and, if present, the conflict clause that ended the step.
type LoggingTracer struct {
	Writer io.Writer
}

// Trace implements Tracer.
func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "--- level %d\n", p.DecisionLevel())
	for i, lit := range p.Decisions() {
		fmt.Fprintf(t.Writer, "decision[%d]: %s\n", i, lit)
	}
	if c := p.Conflict(); c != nil {
		fmt.Fprintf(t.Writer, "conflict: %v\n", c)
	}
}
