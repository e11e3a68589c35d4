package solver_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannem1337/huub-solver/oracle"
	"github.com/dannem1337/huub-solver/solver"
)

func TestDefaultTracerDiscardsTrace(t *testing.T) {
	// DefaultTracer must not panic and must produce no observable output;
	// exercised implicitly by every other test that never sets WithTracer.
	var tr solver.DefaultTracer
	tr.Trace(nil)
}

func TestLoggingTracerWritesDecisionsOnSolve(t *testing.T) {
	var buf bytes.Buffer
	e := solver.NewEngine(oracle.NewReference(), solver.WithTracer(solver.LoggingTracer{Writer: &buf}))
	x := e.NewIVar(solver.NewIntSet(0, 1))
	_ = x

	_, err := e.Solve()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "level")
}
