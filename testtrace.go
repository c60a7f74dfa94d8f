package srcset

import (
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

// TestTracer forwards all trace events to the log of a test.
type TestTracer struct{ t testing.TB }

var _ srcsetkore.Tracer = TestTracer{}

func NewTestTracer(t testing.TB) TestTracer { return TestTracer{t} }

func (tr TestTracer) Debug(t *srcsetkore.Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"srcset-DEBUG:", msg}, args...)...)
}

func (tr TestTracer) Info(t *srcsetkore.Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"srcset-INFO:", msg}, args...)...)
}

func (tr TestTracer) Warn(t *srcsetkore.Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"srcset-WARN:", msg}, args...)...)
}

func (tr TestTracer) StartPlan(t *srcsetkore.Trace, p *srcsetkore.Plan, activity string) {
	tr.t.Logf("srcset-StartPlan: %s %s", p, activity)
}

func (tr TestTracer) DonePlan(t *srcsetkore.Trace, p *srcsetkore.Plan, activity string, dt time.Duration) {
	tr.t.Logf("srcset-DonePlan: %s %s %s", p, activity, dt)
}

func (tr TestTracer) CheckTask(t *srcsetkore.Trace, task *srcsetkore.Task) {
	tr.t.Logf("srcset-CheckTask: %s %s", task, t.Path())
}

func (tr TestTracer) RunTask(_ *srcsetkore.Trace, task *srcsetkore.Task) {
	tr.t.Logf("srcset-RunTask: %s", task.Describe())
}

func (tr TestTracer) RemoveArtifact(_ *srcsetkore.Trace, a *srcsetkore.Artifact) {
	tr.t.Logf("srcset-RemoveArtifact: %s", a.Location())
}
