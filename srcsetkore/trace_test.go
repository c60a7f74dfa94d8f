package srcsetkore

import (
	"context"
	"strings"
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/testerr"
)

type testTracer struct{ t *testing.T }

var _ Tracer = testTracer{}

func (tr testTracer) Debug(t *Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"srcset-DEBUG:", msg}, args...)...)
}

func (tr testTracer) Info(t *Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"srcset-INFO:", msg}, args...)...)
}

func (tr testTracer) Warn(t *Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"srcset-WARN:", msg}, args...)...)
}

func (tr testTracer) StartPlan(t *Trace, p *Plan, activity string) {
	tr.t.Logf("srcset-StartPlan: %s %s", p, activity)
}

func (tr testTracer) DonePlan(t *Trace, p *Plan, activity string, dt time.Duration) {
	tr.t.Logf("srcset-DonePlan: %s %s %s", p, activity, dt)
}

func (tr testTracer) CheckTask(t *Trace, task *Task) {
	tr.t.Logf("srcset-CheckTask: %s %s", task, t)
}

func (tr testTracer) RunTask(t *Trace, task *Task) {
	tr.t.Logf("srcset-RunTask: %s", task.Describe())
}

func (tr testTracer) RemoveArtifact(t *Trace, a *Artifact) {
	tr.t.Logf("srcset-RemoveArtifact: %s", a.Location())
}

type pathTracer struct {
	testTracer
	paths []string
}

func (tr *pathTracer) CheckTask(t *Trace, task *Task) {
	tr.paths = append(tr.paths, task.Name()+t.String())
}

func TestTrace_nil(t *testing.T) {
	var tr *Trace
	tr.Debug("nothing")
	tr.Warn("nothing")
	if b := tr.Build(); b != 0 {
		t.Errorf("nil trace in build %d", b)
	}
	if p := tr.Path(); p != "<>" {
		t.Errorf("nil trace path '%s'", p)
	}
	if id := tr.TopID(); id != 0 {
		t.Errorf("nil trace top ID %d", id)
	}
	if s := tr.TopTag() + tr.String(); s != "<>" {
		t.Errorf("nil trace tag and string '%s'", s)
	}
	if tr.Ctx() == nil {
		t.Error("nil trace without context")
	}
}

func TestTrace_paths(t *testing.T) {
	ev := NewEvaluation(Config{OutDir: t.TempDir()}, nil)
	testerr.Shall1(ev.Declare("main", DeriveOptions{})).BeNil(t)
	plan := testerr.Shall1(ev.Plan()).BeNil(t)
	ptr := &pathTracer{testTracer: testTracer{t}}
	bd := testerr.Shall1(NewBuilder(
		NewTrace(context.Background(), ptr),
		&Env{Toolchain: new(recToolchain)},
	)).BeNil(t)
	testerr.Shall(bd.Plan(plan)).BeNil(t)
	expect := "build1@<[2]{1}> jar1@<[3][2]{1}> mainJar1@<[4][3][2]{1}> compileMain1@<[5][4][3][2]{1}>"
	if s := strings.Join(ptr.paths, " "); s != expect {
		t.Errorf("trace paths: %s", s)
	}
}
