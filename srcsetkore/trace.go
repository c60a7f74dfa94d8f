package srcsetkore

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Tracer receives the events of evaluations, builds and cleaning. Args are
// alternating keys and values like with [log/slog].
type Tracer interface {
	Debug(t *Trace, msg string, args ...any)
	Info(t *Trace, msg string, args ...any)
	Warn(t *Trace, msg string, args ...any)

	StartPlan(t *Trace, p *Plan, activity string)
	DonePlan(t *Trace, p *Plan, activity string, dt time.Duration)

	CheckTask(t *Trace, task *Task)
	RunTask(t *Trace, task *Task)
	RemoveArtifact(t *Trace, a *Artifact)
}

type TraceLog int

var DefaultTraceLog TraceLog = TraceWarn

const (
	TraceWarn TraceLog = (1 << iota)
	TraceInfo
	TraceDebug
)

// Trace is a stack of the plans and tasks currently worked on. All methods
// are safe to call on a nil *Trace; the events are dropped then.
type Trace struct {
	root *traceRoot
	up   *Trace
	obj  any
	id   uint64
}

func NewTrace(ctx context.Context, t Tracer) *Trace {
	if ctx == nil {
		ctx = context.Background()
	}
	root := &traceRoot{ctx: ctx, tr: t}
	return &Trace{root: root}
}

func (t *Trace) Ctx() context.Context {
	if t == nil {
		return context.Background()
	}
	return t.root.ctx
}

func (t *Trace) tracer() Tracer {
	if t == nil {
		return nil
	}
	return t.root.tr
}

func (t *Trace) Debug(msg string, args ...any) {
	if tr := t.tracer(); tr != nil {
		tr.Debug(t, msg, args...)
	}
}

func (t *Trace) Info(msg string, args ...any) {
	if tr := t.tracer(); tr != nil {
		tr.Info(t, msg, args...)
	}
}

func (t *Trace) Warn(msg string, args ...any) {
	if tr := t.tracer(); tr != nil {
		tr.Warn(t, msg, args...)
	}
}

func (t *Trace) startPlan(p *Plan, activity string) {
	if tr := t.tracer(); tr != nil {
		tr.StartPlan(t, p, activity)
	}
}

func (t *Trace) donePlan(p *Plan, activity string, dt time.Duration) {
	if tr := t.tracer(); tr != nil {
		tr.DonePlan(t, p, activity, dt)
	}
}

func (t *Trace) checkTask(task *Task) {
	if tr := t.tracer(); tr != nil {
		tr.CheckTask(t, task)
	}
}

func (t *Trace) runTask(task *Task) {
	if tr := t.tracer(); tr != nil {
		tr.RunTask(t, task)
	}
}

func (t *Trace) removeArtifact(a *Artifact) {
	if tr := t.tracer(); tr != nil {
		tr.RemoveArtifact(t, a)
	}
}

// Build returns the ID of the build currently running, or 0.
func (t *Trace) Build() uint64 {
	if t == nil {
		return 0
	}
	return t.root.bid
}

// TopID returns the ID of the innermost frame, or 0.
func (t *Trace) TopID() uint64 {
	if t == nil {
		return 0
	}
	return t.id
}

func (t *Trace) TopTag() string {
	if t == nil {
		return ""
	}
	switch t.obj.(type) {
	case *Task:
		return fmt.Sprintf("[%d]", t.id)
	case *Plan:
		return fmt.Sprintf("{%d}", t.id)
	case nil:
		return ""
	}
	return fmt.Sprintf("!%T!", t.obj)
}

func (t *Trace) Path() string {
	var sb strings.Builder
	sb.WriteByte('<')
	for ; t != nil; t = t.up {
		sb.WriteString(t.TopTag())
	}
	sb.WriteByte('>')
	return sb.String()
}

func (t *Trace) String() string {
	if b := t.Build(); b > 0 {
		return fmt.Sprintf("%d@%s", b, t.Path())
	}
	return t.Path()
}

func (t *Trace) push(obj any) *Trace {
	if t == nil {
		return nil
	}
	return &Trace{
		root: t.root,
		up:   t,
		obj:  obj,
		id:   t.root.idSeq.Add(1),
	}
}

func (t *Trace) pushPlan(p *Plan) *Trace { return t.push(p) }

func (t *Trace) pushTask(task *Task) *Trace { return t.push(task) }

func (t *Trace) setBuild(bid uint64) {
	if t != nil {
		t.root.bid = bid
	}
}

type traceRoot struct {
	ctx   context.Context
	tr    Tracer
	bid   uint64
	idSeq atomic.Uint64
}
