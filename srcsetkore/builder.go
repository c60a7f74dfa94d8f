package srcsetkore

import (
	"errors"
	"fmt"
	"time"
)

// Builder is the reference task runner. It runs the prerequisites of a task
// before the task and every task at most once per build. Tasks run one after
// the other.
type Builder struct {
	trace *Trace
	env   *Env
	bid   uint64 // => Builder must not be used concurrently
}

func NewBuilder(tr *Trace, env *Env) (*Builder, error) {
	if tr == nil {
		return nil, errors.New("no trace for new builder")
	}
	return &Builder{trace: tr, env: env}, nil
}

func (bd *Builder) Trace() *Trace { return bd.trace }

// Plan builds all roots of p.
func (bd *Builder) Plan(p *Plan) error {
	return bd.run(p, p.Roots())
}

// Tasks builds the given tasks which must all belong to the same plan.
func (bd *Builder) Tasks(ts ...*Task) error {
	if len(ts) == 0 {
		return nil
	}
	p := ts[0].plan
	for _, t := range ts[1:] {
		if t.plan != p {
			return fmt.Errorf("task '%s' belongs to another plan than '%s'", t, ts[0])
		}
	}
	return bd.run(p, ts)
}

func (bd *Builder) NamedTasks(p *Plan, names ...string) error {
	var ts []*Task
	for _, n := range names {
		t := p.Task(n)
		if t == nil {
			return fmt.Errorf("no task named '%s'", n)
		}
		ts = append(ts, t)
	}
	return bd.run(p, ts)
}

func (bd *Builder) run(p *Plan, ts []*Task) error {
	bd.bid = p.nextBuild()
	if bd.env == nil {
		bd.env = DefaultEnv(bd.trace)
	}
	start := time.Now()
	bd.trace.setBuild(bd.bid)
	tr := bd.trace.pushPlan(p)
	tr.startPlan(p, "building")
	for _, t := range ts {
		if err := bd.buildTask(tr, t); err != nil {
			return err
		}
	}
	tr.donePlan(p, "building", time.Since(start))
	return nil
}

func (bd *Builder) buildTask(tr *Trace, t *Task) error {
	if t.lastBuild >= bd.bid {
		return nil
	}
	t.lastBuild = bd.bid
	if err := tr.Ctx().Err(); err != nil {
		return err
	}
	tr = tr.pushTask(t)
	tr.checkTask(t)
	for _, pre := range t.prerequisites {
		if err := bd.buildTask(tr, pre); err != nil {
			return err
		}
	}
	if t.Op == nil {
		return nil
	}
	if err := tr.Ctx().Err(); err != nil {
		return err
	}
	tr.runTask(t)
	if err := t.Op.Do(tr.Ctx(), t, bd.env); err != nil {
		return fmt.Errorf("task '%s': %w", t, err)
	}
	return nil
}
