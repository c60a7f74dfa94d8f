package srcsetkore

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// An Operation is what a [Task] does when it runs.
type Operation interface {
	Describe(t *Task) string
	Do(ctx context.Context, t *Task, env *Env) error
}

// A Task is one schedulable step of a [Plan]. Tasks without an operation are
// umbrellas that are done when all their prerequisites are done.
type Task struct {
	Op       Operation
	Unit     *Unit     // nil for umbrellas
	Artifact *Artifact // set for archive tasks

	plan          *Plan
	name          string
	prerequisites []*Task
	dependents    []*Task
	lastBuild     uint64
}

func (t *Task) Name() string { return t.name }

func (t *Task) Plan() *Plan { return t.plan }

func (t *Task) Prerequisites() []*Task { return slices.Clone(t.prerequisites) }

func (t *Task) Dependents() []*Task { return slices.Clone(t.dependents) }

func (t *Task) IsUmbrella() bool { return t.Op == nil }

func (t *Task) String() string { return t.name }

// Describe returns the operation's description or the task name for
// umbrellas.
func (t *Task) Describe() string {
	if t.Op == nil {
		return t.name
	}
	return t.Op.Describe(t)
}

func (t *Task) requires(pre ...*Task) {
	for _, p := range pre {
		if p == nil || p == t || slices.Contains(t.prerequisites, p) {
			continue
		}
		t.prerequisites = append(t.prerequisites, p)
		p.dependents = append(p.dependents, t)
	}
}

// Plan is the task graph handed to a task runner. It is only created from a
// validated evaluation.
type Plan struct {
	graph     *Graph
	tasks     []*Task
	byName    map[string]*Task
	lastBuild uint64
}

func (p *Plan) Graph() *Graph { return p.graph }

// Task returns the task with the given name or nil.
func (p *Plan) Task(name string) *Task { return p.byName[name] }

// Tasks returns all tasks in creation order.
func (p *Plan) Tasks() []*Task { return slices.Clone(p.tasks) }

// Roots returns the tasks no other task depends on.
func (p *Plan) Roots() (roots []*Task) {
	for _, t := range p.tasks {
		if len(t.dependents) == 0 {
			roots = append(roots, t)
		}
	}
	return roots
}

// Compile returns the compile task of u or nil.
func (p *Plan) Compile(u *Unit) *Task { return p.byName[TaskName("compile", u, "")] }

// Archive returns the archive task of a or nil.
func (p *Plan) Archive(a *Artifact) *Task {
	for _, t := range p.tasks {
		if t.Artifact == a {
			return t
		}
	}
	return nil
}

func (p *Plan) String() string { return fmt.Sprintf("plan(%d tasks)", len(p.tasks)) }

func (p *Plan) nextBuild() uint64 {
	p.lastBuild++
	return p.lastBuild
}

func (p *Plan) newTask(name string, op Operation) (*Task, error) {
	if p.byName[name] != nil {
		return nil, invalidf("task '%s' is already planned", name)
	}
	t := &Task{Op: op, plan: p, name: name}
	p.tasks = append(p.tasks, t)
	p.byName[name] = t
	return t, nil
}

// ArchiveTaskName returns names like mainJar, mainSourcesJar and
// mainJavadocJar.
func ArchiveTaskName(a *Artifact) string {
	if c := a.Kind.Classifier(); c != "" {
		return TaskName("", a.Unit, c+"Jar")
	}
	return TaskName("", a.Unit, "jar")
}

// planTasks creates one compile task per unit in build order, the archive
// tasks of arts and the umbrellas [TaskJar] and [TaskBuild]. Units without
// artifacts are built by [TaskBuild] through their compile task.
func planTasks(g *Graph, arts func(*Unit) []*Artifact) (*Plan, error) {
	order, err := g.BuildOrder()
	if err != nil {
		return nil, err
	}
	p := &Plan{graph: g, byName: make(map[string]*Task)}
	for _, u := range order {
		t, err := p.newTask(TaskName("compile", u, ""), compileOp{})
		if err != nil {
			return nil, err
		}
		t.Unit = u
		for _, e := range g.out[u] {
			if e.Channels.Has(ChanOutput) {
				t.requires(p.Compile(e.To))
			}
		}
	}
	umbrellas := make(map[string]*Task)
	for _, name := range []string{TaskJar, TaskBuild} {
		if umbrellas[name], err = p.newTask(name, nil); err != nil {
			return nil, err
		}
	}
	umbrellas[TaskBuild].requires(umbrellas[TaskJar])
	for _, u := range g.reg.units {
		uarts := arts(u)
		if len(uarts) == 0 {
			umbrellas[TaskBuild].requires(p.Compile(u))
			continue
		}
		for _, a := range uarts {
			t, err := p.newTask(ArchiveTaskName(a), archiveOp{})
			if err != nil {
				return nil, err
			}
			t.Unit, t.Artifact = u, a
			switch a.Kind {
			case Binary:
				for _, o := range a.Outputs {
					t.requires(p.Compile(o))
				}
			case Docs:
				t.requires(p.Compile(u))
			}
			for _, trig := range a.Triggers {
				ut := umbrellas[trig]
				if ut == nil {
					return nil, invalidf("artifact %s triggers unknown task '%s'", a, trig)
				}
				ut.requires(t)
			}
		}
	}
	return p, nil
}

var errNoToolchain = errors.New("no toolchain in environment")

type compileOp struct{}

func (compileOp) Describe(t *Task) string {
	return fmt.Sprintf("compile unit '%s'", t.Unit.Name())
}

func (compileOp) Do(ctx context.Context, t *Task, env *Env) error {
	if env.Toolchain == nil {
		return errNoToolchain
	}
	cp, err := t.plan.graph.Classpath(t.Unit, ChanInterface)
	if err != nil {
		return err
	}
	return env.Toolchain.Compile(ctx, t.Unit, cp, env)
}

type archiveOp struct{}

func (archiveOp) Describe(t *Task) string {
	return fmt.Sprintf("archive %s to '%s'", t.Artifact.Kind, t.Artifact.FileName())
}

func (archiveOp) Do(ctx context.Context, t *Task, env *Env) error {
	if env.Toolchain == nil {
		return errNoToolchain
	}
	return env.Toolchain.Archive(ctx, t.Artifact, env)
}
