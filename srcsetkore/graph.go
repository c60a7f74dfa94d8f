package srcsetkore

import (
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Channel is a set of dependency propagation channels.
type Channel uint8

const (
	// The child sees the compiled output of the parent.
	ChanOutput Channel = 1 << iota

	// Consumers of the child also see the parent's exported interface.
	ChanInterface

	// Consumers of the child also get the parent at runtime.
	ChanRuntime

	chanAll = ChanOutput | ChanInterface | ChanRuntime
)

// Has reports whether c contains all channels of d.
func (c Channel) Has(d Channel) bool { return c&d == d }

func (c Channel) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	if c.Has(ChanOutput) {
		parts = append(parts, "output")
	}
	if c.Has(ChanInterface) {
		parts = append(parts, "interface")
	}
	if c.Has(ChanRuntime) {
		parts = append(parts, "runtime")
	}
	return strings.Join(parts, "|")
}

// Policy selects the channels propagated by [Graph.Extend].
type Policy Channel

const (
	// Plain extension makes the parent's compiled output visible to the child
	// without re-exporting it to the child's consumers.
	PolicyPlain = Policy(ChanOutput)

	// Library extension additionally propagates the interface and runtime
	// channels, so consumers of the child transitively receive the parent.
	PolicyLibrary = Policy(ChanOutput | ChanInterface | ChanRuntime)
)

func (p Policy) Channels() Channel { return Channel(p) }

func (p Policy) String() string {
	switch p {
	case PolicyPlain:
		return "plain"
	case PolicyLibrary:
		return "library"
	}
	return Channel(p).String()
}

// An Edge makes From depend on To.
type Edge struct {
	From, To *Unit
	Channels Channel
}

const classpathMemoSize = 1024

type memoKey struct {
	unit uint
	ch   Channel
}

// Graph is the dependency graph between the units of one [Registry]. It is
// kept acyclic at all times.
type Graph struct {
	reg   *Registry
	edges []*Edge
	out   map[*Unit][]*Edge
	memo  *lru.Cache[memoKey, []*Unit]
}

func NewGraph(reg *Registry) *Graph {
	memo, err := lru.New[memoKey, []*Unit](classpathMemoSize)
	if err != nil {
		panic(err) // only for size <= 0
	}
	return &Graph{
		reg:  reg,
		out:  make(map[*Unit][]*Edge),
		memo: memo,
	}
}

func (g *Graph) Registry() *Registry { return g.reg }

// Edges returns all edges in declaration order.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// Parents returns the edges from u to its parents in declaration order.
func (g *Graph) Parents(u *Unit) []*Edge { return slices.Clone(g.out[u]) }

// Extend adds one edge from u to each of the parents in order. The channels
// of the edges are selected by policy. Extending u by a parent twice merges
// the channels into the existing edge. If any of the edges would close a
// cycle, nothing is added and the error names the cycle.
func (g *Graph) Extend(u *Unit, parents []*Unit, policy Policy) error {
	if err := g.reg.owns(u); err != nil {
		return err
	}
	if err := g.reg.owns(parents...); err != nil {
		return err
	}
	if policy.Channels()&chanAll == 0 {
		return invalidf("extending '%s' without channels", u.name)
	}
	for _, p := range parents {
		if p == u {
			return configError(ErrCyclicDependency, u.name, u.name)
		}
		if path := g.path(p, u); path != nil {
			cycle := append([]string{u.name}, unitNames(path)...)
			return configError(ErrCyclicDependency, cycle...)
		}
	}
	for _, p := range parents {
		if e := g.edge(u, p); e != nil {
			e.Channels |= policy.Channels()
			continue
		}
		e := &Edge{From: u, To: p, Channels: policy.Channels()}
		g.edges = append(g.edges, e)
		g.out[u] = append(g.out[u], e)
	}
	g.memo.Purge()
	return nil
}

func (g *Graph) edge(from, to *Unit) *Edge {
	for _, e := range g.out[from] {
		if e.To == to {
			return e
		}
	}
	return nil
}

// path returns the units on a path from one unit to another, both included,
// or nil if to is not reachable.
func (g *Graph) path(from, to *Unit) []*Unit {
	seen := bitset.New(uint(g.reg.Len()))
	var walk func(u *Unit) []*Unit
	walk = func(u *Unit) []*Unit {
		if u == to {
			return []*Unit{u}
		}
		seen.Set(u.idx)
		for _, e := range g.out[u] {
			if seen.Test(e.To.idx) {
				continue
			}
			if p := walk(e.To); p != nil {
				return append([]*Unit{u}, p...)
			}
		}
		return nil
	}
	return walk(from)
}

// Classpath returns the units visible to u for channel ch, each exactly once,
// in depth-first declaration order. All direct parents of u are visible.
// Beyond them, a parent's own parents are visible only through edges that
// carry ch.
func (g *Graph) Classpath(u *Unit, ch Channel) ([]*Unit, error) {
	if err := g.reg.owns(u); err != nil {
		return nil, err
	}
	key := memoKey{unit: u.idx, ch: ch}
	if cp, ok := g.memo.Get(key); ok {
		return slices.Clone(cp), nil
	}
	n := uint(g.reg.Len())
	t := traversal{
		g:       g,
		ch:      ch,
		visited: bitset.New(n),
		active:  bitset.New(n),
	}
	t.visited.Set(u.idx)
	if err := t.parents(u, true); err != nil {
		return nil, err
	}
	g.memo.Add(key, t.res)
	return slices.Clone(t.res), nil
}

// Visible returns the classpath of u for channel ch keyed by artifact name.
// If units on the classpath share an artifact name, the one declared later
// wins.
func (g *Graph) Visible(u *Unit, ch Channel) (map[string]*Unit, error) {
	cp, err := g.Classpath(u, ch)
	if err != nil {
		return nil, err
	}
	res := make(map[string]*Unit, len(cp))
	for _, v := range cp {
		res[v.ArtifactName()] = v
	}
	return res, nil
}

type traversal struct {
	g       *Graph
	ch      Channel
	visited *bitset.BitSet
	active  *bitset.BitSet
	stack   []*Unit
	res     []*Unit
}

func (t *traversal) parents(u *Unit, direct bool) error {
	t.active.Set(u.idx)
	t.stack = append(t.stack, u)
	for _, e := range t.g.out[u] {
		if !direct && !e.Channels.Has(t.ch) {
			continue
		}
		p := e.To
		if t.active.Test(p.idx) {
			start := slices.Index(t.stack, p)
			cycle := append(unitNames(t.stack[start:]), p.name)
			return configError(ErrCyclicDependency, cycle...)
		}
		if t.visited.Test(p.idx) {
			continue
		}
		t.visited.Set(p.idx)
		t.res = append(t.res, p)
		if err := t.parents(p, false); err != nil {
			return err
		}
	}
	t.stack = t.stack[:len(t.stack)-1]
	t.active.Clear(u.idx)
	return nil
}

// BuildOrder returns all units such that each unit comes after every unit
// whose compiled output it sees. Units without such constraints keep their
// registration order.
func (g *Graph) BuildOrder() ([]*Unit, error) {
	n := uint(g.reg.Len())
	var (
		done   = bitset.New(n)
		active = bitset.New(n)
		stack  []*Unit
		res    = make([]*Unit, 0, n)
	)
	var visit func(u *Unit) error
	visit = func(u *Unit) error {
		active.Set(u.idx)
		stack = append(stack, u)
		for _, e := range g.out[u] {
			if !e.Channels.Has(ChanOutput) {
				continue
			}
			p := e.To
			if active.Test(p.idx) {
				start := slices.Index(stack, p)
				cycle := append(unitNames(stack[start:]), p.name)
				return configError(ErrCyclicDependency, cycle...)
			}
			if done.Test(p.idx) {
				continue
			}
			if err := visit(p); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		active.Clear(u.idx)
		done.Set(u.idx)
		res = append(res, u)
		return nil
	}
	for _, u := range g.reg.units {
		if done.Test(u.idx) {
			continue
		}
		if err := visit(u); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Check validates the whole graph.
func (g *Graph) Check() error {
	_, err := g.BuildOrder()
	return err
}

// Compose creates the bundle unit name whose binary archive packages its own
// compiled output followed by the outputs of leaves in the given order. The
// bundle extends its leaves by [PolicyPlain].
func (g *Graph) Compose(name string, leaves []*Unit) (*Unit, error) {
	if len(leaves) == 0 {
		return nil, invalidf("bundle '%s' without units", name)
	}
	if err := g.reg.owns(leaves...); err != nil {
		return nil, err
	}
	if _, err := g.reg.Lookup(name); err == nil {
		return nil, invalidf("bundle '%s' is already declared", name)
	}
	u, err := g.reg.Register(name)
	if err != nil {
		return nil, err
	}
	u.Kind = KindBundle
	for _, l := range leaves {
		if !slices.Contains(u.bundled, l) {
			u.bundled = append(u.bundled, l)
		}
	}
	if err := g.Extend(u, u.bundled, PolicyPlain); err != nil {
		return nil, err
	}
	return u, nil
}

// Demo declares the runnable but unpublished unit name extending parents by
// [PolicyPlain].
func (g *Graph) Demo(name string, parents []*Unit) (*Unit, error) {
	if u, err := g.reg.Lookup(name); err == nil && u.Kind != KindDemo {
		return nil, invalidf("unit '%s' is already declared as %s", name, u.Kind)
	}
	u, err := g.reg.Register(name)
	if err != nil {
		return nil, err
	}
	u.Kind = KindDemo
	if err := g.Extend(u, parents, PolicyPlain); err != nil {
		return nil, err
	}
	return u, nil
}
