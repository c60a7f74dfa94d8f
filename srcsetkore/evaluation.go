package srcsetkore

import (
	"fmt"
	"slices"
)

// Config holds the per-evaluation settings.
type Config struct {
	Group    string
	BaseName string // prefix of archive file names
	OutDir   string // directory of archive files
	Version  Version

	// Defaults are merged into the metadata of every published unit.
	Defaults PackageMeta
}

// Evaluation is one evaluation of a build description. It owns the units,
// their graph, the derived artifacts and the published packages. An
// Evaluation is built single-threaded and only yields a [Plan] once it is
// valid.
type Evaluation struct {
	cfg     Config
	trace   *Trace
	reg     *Registry
	graph   *Graph
	deriver Deriver
	opts    map[*Unit]DeriveOptions
	arts    map[*Unit][]*Artifact
	publish []*Unit
	metas   map[*Unit]PackageMeta
}

func NewEvaluation(cfg Config, tr *Trace) *Evaluation {
	reg := NewRegistry()
	return &Evaluation{
		cfg:     cfg,
		trace:   tr,
		reg:     reg,
		graph:   NewGraph(reg),
		deriver: Deriver{BaseName: cfg.BaseName, Dir: cfg.OutDir},
		opts:    make(map[*Unit]DeriveOptions),
		arts:    make(map[*Unit][]*Artifact),
		metas:   make(map[*Unit]PackageMeta),
	}
}

func (ev *Evaluation) Config() Config { return ev.cfg }

func (ev *Evaluation) Trace() *Trace { return ev.trace }

func (ev *Evaluation) Registry() *Registry { return ev.reg }

func (ev *Evaluation) Graph() *Graph { return ev.graph }

func (ev *Evaluation) Unit(name string) (*Unit, error) { return ev.reg.Lookup(name) }

// Declare registers the leaf unit name or updates the options of an already
// declared leaf or bundle.
func (ev *Evaluation) Declare(name string, opts DeriveOptions) (*Unit, error) {
	if u, err := ev.reg.Lookup(name); err == nil && u.Kind == KindDemo {
		return nil, invalidf("unit '%s' is already declared as %s", name, u.Kind)
	}
	u, err := ev.reg.Register(name)
	if err != nil {
		return nil, err
	}
	ev.trace.Debug("declare `unit` with `sources` and `docs`",
		`unit`, name,
		`sources`, opts.IncludeSources,
		`docs`, opts.IncludeDocs,
	)
	ev.SetOptions(u, opts)
	return u, nil
}

func (ev *Evaluation) SetOptions(u *Unit, opts DeriveOptions) {
	ev.opts[u] = opts
	delete(ev.arts, u)
}

func (ev *Evaluation) Options(u *Unit) DeriveOptions { return ev.opts[u] }

// Extend makes the unit name depend on parents by policy. All units must be
// declared before.
func (ev *Evaluation) Extend(name string, parents []string, policy Policy) error {
	u, err := ev.reg.Lookup(name)
	if err != nil {
		return err
	}
	ps, err := ev.reg.LookupAll(parents...)
	if err != nil {
		return err
	}
	ev.trace.Debug("`unit` extends `parents` by `policy`",
		`unit`, name,
		`parents`, parents,
		`policy`, policy,
	)
	return ev.graph.Extend(u, ps, policy)
}

// Compose declares the bundle name from the declared units leaves.
func (ev *Evaluation) Compose(name string, leaves []string, opts DeriveOptions) (*Unit, error) {
	ls, err := ev.reg.LookupAll(leaves...)
	if err != nil {
		return nil, err
	}
	u, err := ev.graph.Compose(name, ls)
	if err != nil {
		return nil, err
	}
	ev.trace.Debug("compose `bundle` from `units`", `bundle`, name, `units`, leaves)
	ev.SetOptions(u, opts)
	return u, nil
}

func (ev *Evaluation) Demo(name string, parents []string) (*Unit, error) {
	ps, err := ev.reg.LookupAll(parents...)
	if err != nil {
		return nil, err
	}
	u, err := ev.graph.Demo(name, ps)
	if err != nil {
		return nil, err
	}
	ev.trace.Debug("declare `demo` on `parents`", `demo`, name, `parents`, parents)
	delete(ev.opts, u)
	delete(ev.arts, u)
	return u, nil
}

// Artifacts returns the artifacts of u. Demo units have none.
func (ev *Evaluation) Artifacts(u *Unit) []*Artifact {
	if !u.Kind.Publishable() {
		return nil
	}
	arts, ok := ev.arts[u]
	if !ok {
		arts = ev.deriver.Derive(u, ev.opts[u])
		ev.arts[u] = arts
	}
	return arts
}

// Publish marks the unit name for publication with meta. It fails if another
// publishable unit has the same artifact name. Publishing a unit again
// replaces its metadata. If publication fails, the evaluation is left
// as before.
func (ev *Evaluation) Publish(name string, meta PackageMeta) (*Package, error) {
	u, err := ev.reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !u.Kind.Publishable() {
		return nil, invalidf("%s unit '%s' cannot be published", u.Kind, name)
	}
	if err := ev.checkArtifactName(u); err != nil {
		return nil, err
	}
	oldMeta, republish := ev.metas[u]
	ev.metas[u] = meta
	if !republish {
		ev.publish = append(ev.publish, u)
	}
	pub, err := ev.publisher()
	if err != nil {
		if republish {
			ev.metas[u] = oldMeta
		} else {
			delete(ev.metas, u)
			ev.publish = ev.publish[:len(ev.publish)-1]
		}
		return nil, err
	}
	ev.trace.Debug("publish `unit` as `artifact`", `unit`, name, `artifact`, u.ArtifactName())
	return pub.Of(u), nil
}

// Packages returns the packages of all published units in the order they were
// first published.
func (ev *Evaluation) Packages() ([]*Package, error) {
	pub, err := ev.publisher()
	if err != nil {
		return nil, err
	}
	return pub.Packages(), nil
}

func (ev *Evaluation) publisher() (*Publisher, error) {
	pub := NewPublisher(ev.cfg.Group, ev.cfg.Version)
	for _, u := range ev.publish {
		meta := ev.metas[u].Merge(ev.cfg.Defaults)
		if _, err := pub.Publish(u, ev.Artifacts(u), meta); err != nil {
			return nil, err
		}
	}
	return pub, nil
}

// Validate checks the graph for cycles, the artifact names of all
// publishable units for uniqueness and the published packages.
func (ev *Evaluation) Validate() error {
	if err := ev.graph.Check(); err != nil {
		return err
	}
	for _, u := range ev.reg.units {
		if !u.Kind.Publishable() {
			continue
		}
		if err := ev.checkArtifactName(u); err != nil {
			return err
		}
	}
	_, err := ev.publisher()
	return err
}

// checkArtifactName fails if another publishable unit archives under the
// artifact name of u.
func (ev *Evaluation) checkArtifactName(u *Unit) error {
	an := u.ArtifactName()
	for _, other := range ev.reg.units {
		if other == u || !other.Kind.Publishable() || other.ArtifactName() != an {
			continue
		}
		err := configError(ErrDuplicateArtifactName, other.Name(), u.Name())
		err.Msg = fmt.Sprintf("both archive as '%s'", an)
		return err
	}
	return nil
}

// Plan validates the evaluation and creates the task plan. Nothing is
// planned if the evaluation is invalid.
func (ev *Evaluation) Plan() (*Plan, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	p, err := planTasks(ev.graph, ev.Artifacts)
	if err != nil {
		return nil, err
	}
	ev.trace.Info("planned `tasks` for `units` units",
		`tasks`, len(p.tasks),
		`units`, ev.reg.Len(),
	)
	return p, nil
}

// Published returns the units marked for publication in order.
func (ev *Evaluation) Published() []*Unit { return slices.Clone(ev.publish) }
