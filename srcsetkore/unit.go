package srcsetkore

import (
	"fmt"
	"slices"
)

// Kind tells how a [Unit] takes part in packaging.
type Kind uint8

const (
	// A leaf unit is packaged from its own compiled output only. Outputs of
	// parent units are reached through the classpath.
	KindLeaf Kind = iota

	// A bundle unit packages its own output together with the outputs of the
	// units it was composed from, see [Graph.Compose].
	KindBundle

	// A demo unit is built and runnable but never published.
	KindDemo
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindBundle:
		return "bundle"
	case KindDemo:
		return "demo"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind parses the result of [Kind.String]. The empty string is a leaf.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "leaf":
		return KindLeaf, nil
	case "bundle":
		return KindBundle, nil
	case "demo":
		return KindDemo, nil
	}
	return 0, invalidf("illegal unit kind '%s'", s)
}

// Publishable reports whether units of kind k get a [Package].
func (k Kind) Publishable() bool { return k != KindDemo }

// A Unit is a named compilation target, the analogue of a source set. A unit's
// name is its identity within its [Registry] and never changes.
type Unit struct {
	Kind        Kind
	SourceRoots []string

	reg          *Registry
	idx          uint
	name         string
	artifactName string
	bundled      []*Unit
}

func (u *Unit) Name() string { return u.name }

func (u *Unit) Registry() *Registry { return u.reg }

// ArtifactName returns the name under which u is archived and published. If
// none was set it is the unit's name.
func (u *Unit) ArtifactName() string {
	if u.artifactName == "" {
		return u.name
	}
	return u.artifactName
}

func (u *Unit) SetArtifactName(n string) { u.artifactName = n }

// Bundled returns the units whose compiled output is packaged into u's binary
// archive besides u's own output. It is empty unless u is a bundle.
func (u *Unit) Bundled() []*Unit { return slices.Clone(u.bundled) }

func (u *Unit) String() string { return u.name }

// Registry holds all units of one evaluation of a build description.
type Registry struct {
	units  []*Unit
	byName map[string]*Unit
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Unit)}
}

// Register returns the unit with the given name and creates it if there is
// none yet.
func (r *Registry) Register(name string) (*Unit, error) {
	if name == "" {
		return nil, invalidf("empty unit name")
	}
	if u := r.byName[name]; u != nil {
		return u, nil
	}
	u := &Unit{
		reg:  r,
		idx:  uint(len(r.units)),
		name: name,
	}
	r.units = append(r.units, u)
	r.byName[name] = u
	return u, nil
}

// Lookup returns the unit with the given name or fails with [ErrUnknownUnit].
func (r *Registry) Lookup(name string) (*Unit, error) {
	if u := r.byName[name]; u != nil {
		return u, nil
	}
	return nil, configError(ErrUnknownUnit, name)
}

// LookupAll looks up all names in order. The error names every unknown unit.
func (r *Registry) LookupAll(names ...string) ([]*Unit, error) {
	var (
		res     = make([]*Unit, 0, len(names))
		unknown []string
	)
	for _, n := range names {
		if u := r.byName[n]; u != nil {
			res = append(res, u)
		} else {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return nil, configError(ErrUnknownUnit, unknown...)
	}
	return res, nil
}

// Units returns all units in the order of their registration.
func (r *Registry) Units() []*Unit { return slices.Clone(r.units) }

func (r *Registry) Len() int { return len(r.units) }

func (r *Registry) owns(us ...*Unit) error {
	for _, u := range us {
		switch {
		case u == nil:
			return invalidf("nil unit")
		case u.reg != r:
			return invalidf("unit '%s' is not registered in this evaluation", u.name)
		}
	}
	return nil
}
