package srcset

import (
	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

// EvalEd is used with [Edit].
type EvalEd struct{ ev *Evaluation }

func (ed EvalEd) Evaluation() *Evaluation { return ed.ev }

// Unit declares the leaf unit name if needed. Options of an already declared
// unit are kept.
func (ed EvalEd) Unit(name string) UnitEd {
	if u, err := ed.ev.Unit(name); err == nil {
		return UnitEd{ed.ev, u}
	}
	return UnitEd{ed.ev, mustRet(ed.ev.Declare(name, DeriveOptions{}))}
}

// Lookup returns the declared unit name and panics with
// [srcsetkore.ErrUnknownUnit] otherwise.
func (ed EvalEd) Lookup(name string) UnitEd {
	return UnitEd{ed.ev, mustRet(ed.ev.Unit(name))}
}

// Bundle composes name from leaves.
func (ed EvalEd) Bundle(name string, leaves ...UnitEd) UnitEd {
	u := mustRet(ed.ev.Compose(name, unitNames(leaves), DeriveOptions{}))
	return UnitEd{ed.ev, u}
}

func (ed EvalEd) Demo(name string, parents ...UnitEd) UnitEd {
	u := mustRet(ed.ev.Demo(name, unitNames(parents)))
	return UnitEd{ed.ev, u}
}

func (ed EvalEd) Plan() *Plan { return mustRet(ed.ev.Plan()) }

// UnitEd is used with [Edit].
type UnitEd struct {
	ev *Evaluation
	u  *Unit
}

func (ed UnitEd) Unit() *Unit { return ed.u }

func (ed UnitEd) Name() string { return ed.u.Name() }

func (ed UnitEd) Evaluation() EvalEd { return EvalEd{ed.ev} }

func (ed UnitEd) WithSources() UnitEd {
	opts := ed.ev.Options(ed.u)
	opts.IncludeSources = true
	ed.ev.SetOptions(ed.u, opts)
	return ed
}

func (ed UnitEd) WithDocs() UnitEd {
	opts := ed.ev.Options(ed.u)
	opts.IncludeDocs = true
	ed.ev.SetOptions(ed.u, opts)
	return ed
}

func (ed UnitEd) ArtifactName(name string) UnitEd {
	ed.u.SetArtifactName(name)
	return ed
}

func (ed UnitEd) SourceRoots(dirs ...string) UnitEd {
	ed.u.SourceRoots = append(ed.u.SourceRoots, dirs...)
	return ed
}

// Extends makes the unit see the compiled output of parents.
func (ed UnitEd) Extends(parents ...UnitEd) UnitEd {
	mustEd(ed.ev.Extend(ed.u.Name(), unitNames(parents), srcsetkore.PolicyPlain))
	return ed
}

// Library makes the unit extend parents and re-export them to its consumers.
func (ed UnitEd) Library(parents ...UnitEd) UnitEd {
	mustEd(ed.ev.Extend(ed.u.Name(), unitNames(parents), srcsetkore.PolicyLibrary))
	return ed
}

func (ed UnitEd) Publish(meta PackageMeta) *Package {
	return mustRet(ed.ev.Publish(ed.u.Name(), meta))
}

func (ed UnitEd) Artifacts() []*Artifact { return ed.ev.Artifacts(ed.u) }

func unitNames(us []UnitEd) []string {
	res := make([]string, len(us))
	for i, u := range us {
		res[i] = u.u.Name()
	}
	return res
}
