package srcsetkore

import (
	"fmt"
	"slices"
)

type License struct {
	Name string
	URL  string
}

type Author struct {
	ID    string
	Name  string
	Email string
}

// SCM locates the source control origin of a package.
type SCM struct {
	Connection          string // clone URL
	DeveloperConnection string // push URL
	URL                 string // browse URL
}

func (s SCM) IsZero() bool { return s == SCM{} }

// PackageMeta is the descriptive metadata attached to a [Package].
type PackageMeta struct {
	Name        string
	Description string
	URL         string
	License     License
	Authors     []Author
	SCM         SCM
}

// Merge returns m with all empty fields taken from defaults. Authors are
// taken as a whole.
func (m PackageMeta) Merge(defaults PackageMeta) PackageMeta {
	if m.Name == "" {
		m.Name = defaults.Name
	}
	if m.Description == "" {
		m.Description = defaults.Description
	}
	if m.URL == "" {
		m.URL = defaults.URL
	}
	if m.License == (License{}) {
		m.License = defaults.License
	}
	if len(m.Authors) == 0 {
		m.Authors = slices.Clone(defaults.Authors)
	}
	if m.SCM.IsZero() {
		m.SCM = defaults.SCM
	}
	return m
}

// Package is what gets handed to a package repository for one unit. A
// Package is not changed after creation; publishing a unit again creates a
// new Package that replaces the old one.
type Package struct {
	Unit         *Unit
	Group        string
	ArtifactName string
	Version      Version
	Meta         PackageMeta
	Variants     []*Variant
}

// Variant returns the variant of kind k or nil if p has none.
func (p *Package) Variant(k VariantKind) *Variant {
	for _, v := range p.Variants {
		if v.Kind == k {
			return v
		}
	}
	return nil
}

// Coordinates returns group:artifact:version.
func (p *Package) Coordinates() string {
	return fmt.Sprintf("%s:%s:%s", p.Group, p.ArtifactName, p.Version)
}

func (p *Package) String() string { return p.Coordinates() }

// Publisher collects the packages of one evaluation.
type Publisher struct {
	Group   string
	Version Version

	pkgs   []*Package
	byUnit map[*Unit]*Package
	byName map[string]*Unit
}

func NewPublisher(group string, v Version) *Publisher {
	return &Publisher{
		Group:   group,
		Version: v,
		byUnit:  make(map[*Unit]*Package),
		byName:  make(map[string]*Unit),
	}
}

// Publish creates the package of u from u's artifacts arts and the metadata
// meta. The package exposes the API and runtime variants backed by u's binary
// artifact and the sources and docs variants if u has such artifacts.
// Publishing u again replaces its package. Publishing a unit with the artifact
// name of another published unit fails with [ErrDuplicateArtifactName].
func (pub *Publisher) Publish(u *Unit, arts []*Artifact, meta PackageMeta) (*Package, error) {
	name := u.ArtifactName()
	if other := pub.byName[name]; other != nil && other != u {
		err := configError(ErrDuplicateArtifactName, other.Name(), u.Name())
		err.Msg = fmt.Sprintf("both publish '%s'", name)
		return nil, err
	}
	vars, err := bindVariants(u, arts)
	if err != nil {
		return nil, err
	}
	meta.Authors = slices.Clone(meta.Authors)
	pkg := &Package{
		Unit:         u,
		Group:        pub.Group,
		ArtifactName: name,
		Version:      pub.Version,
		Meta:         meta,
		Variants:     vars,
	}
	if old := pub.byUnit[u]; old != nil {
		if old.ArtifactName != name {
			delete(pub.byName, old.ArtifactName)
		}
		pub.pkgs[slices.Index(pub.pkgs, old)] = pkg
	} else {
		pub.pkgs = append(pub.pkgs, pkg)
	}
	pub.byUnit[u] = pkg
	pub.byName[name] = u
	return pkg, nil
}

// Packages returns all packages in the order their units were first
// published.
func (pub *Publisher) Packages() []*Package { return slices.Clone(pub.pkgs) }

// Package returns the package published under artifactName or nil.
func (pub *Publisher) Package(artifactName string) *Package {
	if u := pub.byName[artifactName]; u != nil {
		return pub.byUnit[u]
	}
	return nil
}

// Of returns the package of u or nil.
func (pub *Publisher) Of(u *Unit) *Package { return pub.byUnit[u] }
