package srcsetkore

import (
	"fmt"
	"path/filepath"
	"slices"
)

type ArtifactKind uint8

const (
	Binary ArtifactKind = iota
	Sources
	Docs
)

func (k ArtifactKind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Sources:
		return "sources"
	case Docs:
		return "docs"
	}
	return fmt.Sprintf("artifact-kind(%d)", k)
}

// Classifier is appended to the archive name to tell the kinds apart.
func (k ArtifactKind) Classifier() string {
	switch k {
	case Sources:
		return "sources"
	case Docs:
		return "javadoc"
	}
	return ""
}

// Include is the file pattern an archive of kind k takes from its content.
func (k ArtifactKind) Include() string {
	switch k {
	case Sources:
		return "**/*.java"
	case Docs:
		return "**/*.html"
	}
	return "**/*.class"
}

// Names of the umbrella tasks artifacts are wired to, see [Artifact.Triggers].
const (
	TaskJar   = "jar"
	TaskBuild = "build"
)

// Artifact describes an archive to be produced for a unit.
type Artifact struct {
	Unit *Unit
	Kind ArtifactKind

	// Outputs lists the units whose compiled output goes into a binary
	// archive, in order.
	Outputs []*Unit

	// Triggers names the umbrella tasks that require this artifact.
	Triggers []string

	dir, baseName string
}

// FileName is <baseName>-<artifactName>[-<classifier>].jar. The artifact name
// is read when called, so it may be assigned after derivation.
func (a *Artifact) FileName() string {
	name := a.Unit.ArtifactName()
	if a.baseName != "" {
		name = a.baseName + "-" + name
	}
	if c := a.Kind.Classifier(); c != "" {
		name += "-" + c
	}
	return name + ".jar"
}

func (a *Artifact) Location() string { return filepath.Join(a.dir, a.FileName()) }

// Empty reports whether the archive will have no content. Empty archives are
// still valid and get produced.
func (a *Artifact) Empty() bool {
	if a.Kind == Binary {
		return len(a.Outputs) == 0
	}
	return len(a.SourceRoots()) == 0
}

// SourceRoots is the content of sources and docs archives. It is read from the
// unit when called and is nil for binary archives.
func (a *Artifact) SourceRoots() []string {
	if a.Kind == Binary {
		return nil
	}
	return slices.Clone(a.Unit.SourceRoots)
}

func (a *Artifact) String() string {
	return fmt.Sprintf("%s:%s", a.Unit.Name(), a.Kind)
}

type DeriveOptions struct {
	IncludeSources bool
	IncludeDocs    bool
}

// Deriver defines the archives of units.
type Deriver struct {
	BaseName string
	Dir      string
}

// Derive returns the artifacts of u: always the binary archive, then the
// sources and docs archives if requested by opts. The binary archive holds
// u's own compiled output only, unless u is a bundle. Docs requested for a
// unit without source roots yield an empty docs archive, not an error.
func (d Deriver) Derive(u *Unit, opts DeriveOptions) []*Artifact {
	bin := &Artifact{
		Unit:     u,
		Kind:     Binary,
		Outputs:  append([]*Unit{u}, u.bundled...),
		Triggers: []string{TaskJar},
		dir:      d.Dir,
		baseName: d.BaseName,
	}
	res := []*Artifact{bin}
	if opts.IncludeSources {
		res = append(res, &Artifact{
			Unit:     u,
			Kind:     Sources,
			Triggers: []string{TaskBuild},
			dir:      d.Dir,
			baseName: d.BaseName,
		})
	}
	if opts.IncludeDocs {
		res = append(res, &Artifact{
			Unit:     u,
			Kind:     Docs,
			Triggers: []string{TaskBuild},
			dir:      d.Dir,
			baseName: d.BaseName,
		})
	}
	return res
}

func findArtifact(arts []*Artifact, k ArtifactKind) *Artifact {
	for _, a := range arts {
		if a.Kind == k {
			return a
		}
	}
	return nil
}
