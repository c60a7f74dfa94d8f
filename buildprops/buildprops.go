// Package buildprops reads the properties of a build from key=value files in
// the style of gradle.properties.
package buildprops

import (
	"io"
	"time"

	"github.com/joho/godotenv"

	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

// Keys of the properties that have a meaning for an evaluation.
const (
	KeyGroup    = "maven_group"
	KeyBaseName = "archives_base_name"
	KeyRelease  = "version_release"
	KeyVersion  = "version"
)

// DefaultFile is the properties file read if no other is given.
const DefaultFile = "gradle.properties"

type Props struct {
	Group    string
	BaseName string

	// Release is set if the release key is present, whatever its value.
	Release bool

	// DevVersion is used instead of [srcsetkore.SnapshotVersion] when not
	// releasing.
	DevVersion string

	// Extra holds all properties not covered by the fields.
	Extra map[string]string
}

// Read reads and merges files. Properties from later files win.
func Read(files ...string) (*Props, error) {
	if len(files) == 0 {
		files = []string{DefaultFile}
	}
	m, err := godotenv.Read(files...)
	if err != nil {
		return nil, err
	}
	return FromMap(m), nil
}

func Parse(r io.Reader) (*Props, error) {
	m, err := godotenv.Parse(r)
	if err != nil {
		return nil, err
	}
	return FromMap(m), nil
}

func FromMap(m map[string]string) *Props {
	p := &Props{Extra: make(map[string]string)}
	for k, v := range m {
		switch k {
		case KeyGroup:
			p.Group = v
		case KeyBaseName:
			p.BaseName = v
		case KeyVersion:
			p.DevVersion = v
		case KeyRelease:
			p.Release = true
		default:
			p.Extra[k] = v
		}
	}
	return p
}

// Version returns the release version for now if p is a release, the
// development version otherwise. The version is meant to be computed once per
// evaluation.
func (p *Props) Version(now time.Time) (srcsetkore.Version, error) {
	if p.Release {
		return srcsetkore.ReleaseVersion(now), nil
	}
	return srcsetkore.DevVersion(p.DevVersion)
}

// Config creates the configuration of an evaluation that archives to outDir.
func (p *Props) Config(outDir string, now time.Time) (srcsetkore.Config, error) {
	v, err := p.Version(now)
	if err != nil {
		return srcsetkore.Config{}, err
	}
	return srcsetkore.Config{
		Group:    p.Group,
		BaseName: p.BaseName,
		OutDir:   outDir,
		Version:  v,
	}, nil
}
