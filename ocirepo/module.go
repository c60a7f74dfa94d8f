package ocirepo

import (
	digest "github.com/opencontainers/go-digest"

	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

// Module is the package descriptor stored as the config blob of a package's
// manifest. It tells consumers which archive backs which variant.
type Module struct {
	FormatVersion string     `json:"formatVersion"`
	Group         string     `json:"group"`
	Name          string     `json:"module"`
	Version       string     `json:"version"`
	Release       bool       `json:"release,omitempty"`
	Meta          ModuleMeta `json:"meta"`
	Variants      []Variant  `json:"variants"`
}

const ModuleFormatVersion = "1.1"

type ModuleMeta struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	License     string   `json:"license,omitempty"`
	LicenseURL  string   `json:"licenseUrl,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	SCM         string   `json:"scm,omitempty"`
	SCMDev      string   `json:"scmDeveloper,omitempty"`
	SCMURL      string   `json:"scmUrl,omitempty"`
}

type Variant struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	Files      []File            `json:"files"`
}

type File struct {
	Name   string        `json:"name"`
	Size   int64         `json:"size"`
	Digest digest.Digest `json:"digest"`
}

// Variant returns the variant with the given name or nil.
func (m *Module) Variant(name string) *Variant {
	for i := range m.Variants {
		if m.Variants[i].Name == name {
			return &m.Variants[i]
		}
	}
	return nil
}

// Coordinates returns group:module:version.
func (m *Module) Coordinates() string {
	return m.Group + ":" + m.Name + ":" + m.Version
}

// Attribute keys of module variants.
const (
	AttrUsage    = "org.gradle.usage"
	AttrCategory = "org.gradle.category"
	AttrDocsType = "org.gradle.docstype"
)

func variantAttributes(k srcsetkore.VariantKind) map[string]string {
	attrs := map[string]string{AttrCategory: k.Category()}
	if dt := k.DocsType(); dt != "" {
		attrs[AttrDocsType] = dt
	} else {
		attrs[AttrUsage] = k.Usage()
	}
	return attrs
}

func moduleMeta(m srcsetkore.PackageMeta) ModuleMeta {
	mm := ModuleMeta{
		Name:        m.Name,
		Description: m.Description,
		URL:         m.URL,
		License:     m.License.Name,
		LicenseURL:  m.License.URL,
		SCM:         m.SCM.Connection,
		SCMDev:      m.SCM.DeveloperConnection,
		SCMURL:      m.SCM.URL,
	}
	for _, a := range m.Authors {
		mm.Authors = append(mm.Authors, author(a))
	}
	return mm
}

// author formats a as "Name <Email>", falling back to the ID for the name.
func author(a srcsetkore.Author) string {
	name := a.Name
	if name == "" {
		name = a.ID
	}
	if a.Email != "" {
		return name + " <" + a.Email + ">"
	}
	return name
}
