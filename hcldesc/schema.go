package hcldesc

import (
	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

// fileRoot is the content of one build description file.
type fileRoot struct {
	Project    *projectBlock `hcl:"project,block"`
	Publishing *metaBlock    `hcl:"publishing,block"`
	Units      []*unitBlock  `hcl:"unit,block"`
}

type projectBlock struct {
	Group    string `hcl:"group,optional"`
	BaseName string `hcl:"base_name,optional"`
	OutDir   string `hcl:"out_dir,optional"`
}

type unitBlock struct {
	Name         string     `hcl:"name,label"`
	Kind         string     `hcl:"kind,optional"`
	ArtifactName string     `hcl:"artifact_name,optional"`
	SourceRoots  []string   `hcl:"source_roots,optional"`
	Extends      []string   `hcl:"extends,optional"`
	Library      []string   `hcl:"library,optional"`
	Bundles      []string   `hcl:"bundles,optional"`
	Sources      bool       `hcl:"sources,optional"`
	Docs         bool       `hcl:"docs,optional"`
	Publish      *metaBlock `hcl:"publish,block"`
}

type metaBlock struct {
	Name        string         `hcl:"name,optional"`
	Description string         `hcl:"description,optional"`
	URL         string         `hcl:"url,optional"`
	License     *licenseBlock  `hcl:"license,block"`
	Authors     []*authorBlock `hcl:"author,block"`
	SCM         *scmBlock      `hcl:"scm,block"`
}

type licenseBlock struct {
	Name string `hcl:"name"`
	URL  string `hcl:"url,optional"`
}

type authorBlock struct {
	ID    string `hcl:"id,label"`
	Name  string `hcl:"name,optional"`
	Email string `hcl:"email,optional"`
}

type scmBlock struct {
	Connection          string `hcl:"connection,optional"`
	DeveloperConnection string `hcl:"developer_connection,optional"`
	URL                 string `hcl:"url,optional"`
}

func (mb *metaBlock) meta() (m srcsetkore.PackageMeta) {
	if mb == nil {
		return m
	}
	m.Name = mb.Name
	m.Description = mb.Description
	m.URL = mb.URL
	if mb.License != nil {
		m.License = srcsetkore.License{Name: mb.License.Name, URL: mb.License.URL}
	}
	for _, a := range mb.Authors {
		m.Authors = append(m.Authors, srcsetkore.Author{
			ID:    a.ID,
			Name:  a.Name,
			Email: a.Email,
		})
	}
	if mb.SCM != nil {
		m.SCM = srcsetkore.SCM{
			Connection:          mb.SCM.Connection,
			DeveloperConnection: mb.SCM.DeveloperConnection,
			URL:                 mb.SCM.URL,
		}
	}
	return m
}
