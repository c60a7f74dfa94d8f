// Package hcldesc loads build descriptions written in HCL into an evaluation.
//
// A description declares units in the order they are evaluated. Units can only
// extend units declared before them:
//
//	project {
//	  base_name = "audio"
//	}
//
//	unit "main" {
//	  source_roots = ["src/main/java"]
//	  sources      = true
//	  publish {
//	    description = "Audio core ${version}"
//	  }
//	}
//
//	unit "codecA" {
//	  library = ["main"]
//	}
//
//	unit "pkg" {
//	  kind    = "bundle"
//	  bundles = ["main", "codecA"]
//	}
//
// Expressions can use the variables version, group, base_name and release.
package hcldesc

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

// DefaultFile is the description file name looked for by the srcset command.
const DefaultFile = "build.hcl"

type Loader struct {
	Trace *srcsetkore.Trace

	// Defaults are metadata defaults with lower precedence than the
	// description's publishing block.
	Defaults srcsetkore.PackageMeta
}

// LoadFile loads the description from path, see [Loader.Load].
func (l *Loader) LoadFile(path string, cfg srcsetkore.Config) (*srcsetkore.Evaluation, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Load(src, path, cfg)
}

// Load evaluates the description src. The project block overrides the
// respective settings of cfg.
func (l *Loader) Load(src []byte, filename string, cfg srcsetkore.Config) (*srcsetkore.Evaluation, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse build description %s: %w", filename, diags)
	}
	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, EvalContext(cfg), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode build description %s: %w", filename, diags)
	}
	if p := root.Project; p != nil {
		if p.Group != "" {
			cfg.Group = p.Group
		}
		if p.BaseName != "" {
			cfg.BaseName = p.BaseName
		}
		if p.OutDir != "" {
			cfg.OutDir = p.OutDir
		}
	}
	cfg.Defaults = root.Publishing.meta().Merge(cfg.Defaults.Merge(l.Defaults))
	ev := srcsetkore.NewEvaluation(cfg, l.Trace)
	for _, ub := range root.Units {
		if err := declare(ev, ub); err != nil {
			return nil, fmt.Errorf("%s: unit '%s': %w", filename, ub.Name, err)
		}
	}
	for _, ub := range root.Units {
		if ub.Publish == nil {
			continue
		}
		if _, err := ev.Publish(ub.Name, ub.Publish.meta()); err != nil {
			return nil, fmt.Errorf("%s: unit '%s': %w", filename, ub.Name, err)
		}
	}
	l.Trace.Info("loaded `units` units from `file`", `units`, len(root.Units), `file`, filename)
	return ev, nil
}

// EvalContext provides the variables usable in description expressions.
func EvalContext(cfg srcsetkore.Config) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"version":   cty.StringVal(cfg.Version.String()),
			"group":     cty.StringVal(cfg.Group),
			"base_name": cty.StringVal(cfg.BaseName),
			"release":   cty.BoolVal(cfg.Version.IsRelease()),
		},
	}
}

func declare(ev *srcsetkore.Evaluation, ub *unitBlock) error {
	kind, err := srcsetkore.ParseKind(ub.Kind)
	if err != nil {
		return err
	}
	if len(ub.Bundles) > 0 && kind != srcsetkore.KindBundle {
		return fmt.Errorf("%w: bundles in %s unit", srcsetkore.ErrInvalidDeclaration, kind)
	}
	opts := srcsetkore.DeriveOptions{IncludeSources: ub.Sources, IncludeDocs: ub.Docs}
	var u *srcsetkore.Unit
	switch kind {
	case srcsetkore.KindBundle:
		u, err = ev.Compose(ub.Name, ub.Bundles, opts)
	case srcsetkore.KindDemo:
		if ub.Sources || ub.Docs || ub.ArtifactName != "" {
			return fmt.Errorf("%w: demo units have no artifacts", srcsetkore.ErrInvalidDeclaration)
		}
		u, err = ev.Demo(ub.Name, ub.Extends)
	default:
		if u, err = ev.Declare(ub.Name, opts); err == nil && len(ub.Extends) > 0 {
			err = ev.Extend(ub.Name, ub.Extends, srcsetkore.PolicyPlain)
		}
	}
	if err != nil {
		return err
	}
	if len(ub.Library) > 0 {
		if err := ev.Extend(ub.Name, ub.Library, srcsetkore.PolicyLibrary); err != nil {
			return err
		}
	}
	if kind == srcsetkore.KindBundle && len(ub.Extends) > 0 {
		if err := ev.Extend(ub.Name, ub.Extends, srcsetkore.PolicyPlain); err != nil {
			return err
		}
	}
	if ub.ArtifactName != "" {
		u.SetArtifactName(ub.ArtifactName)
	}
	u.SourceRoots = append(u.SourceRoots, ub.SourceRoots...)
	return nil
}
