package srcsetkore

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// VariantKind is the closed set of resolvable facets of a published package.
type VariantKind uint8

const (
	VariantAPI VariantKind = iota
	VariantRuntime
	VariantSources
	VariantDocs
)

// VariantKinds lists all kinds in the order variants are declared.
var VariantKinds = [...]VariantKind{VariantAPI, VariantRuntime, VariantSources, VariantDocs}

func (k VariantKind) String() string {
	switch k {
	case VariantAPI:
		return "api"
	case VariantRuntime:
		return "runtime"
	case VariantSources:
		return "sources"
	case VariantDocs:
		return "javadoc"
	}
	return fmt.Sprintf("variant(%d)", k)
}

// Binds returns the kind of artifact a variant of kind k is backed by.
func (k VariantKind) Binds() ArtifactKind {
	switch k {
	case VariantSources:
		return Sources
	case VariantDocs:
		return Docs
	}
	return Binary
}

// Required reports whether every package must expose a variant of kind k.
func (k VariantKind) Required() bool { return k == VariantAPI || k == VariantRuntime }

func (k VariantKind) Usage() string {
	if k == VariantAPI {
		return "java-api"
	}
	return "java-runtime"
}

func (k VariantKind) Category() string {
	if k.Required() {
		return "library"
	}
	return "documentation"
}

// DocsType is empty for the library variants.
func (k VariantKind) DocsType() string {
	switch k {
	case VariantSources:
		return "sources"
	case VariantDocs:
		return "javadoc"
	}
	return ""
}

func (k VariantKind) elements() string {
	switch k {
	case VariantAPI:
		return "ApiElements"
	case VariantRuntime:
		return "RuntimeElements"
	case VariantSources:
		return "SourcesElements"
	}
	return "JavadocElements"
}

// Variant is one resolvable facet of a [Package].
type Variant struct {
	Kind       VariantKind
	Name       string
	Artifact   *Artifact
	Consumable bool
}

func bindVariants(u *Unit, arts []*Artifact) ([]*Variant, error) {
	var res []*Variant
	for _, k := range VariantKinds {
		a := findArtifact(arts, k.Binds())
		switch {
		case a == nil && k.Required():
			return nil, invalidf("unit '%s' has no %s artifact for %s variant",
				u.Name(),
				k.Binds(),
				k,
			)
		case a == nil:
			continue
		case a.Unit != u:
			return nil, invalidf("%s variant of '%s' bound to artifact of '%s'",
				k,
				u.Name(),
				a.Unit.Name(),
			)
		}
		res = append(res, &Variant{
			Kind:       k,
			Name:       u.Name() + k.elements(),
			Artifact:   a,
			Consumable: true,
		})
	}
	return res, nil
}

// TaskName builds names like compileMain or mainSourcesJar from a verb, the
// unit's name and a target. Verb and target may be empty.
func TaskName(verb string, u *Unit, target string) string {
	if verb == "" {
		return u.Name() + capitalize(target)
	}
	return verb + capitalize(u.Name()) + capitalize(target)
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
