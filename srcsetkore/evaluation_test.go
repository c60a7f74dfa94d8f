package srcsetkore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/testerr"
)

// exampleEvaluation declares main, codecA extending main as library and the
// bundle pkg from both.
func exampleEvaluation(t *testing.T, opts DeriveOptions) *Evaluation {
	t.Helper()
	ev := NewEvaluation(Config{
		Group:    "org.example",
		BaseName: "audio",
		OutDir:   t.TempDir(),
	}, NewTrace(context.Background(), testTracer{t}))
	testerr.Shall1(ev.Declare("main", opts)).BeNil(t)
	testerr.Shall1(ev.Declare("codecA", opts)).BeNil(t)
	testerr.Shall(ev.Extend("codecA", []string{"main"}, PolicyLibrary)).BeNil(t)
	testerr.Shall1(ev.Compose("pkg", []string{"main", "codecA"}, opts)).BeNil(t)
	return ev
}

func TestEvaluation_example(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{})
	pkg := testerr.Shall1(ev.Unit("pkg")).BeNil(t)
	bin := findArtifact(ev.Artifacts(pkg), Binary)
	checkUnits(t, "bundle content", bin.Outputs, "pkg", "main", "codecA")

	codecA := testerr.Shall1(ev.Unit("codecA")).BeNil(t)
	p := testerr.Shall1(ev.Publish("codecA", PackageMeta{Name: "Codec A"})).BeNil(t)
	for _, k := range []VariantKind{VariantAPI, VariantRuntime} {
		v := p.Variant(k)
		if v == nil {
			t.Fatalf("codecA has no %s variant", k)
		}
		if v.Artifact.Unit != codecA || v.Artifact.Kind != Binary {
			t.Errorf("%s variant bound to %s", k, v.Artifact)
		}
	}
	if v := p.Variant(VariantAPI); v.Name != "codecAApiElements" {
		t.Errorf("API variant name '%s'", v.Name)
	}
	if c := p.Coordinates(); c != "org.example:codecA:1.0.0-SNAPSHOT" {
		t.Errorf("coordinates '%s'", c)
	}
}

func TestEvaluation_Publish_converges(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{})
	testerr.Shall1(ev.Publish("main", PackageMeta{Description: "first"})).BeNil(t)
	testerr.Shall1(ev.Publish("main", PackageMeta{Description: "second"})).BeNil(t)
	pkgs := testerr.Shall1(ev.Packages()).BeNil(t)
	if l := len(pkgs); l != 1 {
		t.Fatalf("publishing twice yields %d packages", l)
	}
	if d := pkgs[0].Meta.Description; d != "second" {
		t.Errorf("package description is '%s'", d)
	}
}

func TestEvaluation_Publish_defaults(t *testing.T) {
	ev := NewEvaluation(Config{
		Defaults: PackageMeta{
			URL:     "https://example.org/audio",
			License: License{Name: "BSD"},
			Authors: []Author{{ID: "jdoe", Name: "J. Doe"}},
		},
	}, nil)
	testerr.Shall1(ev.Declare("main", DeriveOptions{})).BeNil(t)
	p := testerr.Shall1(ev.Publish("main", PackageMeta{URL: "https://example.org/main"})).BeNil(t)
	if p.Meta.URL != "https://example.org/main" {
		t.Errorf("URL '%s'", p.Meta.URL)
	}
	if p.Meta.License.Name != "BSD" || len(p.Meta.Authors) != 1 {
		t.Errorf("defaults not merged: %+v", p.Meta)
	}
}

func TestEvaluation_Publish_sources(t *testing.T) {
	ev := NewEvaluation(Config{}, nil)
	testerr.Shall1(ev.Declare("plain", DeriveOptions{})).BeNil(t)
	testerr.Shall1(ev.Declare("full", DeriveOptions{IncludeSources: true, IncludeDocs: true})).BeNil(t)

	plain := testerr.Shall1(ev.Publish("plain", PackageMeta{})).BeNil(t)
	if findArtifact(ev.Artifacts(plain.Unit), Sources) != nil {
		t.Error("sources artifact without includeSources")
	}
	if plain.Variant(VariantSources) != nil {
		t.Error("sources variant without includeSources")
	}
	full := testerr.Shall1(ev.Publish("full", PackageMeta{})).BeNil(t)
	var kinds []string
	for _, v := range full.Variants {
		kinds = append(kinds, v.Kind.String())
	}
	if !slices.Equal(kinds, []string{"api", "runtime", "sources", "javadoc"}) {
		t.Errorf("variants %v", kinds)
	}
}

func TestEvaluation_duplicateArtifactName(t *testing.T) {
	ev := NewEvaluation(Config{}, nil)
	a := testerr.Shall1(ev.Declare("a", DeriveOptions{})).BeNil(t)
	b := testerr.Shall1(ev.Declare("b", DeriveOptions{})).BeNil(t)
	a.SetArtifactName("lib")
	b.SetArtifactName("lib")

	p, err := ev.Plan()
	if !errors.Is(err, ErrDuplicateArtifactName) {
		t.Fatalf("plan with duplicate names yields %v", err)
	}
	if p != nil {
		t.Error("got plan despite duplicate names")
	}

	if _, err = ev.Publish("a", PackageMeta{}); !errors.Is(err, ErrDuplicateArtifactName) {
		t.Fatalf("publishing against unpublished duplicate yields %v", err)
	}
	if pub := ev.Published(); len(pub) != 0 {
		t.Errorf("failed publish changed published units: %v", pub)
	}

	b.SetArtifactName("b")
	testerr.Shall1(ev.Publish("a", PackageMeta{})).BeNil(t)
	b.SetArtifactName("lib")
	if _, err = ev.Publish("b", PackageMeta{}); !errors.Is(err, ErrDuplicateArtifactName) {
		t.Fatalf("publishing duplicate name yields %v", err)
	}
	if pub := ev.Published(); len(pub) != 1 || pub[0] != a {
		t.Errorf("failed publish changed published units: %v", pub)
	}
}

func TestEvaluation_Artifacts_lateSourceRoots(t *testing.T) {
	ev := NewEvaluation(Config{}, nil)
	u := testerr.Shall1(ev.Declare("main", DeriveOptions{IncludeSources: true})).BeNil(t)
	testerr.Shall1(ev.Publish("main", PackageMeta{})).BeNil(t)
	u.SourceRoots = append(u.SourceRoots, "src/main/java")
	plan := testerr.Shall1(ev.Plan()).BeNil(t)
	src := plan.Task("mainSourcesJar").Artifact
	if roots := src.SourceRoots(); !slices.Equal(roots, []string{"src/main/java"}) {
		t.Errorf("sources archive roots %v", roots)
	}
	if src.Empty() {
		t.Error("sources archive is empty")
	}
}

func TestEvaluation_emptyDocs(t *testing.T) {
	ev := NewEvaluation(Config{}, nil)
	testerr.Shall1(ev.Declare("x", DeriveOptions{IncludeDocs: true})).BeNil(t)
	x := testerr.Shall1(ev.Unit("x")).BeNil(t)
	docs := findArtifact(ev.Artifacts(x), Docs)
	if docs == nil {
		t.Fatal("no docs artifact")
	}
	if roots := docs.SourceRoots(); len(roots) != 0 {
		t.Errorf("docs roots %v", roots)
	}
	if !docs.Empty() {
		t.Error("docs archive without source roots is not empty")
	}
	p := testerr.Shall1(ev.Publish("x", PackageMeta{})).BeNil(t)
	if v := p.Variant(VariantDocs); v == nil || v.Artifact != docs {
		t.Errorf("javadoc variant %v", v)
	}
	plan := testerr.Shall1(ev.Plan()).BeNil(t)
	task := plan.Task("xJavadocJar")
	if task == nil {
		t.Fatal("no javadoc task")
	}
	if !slices.Contains(plan.Task(TaskBuild).Prerequisites(), task) {
		t.Error("javadoc task not required by build")
	}
}

func TestEvaluation_Publish_demo(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{})
	testerr.Shall1(ev.Demo("player", []string{"pkg"})).BeNil(t)
	if _, err := ev.Publish("player", PackageMeta{}); !errors.Is(err, ErrInvalidDeclaration) {
		t.Fatalf("publishing a demo yields %v", err)
	}
	if _, err := ev.Declare("player", DeriveOptions{}); !errors.Is(err, ErrInvalidDeclaration) {
		t.Fatalf("redeclaring a demo yields %v", err)
	}
}

func TestEvaluation_Extend_unknown(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{})
	err := ev.Extend("main", []string{"nope", "codecA", "nix"}, PolicyPlain)
	if !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("extending by unknown units yields %v", err)
	}
	testerr.Shall(err).Check(t, testerr.Msg("unknown unit: nope, nix"))
}

func TestEvaluation_Plan(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{IncludeSources: true})
	testerr.Shall1(ev.Demo("player", []string{"pkg"})).BeNil(t)
	plan := testerr.Shall1(ev.Plan()).BeNil(t)

	var names []string
	for _, task := range plan.Tasks() {
		names = append(names, task.Name())
	}
	expect := []string{
		"compileMain", "compileCodecA", "compilePkg", "compilePlayer",
		"jar", "build",
		"mainJar", "mainSourcesJar",
		"codecAJar", "codecASourcesJar",
		"pkgJar", "pkgSourcesJar",
	}
	if !slices.Equal(names, expect) {
		t.Fatalf("tasks %v", names)
	}
	if roots := plan.Roots(); len(roots) != 1 || roots[0].Name() != TaskBuild {
		t.Errorf("roots %v", roots)
	}
	pre := func(task string) (res []string) {
		for _, p := range plan.Task(task).Prerequisites() {
			res = append(res, p.Name())
		}
		return res
	}
	if p := pre("pkgJar"); !slices.Equal(p, []string{"compilePkg", "compileMain", "compileCodecA"}) {
		t.Errorf("pkgJar requires %v", p)
	}
	if p := pre("jar"); !slices.Equal(p, []string{"mainJar", "codecAJar", "pkgJar"}) {
		t.Errorf("jar requires %v", p)
	}
	if p := pre("build"); !slices.Equal(p, []string{
		"jar", "mainSourcesJar", "codecASourcesJar", "pkgSourcesJar", "compilePlayer",
	}) {
		t.Errorf("build requires %v", p)
	}
	jar := plan.Task("pkgJar").Artifact
	if l := jar.Location(); filepath.Base(l) != "audio-pkg.jar" {
		t.Errorf("bundle archive at '%s'", l)
	}
	src := plan.Task("mainSourcesJar").Artifact
	if n := src.FileName(); n != "audio-main-sources.jar" {
		t.Errorf("sources archive '%s'", n)
	}
}

type recToolchain struct {
	log    []string
	failOn string
	cancel context.CancelFunc
}

func (tc *recToolchain) Compile(_ context.Context, u *Unit, cp []*Unit, _ *Env) error {
	tc.log = append(tc.log, fmt.Sprintf("compile %s %v", u, unitNames(cp)))
	if u.Name() == tc.failOn {
		return errors.New("compiler failed")
	}
	if tc.cancel != nil {
		tc.cancel()
	}
	return nil
}

func (tc *recToolchain) Archive(_ context.Context, a *Artifact, _ *Env) error {
	tc.log = append(tc.log, "archive "+a.String())
	return os.WriteFile(a.Location(), nil, 0666)
}

func TestBuilder_Plan(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{})
	plan := testerr.Shall1(ev.Plan()).BeNil(t)
	tc := new(recToolchain)
	bd := testerr.Shall1(NewBuilder(ev.Trace(), &Env{Toolchain: tc})).BeNil(t)
	testerr.Shall(bd.Plan(plan)).BeNil(t)
	expect := []string{
		"compile main []",
		"archive main:binary",
		"compile codecA [main]",
		"archive codecA:binary",
		"compile pkg [main codecA]",
		"archive pkg:binary",
	}
	if !slices.Equal(tc.log, expect) {
		t.Fatalf("build log:\n%s", strings.Join(tc.log, "\n"))
	}

	tc.log = nil
	testerr.Shall(bd.NamedTasks(plan, "codecAJar", "mainJar")).BeNil(t)
	expect = []string{
		"compile main []",
		"compile codecA [main]",
		"archive codecA:binary",
		"archive main:binary",
	}
	if !slices.Equal(tc.log, expect) {
		t.Fatalf("rebuild log:\n%s", strings.Join(tc.log, "\n"))
	}

	if err := bd.NamedTasks(plan, "nope"); err == nil {
		t.Error("building unknown task succeeded")
	}
}

func TestBuilder_failure(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{})
	plan := testerr.Shall1(ev.Plan()).BeNil(t)
	tc := &recToolchain{failOn: "codecA"}
	bd := testerr.Shall1(NewBuilder(ev.Trace(), &Env{Toolchain: tc})).BeNil(t)
	testerr.Shall(bd.Plan(plan)).Check(t, testerr.Msg("task 'compileCodecA': compiler failed"))
	if l := tc.log[len(tc.log)-1]; l != "compile codecA [main]" {
		t.Errorf("last log entry '%s'", l)
	}
}

func TestBuilder_cancel(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{})
	plan := testerr.Shall1(ev.Plan()).BeNil(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tc := &recToolchain{cancel: cancel}
	bd := testerr.Shall1(NewBuilder(NewTrace(ctx, testTracer{t}), &Env{Toolchain: tc})).BeNil(t)
	if err := bd.Plan(plan); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled build yields %v", err)
	}
	if !slices.Equal(tc.log, []string{"compile main []"}) {
		t.Errorf("build log %v", tc.log)
	}
}

func TestBuilder_noToolchain(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{})
	plan := testerr.Shall1(ev.Plan()).BeNil(t)
	bd := testerr.Shall1(NewBuilder(ev.Trace(), &Env{})).BeNil(t)
	if err := bd.Plan(plan); !errors.Is(err, errNoToolchain) {
		t.Fatalf("build without toolchain yields %v", err)
	}
}

func TestClean(t *testing.T) {
	ev := exampleEvaluation(t, DeriveOptions{})
	plan := testerr.Shall1(ev.Plan()).BeNil(t)
	bd := testerr.Shall1(NewBuilder(ev.Trace(), &Env{Toolchain: new(recToolchain)})).BeNil(t)
	testerr.Shall(bd.Plan(plan)).BeNil(t)
	loc := plan.Task("pkgJar").Artifact.Location()
	testerr.Shall1(os.Stat(loc)).BeNil(t)

	testerr.Shall(Clean(plan, true, ev.Trace())).BeNil(t)
	testerr.Shall1(os.Stat(loc)).BeNil(t)

	testerr.Shall(Clean(plan, false, ev.Trace())).BeNil(t)
	if _, err := os.Stat(loc); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("archive still there: %v", err)
	}
}

func TestVersion(t *testing.T) {
	rv := NewVersion(true, time.Date(2024, 3, 5, 14, 7, 59, 0, time.UTC))
	if s := rv.String(); s != "202403051407" {
		t.Errorf("release version '%s'", s)
	}
	if !rv.IsRelease() || rv.IsSnapshot() {
		t.Error("release version is not a release")
	}
	sv := NewVersion(false, time.Now())
	if s := sv.String(); s != SnapshotVersion {
		t.Errorf("snapshot version '%s'", s)
	}
	if sv.IsRelease() || !sv.IsSnapshot() {
		t.Error("snapshot version is not a snapshot")
	}
	dv := testerr.Shall1(DevVersion("2.1.0")).BeNil(t)
	if dv.IsSnapshot() {
		t.Error("2.1.0 is a snapshot")
	}
	if _, err := DevVersion("next"); err == nil {
		t.Error("accepted illegal development version")
	}
}
