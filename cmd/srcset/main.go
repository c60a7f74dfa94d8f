// Command srcset evaluates a build description, builds the archives of its
// units and publishes the declared packages to an OCI repository.
//
// Usage:
//
//	srcset [flags] [task...]
//
// Without task arguments all root tasks of the plan are built.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"git.fractalqb.de/fractalqb/srcset"
	"git.fractalqb.de/fractalqb/srcset/buildprops"
	"git.fractalqb.de/fractalqb/srcset/hcldesc"
	"git.fractalqb.de/fractalqb/srcset/ocirepo"
	"git.fractalqb.de/fractalqb/srcset/scm"
	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

const (
	defaultCompile = `javac -d {output} -cp "{classpath}" -sourcepath "{sources}" ` +
		`$(echo "{sources}" | tr : '\n' | xargs -r -I@ find @ -name '*.java')`
	defaultArchive = `jar cf {artifact} ` +
		`$(echo "{contents}" | tr : '\n' | xargs -r -I@ echo -C @ .)`
)

var (
	tracer = &srcset.WriteTracer{W: os.Stderr, Log: srcsetkore.DefaultTraceLog}

	descFile  = hcldesc.DefaultFile
	propsFile = buildprops.DefaultFile
	outDir    = filepath.Join("build", "libs")
	classDir  = filepath.Join("build", "classes")
	compile   = defaultCompile
	archive   = defaultArchive
	remote    = scm.DefaultRemote
	publish   = filepath.Join(xdg.DataHome, "srcset", "repository")
	registry  string
	plainHTTP bool

	release, clean, dryrun bool
	writeDot, writeUnits   bool
	noPublish              bool
	tagOutput              = true
)

func flags() {
	flag.StringVar(&descFile, "f", descFile, "Build description file")
	flag.StringVar(&propsFile, "props", propsFile, "Build properties file")
	flag.StringVar(&outDir, "out", outDir, "Output directory of archives")
	flag.StringVar(&classDir, "classes", classDir, "Output directory of compiled units")
	flag.StringVar(&compile, "compile", compile, "Shell command to compile a unit")
	flag.StringVar(&archive, "archive", archive, "Shell command to create an archive")
	flag.StringVar(&remote, "remote", remote, "Git remote to derive SCM metadata from")
	flag.StringVar(&publish, "publish", publish, "OCI layout directory to publish to")
	flag.StringVar(&registry, "registry", registry, "Publish to this registry repository instead of -publish")
	flag.BoolVar(&plainHTTP, "plain-http", plainHTTP, "Use plain HTTP for -registry")
	flag.BoolVar(&release, "release", release, "Force a release version")
	flag.BoolVar(&noPublish, "no-publish", noPublish, "Build without publishing")
	flag.BoolVar(&clean, "clean", clean, "Remove archives and exit")
	flag.BoolVar(&dryrun, "n", dryrun, "Dryrun for -clean")
	flag.BoolVar(&writeDot, "dot", writeDot, "Write task graph as graphviz to stdout and exit")
	flag.BoolVar(&writeUnits, "units-dot", writeUnits, "Write unit graph as graphviz to stdout and exit")
	flag.BoolVar(&tagOutput, "tag-output", tagOutput, "Prefix tool output with task names")
	fTrace := flag.String("trace", "", "Set trace level (off, warn, info, debug)")
	flag.Parse()

	if err := tracer.ParseLogFlag(*fTrace); err != nil {
		fatal("invalid -trace flag", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, `error`, err)
	os.Exit(1)
}

func main() {
	flags()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	trace := srcsetkore.NewTrace(ctx, tracer)

	cfg, err := config()
	if err != nil {
		fatal("cannot read build properties", err)
	}
	loader := hcldesc.Loader{Trace: trace}
	switch meta, err := scm.Discover(".", remote); {
	case err == nil:
		loader.Defaults.SCM = meta
	case errors.Is(err, scm.ErrNoRemote):
		trace.Debug("no SCM metadata: `err`", `err`, err)
	default:
		trace.Warn("no SCM metadata: `err`", `err`, err)
	}
	ev, err := loader.LoadFile(descFile, cfg)
	if err != nil {
		fatal("cannot load build description", err)
	}

	if writeUnits {
		dia := srcset.Diagrammer{Name: cfg.BaseName, RankDir: "BT"}
		if err := dia.WriteUnitsDot(os.Stdout, ev.Graph()); err != nil {
			fatal("cannot write unit graph", err)
		}
		return
	}

	plan, err := ev.Plan()
	if err != nil {
		fatal("invalid build description", err)
	}

	switch {
	case writeDot:
		dia := srcset.Diagrammer{Name: cfg.BaseName, RankDir: "BT"}
		if err := dia.WriteDot(os.Stdout, plan); err != nil {
			fatal("cannot write task graph", err)
		}
		return
	case clean:
		if err := srcsetkore.Clean(plan, dryrun, trace); err != nil {
			fatal("clean failed", err)
		}
		return
	}

	env := srcset.DefaultEnv(trace)
	env.Toolchain = &srcset.CmdToolchain{
		ClassesDir:  classDir,
		CompileArgs: []string{"sh", "-c", compile},
		ArchiveArgs: []string{"sh", "-c", archive},
		TagOutput:   tagOutput,
	}
	bd, err := srcsetkore.NewBuilder(trace, env)
	if err != nil {
		fatal("cannot create builder", err)
	}
	if tasks := flag.Args(); len(tasks) > 0 {
		err = bd.NamedTasks(plan, tasks...)
	} else {
		err = bd.Plan(plan)
	}
	if err != nil {
		fatal("build failed", err)
	}

	if noPublish {
		return
	}
	pkgs, err := ev.Packages()
	if err != nil {
		fatal("cannot publish", err)
	}
	if len(pkgs) == 0 {
		return
	}
	repo, err := openRepository(trace)
	if err != nil {
		fatal("cannot open repository", err)
	}
	if err := repo.PushAll(ctx, pkgs); err != nil {
		fatal("publishing failed", err)
	}
}

func config() (srcsetkore.Config, error) {
	props, err := buildprops.Read(propsFile)
	if errors.Is(err, os.ErrNotExist) && propsFile == buildprops.DefaultFile {
		props, err = buildprops.FromMap(nil), nil
	}
	if err != nil {
		return srcsetkore.Config{}, err
	}
	if release {
		props.Release = true
	}
	cfg, err := props.Config(outDir, time.Now())
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", propsFile, err)
	}
	return cfg, nil
}

func openRepository(tr *srcsetkore.Trace) (*ocirepo.Repository, error) {
	if registry != "" {
		return ocirepo.OpenRemote(registry, plainHTTP, tr)
	}
	return ocirepo.OpenLayout(publish, tr)
}
