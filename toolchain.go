package srcset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

// CmdToolchain compiles and archives units by running external commands. The
// arguments of the command lines may contain these placeholders:
//
//	{unit}      name of the unit
//	{output}    directory of the unit's compiled output
//	{classpath} compiled output directories of the classpath
//	{sources}   source roots of the unit
//	{artifact}  file of the archive
//	{contents}  directories that go into the archive
//	{include}   file pattern of the archive's content
//
// Lists are joined with [os.PathListSeparator].
type CmdToolchain struct {
	CWD         string
	ClassesDir  string // compiled output goes to <ClassesDir>/<unit>
	CompileArgs []string
	ArchiveArgs []string

	// TagOutput prefixes each line of tool output with the task name.
	TagOutput bool
}

var _ srcsetkore.Toolchain = (*CmdToolchain)(nil)

// OutputDir returns the directory of the compiled output of u.
func (tc *CmdToolchain) OutputDir(u *Unit) string {
	return filepath.Join(tc.ClassesDir, u.Name())
}

func (tc *CmdToolchain) outputDirs(us []*Unit) string {
	dirs := make([]string, len(us))
	for i, u := range us {
		dirs[i] = tc.OutputDir(u)
	}
	return joinPathList(dirs)
}

func (tc *CmdToolchain) CompileCmd(u *Unit, classpath []*Unit) []string {
	return expandArgs(tc.CompileArgs, strings.NewReplacer(
		"{unit}", u.Name(),
		"{output}", tc.OutputDir(u),
		"{classpath}", tc.outputDirs(classpath),
		"{sources}", joinPathList(u.SourceRoots),
	))
}

func (tc *CmdToolchain) ArchiveCmd(a *Artifact) []string {
	var contents string
	if a.Kind == srcsetkore.Binary {
		contents = tc.outputDirs(a.Outputs)
	} else {
		contents = joinPathList(a.SourceRoots())
	}
	return expandArgs(tc.ArchiveArgs, strings.NewReplacer(
		"{unit}", a.Unit.Name(),
		"{output}", tc.OutputDir(a.Unit),
		"{sources}", joinPathList(a.Unit.SourceRoots),
		"{artifact}", a.Location(),
		"{contents}", contents,
		"{include}", a.Kind.Include(),
	))
}

// Compile runs the compile command for u. A unit without source roots only
// gets its empty output directory, e.g. a bundle that merely collects.
func (tc *CmdToolchain) Compile(ctx context.Context, u *Unit, classpath []*Unit, env *Env) error {
	if len(tc.CompileArgs) == 0 {
		return errors.New("no compile command")
	}
	if err := os.MkdirAll(tc.OutputDir(u), 0777); err != nil {
		return err
	}
	if len(u.SourceRoots) == 0 {
		return nil
	}
	return tc.run(ctx, srcsetkore.TaskName("compile", u, ""), tc.CompileCmd(u, classpath), env)
}

func (tc *CmdToolchain) Archive(ctx context.Context, a *Artifact, env *Env) error {
	if len(tc.ArchiveArgs) == 0 {
		return errors.New("no archive command")
	}
	if err := os.MkdirAll(filepath.Dir(a.Location()), 0777); err != nil {
		return err
	}
	return tc.run(ctx, srcsetkore.ArchiveTaskName(a), tc.ArchiveCmd(a), env)
}

func (tc *CmdToolchain) run(ctx context.Context, task string, args []string, env *Env) error {
	xenv, err := env.ExecEnv()
	if err != nil {
		return fmt.Errorf("%s: %w", task, err)
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = tc.CWD
	cmd.Env = xenv
	cmd.Stdin = env.In
	cmd.Stdout, cmd.Stderr = env.Out, env.Err
	if tc.TagOutput {
		tag := task + "| "
		if cmd.Stdout != nil {
			out := tagLines(cmd.Stdout, tag)
			defer out.Close()
			cmd.Stdout = out
		}
		if cmd.Stderr != nil {
			errw := tagLines(cmd.Stderr, tag)
			defer errw.Close()
			cmd.Stderr = errw
		}
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

func expandArgs(tmpl []string, r *strings.Replacer) []string {
	res := make([]string, len(tmpl))
	for i, arg := range tmpl {
		res[i] = r.Replace(arg)
	}
	return res
}

func joinPathList(elems []string) string {
	return strings.Join(elems, string(os.PathListSeparator))
}
