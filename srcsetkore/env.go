package srcsetkore

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
)

// Toolchain does the actual compiling and archiving for a [Builder].
type Toolchain interface {
	// Compile compiles the sources of u with the compiled outputs of the
	// classpath units visible.
	Compile(ctx context.Context, u *Unit, classpath []*Unit, env *Env) error

	// Archive writes the archive file of a to a.Location(). Empty artifacts
	// must still produce a valid archive.
	Archive(ctx context.Context, a *Artifact, env *Env) error
}

// Env is the environment tasks run in. Tags are passed to external tools as
// environment variables.
type Env struct {
	In        io.Reader
	Out, Err  io.Writer
	Toolchain Toolchain

	tags    map[string]string
	xenv    []string
	xenvErr error
}

// DefaultEnv creates an environment with the standard I/O streams and the
// process environment as tags.
func DefaultEnv(tr *Trace) *Env {
	env := &Env{
		In:   os.Stdin,
		Out:  os.Stdout,
		Err:  os.Stderr,
		tags: make(map[string]string),
	}
	for _, evar := range os.Environ() {
		kv := strings.SplitN(evar, "=", 2)
		if kv[0] == "" {
			tr.Warn("ignoring default `env`", `env`, evar)
			continue
		}
		switch len(kv) {
		case 1:
			env.tags[kv[0]] = ""
		default:
			env.tags[kv[0]] = kv[1]
		}
	}
	return env
}

func (e *Env) Clone() *Env {
	return &Env{
		In: e.In, Out: e.Out, Err: e.Err,
		Toolchain: e.Toolchain,
		tags:      maps.Clone(e.tags),
	}
}

func (e *Env) Tag(key string) (string, bool) {
	v, ok := e.tags[key]
	return v, ok
}

func (e *Env) SetTag(key, val string) {
	if e.tags == nil {
		e.tags = make(map[string]string)
	}
	e.tags[key] = val
	e.clearXEnv()
}

// SetTags sets tags from key=value strings. A string without '=' sets the
// tag to the empty value.
func (e *Env) SetTags(env ...string) {
	if e.tags == nil {
		e.tags = make(map[string]string)
	}
	for _, evar := range env {
		kv := strings.SplitN(evar, "=", 2)
		switch len(kv) {
		case 1:
			e.tags[kv[0]] = ""
		case 2:
			e.tags[kv[0]] = kv[1]
		}
	}
	e.clearXEnv()
}

func (e *Env) DelTag(key string) {
	delete(e.tags, key)
	e.clearXEnv()
}

type NonXEnvKeys []string

func (e NonXEnvKeys) Error() string {
	return fmt.Sprintf("illegal exec env keys: %s", strings.Join(e, ", "))
}

func (NonXEnvKeys) Is(target error) bool {
	_, ok := target.(NonXEnvKeys)
	return ok
}

// ExecEnv returns the tags as environment for [os/exec.Cmd]. Tags that cannot
// be environment variables are reported with a [NonXEnvKeys] error.
func (e *Env) ExecEnv() ([]string, error) {
	if e.xenv == nil {
		var errKeys []string
		for k, v := range e.tags {
			switch {
			case k == "":
				errKeys = append(errKeys, `""`)
			case strings.ContainsRune(k, '='):
				errKeys = append(errKeys, k)
			default:
				e.xenv = append(e.xenv, fmt.Sprintf("%s=%s", k, v))
			}
		}
		if len(errKeys) > 0 {
			e.xenvErr = NonXEnvKeys(errKeys)
		}
	}
	return e.xenv, e.xenvErr
}

func (e *Env) clearXEnv() {
	e.xenv = nil
	e.xenvErr = nil
}
