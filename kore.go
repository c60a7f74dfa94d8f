package srcset

import (
	"errors"
	"fmt"

	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

type (
	Evaluation  = srcsetkore.Evaluation
	Config      = srcsetkore.Config
	Unit        = srcsetkore.Unit
	Artifact    = srcsetkore.Artifact
	Package     = srcsetkore.Package
	PackageMeta = srcsetkore.PackageMeta
	Plan        = srcsetkore.Plan
	Task        = srcsetkore.Task
	Env         = srcsetkore.Env
	Trace       = srcsetkore.Trace
	Builder     = srcsetkore.Builder

	DeriveOptions = srcsetkore.DeriveOptions
)

func NewEvaluation(cfg Config, tr *Trace) *Evaluation {
	return srcsetkore.NewEvaluation(cfg, tr)
}

func DefaultEnv(tr *Trace) *Env { return srcsetkore.DefaultEnv(tr) }

func NewBuilder(tr *Trace, env *Env) *Builder {
	return mustRet(srcsetkore.NewBuilder(tr, env))
}

// Edit calls do with wrappers of [srcsetkore] types that allow easy editing of
// build descriptions. Edit recovers from any panic and returns it as an error,
// so the idiomatic error handling within do can be skipped.
func Edit(ev *Evaluation, do func(EvalEd)) (err error) {
	defer func() {
		if p := recover(); p != nil {
			switch p := p.(type) {
			case error:
				err = p
			case string:
				err = errors.New(p)
			default:
				err = fmt.Errorf("panic: %+v", p)
			}
		}
	}()
	do(EvalEd{ev})
	return
}

func mustEd(err error) {
	if err != nil {
		panic(err)
	}
}

func mustRet[T any](v T, err error) T {
	mustEd(err)
	return v
}
