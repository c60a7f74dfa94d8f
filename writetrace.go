package srcset

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"git.fractalqb.de/fractalqb/sllm/v3"
	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

// WriteTracer writes human readable trace lines to W. Messages use sllm
// templates, i.e. arguments are referenced by `name` in the message.
type WriteTracer struct {
	W   io.Writer
	Log srcsetkore.TraceLog
}

var _ srcsetkore.Tracer = (*WriteTracer)(nil)

func DefaultTracer() srcsetkore.Tracer {
	return &WriteTracer{W: os.Stderr, Log: srcsetkore.DefaultTraceLog}
}

func (tr *WriteTracer) ParseLogFlag(f string) error {
	switch f {
	case "":
		return nil
	case "off":
		tr.Log = 0
	case "warn", "w":
		tr.Log = srcsetkore.TraceWarn
	case "info", "i":
		tr.Log = srcsetkore.TraceWarn | srcsetkore.TraceInfo
	case "debug", "d":
		tr.Log = srcsetkore.TraceWarn | srcsetkore.TraceInfo | srcsetkore.TraceDebug
	default:
		return fmt.Errorf("write tracer: illegal log flag '%s'", f)
	}
	return nil
}

func (tr *WriteTracer) Debug(t *srcsetkore.Trace, msg string, args ...any) {
	if tr.Log&srcsetkore.TraceDebug == 0 {
		return
	}
	tr.message(t, "DEBUG", msg, args)
}

func (tr *WriteTracer) Info(t *srcsetkore.Trace, msg string, args ...any) {
	if tr.Log&(srcsetkore.TraceInfo|srcsetkore.TraceDebug) == 0 {
		return
	}
	tr.message(t, "INFO ", msg, args)
}

func (tr *WriteTracer) Warn(t *srcsetkore.Trace, msg string, args ...any) {
	if !tr.logTasks() {
		return
	}
	tr.message(t, "WARN ", msg, args)
}

func (tr *WriteTracer) message(t *srcsetkore.Trace, level, msg string, args []any) {
	fmt.Fprintf(tr.W, "%d@%s\t  %s ", t.Build(), t.TopTag(), level)
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr *WriteTracer) StartPlan(t *srcsetkore.Trace, p *srcsetkore.Plan, activity string) {
	if !tr.logTasks() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t{ %s %s\n",
		t.Build(),
		t.TopTag(),
		activity,
		p,
	)
}

func (tr *WriteTracer) DonePlan(t *srcsetkore.Trace, p *srcsetkore.Plan, activity string, dt time.Duration) {
	if !tr.logTasks() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t} %s %s took %s\n",
		t.Build(),
		t.TopTag(),
		activity,
		p,
		dt,
	)
}

func (tr *WriteTracer) logTasks() bool {
	return tr.Log&(srcsetkore.TraceWarn|srcsetkore.TraceInfo|srcsetkore.TraceDebug) != 0
}

func (tr *WriteTracer) logRuns() bool {
	return tr.Log&(srcsetkore.TraceInfo|srcsetkore.TraceDebug) != 0
}

func (tr *WriteTracer) CheckTask(t *srcsetkore.Trace, task *srcsetkore.Task) {
	if tr.Log&srcsetkore.TraceDebug == 0 {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t? [%s] %s\n",
		t.Build(),
		t.TopTag(),
		task,
		t.Path(),
	)
}

func (tr *WriteTracer) RunTask(t *srcsetkore.Trace, task *srcsetkore.Task) {
	if !tr.logRuns() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t! [%s] %s\n",
		t.Build(),
		t.TopTag(),
		task,
		task.Describe(),
	)
}

func (tr *WriteTracer) RemoveArtifact(t *srcsetkore.Trace, a *srcsetkore.Artifact) {
	if !tr.logTasks() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t! remove artifact %s\n",
		t.Build(),
		t.TopTag(),
		a.Location(),
	)
}

type sllmArgs []any

func (as sllmArgs) append(buf []byte, _ int, n string) ([]byte, error) {
	for len(as) > 0 {
		switch k := as[0].(type) {
		case string:
			if len(as) == 1 {
				return buf, fmt.Errorf("no value for key '%s'", n)
			}
			if k == n {
				return sllm.AppendArg(buf, as[1]), nil
			}
			as = as[2:]
		case slog.Attr:
			if k.Key == n {
				return sllm.AppendArg(buf, k.Value), nil
			}
			as = as[1:]
		default:
			return buf, fmt.Errorf("illegal key type %T", k)
		}
	}
	return buf, fmt.Errorf("no key '%s'", n)
}
