package srcsetkore

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// Clean removes the archive files produced by the tasks of p. With dryrun
// set, it only reports what would be removed. Failing removals are reported
// as warnings.
func Clean(p *Plan, dryrun bool, tr *Trace) error {
	start := time.Now()
	tr = tr.pushPlan(p)
	tr.startPlan(p, "cleaning")
	for _, t := range p.tasks {
		a := t.Artifact
		if a == nil {
			continue
		}
		loc := a.Location()
		if _, err := os.Stat(loc); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				tr.Warn("cannot stat `artifact`: `err`", `artifact`, loc, `err`, err)
			}
			continue
		}
		tr.pushTask(t).removeArtifact(a)
		if !dryrun {
			if err := os.Remove(loc); err != nil {
				tr.Warn(err.Error())
			}
		}
	}
	tr.donePlan(p, "cleaning", time.Since(start))
	return nil
}
