package srcset

import (
	"strings"
	"testing"

	"git.fractalqb.de/fractalqb/testerr"
)

func TestDiagrammer(t *testing.T) {
	ev := NewEvaluation(Config{}, nil)
	testerr.Shall(Edit(ev, exampleDescription)).BeNil(t)
	plan := testerr.Shall1(ev.Plan()).BeNil(t)
	dia := Diagrammer{RankDir: "LR"}

	var sb strings.Builder
	testerr.Shall(dia.WriteDot(&sb, plan)).BeNil(t)
	dot := sb.String()
	if !strings.HasPrefix(dot, "digraph \"plan\" {\n\trankdir=\"LR\"\n") {
		t.Errorf("plan dot header:\n%s", dot)
	}
	edges := 0
	for _, task := range plan.Tasks() {
		edges += len(task.Prerequisites())
	}
	if n := strings.Count(dot, " -> "); n != edges {
		t.Errorf("%d arrows for %d prerequisites", n, edges)
	}
	if !strings.Contains(dot, "label=\"{binary|codec-a.jar}\"") {
		t.Errorf("no codec archive in:\n%s", dot)
	}

	sb.Reset()
	testerr.Shall(dia.WriteUnitsDot(&sb, ev.Graph())).BeNil(t)
	dot = sb.String()
	if n := strings.Count(dot, " -> "); n != len(ev.Graph().Edges()) {
		t.Errorf("%d arrows for %d edges", n, len(ev.Graph().Edges()))
	}
	for _, s := range []string{"shape=box3d,label=\"pkg\"", "style=dashed,label=\"player\"", "{codecA|codec-a}"} {
		if !strings.Contains(dot, s) {
			t.Errorf("no '%s' in:\n%s", s, dot)
		}
	}
}
