package srcset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

// Diagrammer writes unit graphs and task plans in the graphviz dot language.
type Diagrammer struct {
	Name    string
	RankDir string
}

// WriteDot writes the task graph of p. Arrows point from a prerequisite to the
// tasks that require it.
func (dia *Diagrammer) WriteDot(w io.Writer, p *Plan) (err error) {
	defer recoverDot(&err)
	dia.startDot(w, "plan")
	for _, t := range p.Tasks() {
		dia.task(w, t)
	}
	for _, t := range p.Tasks() {
		for _, pre := range t.Prerequisites() {
			fmt.Fprintf(w, "\t\"%p\" -> \"%p\";\n", pre, t)
		}
	}
	dia.endDot(w)
	return nil
}

// WriteUnitsDot writes the units of g and their extensions. Arrows point from
// a unit to the parents it extends; extensions that re-export the parent are
// drawn bold.
func (dia *Diagrammer) WriteUnitsDot(w io.Writer, g *srcsetkore.Graph) (err error) {
	defer recoverDot(&err)
	dia.startDot(w, "units")
	for _, u := range g.Registry().Units() {
		dia.unit(w, u)
	}
	for _, e := range g.Edges() {
		style := "dashed"
		if e.Channels.Has(srcsetkore.ChanInterface) {
			style = "bold"
		}
		fmt.Fprintf(w, "\t\"%p\" -> \"%p\" [style=%s,tooltip=\"%s\"];\n",
			e.From,
			e.To,
			style,
			e.Channels,
		)
	}
	dia.endDot(w)
	return nil
}

func recoverDot(err *error) {
	if p := recover(); p != nil {
		switch p := p.(type) {
		case error:
			*err = p
		case string:
			*err = errors.New(p)
		default:
			*err = fmt.Errorf("panic: %+v", p)
		}
	}
}

func (dia *Diagrammer) startDot(w io.Writer, what string) {
	name := dia.Name
	if name == "" {
		name = what
	}
	fmt.Fprintf(w, "digraph \"%s\" {\n", escDotID(name))
	if dia.RankDir != "" {
		fmt.Fprintf(w, "\trankdir=\"%s\"\n", escDotID(dia.RankDir))
	}
}

func (dia *Diagrammer) endDot(w io.Writer) {
	fmt.Fprintln(w, "}")
}

func (dia *Diagrammer) unit(w io.Writer, u *Unit) {
	switch u.Kind {
	case srcsetkore.KindBundle:
		fmt.Fprintf(w, "\t\"%p\" [shape=box3d,label=\"%s\"];\n", u, escDotID(u.Name()))
	case srcsetkore.KindDemo:
		fmt.Fprintf(w, "\t\"%p\" [shape=ellipse,style=dashed,label=\"%s\"];\n", u, escDotID(u.Name()))
	default:
		if an := u.ArtifactName(); an != u.Name() {
			fmt.Fprintf(w, "\t\"%p\" [shape=record,label=\"{%s|%s}\"];\n",
				u,
				escDotID(u.Name()),
				escDotID(an),
			)
			return
		}
		fmt.Fprintf(w, "\t\"%p\" [shape=box,label=\"%s\"];\n", u, escDotID(u.Name()))
	}
}

func (dia *Diagrammer) task(w io.Writer, t *Task) {
	switch {
	case t.IsUmbrella():
		style := "dashed"
		if len(t.Dependents()) == 0 {
			style = "dashed,bold"
		}
		fmt.Fprintf(w, "\t\"%p\" [shape=box,style=\"%s\",label=\"%s\"];\n",
			t,
			style,
			escDotID(t.Name()),
		)
	case t.Artifact != nil:
		fmt.Fprintf(w, "\t\"%p\" [shape=record,label=\"{%s|%s}\"];\n",
			t,
			t.Artifact.Kind,
			escDotID(t.Artifact.FileName()),
		)
	default:
		fmt.Fprintf(w, "\t\"%p\" [shape=box,style=\"rounded\",label=\"%s\"];\n",
			t,
			escDotID(t.Name()),
		)
	}
}

func escDotID(id string) string {
	return strings.ReplaceAll(id, "\"", "\\\"")
}
