package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	. "github.com/Comcast/glushkov/core"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given def's automaton.
//
// There's a node for the start state and one for each position.
// Accepting states are double circles.  Any active positions (say,
// from a match.Trace step) are red.
func Dot(def *Def, w io.WriteCloser, active Positions) error {
	a, err := def.Compiled()
	if err != nil {
		return err
	}

	label := def.Name
	if def.Tree != nil {
		// YAML is easier to read than JSON in a graph label.
		bs, err := yaml.Marshal(def.Tree)
		if err != nil {
			label += "\\n" + err.Error()
		} else if len(bs) < 400 {
			label += "\\l" + strings.Replace(escape(string(bs)), "\n", "\\l", -1)
		}
	}

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [rankdir=LR,nodesep=0.3,ranksep=0.6,labeljust=l,label="%s"]
  node [shape="circle" style="filled" fillcolor="#99ddc8"]
  edge [fontsize = "12"]
`, label)

	shape := "circle"
	if a.Root.Nullable {
		shape = "doublecircle"
	}
	fmt.Fprintf(w, "  q0 [shape=\"%s\", style=\"filled,bold\", fillcolor=\"#2d93ad\", label=\"start\"]\n", shape)

	for p := Position(1); int(p) <= a.Size(); p++ {
		v, _ := a.Symbol(p)
		shape := "circle"
		if a.Root.Last.Has(p) {
			shape = "doublecircle"
		}
		color, fillcolor := "black", "#99ddc8"
		if active.Has(p) {
			color, fillcolor = "red", "#f98b8b"
		}
		fmt.Fprintf(w, "  q%d [shape=\"%s\", color=\"%s\", fillcolor=\"%s\", label=\"%d\\n%s\"]\n",
			p, shape, color, fillcolor, p, escape(Sym(v).String()))
	}

	edge := func(from, to Position) {
		v, _ := a.Symbol(to)
		fmt.Fprintf(w, "  q%d -> q%d [label=\"%s\"]\n", from, to, escape(Sym(v).String()))
	}

	a.Root.First.Each(func(p Position) {
		edge(0, p)
	})
	for p := Position(1); int(p) <= a.Size(); p++ {
		from := p
		a.Followers(p).Each(func(to Position) {
			edge(from, to)
		})
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function writes two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(def *Def, basename string, active Positions) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(def, dotfile, active); err != nil {
		return pngname, err
	}
	cmd := "dot -Tpng -Gstart=1 " + dotname + " > " + pngname
	if err := exec.Command("bash", "-c", cmd).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func escape(s string) string {
	s = strings.Replace(s, `\`, `\\`, -1)
	return strings.Replace(s, `"`, `\"`, -1)
}
