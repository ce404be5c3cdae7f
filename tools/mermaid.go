/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"fmt"
	"io"
	"strings"

	. "github.com/Comcast/glushkov/core"
)

type MermaidOpts struct {
	// ShowSymbols will label each edge with the symbol consumed
	// by the target position.
	ShowSymbols bool `json:"showSymbols"`

	// AcceptFill is the fill color for accepting positions.
	// Does not apply if AcceptClass is set.
	AcceptFill string `json:"acceptFill,omitempty"`

	// AcceptClass will be the CSS class for accepting positions.
	AcceptClass string `json:"acceptClass,omitempty"`

	// ActiveFill is the fill color for active positions.
	ActiveFill string `json:"activeFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given def's automaton.
func Mermaid(def *Def, w io.WriteCloser, opts *MermaidOpts, active Positions) error {
	a, err := def.Compiled()
	if err != nil {
		return err
	}

	if opts == nil {
		opts = &MermaidOpts{
			ShowSymbols: true,
			AcceptFill:  "#bcf2db",
			ActiveFill:  "#f98b8b",
		}
	}

	fmt.Fprintf(w, "graph LR\n")

	accept := func(nid string) {
		switch {
		case opts.AcceptClass != "":
			fmt.Fprintf(w, "  class %s %s\n", nid, opts.AcceptClass)
		case opts.AcceptFill != "":
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.AcceptFill)
		}
	}

	fmt.Fprintf(w, "  n0((\"start\"))\n")
	if a.Root.Nullable {
		accept("n0")
	}

	for p := Position(1); int(p) <= a.Size(); p++ {
		v, _ := a.Symbol(p)
		nid := fmt.Sprintf("n%d", p)
		fmt.Fprintf(w, "  %s(\"%d: %s\")\n", nid, p, mermaidQuote(Sym(v).String()))
		if a.Root.Last.Has(p) {
			accept(nid)
		}
		if active.Has(p) && opts.ActiveFill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.ActiveFill)
		}
	}

	edge := func(from, to Position) {
		label := ""
		if opts.ShowSymbols {
			v, _ := a.Symbol(to)
			label = fmt.Sprintf(`-- "%s"`, mermaidQuote(Sym(v).String()))
		}
		fmt.Fprintf(w, "  n%d %s --> n%d\n", from, label, to)
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

	fmt.Fprintf(w, "\n")

	return w.Close()
}

func mermaidQuote(s string) string {
	return strings.Replace(s, `"`, "#quot;", -1)
}
