package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/interpreters"
	"github.com/Comcast/glushkov/tools"

	"github.com/jsccast/yaml"
)

var Mods = map[string]Mod{
	"analyze": &Analyzer{},
	"dot":     &Grapher{},
	"mermaid": &Mermaider{},
	"html":    &Renderer{},
	"freeze":  &Freezer{},
}

// Interpreters is a hook for the interpreters used to compile defs.
var Interpreters = interpreters.Standard

// Mod does something with a compiled Def.
type Mod interface {
	F(context.Context, *core.Def, io.Writer) error
	Doc() string
	Flags() *flag.FlagSet
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// create opens the named file or, for "-", wraps out.
func create(filename string, out io.Writer) (io.WriteCloser, error) {
	if filename == "-" || filename == "" {
		return nopCloser{out}, nil
	}
	return os.Create(filename)
}

type Analyzer struct {
}

func (m *Analyzer) F(ctx context.Context, d *core.Def, out io.Writer) error {
	a, err := d.Compiled()
	if err != nil {
		return err
	}
	bs, err := yaml.Marshal(tools.Analyze(a))
	if err != nil {
		return err
	}
	_, err = out.Write(bs)
	return err
}

func (m *Analyzer) Doc() string {
	return "Report positions, edges, dead and unreachable positions, and determinism."
}

func (m *Analyzer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("analyze", flag.ExitOnError)
}

type Grapher struct {
	OutputFilename string
	Active         string
	PNG            string
}

func (m *Grapher) F(ctx context.Context, d *core.Def, out io.Writer) error {
	active, err := parseActive(m.Active)
	if err != nil {
		return err
	}

	if m.PNG != "" {
		filename, err := tools.PNG(d, m.PNG, active)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", filename)
		return nil
	}

	w, err := create(m.OutputFilename, out)
	if err != nil {
		return err
	}

	return tools.Dot(d, w, active) // Will Close w.
}

func (m *Grapher) Doc() string {
	return "Write a Graphviz dot file for the automaton."
}

func (m *Grapher) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("dot", flag.ExitOnError)
	fs.StringVar(&m.OutputFilename, "o", "-", "output filename")
	fs.StringVar(&m.Active, "a", "", "active positions as JSON (e.g. [1,3])")
	fs.StringVar(&m.PNG, "png", "", "basename for dot and png files (needs Graphviz)")
	return fs
}

type Mermaider struct {
	OutputFilename string
	Active         string
	NoSymbols      bool
}

func (m *Mermaider) F(ctx context.Context, d *core.Def, out io.Writer) error {
	active, err := parseActive(m.Active)
	if err != nil {
		return err
	}

	w, err := create(m.OutputFilename, out)
	if err != nil {
		return err
	}

	opts := &tools.MermaidOpts{
		ShowSymbols: !m.NoSymbols,
	}

	return tools.Mermaid(d, w, opts, active) // Will Close w.
}

func (m *Mermaider) Doc() string {
	return "Write a Mermaid flowchart for the automaton."
}

func (m *Mermaider) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("mermaid", flag.ExitOnError)
	fs.StringVar(&m.OutputFilename, "o", "-", "output filename")
	fs.StringVar(&m.Active, "a", "", "active positions as JSON (e.g. [1,3])")
	fs.BoolVar(&m.NoSymbols, "n", false, "don't label edges with symbols")
	return fs
}

type Renderer struct {
	OutputFilename string
	CSS            string
	Graph          bool
}

func (m *Renderer) F(ctx context.Context, d *core.Def, out io.Writer) error {
	w, err := create(m.OutputFilename, out)
	if err != nil {
		return err
	}
	defer w.Close()

	var css []string
	if m.CSS != "" {
		css = strings.Split(m.CSS, ",")
	}

	return tools.RenderDefPage(d, w, css, m.Graph)
}

func (m *Renderer) Doc() string {
	return "Render the def as an HTML page."
}

func (m *Renderer) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.ExitOnError)
	fs.StringVar(&m.OutputFilename, "o", "-", "output filename")
	fs.StringVar(&m.CSS, "css", "", "comma-separated CSS URLs")
	fs.BoolVar(&m.Graph, "g", false, "include a Mermaid graph")
	return fs
}

// Freezer replaces a def's source with the tree that the source
// produced.  Then the def no longer needs an interpreter.
type Freezer struct {
}

func (m *Freezer) F(ctx context.Context, d *core.Def, out io.Writer) error {
	if d.Expr == nil {
		return &core.DefNotCompiled{Def: d}
	}

	tree, err := core.TreeOf(d.Expr)
	if err != nil {
		return err
	}

	frozen := &core.Def{
		Name: d.Name,
		Doc:  d.Doc,
		Tree: tree,
	}
	if d.Source != nil {
		frozen.Doc = strings.TrimSpace(frozen.Doc + "\n\nFrozen from " + d.Source.Interpreter + " source.")
	}

	bs, err := yaml.Marshal(frozen)
	if err != nil {
		return err
	}
	_, err = out.Write(bs)
	return err
}

func (m *Freezer) Doc() string {
	return "Replace the def's source with the tree it produces."
}

func (m *Freezer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("freeze", flag.ExitOnError)
}

func parseActive(js string) (core.Positions, error) {
	var ps core.Positions
	if js == "" {
		return ps, nil
	}
	if err := ps.UnmarshalJSON([]byte(js)); err != nil {
		return ps, fmt.Errorf("bad active positions %q: %w", js, err)
	}
	return ps, nil
}
