package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/interpreters"

	md "github.com/russross/blackfriday/v2"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// RenderDefHTML writes an HTML fragment that documents the def and
// its automaton.
func RenderDefHTML(d *core.Def, out io.Writer) error {
	a, err := d.Compiled()
	if err != nil {
		return err
	}

	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="defDoc doc">%s</div>`, md.Run([]byte(d.Doc)))
	f(`<div class="expr"><code>%s</code></div>`, html.EscapeString(d.Expr.String()))

	if d.Source != nil {
		f(`<div class="code"><pre>%s</pre></div>`, html.EscapeString(fmt.Sprintf("%v", d.Source.Source)))
	} else if d.Tree != nil {
		js, err := json.MarshalIndent(d.Tree, "", "  ")
		if err != nil {
			return err
		}
		f(`<div class="tree"><pre>%s</pre></div>`, html.EscapeString(string(js)))
	}

	an := Analyze(a)
	f(`<div class="analysis"><table>`)
	f(`<tr><td>positions</td><td>%d</td></tr>`, an.Positions)
	f(`<tr><td>edges</td><td>%d</td></tr>`, an.Edges)
	f(`<tr><td>nullable</td><td>%v</td></tr>`, an.Nullable)
	f(`<tr><td>deterministic</td><td>%v</td></tr>`, an.Deterministic)
	f(`<tr><td>empty</td><td>%v</td></tr>`, an.Empty)
	f(`</table></div>`)

	f(`<div class="positions"><table>`)
	f(`<tr><th>position</th><th>symbol</th><th>first</th><th>last</th><th>followers</th></tr>`)
	for p := core.Position(1); int(p) <= a.Size(); p++ {
		v, _ := a.Symbol(p)
		f(`<tr id="p%d"><td>%d</td><td><code>%s</code></td><td>%v</td><td>%v</td><td>%s</td></tr>`,
			p, p, html.EscapeString(core.Sym(v).String()),
			a.Root.First.Has(p), a.Root.Last.Has(p), a.Followers(p))
	}
	f(`</table></div>`)

	return nil
}

// RenderDefPage writes a complete HTML page for the def.
//
// With includeGraph, the page also carries a Mermaid graph of the
// automaton.
func RenderDefPage(d *core.Def, out io.Writer, cssFiles []string, includeGraph bool) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/def-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(d.Name))

	if includeGraph {
		fmt.Fprintf(out, `  <script src="https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"></script>
  <script>mermaid.initialize({startOnLoad:true});</script>
`)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(d.Name))

	if includeGraph {
		var buf bytes.Buffer
		if err := Mermaid(d, nopCloser{&buf}, nil, core.Positions{}); err != nil {
			return err
		}
		fmt.Fprintf(out, "<div class=\"mermaid\">\n%s</div>\n", buf.String())
	}

	if err := RenderDefHTML(d, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderDefPage reads a def (with inlines), compiles it with
// the standard interpreters, and renders its page.
func ReadAndRenderDefPage(filename string, cssFiles []string, out io.Writer, includeGraph bool) error {
	src, err := ReadFileWithInlines(filename)
	if err != nil {
		return err
	}
	d, err := core.ParseDef(src)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err = d.Compile(ctx, interpreters.Standard(), true); err != nil {
		return err
	}

	return RenderDefPage(d, out, cssFiles, includeGraph)
}
