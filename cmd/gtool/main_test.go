package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/Comcast/glushkov/core"
)

func readTestDef(t *testing.T, filename string) *core.Def {
	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// %inline paths are relative to the current directory.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err = os.Chdir("../../defs"); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	d, err := readDef(f)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestYAMLToJSON(t *testing.T) {
	in := strings.NewReader("name: ab\ntree: ab\n")
	var out bytes.Buffer
	if err := yamlToJSON(in, &out, false); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != `{"name":"ab","tree":"ab"}` {
		t.Fatal(got)
	}

	back := &bytes.Buffer{}
	if err := jsonToYAML(&out, back); err != nil {
		t.Fatal(err)
	}
	d, err := core.ParseDef(back.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "ab" || d.Tree != "ab" {
		t.Fatalf("%#v", d)
	}
}

func TestMods(t *testing.T) {
	d := readTestDef(t, "../../defs/binary.yaml")

	tests := []struct {
		mod  string
		args []string
		want string
	}{
		{"analyze", nil, "positions: 10"},
		{"dot", []string{"-a", "[3]"}, `q3 [`},
		{"mermaid", nil, `n0 -- "0" --> n1`},
		{"html", []string{"-g"}, `<code>011(011|10*1|0)*</code>`},
		{"freeze", nil, "tree:"},
	}

	for _, tt := range tests {
		t.Run(tt.mod, func(t *testing.T) {
			mod := Mods[tt.mod]
			if err := mod.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			var out bytes.Buffer
			if err := mod.F(context.Background(), d, &out); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Fatalf("%q not in\n%s", tt.want, out.String())
			}
		})
	}
}

func TestFreeze(t *testing.T) {
	d := readTestDef(t, "../../defs/binary.yaml")

	var out bytes.Buffer
	if err := (&Freezer{}).F(context.Background(), d, &out); err != nil {
		t.Fatal(err)
	}

	frozen, err := core.ParseDef(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if frozen.Source != nil {
		t.Fatal("still has a source")
	}
	if err = frozen.Compile(context.Background(), nil, false); err != nil {
		t.Fatal(err)
	}
	if got, want := frozen.Expr.String(), d.Expr.String(); got != want {
		t.Fatalf("%s != %s", got, want)
	}
}

func TestParseActive(t *testing.T) {
	ps, err := parseActive("[1,3]")
	if err != nil {
		t.Fatal(err)
	}
	if !ps.Equal(core.NewPositions(1, 3)) {
		t.Fatal(ps)
	}
	if _, err = parseActive("[1,"); err == nil {
		t.Fatal("no error")
	}
}
