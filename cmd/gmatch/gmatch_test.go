package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Comcast/glushkov/match"
)

func TestLoadDef(t *testing.T) {
	d, err := loadDef(`{"cat":[{"star":{"alt":["a","b"]}},"ab"]}`, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Expr.String(); got != "(a|b)*ab" {
		t.Fatal(got)
	}

	if d, err = loadDef("", "../../defs/binary.yaml", ""); err != nil {
		t.Fatal(err)
	}
	if d.Name != "binary" {
		t.Fatal(d.Name)
	}

	if _, err = loadDef("", "", "nope"); err == nil {
		t.Fatal("didn't protest")
	}
	if _, err = loadDef("", "", ""); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestLoadDefOnlyOne(t *testing.T) {
	tests := []struct {
		name                     string
		exprJS, defFile, example string
	}{
		{"e and x", `"ab"`, "", "binary"},
		{"d and x", "", "../../defs/binary.yaml", "binary"},
		{"e and d", `"ab"`, "../../defs/binary.yaml", ""},
		{"all", `"ab"`, "../../defs/binary.yaml", "binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadDef(tt.exprJS, tt.defFile, tt.example); err == nil {
				t.Fatal("didn't protest")
			}
		})
	}
}

func TestStream(t *testing.T) {
	d, err := loadDef("", "", "binary")
	if err != nil {
		t.Fatal(err)
	}

	in := strings.NewReader(`"011"
not json
"01"
"0110111001"`)
	var out bytes.Buffer
	if err = stream(match.DefaultMatcher, d.Automaton, in, &out, false); err != nil {
		t.Fatal(err)
	}

	want := `{"word":"011","matched":true}
{"word":"01","matched":false}
{"word":"0110111001","matched":true}
`
	if out.String() != want {
		t.Fatalf("got\n%s", out.String())
	}
}
