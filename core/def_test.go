package core

import (
	"context"
	"testing"
)

type fixedInterpreter struct {
	e Expr
}

func (i *fixedInterpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	return nil, nil
}

func (i *fixedInterpreter) Exec(ctx context.Context, src interface{}, compiled interface{}) (Expr, error) {
	return i.e, nil
}

func TestDefYAML(t *testing.T) {
	src := `
name: binary
doc: |
  Some binary strings.
tree:
  cat:
    - "011"
    - star:
        alt:
          - "011"
          - cat: ["1", {star: "0"}, "1"]
          - "0"
`
	d, err := ParseDef([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "binary" {
		t.Fatal(d.Name)
	}
	if _, err = d.Compiled(); err == nil {
		t.Fatal("compiled before Compile")
	} else if _, is := err.(*DefNotCompiled); !is {
		t.Fatalf("%v is a %T", err, err)
	}

	if err = d.Compile(context.Background(), nil, false); err != nil {
		t.Fatal(err)
	}
	a, err := d.Compiled()
	if err != nil {
		t.Fatal(err)
	}
	if a.Size() != 10 {
		t.Fatalf("size %d", a.Size())
	}
	if d.Expr.String() != ExampleBinary().String() {
		t.Fatal(d.Expr)
	}
}

func TestDefNoTree(t *testing.T) {
	d := &Def{Name: "nothing"}
	err := d.Compile(context.Background(), nil, false)
	if _, is := err.(*BadTree); !is {
		t.Fatalf("%v is a %T", err, err)
	}
}

func TestDefSource(t *testing.T) {
	is := InterpretersMap{
		"fixed": &fixedInterpreter{e: ExampleAB()},
	}

	d := &Def{
		Name: "ab",
		Source: &Source{
			Interpreter: "fixed",
		},
	}
	if err := d.Compile(context.Background(), is, false); err != nil {
		t.Fatal(err)
	}
	if d.Automaton.Size() != 6 {
		t.Fatal(d.Automaton.Size())
	}
	if d.Tree != nil {
		t.Fatal("Tree filled in for a Source")
	}

	d.Source.Interpreter = "missing"
	if err := d.Compile(context.Background(), is, true); err != InterpreterNotFound {
		t.Fatal(err)
	}
}

func TestNewDef(t *testing.T) {
	d, err := NewDef("ab", ExampleAB())
	if err != nil {
		t.Fatal(err)
	}
	if d.Tree == nil {
		t.Fatal("no tree")
	}

	u := NewUpdatableDef(d)
	if err = u.SetDef(&Def{Name: "raw"}); err == nil {
		t.Fatal("accepted an uncompiled def")
	}
	if u.Def() != d {
		t.Fatal("def changed")
	}
}
