package goja

import (
	"context"
	"testing"
	"time"

	"github.com/Comcast/glushkov/core"
)

func run(t *testing.T, i *Interpreter, src interface{}) core.Expr {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	compiled, err := i.Compile(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	e, err := i.Exec(ctx, src, compiled)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestExprSimple(t *testing.T) {
	code := `return _.cat(_.star(_.alt("a", "b")), "ab", _.star(_.alt(_.sym("a"), _.sym(98))));`
	e := run(t, NewInterpreter(), code)
	if got, want := e.String(), core.ExampleAB().String(); got != want {
		t.Fatalf("got %s, wanted %s", got, want)
	}
}

func TestExprString(t *testing.T) {
	e := run(t, NewInterpreter(), `return "0" + "11";`)
	if got := e.String(); got != "011" {
		t.Fatal(got)
	}
}

func TestExprLiteralObject(t *testing.T) {
	e := run(t, NewInterpreter(), `return {alt:[{eps:true}, {star:{sym:"x"}}, _.empty()]};`)
	if got := e.String(); got != "ε|x*|∅" {
		t.Fatal(got)
	}
}

func TestExprLoop(t *testing.T) {
	// (a|b)^5
	code := `
var acc = [];
for (var i = 0; i < 5; i++) { acc.push(_.alt("a", "b")); }
return _.cat.apply(null, acc);
`
	e := run(t, NewInterpreter(), code)
	a, err := core.Build(e)
	if err != nil {
		t.Fatal(err)
	}
	if a.Size() != 10 {
		t.Fatal(a.Size())
	}
}

func TestExprMatches(t *testing.T) {
	code := `
var x = _.cat("a", _.star("b"));
if (!_.matches(x, "abbb") || _.matches(x, "ba")) { throw "matches is broken"; }
return x;
`
	run(t, NewInterpreter(), code)
}

func TestExprBadSymbol(t *testing.T) {
	ctx := context.Background()
	i := NewInterpreter()
	code := `return _.sym("ab");`
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = i.Exec(ctx, code, compiled); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestExprNothing(t *testing.T) {
	ctx := context.Background()
	i := NewInterpreter()
	code := `var x = 1;`
	if _, err := i.Exec(ctx, code, nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestExprBadTree(t *testing.T) {
	ctx := context.Background()
	i := NewInterpreter()
	code := `return {likes:"chips"};`
	_, err := i.Exec(ctx, code, nil)
	if _, is := err.(*core.BadTree); !is {
		t.Fatalf("%v is a %T", err, err)
	}
}

func TestExprTimeout(t *testing.T) {
	code := `for (;;) { sleep(10); } return "a";`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, code, compiled); err != Interrupted {
		t.Fatalf("surprised by %v", err)
	}
}

func TestExprRequires(t *testing.T) {
	code := map[string]interface{}{
		"requires": []interface{}{"ab"},
		"code":     `return _.cat(ab(), "ab", ab());`,
	}

	i := NewInterpreter()
	i.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"ab": `function ab() { return _.star(_.alt("a", "b")); }`,
	})

	e := run(t, i, code)
	if got, want := e.String(), core.ExampleAB().String(); got != want {
		t.Fatalf("got %s, wanted %s", got, want)
	}
}

func TestExprInlineRequires(t *testing.T) {
	code := `require("bin");
binary();`

	i := NewInterpreter()
	i.InlineRequires = true
	i.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"bin": `function binary() { return _.cat("011", _.star(_.alt("011", _.cat("1", _.star("0"), "1"), "0"))); }`,
	})

	e := run(t, i, code)
	if got, want := e.String(), core.ExampleBinary().String(); got != want {
		t.Fatalf("got %s, wanted %s", got, want)
	}
}

func TestInlineRequiresMissing(t *testing.T) {
	provider := func(ctx context.Context, name string) (string, error) {
		return MakeMapLibraryProvider(nil)(ctx, nil, name)
	}
	if _, err := InlineRequires(context.Background(), `require("nope");`, provider); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestDefaultInterpreter(t *testing.T) {
	d := &core.Def{
		Name: "ab",
		Source: &core.Source{
			Source: `return _.cat("a", "b");`,
		},
	}
	if err := d.Compile(context.Background(), nil, false); err != nil {
		t.Fatal(err)
	}
	if d.Automaton.Size() != 2 {
		t.Fatal(d.Automaton.Size())
	}
}
