package tools

import (
	"reflect"
	"testing"

	"github.com/Comcast/glushkov/core"
)

func TestAnalysis(t *testing.T) {
	a, err := core.Build(core.ExampleAB())
	if err != nil {
		t.Fatal(err)
	}

	an := Analyze(a)
	if an.Positions != 6 || an.Edges != 13 || an.Alphabet != "ab" {
		t.Fatal(an)
	}
	if an.Nullable || an.Empty || an.Deterministic {
		t.Fatal(an)
	}
	if len(an.Unreachable) != 0 || len(an.Dead) != 0 {
		t.Fatal(an)
	}
}

func TestAnalysisDeadEnd(t *testing.T) {
	a, err := core.Build(core.ExampleDeadEnd())
	if err != nil {
		t.Fatal(err)
	}

	an := Analyze(a)
	if !an.Empty {
		t.Fatal("not empty")
	}
	// (a|b)* ∅ (a|b)*
	//  1 2      3 4
	if want := []core.Position{3, 4}; !reflect.DeepEqual(an.Unreachable, want) {
		t.Fatalf("unreachable %v", an.Unreachable)
	}
	if want := []core.Position{1, 2}; !reflect.DeepEqual(an.Dead, want) {
		t.Fatalf("dead %v", an.Dead)
	}
}

func TestAnalysisDeterministic(t *testing.T) {
	a, err := core.Build(core.Cat(core.Sym('a'), core.Star(core.Sym('b')), core.Sym('c')))
	if err != nil {
		t.Fatal(err)
	}
	if an := Analyze(a); !an.Deterministic || an.Empty {
		t.Fatal(an)
	}
}
