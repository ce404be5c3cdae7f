package match

import (
	"context"
	"reflect"
	"testing"

	"github.com/Comcast/glushkov/core"
	. "github.com/Comcast/glushkov/util/testutil"
)

type wordTest struct {
	word  string
	match bool
}

func checkWords(t *testing.T, e core.Expr, tests []wordTest) {
	a, err := core.Build(e)
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		if got := Matches(a, core.Word(tt.word)); got != tt.match {
			t.Errorf("%s on %q: got %v", e, tt.word, got)
		}
	}
}

func TestMatchAB(t *testing.T) {
	checkWords(t, core.ExampleAB(), []wordTest{
		{"ab", true},
		{"a", false},
		{"", false},
		{"aab", true},
		{"bbabb", true},
		{"ba", false},
		{"abc", false},
	})
}

func TestMatchBinary(t *testing.T) {
	checkWords(t, core.ExampleBinary(), []wordTest{
		{"011", true},
		{"01", false},
		{"0110", true},
		{"0110111001", true},
		{"0110111000", false},
		{"01101110010", true},
		{"", false},
	})
}

func TestMatchDeadEnd(t *testing.T) {
	checkWords(t, core.ExampleDeadEnd(), []wordTest{
		{"", false},
		{"a", false},
		{"ab", false},
		{"abba", false},
	})
}

func TestMatchEpsilon(t *testing.T) {
	checkWords(t, core.Eps(), []wordTest{
		{"", true},
		{"a", false},
	})
	checkWords(t, core.Nothing(), []wordTest{
		{"", false},
		{"a", false},
	})
}

func TestWordsMatchStarAB(t *testing.T) {
	words := Words("", "ab", "a", "aaaa", "aaac", "aa\x07c", "aab", Repeat("aab", 6))
	got, err := WordsMatch(core.ExampleStarAB(), words)
	if err != nil {
		t.Fatal(err)
	}
	if want := (Indices{0, 1, 6, 7}); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
}

func TestWordsMatchNothing(t *testing.T) {
	ab := func() core.Expr { return core.Star(core.Alt(core.Sym('a'), core.Sym('b'))) }
	cd := core.Star(core.Alt(core.Sym('c'), core.Sym('d')))
	ef := core.Star(core.Alt(core.Sym('e'), core.Sym('f')))
	e := core.Cat(core.Star(core.Cat(ab(), cd, ef)), core.Nothing(), ab())

	words := Words("", "ab", "a", "aaaa", "aaac", "aa\x07c", "aab", Repeat("aab", 6))
	got, err := WordsMatch(e, words)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestWordsMatchBinary(t *testing.T) {
	words := Words("01", "011", "0110", "0110111000", "0110111001", "01101110010")
	got, err := WordsMatch(core.ExampleBinary(), words)
	if err != nil {
		t.Fatal(err)
	}
	if want := (Indices{1, 2, 4, 5}); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
	if !got.Has(4) || got.Has(3) || got.Has(-1) || got.Has(6) {
		t.Fatal("Has")
	}
}

func TestWordsMatchEmptyBatch(t *testing.T) {
	got, err := WordsMatch(core.ExampleAB(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatal(got)
	}
}

func TestWordsMatchInvalid(t *testing.T) {
	_, err := WordsMatch(&core.Concatenation{Left: core.Sym('a')}, Words("a"))
	if _, is := err.(*core.InvalidTree); !is {
		t.Fatalf("%v is a %T", err, err)
	}
}

func TestMatchAllWorkers(t *testing.T) {
	a, err := core.Build(core.ExampleAB())
	if err != nil {
		t.Fatal(err)
	}
	var words []core.Word
	for i := 0; i < 1000; i++ {
		switch i % 3 {
		case 0:
			words = append(words, core.Word("ab"))
		case 1:
			words = append(words, core.Word("ba"))
		default:
			words = append(words, core.Word(Repeat("b", i)+"a"))
		}
	}

	seq, err := DefaultMatcher.MatchAll(context.Background(), a, words)
	if err != nil {
		t.Fatal(err)
	}
	par, err := (&Matcher{Workers: 7}).MatchAll(context.Background(), a, words)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Fatal("workers changed the answer")
	}
	if len(seq) != 334 {
		t.Fatal(len(seq))
	}
}

func TestMatchAllCanceled(t *testing.T) {
	a, err := core.Build(core.ExampleAB())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, m := range []*Matcher{DefaultMatcher, {Workers: 3}} {
		if _, err := m.MatchAll(ctx, a, Words("ab", "ab", "ab", "ab")); err != context.Canceled {
			t.Fatalf("workers %d: %v", m.Workers, err)
		}
	}
}

func TestTrace(t *testing.T) {
	a, err := core.Build(core.ExampleAB())
	if err != nil {
		t.Fatal(err)
	}

	tr := DefaultMatcher.Trace(a, core.Word("aab"))
	if !tr.Matched || tr.DiedAt != -1 || len(tr.Steps) != 3 {
		t.Fatal(tr)
	}
	// (a|b)* a b (a|b)*
	//  1 2   3 4  5 6
	want := []core.Positions{
		core.NewPositions(1, 3),
		core.NewPositions(1, 3),
		core.NewPositions(2, 4),
	}
	for i, s := range want {
		if !tr.Steps[i].Equal(s) {
			t.Fatalf("step %d: %s", i, tr.Steps[i])
		}
	}

	tr = DefaultMatcher.Trace(a, core.Word("acab"))
	if tr.Matched || tr.DiedAt != 1 || len(tr.Steps) != 2 {
		t.Fatal(tr)
	}

	tr = (&Matcher{NoShortCircuit: true}).Trace(a, core.Word("acab"))
	if tr.Matched || tr.DiedAt != 1 || len(tr.Steps) != 4 {
		t.Fatal(tr)
	}
}
