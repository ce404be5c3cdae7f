package match

import (
	"fmt"
	"strings"

	"github.com/Comcast/glushkov/core"
)

// Trace records a simulation one symbol at a time.
type Trace struct {
	Word string `json:"word"`

	// Steps[i] is the active set after consuming Word[i].
	Steps []core.Positions `json:"steps"`

	// DiedAt is the index of the symbol that emptied the active
	// set, or -1 if that never happened.
	DiedAt int `json:"diedAt"`

	Matched bool `json:"matched"`
}

// Trace simulates the automaton on the word and records the active
// set after every symbol.  The verdict is the same as Matches.
func (m *Matcher) Trace(a *core.Automaton, w core.Word) *Trace {
	t := &Trace{
		Word:   string(w),
		Steps:  make([]core.Positions, 0, len(w)),
		DiedAt: -1,
	}
	if a == nil {
		return t
	}
	if len(w) == 0 {
		t.Matched = a.Root.Nullable
		return t
	}

	var active core.Positions
	for i, c := range w {
		if i == 0 {
			active = Start(a, c)
		} else {
			active = Step(a, active, c)
		}
		t.Steps = append(t.Steps, active)
		if active.Empty() && t.DiedAt < 0 {
			t.DiedAt = i
			if !m.NoShortCircuit {
				break
			}
		}
	}
	t.Matched = Accepting(a, active)
	return t
}

// String renders the trace one line per step.
func (t *Trace) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "word %q\n", t.Word)
	for i, s := range t.Steps {
		fmt.Fprintf(&b, "  %3d %q %s\n", i, t.Word[i], s)
	}
	if 0 <= t.DiedAt {
		fmt.Fprintf(&b, "  died at %d\n", t.DiedAt)
	}
	fmt.Fprintf(&b, "  matched %v\n", t.Matched)
	return b.String()
}
