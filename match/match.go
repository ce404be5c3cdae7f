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

// Package match simulates position automata against words.
//
// The simulation keeps the set of positions that could have consumed
// the most recent symbol.  The first symbol picks from the root's
// First positions.  Every later symbol picks from the followers of
// the active positions.  Either way only positions labeled with the
// symbol survive.  A word matches if its last symbol left at least
// one Last position active, or, for the empty word, if the
// expression is nullable.
//
// Nothing here modifies an Automaton, so any number of goroutines can
// match against the same one.
package match

import (
	"github.com/Comcast/glushkov/core"
)

// Matcher runs words through an Automaton.
type Matcher struct {
	// NoShortCircuit keeps consuming symbols after the active set
	// has become empty.  The answer is the same.  This switch
	// exists for measurements and for Traces that should cover
	// the whole word.
	NoShortCircuit bool

	// Workers is the number of goroutines MatchAll uses.  Zero or
	// one means MatchAll runs in the caller's goroutine.
	Workers int
}

// DefaultMatcher short-circuits and doesn't use extra goroutines.
var DefaultMatcher = &Matcher{}

// Start returns the positions that can consume c as the first symbol
// of a word.
func Start(a *core.Automaton, c byte) core.Positions {
	return a.Root.First.Intersection(a.Labeled(c))
}

// Step returns the positions that can consume c right after one of
// the active positions.
func Step(a *core.Automaton, active core.Positions, c byte) core.Positions {
	var next core.Positions
	active.Each(func(p core.Position) {
		next.AddAll(a.Followers(p))
	})
	return next.Intersection(a.Labeled(c))
}

// Accepting reports whether a word that left the given active set is
// in the language.  Only meaningful after at least one symbol.
func Accepting(a *core.Automaton, active core.Positions) bool {
	return active.Intersects(a.Root.Last)
}

// Matches reports whether the automaton accepts the word.
//
// A word with a symbol that appears nowhere in the expression simply
// doesn't match.
func (m *Matcher) Matches(a *core.Automaton, w core.Word) bool {
	if a == nil {
		return false
	}
	if len(w) == 0 {
		return a.Root.Nullable
	}

	active := Start(a, w[0])
	for _, c := range w[1:] {
		if active.Empty() && !m.NoShortCircuit {
			return false
		}
		active = Step(a, active, c)
	}
	return Accepting(a, active)
}

// Matches uses the DefaultMatcher.
func Matches(a *core.Automaton, w core.Word) bool {
	return DefaultMatcher.Matches(a, w)
}
