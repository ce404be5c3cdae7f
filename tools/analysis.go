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

package tools

import (
	"github.com/Comcast/glushkov/core"
)

// Analysis reports some structural facts about an automaton.
type Analysis struct {
	Positions int    `json:"positions"`
	Edges     int    `json:"edges"`
	Alphabet  string `json:"alphabet"`
	Nullable  bool   `json:"nullable"`

	// Unreachable positions can't be reached from any First
	// position.
	Unreachable []core.Position `json:"unreachable,omitempty"`

	// Dead positions can't reach any Last position.
	Dead []core.Position `json:"dead,omitempty"`

	// Deterministic is true when no two candidate positions ever
	// share a symbol, so every step leaves at most one active
	// position.
	Deterministic bool `json:"deterministic"`

	// Empty is true when no word at all matches.
	Empty bool `json:"empty"`
}

// Analyze examines the automaton.
func Analyze(a *core.Automaton) *Analysis {
	n := a.Size()
	an := &Analysis{
		Positions:     n,
		Edges:         a.Edges(),
		Alphabet:      string(a.Alphabet()),
		Nullable:      a.Root.Nullable,
		Deterministic: distinctSymbols(a, a.Root.First),
	}

	// Forward from First.
	reached := closure(a.Root.First, func(p core.Position) core.Positions {
		return a.Followers(p)
	})

	// Backward from Last.
	preds := make([]core.Positions, n+1)
	for p := core.Position(1); int(p) <= n; p++ {
		q := p
		a.Followers(p).Each(func(f core.Position) {
			preds[f].Add(q)
		})
		if !distinctSymbols(a, a.Followers(p)) {
			an.Deterministic = false
		}
	}
	live := closure(a.Root.Last, func(p core.Position) core.Positions {
		return preds[p]
	})

	for p := core.Position(1); int(p) <= n; p++ {
		if !reached.Has(p) {
			an.Unreachable = append(an.Unreachable, p)
		}
		if !live.Has(p) {
			an.Dead = append(an.Dead, p)
		}
	}

	an.Empty = !a.Root.Nullable && !reached.Intersects(live)

	return an
}

// closure returns everything reachable from the given positions,
// including those positions.
func closure(from core.Positions, next func(core.Position) core.Positions) core.Positions {
	var acc core.Positions
	pending := from.Slice()
	acc.AddAll(from)
	for 0 < len(pending) {
		p := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		next(p).Each(func(q core.Position) {
			if !acc.Has(q) {
				acc.Add(q)
				pending = append(pending, q)
			}
		})
	}
	return acc
}

func distinctSymbols(a *core.Automaton, ps core.Positions) bool {
	var seen [256]bool
	ok := true
	ps.Each(func(p core.Position) {
		v, _ := a.Symbol(p)
		if seen[v] {
			ok = false
		}
		seen[v] = true
	})
	return ok
}
