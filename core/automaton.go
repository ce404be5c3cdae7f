/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

package core

import (
	"encoding/json"
	"fmt"
)

// Automaton is a position (Glushkov) automaton: the root NodeInfo of
// an expression, the symbol at every position, and the follower
// relation.
//
// An Automaton is read-only once built, so any number of goroutines
// can match words against the same one.
type Automaton struct {
	Root NodeInfo

	// symbols[p] is the value at position p.  Index 0 is unused.
	symbols []byte

	// followers[p] holds the positions that can follow p.
	followers []Positions

	// labeled[v] holds the positions with value v.
	labeled [256]Positions
}

func (a *Automaton) index() {
	for p := 1; p < len(a.symbols); p++ {
		a.labeled[a.symbols[p]].Add(Position(p))
	}
}

// Size is the number of positions.
func (a *Automaton) Size() int {
	if len(a.symbols) == 0 {
		return 0
	}
	return len(a.symbols) - 1
}

// Valid reports whether p is a position of this automaton.
func (a *Automaton) Valid(p Position) bool {
	return 0 < p && int(p) < len(a.symbols)
}

// Symbol returns the value at position p.
func (a *Automaton) Symbol(p Position) (byte, bool) {
	if !a.Valid(p) {
		return 0, false
	}
	return a.symbols[p], true
}

// Followers returns the positions that can immediately follow p.
func (a *Automaton) Followers(p Position) Positions {
	if !a.Valid(p) {
		return Positions{}
	}
	return a.followers[p]
}

// Labeled returns the positions whose value is v.
func (a *Automaton) Labeled(v byte) Positions {
	return a.labeled[v]
}

// Alphabet returns the distinct values at all positions in ascending
// order.
func (a *Automaton) Alphabet() []byte {
	acc := make([]byte, 0, 8)
	for v := 0; v < len(a.labeled); v++ {
		if !a.labeled[v].Empty() {
			acc = append(acc, byte(v))
		}
	}
	return acc
}

// Edges is the size of the follower relation.
func (a *Automaton) Edges() int {
	n := 0
	for _, fs := range a.followers {
		n += fs.Len()
	}
	return n
}

// automatonJSON is the external form of an Automaton.
type automatonJSON struct {
	Nullable  bool        `json:"nullable"`
	First     Positions   `json:"first"`
	Last      Positions   `json:"last"`
	Symbols   []int       `json:"symbols"`
	Followers []Positions `json:"followers"`
}

// MarshalJSON writes the automaton.  Symbols and Followers are listed
// for positions 1, 2, ... in order.
func (a *Automaton) MarshalJSON() ([]byte, error) {
	n := a.Size()
	x := automatonJSON{
		Nullable:  a.Root.Nullable,
		First:     a.Root.First,
		Last:      a.Root.Last,
		Symbols:   make([]int, n),
		Followers: make([]Positions, n),
	}
	for i := 0; i < n; i++ {
		x.Symbols[i] = int(a.symbols[i+1])
		x.Followers[i] = a.followers[i+1]
	}
	return json.Marshal(&x)
}

// UnmarshalJSON reads what MarshalJSON writes and checks that every
// position mentioned exists.
func (a *Automaton) UnmarshalJSON(bs []byte) error {
	var x automatonJSON
	if err := json.Unmarshal(bs, &x); err != nil {
		return err
	}
	if len(x.Followers) != len(x.Symbols) {
		return fmt.Errorf("automaton has %d symbols but %d follower sets", len(x.Symbols), len(x.Followers))
	}

	b := &Automaton{
		Root: NodeInfo{
			Nullable: x.Nullable,
			First:    x.First,
			Last:     x.Last,
		},
		symbols:   make([]byte, len(x.Symbols)+1),
		followers: make([]Positions, len(x.Symbols)+1),
	}
	for i, v := range x.Symbols {
		if v < 0 || 255 < v {
			return fmt.Errorf("automaton symbol %d at position %d out of range", v, i+1)
		}
		b.symbols[i+1] = byte(v)
		b.followers[i+1] = x.Followers[i]
	}

	var err error
	check := func(p Position) {
		if err == nil && !b.Valid(p) {
			err = fmt.Errorf("automaton refers to unknown position %d", p)
		}
	}
	b.Root.First.Each(check)
	b.Root.Last.Each(check)
	for _, fs := range b.followers {
		fs.Each(check)
	}
	if err != nil {
		return err
	}

	b.index()
	*a = *b
	return nil
}
