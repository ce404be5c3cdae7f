package core

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Position identifies one Symbol occurrence in an expression.
//
// Positions are allocated from 1 in the order the Builder meets
// Symbol leaves.
type Position int

// Positions is a set of Positions.
//
// The zero value is an empty set.  Values returned by this package
// are never modified after they are handed out; methods that change
// a set have pointer receivers and are only used on sets the caller
// owns.
type Positions struct {
	bits *bitset.BitSet
}

// NewPositions makes a set containing the given positions.
func NewPositions(ps ...Position) Positions {
	var s Positions
	for _, p := range ps {
		s.Add(p)
	}
	return s
}

// Add puts p in the set.
func (s *Positions) Add(p Position) {
	if p < 0 {
		return
	}
	if s.bits == nil {
		s.bits = bitset.New(uint(p) + 1)
	}
	s.bits.Set(uint(p))
}

// AddAll puts every member of t in the set.
func (s *Positions) AddAll(t Positions) {
	if t.bits == nil {
		return
	}
	if s.bits == nil {
		s.bits = t.bits.Clone()
		return
	}
	s.bits.InPlaceUnion(t.bits)
}

// Has reports whether p is in the set.
func (s Positions) Has(p Position) bool {
	if s.bits == nil || p < 0 {
		return false
	}
	return s.bits.Test(uint(p))
}

// Len is the number of members.
func (s Positions) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// Empty reports whether the set has no members.
func (s Positions) Empty() bool {
	return s.bits == nil || s.bits.None()
}

// Union returns a new set with the members of both.
func (s Positions) Union(t Positions) Positions {
	var acc Positions
	acc.AddAll(s)
	acc.AddAll(t)
	return acc
}

// Intersection returns a new set with the members common to both.
func (s Positions) Intersection(t Positions) Positions {
	if s.bits == nil || t.bits == nil {
		return Positions{}
	}
	return Positions{bits: s.bits.Intersection(t.bits)}
}

// Intersects reports whether the sets share a member.
func (s Positions) Intersects(t Positions) bool {
	if s.bits == nil || t.bits == nil {
		return false
	}
	return 0 < s.bits.IntersectionCardinality(t.bits)
}

// Equal reports whether the sets have the same members.
func (s Positions) Equal(t Positions) bool {
	if s.Empty() || t.Empty() {
		return s.Empty() && t.Empty()
	}
	return s.Len() == t.Len() && s.bits.IntersectionCardinality(t.bits) == s.bits.Count()
}

// Each calls f on every member in ascending order.
func (s Positions) Each(f func(Position)) {
	if s.bits == nil {
		return
	}
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		f(Position(i))
	}
}

// Slice returns the members in ascending order.
func (s Positions) Slice() []Position {
	acc := make([]Position, 0, s.Len())
	s.Each(func(p Position) {
		acc = append(acc, p)
	})
	return acc
}

func (s Positions) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	s.Each(func(p Position) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(strconv.Itoa(int(p)))
	})
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON writes the set as an ascending array.
func (s Positions) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON reads an array of positions.
func (s *Positions) UnmarshalJSON(bs []byte) error {
	var ps []Position
	if err := json.Unmarshal(bs, &ps); err != nil {
		return err
	}
	*s = NewPositions(ps...)
	return nil
}
