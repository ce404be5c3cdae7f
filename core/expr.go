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
	"fmt"
	"strings"
)

// Word is a sequence of symbols to classify.
type Word = []byte

// Kind names the shape of an expression node.
type Kind int

const (
	SymbolKind Kind = iota
	AlternationKind
	ConcatenationKind
	IterationKind
	EpsilonKind
	EmptyKind
)

var kindNames = []string{"symbol", "alternation", "concatenation", "iteration", "epsilon", "empty"}

func (k Kind) String() string {
	if 0 <= int(k) && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Expr is a node in a regular expression tree.
//
// The six implementations in this package are the only shapes the
// Builder understands.  Any other implementation is reported as an
// InvalidTree when analyzed.
//
// A tree is never modified by this package.
type Expr interface {
	Kind() Kind
	String() string
}

// Symbol matches exactly one occurrence of Value.
type Symbol struct {
	Value byte
}

// Alternation matches whatever Left or Right matches.
type Alternation struct {
	Left, Right Expr
}

// Concatenation matches something Left matches followed by something
// Right matches.
type Concatenation struct {
	Left, Right Expr
}

// Iteration matches zero or more consecutive matches of Body.
type Iteration struct {
	Body Expr
}

// Epsilon matches only the empty word.
type Epsilon struct{}

// Empty matches nothing at all.
type Empty struct{}

func (*Symbol) Kind() Kind        { return SymbolKind }
func (*Alternation) Kind() Kind   { return AlternationKind }
func (*Concatenation) Kind() Kind { return ConcatenationKind }
func (*Iteration) Kind() Kind     { return IterationKind }
func (*Epsilon) Kind() Kind       { return EpsilonKind }
func (*Empty) Kind() Kind         { return EmptyKind }

// Sym makes a Symbol.
func Sym(b byte) Expr {
	return &Symbol{Value: b}
}

// Alt makes an Alternation of the given expressions, nested to the
// left.  With no arguments, the result is Empty.
func Alt(xs ...Expr) Expr {
	if len(xs) == 0 {
		return &Empty{}
	}
	acc := xs[0]
	for _, x := range xs[1:] {
		acc = &Alternation{Left: acc, Right: x}
	}
	return acc
}

// Cat makes a Concatenation of the given expressions, nested to the
// left.  With no arguments, the result is Epsilon.
func Cat(xs ...Expr) Expr {
	if len(xs) == 0 {
		return &Epsilon{}
	}
	acc := xs[0]
	for _, x := range xs[1:] {
		acc = &Concatenation{Left: acc, Right: x}
	}
	return acc
}

// Star makes an Iteration.
func Star(x Expr) Expr {
	return &Iteration{Body: x}
}

// Eps makes an Epsilon.
func Eps() Expr {
	return &Epsilon{}
}

// Nothing makes an Empty.
func Nothing() Expr {
	return &Empty{}
}

// Lit makes the concatenation of the bytes of s.
func Lit(s string) Expr {
	xs := make([]Expr, len(s))
	for i := 0; i < len(s); i++ {
		xs[i] = Sym(s[i])
	}
	return Cat(xs...)
}

// Binding strength used when rendering.
const (
	precAlt = iota
	precCat
	precStar
	precAtom
)

func prec(e Expr) int {
	switch e.(type) {
	case *Alternation:
		return precAlt
	case *Concatenation:
		return precCat
	case *Iteration:
		return precStar
	default:
		return precAtom
	}
}

func wrap(e Expr, min int) string {
	if e == nil {
		return "<nil>"
	}
	if prec(e) < min {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (e *Symbol) String() string {
	b := e.Value
	switch {
	case strings.IndexByte(`|()*\`, b) >= 0:
		return `\` + string(rune(b))
	case b < 0x20 || 0x7e < b:
		return fmt.Sprintf(`\x%02x`, b)
	default:
		return string(rune(b))
	}
}

func (e *Alternation) String() string {
	return wrap(e.Left, precAlt) + "|" + wrap(e.Right, precAlt)
}

func (e *Concatenation) String() string {
	return wrap(e.Left, precCat) + wrap(e.Right, precCat)
}

func (e *Iteration) String() string {
	return wrap(e.Body, precAtom) + "*"
}

func (*Epsilon) String() string { return "ε" }

func (*Empty) String() string { return "∅" }
