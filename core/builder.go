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

// NodeInfo summarizes a subtree.
type NodeInfo struct {
	// Nullable is true when the subtree matches the empty word.
	Nullable bool `json:"nullable"`

	// First holds the positions that can start a match.
	First Positions `json:"first"`

	// Last holds the positions that can end a match.
	Last Positions `json:"last"`
}

// Builder computes the position automaton for one expression.
//
// A Builder accumulates its symbol table and follower relation while
// it walks a tree, so use a new Builder for each automaton.
type Builder struct {
	// symbols[p] is the value at position p.  symbols[0] is unused.
	symbols []byte

	// followers[p] is the set of positions that can follow p.
	followers []Positions
}

// NewBuilder makes a Builder with an empty symbol table and follower
// relation.
func NewBuilder() *Builder {
	return &Builder{
		symbols:   make([]byte, 1, 16),
		followers: make([]Positions, 1, 16),
	}
}

// Analyze walks the tree and returns the root's NodeInfo.
//
// As a side effect, every Symbol gets a new Position and the follower
// relation grows.  The only error is an *InvalidTree.
func (b *Builder) Analyze(e Expr) (NodeInfo, error) {
	return b.analyze(e, "root")
}

func (b *Builder) analyze(e Expr, path string) (NodeInfo, error) {
	switch vv := e.(type) {
	case *Symbol:
		if vv == nil {
			break
		}
		p := b.allocate(vv.Value)
		return NodeInfo{
			First: NewPositions(p),
			Last:  NewPositions(p),
		}, nil

	case *Alternation:
		if vv == nil {
			break
		}
		left, err := b.analyze(vv.Left, path+".left")
		if err != nil {
			return NodeInfo{}, err
		}
		right, err := b.analyze(vv.Right, path+".right")
		if err != nil {
			return NodeInfo{}, err
		}
		return NodeInfo{
			Nullable: left.Nullable || right.Nullable,
			First:    left.First.Union(right.First),
			Last:     left.Last.Union(right.Last),
		}, nil

	case *Concatenation:
		if vv == nil {
			break
		}
		left, err := b.analyze(vv.Left, path+".left")
		if err != nil {
			return NodeInfo{}, err
		}
		right, err := b.analyze(vv.Right, path+".right")
		if err != nil {
			return NodeInfo{}, err
		}

		info := NodeInfo{
			Nullable: left.Nullable && right.Nullable,
			First:    left.First,
			Last:     right.Last,
		}
		if left.Nullable {
			info.First = info.First.Union(right.First)
		}
		if right.Nullable {
			info.Last = info.Last.Union(left.Last)
		}
		b.link(left.Last, right.First)
		return info, nil

	case *Iteration:
		if vv == nil {
			break
		}
		body, err := b.analyze(vv.Body, path+".body")
		if err != nil {
			return NodeInfo{}, err
		}
		b.link(body.Last, body.First)
		return NodeInfo{
			Nullable: true,
			First:    body.First,
			Last:     body.Last,
		}, nil

	case *Epsilon:
		if vv == nil {
			break
		}
		return NodeInfo{Nullable: true}, nil

	case *Empty:
		if vv == nil {
			break
		}
		return NodeInfo{}, nil
	}

	return NodeInfo{}, &InvalidTree{
		Path: path,
		Node: e,
	}
}

// allocate assigns the next position to a Symbol with the given value.
func (b *Builder) allocate(v byte) Position {
	p := Position(len(b.symbols))
	b.symbols = append(b.symbols, v)
	b.followers = append(b.followers, Positions{})
	return p
}

// link adds an edge from every position in from to every position in
// to.
func (b *Builder) link(from, to Positions) {
	if to.Empty() {
		return
	}
	from.Each(func(p Position) {
		b.followers[p].AddAll(to)
	})
}

// Automaton packages the Builder's accumulated state along with the
// given root summary.
//
// The Builder must not be used afterwards.
func (b *Builder) Automaton(root NodeInfo) *Automaton {
	a := &Automaton{
		Root:      root,
		symbols:   b.symbols,
		followers: b.followers,
	}
	a.index()
	b.symbols, b.followers = nil, nil
	return a
}

// Build analyzes the expression with a fresh Builder and returns the
// resulting Automaton.
func Build(e Expr) (*Automaton, error) {
	b := NewBuilder()
	root, err := b.Analyze(e)
	if err != nil {
		return nil, err
	}
	return b.Automaton(root), nil
}
