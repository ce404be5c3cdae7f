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
	"context"
	"io/ioutil"

	"github.com/jsccast/yaml"
)

// Def is a named, documented expression.
//
// The expression is given either as a generic Tree (see ParseTree)
// or as a Source that an Interpreter executes.  Compile resolves that
// into Expr and builds the Automaton.
type Def struct {
	// Name is something like "binary-multiples".
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is Markdown documentation for humans.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Tree is the generic form of the expression.
	Tree interface{} `json:"tree,omitempty" yaml:",omitempty"`

	// Source, if given, is executed to get the expression.  Tree
	// is ignored.
	Source *Source `json:"source,omitempty" yaml:",omitempty"`

	// Expr is the expression after Compile.
	Expr Expr `json:"-" yaml:"-"`

	// Automaton is built by Compile.
	Automaton *Automaton `json:"-" yaml:"-"`
}

// NewDef makes a compiled Def for the given expression.
func NewDef(name string, e Expr) (*Def, error) {
	d := &Def{
		Name: name,
		Expr: e,
	}
	if err := d.Compile(context.Background(), nil, false); err != nil {
		return nil, err
	}
	return d, nil
}

// Compile resolves the expression and builds its automaton.
//
// If Expr is already set (and force is false), Compile only builds the
// automaton and fills in Tree when it's missing.
func (d *Def) Compile(ctx context.Context, interpreters InterpretersMap, force bool) error {
	if d.Expr == nil || force {
		var (
			e   Expr
			err error
		)
		switch {
		case d.Source != nil:
			e, err = d.Source.Compile(ctx, interpreters)
		case d.Tree != nil:
			e, err = ParseTree(d.Tree)
		case d.Expr != nil:
			e = d.Expr
		default:
			err = &BadTree{Reason: `def "` + d.Name + `" has no tree or source`}
		}
		if err != nil {
			return err
		}
		d.Expr = e
	}

	a, err := Build(d.Expr)
	if err != nil {
		return err
	}
	d.Automaton = a

	if d.Tree == nil && d.Source == nil {
		if d.Tree, err = TreeOf(d.Expr); err != nil {
			return err
		}
	}

	return nil
}

// Compiled returns the automaton or a DefNotCompiled error.
func (d *Def) Compiled() (*Automaton, error) {
	if d.Automaton == nil {
		return nil, &DefNotCompiled{Def: d}
	}
	return d.Automaton, nil
}

// ParseDef reads a Def from YAML (or JSON, which is YAML).
//
// The result is not compiled.
func ParseDef(bs []byte) (*Def, error) {
	var d Def
	if err := yaml.Unmarshal(bs, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadDef reads a Def from a file.
func ReadDef(filename string) (*Def, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseDef(bs)
}
