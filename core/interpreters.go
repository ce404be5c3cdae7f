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
)

var (
	// DefaultInterpreters will be used by Source.Compile if given
	// nil interpreters.
	//
	// Interpreter packages register themselves here when
	// imported.
	DefaultInterpreters = NewInterpretersMap()

	// DefaultInterpreterName is used when a Source doesn't name
	// an interpreter.
	DefaultInterpreterName = "goja"
)

// Interpreter turns some source into an expression tree.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// source later.
	Compile(ctx context.Context, src interface{}) (interface{}, error)

	// Exec produces the tree.  The result of a previous Compile
	// might be provided.
	Exec(ctx context.Context, src interface{}, compiled interface{}) (Expr, error)
}

// InterpretersMap maps interpreter names to Interpreters.
type InterpretersMap map[string]Interpreter

// NewInterpretersMap makes an empty map.
func NewInterpretersMap() InterpretersMap {
	return make(InterpretersMap)
}

// Find returns the named Interpreter (or nil).
func (m InterpretersMap) Find(name string) Interpreter {
	if name == "" {
		name = DefaultInterpreterName
	}
	return m[name]
}

// Source is code that some Interpreter executes to produce a tree.
type Source struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
}

// Compile finds the Source's interpreter and uses it to produce a
// tree.
func (s *Source) Compile(ctx context.Context, interpreters InterpretersMap) (Expr, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}
	i := interpreters.Find(s.Interpreter)
	if i == nil {
		return nil, InterpreterNotFound
	}
	compiled, err := i.Compile(ctx, s.Source)
	if err != nil {
		return nil, err
	}
	return i.Exec(ctx, s.Source, compiled)
}
