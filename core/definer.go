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

package core

import (
	"sync/atomic"
)

// Definer is anything that can manifest itself as a compiled Def.
//
// A Def is itself a Definer.  An UpdatableDef is also a Definer, but
// its underlying Def can change at any time.
type Definer interface {
	Def() *Def
}

// Def makes any Def a Definer.
func (d *Def) Def() *Def {
	return d
}

// UpdatableDef holds a Def that can be swapped while other goroutines
// are matching against the old one.
//
// Since an Automaton is immutable, a reader that got the old Def can
// keep using it safely.
type UpdatableDef struct {
	def atomic.Pointer[Def]
}

// NewUpdatableDef makes one with the given initial Def.
func NewUpdatableDef(d *Def) *UpdatableDef {
	u := &UpdatableDef{}
	u.def.Store(d)
	return u
}

// SetDef atomically changes the underlying Def, which should already
// be compiled.
func (u *UpdatableDef) SetDef(d *Def) error {
	if _, err := d.Compiled(); err != nil {
		return err
	}
	u.def.Store(d)
	return nil
}

// Def returns the current Def.
func (u *UpdatableDef) Def() *Def {
	return u.def.Load()
}
