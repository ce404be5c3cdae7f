// Package storage persists named definitions along with their
// compiled automata.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Comcast/glushkov/core"
)

// NotFound is returned when a name has no record.
var NotFound = errors.New("not found")

// Record is a def as stored in a Storage system.
type Record struct {
	Name string `json:"name"`

	Def *core.Def `json:"def"`

	// Automaton is stored in its JSON form so that a restored
	// record doesn't need to be rebuilt.
	Automaton *core.Automaton `json:"automaton,omitempty"`

	// Tree is the generic form of the compiled expression, kept
	// even when the Def was given as a Source.
	Tree interface{} `json:"tree,omitempty"`

	Updated time.Time `json:"updated,omitempty"`
}

// NewRecord packages a compiled def.
func NewRecord(d *core.Def) (*Record, error) {
	a, err := d.Compiled()
	if err != nil {
		return nil, err
	}
	tree, err := core.TreeOf(d.Expr)
	if err != nil {
		return nil, err
	}
	return &Record{
		Name:      d.Name,
		Def:       d,
		Automaton: a,
		Tree:      tree,
		Updated:   time.Now().UTC(),
	}, nil
}

// Restore makes the record's Def usable after it has been read.
//
// A stored Automaton is always reused.  The Expr comes back from the
// record's Tree (or the Def's), so a Source is never executed again.
// When there is no Automaton, the Def is compiled again with the given
// interpreters.
func (r *Record) Restore(ctx context.Context, interpreters core.InterpretersMap) error {
	if r.Def == nil {
		return errors.New(`record "` + r.Name + `" has no def`)
	}
	if r.Automaton != nil {
		tree := r.Tree
		if tree == nil {
			tree = r.Def.Tree
		}
		if tree != nil {
			e, err := core.ParseTree(tree)
			if err != nil {
				return err
			}
			r.Def.Expr = e
		}
		r.Def.Automaton = r.Automaton
		return nil
	}
	if err := r.Def.Compile(ctx, interpreters, true); err != nil {
		return err
	}
	r.Automaton = r.Def.Automaton
	return nil
}

// Storage is a persistence interface for Records.
type Storage interface {
	// Put writes the record, replacing any record with the same
	// name.
	Put(ctx context.Context, r *Record) error

	// Get returns NotFound if there is no record with the name.
	Get(ctx context.Context, name string) (*Record, error)

	// Rem returns NotFound if there is no record with the name.
	Rem(ctx context.Context, name string) error

	// List returns the names of all the records in order.
	List(ctx context.Context) ([]string, error)
}
