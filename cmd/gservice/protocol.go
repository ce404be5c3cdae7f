package main

import (
	"context"
	"fmt"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/match"
	"github.com/Comcast/glushkov/storage"
)

// Op is a service operation.
//
// Only one of Define, Rem, Get, Match, or List should have value.
// The results of the operation are written back into the Op, so the
// whole Op can serve as the reply.
type Op struct {
	// Oid is the optional operation id, echoed in the reply.
	Oid string `json:"oid,omitempty" yaml:",omitempty"`

	// Define compiles and stores a def.
	Define *core.Def `json:"define,omitempty" yaml:",omitempty"`

	// Rem gives the name of a def to remove.
	Rem string `json:"rem,omitempty" yaml:",omitempty"`

	// Get gives the name of a def to get.
	Get string `json:"get,omitempty" yaml:",omitempty"`

	// Match matches words.
	Match *MatchOp `json:"match,omitempty" yaml:",omitempty"`

	// List requests the names of all defs.
	List bool `json:"list,omitempty" yaml:",omitempty"`

	// Record is the result of Define or Get.
	Record *storage.Record `json:"record,omitempty" yaml:",omitempty"`

	// Names is the result of List.
	Names []string `json:"names,omitempty" yaml:",omitempty"`

	// Error will hold an error (if any) that results from
	// processing this operation.
	Error error `json:"-" yaml:"-"`

	// Err will hold a string representation of an error (if any)
	// that results from processing this operation.
	Err string `json:"err,omitempty" yaml:",omitempty"`
}

// MatchOp matches words against either a stored def (Name) or a def
// given inline (Def).
type MatchOp struct {
	Name  string    `json:"name,omitempty" yaml:",omitempty"`
	Def   *core.Def `json:"def,omitempty" yaml:",omitempty"`
	Words []string  `json:"words"`

	// Matched is the result: the indices of the words that
	// matched.
	Matched match.Indices `json:"matched"`
}

// erred is a utility function to return values to assign to operation
// Error and Err fields.
func erred(err error) (error, string) {
	if err == nil {
		return nil, ""
	}
	return err, err.Error()
}

func (o *Op) wrapForFirehose(tag string) map[string]*Op {
	return map[string]*Op{
		tag: o,
	}
}

// Do performs the operation.  The returned error is also in o.Error.
func (o *Op) Do(ctx context.Context, s *Service) error {

	var err error
	switch {
	case o.Define != nil:
		o.Record, err = s.Define(ctx, o.Define)
		// The record includes the def.
		o.Define = nil
	case o.Rem != "":
		err = s.Rem(ctx, o.Rem)
	case o.Get != "":
		o.Record, err = s.Get(ctx, o.Get)
	case o.Match != nil:
		err = o.Match.Do(ctx, s)
	case o.List:
		o.Names, err = s.List(ctx)
	default:
		err = fmt.Errorf("not implemented: %s", JS(o))
	}

	if err != nil && o.Error == nil {
		o.Error, o.Err = erred(err)
		s.Stats.Errors.Add(1)
	}

	s.fire(o.wrapForFirehose("op"))

	return o.Error
}

func (o *MatchOp) Do(ctx context.Context, s *Service) error {
	var err error
	switch {
	case o.Def != nil:
		o.Matched, err = s.MatchDef(ctx, o.Def, o.Words)
	case o.Name != "":
		o.Matched, err = s.Match(ctx, o.Name, o.Words)
	default:
		err = fmt.Errorf("match needs a name or a def")
	}
	return err
}
