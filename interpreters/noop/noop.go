package noop

import (
	"context"
	"log"

	"github.com/Comcast/glushkov/core"
)

// Interpreter is a core.Interpreter whose source is already a generic
// tree (see core.ParseTree).  Nothing is executed.
type Interpreter struct {
	// Silent, if false, will log a warning on each use.
	Silent bool
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: using noop Interpreter for compilation")
	}
	return core.ParseTree(code)
}

func (i *Interpreter) Exec(ctx context.Context, code interface{}, compiled interface{}) (core.Expr, error) {
	if !i.Silent {
		log.Printf("warning: using noop Interpreter for execution")
	}
	if e, is := compiled.(core.Expr); is && e != nil {
		return e, nil
	}
	return core.ParseTree(code)
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}
