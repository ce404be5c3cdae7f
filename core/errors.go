package core

import (
	"errors"
	"fmt"
)

// InvalidTree occurs when a node can't be analyzed: the tree contains
// a node that isn't one of the six shapes in this package, or a nil
// child.  That's a programming error.  Contrast with BadTree, which is
// a user error in a serialized tree.
type InvalidTree struct {
	// Path locates the node from the root, as in "root.left.body".
	Path string
	// Node is the offending node, which might be nil.
	Node Expr
}

func (e *InvalidTree) Error() string {
	return fmt.Sprintf(`invalid expression tree at "%s": unsupported node %T`, e.Path, e.Node)
}

// BadTree occurs when a generic (JSON or YAML) tree can't be turned
// into an Expr.
type BadTree struct {
	Path   string
	Reason string
}

func (e *BadTree) Error() string {
	if e.Path == "" {
		return "bad tree: " + e.Reason
	}
	return `bad tree at "` + e.Path + `": ` + e.Reason
}

// DefNotCompiled occurs when a Def is used before it has been
// Compile()ed.
type DefNotCompiled struct {
	Def *Def
}

func (e *DefNotCompiled) Error() string {
	return `def "` + e.Def.Name + `" not compiled`
}

// InterpreterNotFound occurs when a Source names an interpreter
// that isn't in the given map of interpreters.
var InterpreterNotFound = errors.New("interpreter not found")
