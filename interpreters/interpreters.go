package interpreters

import (
	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/interpreters/goja"
	"github.com/Comcast/glushkov/interpreters/noop"
)

// Standard returns the interpreters a program will usually want.
func Standard() core.InterpretersMap {
	is := core.NewInterpretersMap()

	g := goja.NewInterpreter()
	is["goja"] = g
	is["ecmascript"] = g

	ext := goja.NewInterpreter()
	ext.InlineRequires = true
	is["goja-libs"] = ext

	tree := noop.NewInterpreter()
	tree.Silent = true
	is["tree"] = tree
	is["noop"] = noop.NewInterpreter()

	return is
}
