package goja

import (
	"context"
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// InlineRequires replaces each top-level statement of the form
// require("NAME") with the text that the provider returns for NAME.
//
// The rewrite is textual and driven by the parsed program, so a
// library is inlined exactly where it was required.  Other calls to
// require are left alone.
func InlineRequires(ctx context.Context, src string, provider func(context.Context, string) (string, error)) (string, error) {
	p, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return "", err
	}

	var (
		acc  string
		from = 0
	)
	for _, s := range p.Body {
		name, is, err := required(s)
		if err != nil {
			return "", err
		}
		if !is {
			continue
		}
		lib, err := provider(ctx, name)
		if err != nil {
			return "", err
		}
		// Idx0 and Idx1 are 1-based.
		acc += src[from:int(s.Idx0())-1] + lib + "\n"
		from = int(s.Idx1()) - 1
		if from < len(src) && src[from] == ';' {
			from++
		}
	}

	return acc + src[from:], nil
}

// required reports the library name if the statement is a require()
// call.
func required(s ast.Statement) (string, bool, error) {
	exps, is := s.(*ast.ExpressionStatement)
	if !is {
		return "", false, nil
	}
	call, is := exps.Expression.(*ast.CallExpression)
	if !is {
		return "", false, nil
	}
	id, is := call.Callee.(*ast.Identifier)
	if !is || id.Name != "require" {
		return "", false, nil
	}
	if len(call.ArgumentList) != 1 {
		return "", false, fmt.Errorf("bad require args: %d", len(call.ArgumentList))
	}
	lit, is := call.ArgumentList[0].(*ast.StringLiteral)
	if !is {
		return "", false, fmt.Errorf("bad require arg: %T", call.ArgumentList[0])
	}
	return lit.Value.String(), true, nil
}
