package main

import (
	"context"
	"log"

	"github.com/Comcast/glushkov/core"
)

// defineExamples defines the built-in examples (see core.Examples).
func defineExamples(ctx context.Context, s *Service) error {
	for name, e := range core.Examples() {
		d := &core.Def{
			Name: name,
			Doc:  "Built-in example `" + e.String() + "`.",
			Expr: e,
		}
		if _, err := s.Define(ctx, d); err != nil {
			return err
		}
		log.Printf("defined example %s", name)
	}
	return nil
}
