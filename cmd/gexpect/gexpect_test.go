package main

import (
	"context"
	"testing"

	"github.com/Comcast/glushkov/tools"
)

func TestReadSession(t *testing.T) {
	ctx := context.Background()

	s, err := readSession(ctx, "../../defs/binary.test.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if s.Def == nil || s.Def.Automaton == nil {
		t.Fatal("def not loaded")
	}
	if err = s.Check(ctx); err != nil {
		t.Fatal(err)
	}

	// Flip a case to see a failure.
	s.IOs[0].Cases[0].Match = !s.IOs[0].Cases[0].Match
	err = s.Check(ctx)
	fs, is := err.(tools.Failures)
	if !is {
		t.Fatalf("%v is a %T", err, err)
	}
	if len(fs) != 1 || fs[0].Word != "01" {
		t.Fatal(fs)
	}
}

func TestReadSessionMissing(t *testing.T) {
	if _, err := readSession(context.Background(), "nope.yaml"); err == nil {
		t.Fatal("no error")
	}
}
