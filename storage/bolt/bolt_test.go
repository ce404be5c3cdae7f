package bolt

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/storage"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ storage.Storage = &Storage{}
}

func TestBasics(t *testing.T) {
	dir, err := ioutil.TempDir("", "bolt")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "storage.db")

	s, err := NewStorage(filename)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, "ab"); err != storage.NotFound {
		t.Fatalf("got %v", err)
	}

	for _, name := range []string{"ab", "binary"} {
		d, err := core.NewDef(name, core.Examples()[name])
		if err != nil {
			t.Fatal(err)
		}
		r, err := storage.NewRecord(d)
		if err != nil {
			t.Fatal(err)
		}
		if err = s.Put(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"ab", "binary"}) {
		t.Fatal(names)
	}

	// Reopen to see that the records survive.
	if err = s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err = s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := s.Close(ctx); err != nil {
			t.Fatal(err)
		}
	}()

	r, err := s.Get(ctx, "ab")
	if err != nil {
		t.Fatal(err)
	}
	if err = r.Restore(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if r.Def.Expr.String() != core.ExampleAB().String() {
		t.Fatal(r.Def.Expr)
	}
	if !r.Automaton.Root.First.Equal(core.NewPositions(1, 2, 3)) {
		t.Fatal(r.Automaton.Root.First)
	}

	if err = s.Rem(ctx, "ab"); err != nil {
		t.Fatal(err)
	}
	if err = s.Rem(ctx, "ab"); err != storage.NotFound {
		t.Fatalf("got %v", err)
	}
}
