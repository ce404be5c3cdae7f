package tools

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/interpreters"

	"github.com/jsccast/yaml"
)

func readSession(t *testing.T, filename string) *Session {
	bs, err := ReadFileWithInlines(filename)
	if err != nil {
		t.Fatal(err)
	}
	var s Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		t.Fatal(err)
	}
	s.Interpreters = interpreters.Standard()
	if err = s.LoadDef(context.Background(), "../defs"); err != nil {
		t.Fatal(err)
	}
	return &s
}

func TestExpectCheck(t *testing.T) {
	s := readSession(t, "../defs/binary.test.yaml")
	if len(s.IOs) != 2 {
		t.Fatal(len(s.IOs))
	}
	if err := s.Check(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.Workers = 2
	if err := s.Check(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestExpectFailures(t *testing.T) {
	def, err := core.NewDef("ab", core.ExampleAB())
	if err != nil {
		t.Fatal(err)
	}
	s := &Session{
		Def: def,
		IOs: []IO{
			{
				Cases: []Case{
					{Word: "ab", Match: true},
					{Word: "ba", Match: true},
					{Word: "", Match: false},
				},
			},
		},
	}

	err = s.Check(context.Background())
	fs, is := err.(Failures)
	if !is {
		t.Fatalf("%v is a %T", err, err)
	}
	if len(fs) != 1 || fs[0].Case != 1 || fs[0].Word != "ba" {
		t.Fatal(fs)
	}
}

// TestExpectProcess runs the session against a real gmatch process.
//
// Requires gmatch in the path.
func TestExpectProcess(t *testing.T) {
	if _, err := exec.LookPath("gmatch"); err != nil {
		t.Skip(err)
	}

	s := readSession(t, "../defs/binary.test.yaml")
	s.DefaultTimeout = 5 * time.Second
	s.ShowStderr = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Run(ctx, "../defs", "gmatch", "-d", "binary.yaml", "-stream"); err != nil {
		t.Fatal(err)
	}
}
