package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/match"
)

func TestProtocol(t *testing.T) {
	ctx := context.Background()
	s := NewService(nil, nil)

	op := &Op{
		Define: &core.Def{
			Name: "ab",
			Tree: "ab",
		},
	}
	if err := op.Do(ctx, s); err != nil {
		t.Fatal(err)
	}
	if op.Record == nil || op.Record.Automaton.Size() != 2 {
		t.Fatal(JS(op))
	}
	if op.Define != nil {
		t.Fatal("define not cleared")
	}

	op = &Op{
		Match: &MatchOp{
			Name:  "ab",
			Words: []string{"ab", "abc", "a"},
		},
	}
	if err := op.Do(ctx, s); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(op.Match.Matched, match.Indices{0}) {
		t.Fatal(JS(op))
	}

	op = &Op{List: true}
	if err := op.Do(ctx, s); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(op.Names, []string{"ab"}) {
		t.Fatal(JS(op))
	}

	op = &Op{Rem: "ab"}
	if err := op.Do(ctx, s); err != nil {
		t.Fatal(err)
	}

	op = &Op{Get: "ab"}
	if err := op.Do(ctx, s); err == nil {
		t.Fatal("no error")
	}
	if op.Err != "not found" {
		t.Fatal(JS(op))
	}

	op = &Op{Match: &MatchOp{Words: []string{"x"}}}
	if err := op.Do(ctx, s); err == nil {
		t.Fatal("no error")
	}
}

func TestListener(t *testing.T) {
	ctx := context.Background()
	s := demoService(t)

	in := bufio.NewReader(strings.NewReader(`# A comment.

sub ab
{"match":{"name":"ab","words":["ab","b"]}}
unsub ab
{"match":{"name":"ab","words":["ba"]}}
not json
sleep
{"get":"nope"}
`))

	var out bytes.Buffer
	if err := s.Listener(ctx, in, &out, nil); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		`"okay"`,
		`{"matched":{"name":"ab","words":["ab","b"],"matched":[0]}}`,
		`{"match":{"name":"ab","words":["ab","b"],"matched":[0]}}`,
		`"okay"`,
		`{"match":{"name":"ab","words":["ba"],"matched":[]}}`,
	}
	if len(lines) != len(want)+3 {
		t.Fatalf("%d lines:\n%s", len(lines), out.String())
	}
	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("line %d: %s != %s", i, lines[i], w)
		}
	}

	// The last three are errors.
	for _, line := range lines[len(want):] {
		var x map[string]interface{}
		if err := json.Unmarshal([]byte(line), &x); err != nil {
			t.Fatal(err)
		}
		if _, have := x["err"]; !have {
			t.Fatal(line)
		}
	}
}

func TestListenerRender(t *testing.T) {
	s := demoService(t)
	in := bufio.NewReader(strings.NewReader("yaml\n{\"list\":true}"))

	var out bytes.Buffer
	if err := s.Listener(context.Background(), in, &out, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "names:\n- ab\n- binary\n") {
		t.Fatal(out.String())
	}
}

func TestListenerShutdown(t *testing.T) {
	s := NewService(nil, nil)
	in := bufio.NewReader(strings.NewReader("shutdown\n{\"list\":true}\n"))
	ctl := make(chan bool, 1)

	var out bytes.Buffer
	if err := s.Listener(context.Background(), in, &out, ctl); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ctl:
	default:
		t.Fatal("no shutdown")
	}
	if out.Len() != 0 {
		t.Fatal(out.String())
	}
}

func TestSubs(t *testing.T) {
	subs := NewSubs()

	var saw []interface{}
	h := func(x interface{}) {
		saw = append(saw, x)
	}

	id1 := subs.Add("a", h)
	id2 := subs.Add("b", h)
	if id1 == id2 {
		t.Fatal("same id")
	}

	subs.Do("a", 1)
	subs.Do("b", 2)
	subs.Do("c", 3)
	subs.RemAll(id1)
	subs.Do("a", 4)
	subs.Rem("b", id2)
	subs.Do("b", 5)

	if !reflect.DeepEqual(saw, []interface{}{1, 2}) {
		t.Fatal(saw)
	}
}
