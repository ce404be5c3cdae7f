/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main is a command-line automaton debugger in the spirit of
// gdb.  Define an expression, then step through a word one symbol at
// a time and watch the active positions.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/interpreters"
	"github.com/Comcast/glushkov/match"
	"github.com/Comcast/glushkov/tools"
)

type Opts struct {
	echo bool
}

func main() {

	opts := &Opts{}
	flag.BoolVar(&opts.echo, "e", false, "echo input")
	flag.Parse()

	if err := opts.run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Cursor is a position in a word that's being fed to an automaton
// one symbol at a time.
type Cursor struct {
	Consumed []byte         `json:"consumed"`
	Active   core.Positions `json:"active"`
}

func (c *Cursor) started() bool {
	return 0 < len(c.Consumed)
}

// step consumes one symbol and reports whether any position is still
// active.
func (c *Cursor) step(a *core.Automaton, v byte) bool {
	if c.started() {
		c.Active = match.Step(a, c.Active, v)
	} else {
		c.Active = match.Start(a, v)
	}
	c.Consumed = append(c.Consumed, v)
	return !c.Active.Empty()
}

func (c *Cursor) accepting(a *core.Automaton) bool {
	if !c.started() {
		return a.Root.Nullable
	}
	return match.Accepting(a, c.Active)
}

// Host holds the defs and their cursors.
type Host struct {
	interpreters core.InterpretersMap
	defs         map[string]*core.UpdatableDef
	cursors      map[string]*Cursor
	matcher      *match.Matcher
}

func NewHost() *Host {
	return &Host{
		interpreters: interpreters.Standard(),
		defs:         make(map[string]*core.UpdatableDef, 8),
		cursors:      make(map[string]*Cursor, 8),
		matcher:      &match.Matcher{},
	}
}

// Define compiles the def and resets its cursor.  Redefining a name
// swaps the Def in place.
func (h *Host) Define(ctx context.Context, d *core.Def) error {
	if err := d.Compile(ctx, h.interpreters, true); err != nil {
		return err
	}
	if u, have := h.defs[d.Name]; have {
		if err := u.SetDef(d); err != nil {
			return err
		}
	} else {
		h.defs[d.Name] = core.NewUpdatableDef(d)
	}
	h.cursors[d.Name] = &Cursor{}
	return nil
}

func (h *Host) Load(ctx context.Context, name, filename string) error {
	src, err := tools.ReadFileWithInlines(filename)
	if err != nil {
		return err
	}
	d, err := core.ParseDef(src)
	if err != nil {
		return err
	}
	d.Name = name
	return h.Define(ctx, d)
}

func (h *Host) find(name string) (*core.Def, *Cursor, error) {
	u, have := h.defs[name]
	if !have {
		return nil, nil, fmt.Errorf("def '%s' not found", name)
	}
	return u.Def(), h.cursors[name], nil
}

func (h *Host) names() []string {
	acc := make([]string, 0, len(h.defs))
	for name := range h.defs {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// words parses "WORD..." where a word is either a JSON string or a
// bare token.
func words(s string) ([]string, error) {
	var acc []string
	s = strings.TrimSpace(s)
	for s != "" {
		if s[0] == '"' {
			dec := json.NewDecoder(strings.NewReader(s))
			var w string
			if err := dec.Decode(&w); err != nil {
				return nil, err
			}
			acc = append(acc, w)
			s = strings.TrimSpace(s[dec.InputOffset():])
			continue
		}
		i := strings.IndexAny(s, " \t")
		if i < 0 {
			acc = append(acc, s)
			break
		}
		acc = append(acc, s[:i])
		s = strings.TrimSpace(s[i:])
	}
	return acc, nil
}

func (opts *Opts) run(in io.Reader, w io.Writer) error {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHost()

	var (
		name = "([-a-zA-Z0-9_]+)"

		def = regexp.MustCompile("^def +" + name + " +(.*)")

		load = regexp.MustCompile("^load +" + name + " +(.*)")

		rem = regexp.MustCompile("^(rem|del|remove|delete) +" + name)

		reset = regexp.MustCompile("^reset +" + name)

		step = regexp.MustCompile("^step +" + name + " +(.*)")

		matches = regexp.MustCompile("^match +" + name + " *(.*)")

		trace = regexp.MustCompile("^trace +" + name + " *(.*)")

		print = regexp.MustCompile("^print( +" + name + ")?$")

		analyze = regexp.MustCompile("^analyze +" + name)

		dot = regexp.MustCompile("^dot +" + name + " +(.*)")

		help = regexp.MustCompile("^(help|h|\\?)$")

		save = regexp.MustCompile("^save +(.*)")

		restore = regexp.MustCompile("^restore +(.*)")

		debug = regexp.MustCompile("^debug(ging)? (on|off)")

		outputPrefix = "# "

		debugging = false

		say = func(format string, args ...interface{}) {
			fmt.Fprintf(w, outputPrefix+format+"\n", args...)
		}

		protest = func(format string, args ...interface{}) {
			say("error: "+format, args...)
		}
	)

	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}
		line = strings.TrimSpace(line)

		if opts.echo {
			fmt.Fprintln(w, line)
		}

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		var ss []string

		if ss = help.FindStringSubmatch(line); 0 < len(ss) {
			for _, s := range strings.Split(doc(), "\n") {
				say("%s", s)
			}
			continue
		}

		if ss = def.FindStringSubmatch(line); 0 < len(ss) {
			var tree interface{}
			if err := json.Unmarshal([]byte(ss[2]), &tree); err != nil {
				protest("couldn't parse tree %s: %s", ss[2], err)
				continue
			}
			d := &core.Def{
				Name: ss[1],
				Tree: tree,
			}
			if err := h.Define(ctx, d); err != nil {
				protest("%s", err)
				continue
			}
			say("%s is %s with %d positions", d.Name, d.Expr, d.Automaton.Size())
			continue
		}

		if ss = load.FindStringSubmatch(line); 0 < len(ss) {
			if err := h.Load(ctx, ss[1], ss[2]); err != nil {
				protest("couldn't load %s: %s", ss[2], err)
				continue
			}
			d := h.defs[ss[1]].Def()
			say("%s is %s with %d positions", d.Name, d.Expr, d.Automaton.Size())
			continue
		}

		if ss = rem.FindStringSubmatch(line); 0 < len(ss) {
			if _, _, err := h.find(ss[2]); err != nil {
				protest("%s", err)
				continue
			}
			delete(h.defs, ss[2])
			delete(h.cursors, ss[2])
			say("now have %d defs", len(h.defs))
			continue
		}

		if ss = reset.FindStringSubmatch(line); 0 < len(ss) {
			if _, _, err := h.find(ss[1]); err != nil {
				protest("%s", err)
				continue
			}
			h.cursors[ss[1]] = &Cursor{}
			say("%s reset", ss[1])
			continue
		}

		if ss = step.FindStringSubmatch(line); 0 < len(ss) {
			d, c, err := h.find(ss[1])
			if err != nil {
				protest("%s", err)
				continue
			}
			ws, err := words(ss[2])
			if err != nil || len(ws) != 1 {
				protest("step NAME SYMBOLS")
				continue
			}
			a := d.Automaton
			for i := 0; i < len(ws[0]); i++ {
				v := ws[0][i]
				alive := c.step(a, v)
				say("%s %s active %s", core.Sym(v), acceptingMark(c.accepting(a)), c.Active)
				if !alive {
					say("dead after %q", c.Consumed)
					break
				}
			}
			continue
		}

		if ss = matches.FindStringSubmatch(line); 0 < len(ss) {
			d, _, err := h.find(ss[1])
			if err != nil {
				protest("%s", err)
				continue
			}
			ws, err := words(ss[2])
			if err != nil {
				protest("couldn't parse words: %s", err)
				continue
			}
			for _, word := range ws {
				say("%q %v", word, h.matcher.Matches(d.Automaton, core.Word(word)))
			}
			continue
		}

		if ss = trace.FindStringSubmatch(line); 0 < len(ss) {
			d, _, err := h.find(ss[1])
			if err != nil {
				protest("%s", err)
				continue
			}
			ws, err := words(ss[2])
			if err != nil || 1 < len(ws) {
				protest("trace NAME [WORD]")
				continue
			}
			word := ""
			if len(ws) == 1 {
				word = ws[0]
			}
			tr := h.matcher.Trace(d.Automaton, core.Word(word))
			for _, s := range strings.Split(strings.TrimSpace(tr.String()), "\n") {
				say("%s", s)
			}
			if debugging {
				js, _ := json.MarshalIndent(tr, "", "  ")
				fmt.Fprintln(w, string(js))
			}
			continue
		}

		if ss = analyze.FindStringSubmatch(line); 0 < len(ss) {
			d, _, err := h.find(ss[1])
			if err != nil {
				protest("%s", err)
				continue
			}
			js, err := json.Marshal(tools.Analyze(d.Automaton))
			if err != nil {
				return err // Internal error
			}
			say("%s", js)
			continue
		}

		if ss = dot.FindStringSubmatch(line); 0 < len(ss) {
			d, c, err := h.find(ss[1])
			if err != nil {
				protest("%s", err)
				continue
			}
			f, err := os.Create(ss[2])
			if err != nil {
				protest("%s", err)
				continue
			}
			if err = tools.Dot(d, f, c.Active); err != nil {
				protest("%s", err)
				continue
			}
			say("wrote %s", ss[2])
			continue
		}

		if ss = debug.FindStringSubmatch(line); 0 < len(ss) {
			switch ss[2] {
			case "on":
				debugging = true
				say("debugging")
			case "off":
				debugging = false
				say("not debugging")
			}
			continue
		}

		if ss = print.FindStringSubmatch(line); 0 < len(ss) {
			printer := func(name string) error {
				d, c, err := h.find(name)
				if err != nil {
					return err
				}
				a := d.Automaton
				say("  expr:      %s", d.Expr)
				say("  nullable:  %v", a.Root.Nullable)
				say("  first:     %s", a.Root.First)
				say("  last:      %s", a.Root.Last)
				for p := core.Position(1); int(p) <= a.Size(); p++ {
					v, _ := a.Symbol(p)
					say("  %3d %-4s → %s", p, core.Sym(v), a.Followers(p))
				}
				say("  consumed:  %q", c.Consumed)
				say("  active:    %s %s", c.Active, acceptingMark(c.accepting(a)))
				return nil
			}
			if ss[2] == "" {
				for _, name := range h.names() {
					say("def %s:", name)
					if err := printer(name); err != nil {
						protest("%s", err)
					}
				}
				continue
			}

			if err = printer(ss[2]); err != nil {
				protest("%s", err)
			}
			continue
		}

		if ss = save.FindStringSubmatch(line); 0 < len(ss) {
			filename := ss[1]
			defs := make([]*core.Def, 0, len(h.defs))
			for _, name := range h.names() {
				defs = append(defs, h.defs[name].Def())
			}
			js, err := json.MarshalIndent(defs, "", "  ")
			if err != nil {
				return err // Internal error
			}
			if err = ioutil.WriteFile(filename, js, 0644); err != nil {
				protest("writing file: %s", err)
				continue
			}
			say("saved %d defs", len(defs))
			continue
		}

		if ss = restore.FindStringSubmatch(line); 0 < len(ss) {
			filename := ss[1]
			js, err := ioutil.ReadFile(filename)
			if err != nil {
				protest("reading file '%s': %s", filename, err)
				continue
			}
			var defs []*core.Def
			if err = json.Unmarshal(js, &defs); err != nil {
				protest("loading %s: %s", filename, err)
				continue
			}
			for _, d := range defs {
				if err := h.Define(ctx, d); err != nil {
					protest("couldn't define %s: %s", d.Name, err)
				}
			}
			say("now have %d defs", len(h.defs))
			continue
		}

		protest("unsupported command: %s", line)
	}
}

func acceptingMark(accepting bool) string {
	if accepting {
		return "accepting"
	}
	return "-"
}

func doc() string {
	return `Commands:

  def NAME TREE        Define NAME by a JSON tree (e.g. {"star":"ab"}).
  load NAME FILE       Define NAME from a def file (YAML or JSON).
  rem NAME             Forget NAME.
  reset NAME           Put NAME's cursor back at the start.
  step NAME SYMBOLS    Feed symbols to NAME's cursor and show the active positions.
  match NAME WORD...   Match words (bare or JSON strings).
  trace NAME WORD      Show the active positions after each symbol.
  print [NAME]         Show the automaton and the cursor.
  analyze NAME         Show an analysis of the automaton.
  dot NAME FILE        Write a Graphviz file with the cursor's positions in red.
  save FILE            Write all defs to a file.
  restore FILE         Define all the defs in a file.
  debug on|off         Show more details.
  help                 Show this.

A line starting with '#' is a comment.`
}
