/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package main is a little command-line utility to match words
// against an expression.
//
//   gmatch -e '{"cat":[{"star":{"alt":["a","b"]}},"ab"]}' -w '["ab","ba"]'
//   gmatch -x binary 011 0110111000
//   gmatch -d defs/binary.yaml -stream < words.json
//
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"runtime"
	"time"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/interpreters"
	"github.com/Comcast/glushkov/match"
	"github.com/Comcast/glushkov/tools"
)

func main() {
	var (
		exprJS   = flag.String("e", "", "expression tree in JSON")
		defFile  = flag.String("d", "", "def file (YAML or JSON)")
		example  = flag.String("x", "", "name of a built-in example")
		wordsJS  = flag.String("w", "", "words as a JSON array of strings")
		wantJS   = flag.String("want", "", "wanted indices in JSON")
		streamIt = flag.Bool("stream", false, "read JSON strings from stdin and write verdicts")

		bench   = flag.Int("bench", 0, "number of times to run (and report time)")
		workers = flag.Int("workers", 0, "number of goroutines for a batch")
		trace   = flag.Bool("t", false, "print a trace for each word")

		verbose = flag.Bool("v", false, "verbosity")
	)

	flag.Parse()

	d, err := loadDef(*exprJS, *defFile, *example)
	if err != nil {
		log.Fatal(err)
	}
	a, err := d.Compiled()
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		log.Printf("%s: %s (%d positions)", d.Name, d.Expr, a.Size())
	}

	m := &match.Matcher{
		Workers: *workers,
	}

	if *streamIt {
		if err := stream(m, a, os.Stdin, os.Stdout, *trace); err != nil {
			log.Fatal(err)
		}
		return
	}

	var words []core.Word
	if *wordsJS != "" {
		var ss []string
		if err := json.Unmarshal([]byte(*wordsJS), &ss); err != nil {
			log.Fatal(err)
		}
		for _, s := range ss {
			words = append(words, core.Word(s))
		}
	}
	for _, s := range flag.Args() {
		words = append(words, core.Word(s))
	}

	ctx := context.Background()

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			if _, err := m.MatchAll(ctx, a, words); err != nil {
				log.Fatal(err)
			}
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/MatchAll, %d mean bytes allocated per MatchAll", *bench, meanNanos, allocated)
	}

	if *trace {
		for _, w := range words {
			fmt.Fprint(os.Stderr, m.Trace(a, w))
		}
	}

	got, err := m.MatchAll(ctx, a, words)
	if err != nil {
		log.Fatal(err)
	}

	if *wantJS != "" {
		var want match.Indices
		if err := json.Unmarshal([]byte(*wantJS), &want); err != nil {
			log.Fatal(err)
		}
		if len(want) == 0 {
			want = match.Indices{}
		}
		fmt.Printf("%v\n", reflect.DeepEqual(want, got))
		return
	}

	js, err := json.Marshal(&got)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s\n", js)
}

// loadDef gets a compiled def from exactly one of the sources.
func loadDef(exprJS, defFile, example string) (*core.Def, error) {
	given := 0
	for _, s := range []string{exprJS, defFile, example} {
		if s != "" {
			given++
		}
	}
	if 1 < given {
		return nil, errors.New("need only one of -e, -d, or -x")
	}

	var d *core.Def
	switch {
	case exprJS != "":
		var x interface{}
		if err := json.Unmarshal([]byte(exprJS), &x); err != nil {
			return nil, err
		}
		d = &core.Def{
			Name: "cmdline",
			Tree: x,
		}
	case defFile != "":
		src, err := tools.ReadFileWithInlines(defFile)
		if err != nil {
			return nil, err
		}
		if d, err = core.ParseDef(src); err != nil {
			return nil, err
		}
	case example != "":
		e, have := core.Examples()[example]
		if !have {
			return nil, fmt.Errorf("no example %q", example)
		}
		return core.NewDef(example, e)
	default:
		return nil, errors.New("need -e, -d, or -x")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.Compile(ctx, interpreters.Standard(), false); err != nil {
		return nil, err
	}
	return d, nil
}

// stream reads one JSON string per line and writes one JSON verdict
// per line.  Lines that aren't JSON strings get an error message on
// stderr and no verdict.
func stream(m *match.Matcher, a *core.Automaton, in io.Reader, out io.Writer, trace bool) error {
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	for {
		line, err := r.ReadBytes('\n')
		if 0 < len(line) {
			var s string
			if err := json.Unmarshal(line, &s); err != nil {
				log.Printf("ignoring %q: %v", line, err)
			} else {
				t := m.Trace(a, core.Word(s))
				if trace {
					log.Printf("%s", t)
				}
				js, err := json.Marshal(tools.Verdict{
					Word:    s,
					Matched: t.Matched,
				})
				if err != nil {
					return err
				}
				w.Write(js)
				w.WriteByte('\n')
				// The other side is probably waiting.
				if err := w.Flush(); err != nil {
					return err
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
