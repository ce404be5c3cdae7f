// Package main runs expect sessions against a def.
//
// By default the cases are checked in-process.  With -p, each session
// drives a gmatch subprocess instead.
//
//   gexpect defs/binary.test.yaml
//   gexpect -p defs/*.test.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Comcast/glushkov/interpreters"
	"github.com/Comcast/glushkov/tools"

	"github.com/jsccast/yaml"
)

func main() {

	var (
		process    = flag.Bool("p", false, "run each session against a gmatch subprocess")
		command    = flag.String("c", "gmatch", "matcher command for -p")
		showStderr = flag.Bool("e", true, "show subprocess stderr")
		workers    = flag.Int("workers", 0, "workers for in-process checks")
		timeout    = flag.Duration("t", 10*time.Second, "main timeout")
		verbose    = flag.Bool("v", false, "verbosity")
	)

	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	failed := false
	for _, filename := range flag.Args() {
		s, err := readSession(ctx, filename)
		if err != nil {
			log.Fatalf("%s: %v", filename, err)
		}
		s.ShowStderr = *showStderr
		s.Workers = *workers
		s.Verbose = *verbose

		if *process {
			dir := filepath.Dir(filename)
			defFile := s.DefFile
			if defFile == "" {
				log.Fatalf("%s: -p needs a session with a defFile", filename)
			}
			err = s.Run(ctx, dir, *command, "-d", defFile, "-stream")
		} else {
			err = s.Check(ctx)
		}

		if err != nil {
			fmt.Printf("FAIL %s: %v\n", filename, err)
			failed = true
			continue
		}
		fmt.Printf("ok   %s\n", filename)
	}

	if failed {
		os.Exit(1)
	}
}

// readSession reads a session file and loads its def relative to the
// file's directory.
func readSession(ctx context.Context, filename string) (*tools.Session, error) {
	bs, err := tools.ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}

	var s tools.Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}

	s.Interpreters = interpreters.Standard()

	if err = s.LoadDef(ctx, filepath.Dir(filename)); err != nil {
		return nil, err
	}

	return &s, nil
}
