package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/match"
)

// Case is a word and whether it should match.
type Case struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Word string `json:"word" yaml:"word"`

	Match bool `json:"match" yaml:"match"`
}

// IO is a batch of cases that are checked together.
type IO struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// WaitBefore is the time to wait before sending the first word.
	WaitBefore time.Duration `json:"waitBefore,omitempty" yaml:"waitBefore,omitempty"`

	// WaitBetween is the time to wait between sending words.
	WaitBetween time.Duration `json:"waitBetween,omitempty" yaml:"waitBetween,omitempty"`

	Cases []Case `json:"cases" yaml:"cases"`

	// Timeout is the optional timeout for this set.
	// Session.DefaultTimeout is the default value.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Session is mostly a sequence of IOs for one def.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Def is the def under test.
	Def *core.Def `json:"def,omitempty" yaml:"def,omitempty"`

	// DefFile, if Def is nil, names a file with the def.  A
	// relative name is relative to the session file's directory.
	DefFile string `json:"defFile,omitempty" yaml:"defFile,omitempty"`

	// IOs is sequence of IOs that this session will run.
	IOs []IO `json:"ios" yaml:"ios"`

	// Interpreters are used (if necessary) to compile the Def.
	Interpreters core.InterpretersMap `json:"-" yaml:"-"`

	// Workers is given to the Matcher for in-process checks.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// DefaultTimeout is the default timeout for each IO.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty" yaml:"defaultTimeout,omitempty"`

	// ShowStderr controls whether the subprocess's stderr is
	// logged.
	ShowStderr bool `json:"showStderr,omitempty" yaml:"showStderr,omitempty"`

	ShowStdin bool `json:"showStdin,omitempty" yaml:"showStdin,omitempty"`

	ShowStdout bool `json:"showStdout,omitempty" yaml:"showStdout,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Failure is a case that came out wrong.
type Failure struct {
	IO     int    `json:"io"`
	Case   int    `json:"case"`
	Word   string `json:"word"`
	Wanted bool   `json:"wanted"`
}

// Failures is the error returned when some cases failed.
type Failures []Failure

func (fs Failures) Error() string {
	acc := make([]string, len(fs))
	for i, f := range fs {
		acc[i] = fmt.Sprintf("io %d case %d: %q wanted %v", f.IO, f.Case, f.Word, f.Wanted)
	}
	return fmt.Sprintf("%d failures: %s", len(fs), strings.Join(acc, "; "))
}

// LoadDef makes sure the session has a compiled Def, reading DefFile
// relative to dir if needed.
func (s *Session) LoadDef(ctx context.Context, dir string) error {
	if s.Def == nil {
		if s.DefFile == "" {
			return errors.New("session has no def or defFile")
		}
		filename := s.DefFile
		if !filepath.IsAbs(filename) {
			filename = filepath.Join(dir, filename)
		}
		src, err := ReadFileWithInlines(filename)
		if err != nil {
			return err
		}
		if s.Def, err = core.ParseDef(src); err != nil {
			return err
		}
	}
	if s.Def.Automaton != nil {
		return nil
	}
	return s.Def.Compile(ctx, s.Interpreters, false)
}

// Check runs every IO against the session's Def in this process.
//
// The error is Failures if any case came out wrong.
func (s *Session) Check(ctx context.Context) error {
	a, err := s.Def.Compiled()
	if err != nil {
		return err
	}

	m := &match.Matcher{
		Workers: s.Workers,
	}

	var fs Failures
	for i, iop := range s.IOs {
		words := make([]core.Word, len(iop.Cases))
		for j, c := range iop.Cases {
			words[j] = core.Word(c.Word)
		}
		hits, err := m.MatchAll(ctx, a, words)
		if err != nil {
			return err
		}
		for j, c := range iop.Cases {
			if hits.Has(j) != c.Match {
				fs = append(fs, Failure{i, j, c.Word, c.Match})
			}
			if s.Verbose {
				log.Printf("io %d case %d %q %v", i, j, c.Word, hits.Has(j))
			}
		}
	}

	if fs != nil {
		return fs
	}
	return nil
}

// Verdict is what a subprocess writes for each word it reads.
type Verdict struct {
	Word    string `json:"word"`
	Matched bool   `json:"matched"`
}

// Run processes all the IOs in the Session with a subprocess.
//
// The subprocess is given by the args. The first arg is the
// executable, which runs in dir.  Each word is written to its stdin
// as a JSON string on a line.  The subprocess should write a JSON
// Verdict line for each word, in order.  Lines that aren't Verdicts
// are ignored.
func (s *Session) Run(ctx context.Context, dir string, args ...string) error {

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	defer stdin.Close()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	defer stdout.Close()
	out := bufio.NewReader(stdout)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	defer stderr.Close()

	if err := cmd.Start(); err != nil {
		return err
	}

	// Log subprocess's stderr.
	go func() {
		in := bufio.NewReader(stderr)
		for {
			line, err := in.ReadBytes('\n')
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Printf("stderr error %s", err)
				break
			}
			if s.ShowStderr {
				log.Printf("stderr %s", line)
			}
		}
	}()

	var fs Failures

	for i, iop := range s.IOs {

		if iop.Timeout == 0 {
			iop.Timeout = s.DefaultTimeout
		}

		var (
			timer    *time.Timer
			happy    = errors.New("happy")
			timeout  = errors.New("timeout")
			canceled = errors.New("canceled")
			errs     = make(chan error, 3)
			verdicts = make([]Verdict, 0, len(iop.Cases))
		)

		if 0 < iop.Timeout {
			timer = time.AfterFunc(iop.Timeout, func() {
				errs <- timeout
			})
		}

		// Process stdout.
		go func() {
			f := func() error {
				for len(verdicts) < len(iop.Cases) {
					line, err := out.ReadBytes('\n')
					if err != nil {
						return err
					}
					if s.ShowStdout {
						log.Printf("out %s", line)
					}
					var v Verdict
					if err = json.Unmarshal(line, &v); err != nil {
						log.Printf("ignoring %s", line)
						continue
					}
					verdicts = append(verdicts, v)
				}
				return nil
			}

			err := f()
			if timer != nil {
				timer.Stop()
			}
			if err == nil {
				errs <- happy
			} else {
				errs <- err
			}
		}()

		// Send words to stdin.
		go func() {
			f := func() error {
				s.pause("waitBefore", iop.WaitBefore)
				for j, c := range iop.Cases {
					if 0 < j {
						s.pause("waitBetween", iop.WaitBetween)
					}
					js, err := json.Marshal(c.Word)
					if err != nil {
						return err
					}
					if s.ShowStdin {
						log.Printf("in %s\n", js)
					}
					if _, err := stdin.Write(append(js, '\n')); err != nil {
						return err
					}
				}
				return nil
			}

			if err := f(); err == nil {
				errs <- happy
			} else {
				errs <- err
			}
		}()

		happies := 0
		want := 2

	LOOP:
		for {
			select {
			case <-ctx.Done():
				return canceled
			case err = <-errs:
				switch err {
				case happy:
					happies++
					if want <= happies {
						break LOOP
					}
				default:
					break LOOP
				}
			}
		}

		if happies < want {
			return err
		}

		for j, c := range iop.Cases {
			v := verdicts[j]
			if v.Word != c.Word {
				return fmt.Errorf("io %d case %d: got a verdict for %q, not %q", i, j, v.Word, c.Word)
			}
			if v.Matched != c.Match {
				fs = append(fs, Failure{i, j, c.Word, c.Match})
			}
		}
	}

	if err := stdin.Close(); err != nil {
		log.Printf("stdin.Close() error %s", err)
	}

	if err := cmd.Wait(); err != nil {
		return err
	}

	if fs != nil {
		return fs
	}
	return nil
}

func (s *Session) pause(why string, d time.Duration) {
	if 0 < d {
		if s.Verbose {
			log.Printf("pause %s %s", why, d)
		}
		time.Sleep(d)
	}
}
