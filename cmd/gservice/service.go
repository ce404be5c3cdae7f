package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/match"
	"github.com/Comcast/glushkov/storage"
	"github.com/Comcast/glushkov/tools"
	"github.com/Comcast/glushkov/util"
)

// NoName is returned when a def to be stored has no name.
var NoName = errors.New("def has no name")

// Service keeps named automata and matches words against them.
type Service struct {
	Interpreters core.InterpretersMap
	Storage      storage.Storage
	Matcher      *match.Matcher
	Stats        *Stats

	// Subs sees every match against a stored def.
	Subs *Subs

	cache    *AutomatonCache
	firehose chan interface{}
}

// NewService makes a Service with the given storage.
//
// A nil Storage gets a MemStorage.
func NewService(st storage.Storage, interpreters core.InterpretersMap) *Service {
	if st == nil {
		st = storage.NewMemStorage()
	}
	return &Service{
		Interpreters: interpreters,
		Storage:      st,
		Matcher:      &match.Matcher{},
		Stats:        NewStats(),
		Subs:         NewSubs(),
	}
}

// Define is a service-level API to compile a def and store it under
// its name.
func (s *Service) Define(ctx context.Context, d *core.Def) (*storage.Record, error) {
	if d == nil || d.Name == "" {
		return nil, NoName
	}

	util.Logf("Service.Define %s", d.Name)

	t := NewTimer("define", s.Stats)
	defer t.StopLog()

	if err := d.Compile(ctx, s.Interpreters, true); err != nil {
		return nil, err
	}

	r, err := storage.NewRecord(d)
	if err != nil {
		return nil, err
	}

	if err = s.Storage.Put(ctx, r); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(d.Name, r)
	}

	s.Stats.Defines.Add(1)

	return r, nil
}

// Rem is a service-level API to remove a def.
func (s *Service) Rem(ctx context.Context, name string) error {
	util.Logf("Service.Rem %s", name)

	if s.cache != nil {
		s.cache.Rem(name)
	}

	if err := s.Storage.Rem(ctx, name); err != nil {
		return err
	}

	s.Stats.Rems.Add(1)

	return nil
}

// Get returns the restored record for the name.
//
// The cache, if any, is consulted first.
func (s *Service) Get(ctx context.Context, name string) (*storage.Record, error) {
	s.Stats.Gets.Add(1)

	if s.cache != nil {
		if r := s.cache.Get(name); r != nil {
			s.Stats.CacheHits.Add(1)
			return r, nil
		}
		s.Stats.CacheMisses.Add(1)
	}

	t := NewTimer("get", s.Stats)
	defer t.StopLog()

	r, err := s.Storage.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if err = r.Restore(ctx, s.Interpreters); err != nil {
		return nil, NewWrappedError(fmt.Errorf("can't restore %s", name), err)
	}

	if s.cache != nil {
		s.cache.Put(name, r)
	}

	return r, nil
}

// List is a service-level API to get the names of all defs.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.Storage.List(ctx)
}

// Match is a service-level API to match words against a named def.
func (s *Service) Match(ctx context.Context, name string, words []string) (match.Indices, error) {
	r, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	is, err := s.matchAll(ctx, r.Automaton, words)
	if err != nil {
		return nil, err
	}
	s.Subs.Do(name, &MatchOp{
		Name:    name,
		Words:   words,
		Matched: is,
	})
	return is, nil
}

// MatchDef matches words against a def that isn't stored.
func (s *Service) MatchDef(ctx context.Context, d *core.Def, words []string) (match.Indices, error) {
	if d == nil {
		return nil, errors.New("no def given")
	}
	if err := d.Compile(ctx, s.Interpreters, true); err != nil {
		return nil, err
	}
	return s.matchAll(ctx, d.Automaton, words)
}

func (s *Service) matchAll(ctx context.Context, a *core.Automaton, words []string) (match.Indices, error) {
	t := NewTimer("match", s.Stats)
	defer t.StopLog()

	ws := make([]core.Word, len(words))
	for i, w := range words {
		ws[i] = core.Word(w)
	}

	is, err := s.Matcher.MatchAll(ctx, a, ws)
	if err != nil {
		return nil, err
	}

	s.Stats.Matches.Add(1)
	s.Stats.Words.Add(int64(len(words)))

	return is, nil
}

// EnableCache turns on the cache of restored records.
func (s *Service) EnableCache(c *AutomatonCache) {
	s.cache = c
}

// fire sends x to the firehose (if there is one) without blocking.
func (s *Service) fire(x interface{}) {
	if s.firehose == nil {
		return
	}
	select {
	case s.firehose <- x:
	default:
		log.Printf("s.firehose blocked")
	}
}

// LoadDefs defines every def file (*.yaml, but not *.test.yaml) in
// the directory.  A def without a name gets the file's basename.
func (s *Service) LoadDefs(ctx context.Context, dir string) ([]string, error) {
	filenames, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, filename := range filenames {
		if strings.HasSuffix(filename, ".test.yaml") {
			continue
		}
		src, err := tools.ReadFileWithInlines(filename)
		if err != nil {
			return names, err
		}
		d, err := core.ParseDef(src)
		if err != nil {
			return names, NewWrappedError(fmt.Errorf("can't load %s", filename), err)
		}
		if d.Name == "" {
			d.Name = strings.TrimSuffix(filepath.Base(filename), ".yaml")
		}
		if _, err = s.Define(ctx, d); err != nil {
			return names, NewWrappedError(fmt.Errorf("can't define %s", filename), err)
		}
		log.Printf("Service.LoadDefs defined %s from %s", d.Name, filename)
		names = append(names, d.Name)
	}

	return names, nil
}
