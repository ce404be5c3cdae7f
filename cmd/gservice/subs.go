package main

import (
	"sync"
)

type Hook func(interface{})

// Subs maps def names to hooks that see each match against that def.
type Subs struct {
	sync.Mutex
	hooks map[string]map[int]Hook
	next  int
}

func NewSubs() *Subs {
	return &Subs{
		hooks: make(map[string]map[int]Hook, 32),
	}
}

// Add returns an id for Rem.
func (s *Subs) Add(name string, h Hook) int {
	s.Lock()
	defer s.Unlock()

	s.next++
	hooks, have := s.hooks[name]
	if !have {
		hooks = make(map[int]Hook, 4)
		s.hooks[name] = hooks
	}
	hooks[s.next] = h
	return s.next
}

func (s *Subs) Rem(name string, id int) {
	s.Lock()
	s.rem(name, id)
	s.Unlock()
}

func (s *Subs) rem(name string, id int) {
	if hooks, have := s.hooks[name]; have {
		delete(hooks, id)
		if len(hooks) == 0 {
			delete(s.hooks, name)
		}
	}
}

// RemAll removes the hook with the given id from every name.
func (s *Subs) RemAll(id int) {
	s.Lock()
	for name := range s.hooks {
		s.rem(name, id)
	}
	s.Unlock()
}

// Do calls the name's hooks (outside of the lock).
func (s *Subs) Do(name string, x interface{}) {
	var acc []Hook
	s.Lock()
	if hooks, have := s.hooks[name]; have {
		acc = make([]Hook, 0, len(hooks))
		for _, h := range hooks {
			acc = append(acc, h)
		}
	}
	s.Unlock()
	for _, h := range acc {
		h(x)
	}
}
