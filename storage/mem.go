package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemStorage keeps records in memory.
//
// Records are kept in their JSON form, so what Get returns has been
// through the same round trip as a record from a persistent Storage.
type MemStorage struct {
	sync.RWMutex
	records map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		records: make(map[string][]byte),
	}
}

func (s *MemStorage) Put(ctx context.Context, r *Record) error {
	js, err := json.Marshal(r)
	if err != nil {
		return err
	}
	s.Lock()
	s.records[r.Name] = js
	s.Unlock()
	return nil
}

func (s *MemStorage) Get(ctx context.Context, name string) (*Record, error) {
	s.RLock()
	js, have := s.records[name]
	s.RUnlock()
	if !have {
		return nil, NotFound
	}
	var r Record
	if err := json.Unmarshal(js, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MemStorage) Rem(ctx context.Context, name string) error {
	s.Lock()
	defer s.Unlock()
	if _, have := s.records[name]; !have {
		return NotFound
	}
	delete(s.records, name)
	return nil
}

func (s *MemStorage) List(ctx context.Context) ([]string, error) {
	s.RLock()
	acc := make([]string, 0, len(s.records))
	for name := range s.records {
		acc = append(acc, name)
	}
	s.RUnlock()
	sort.Strings(acc)
	return acc, nil
}
