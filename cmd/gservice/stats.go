package main

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorhill/cronexpr"
)

// Stats counts what the service has done.
type Stats struct {
	Defines     atomic.Int64
	Rems        atomic.Int64
	Gets        atomic.Int64
	Matches     atomic.Int64
	Words       atomic.Int64
	CacheHits   atomic.Int64
	CacheMisses atomic.Int64
	Errors      atomic.Int64

	sync.Mutex
	timings map[string]*Timing
}

// Timing accumulates durations for one Timer tag.
type Timing struct {
	N     int64         `json:"n"`
	Total time.Duration `json:"total"`
	Max   time.Duration `json:"max"`
}

func NewStats() *Stats {
	return &Stats{
		timings: make(map[string]*Timing, 8),
	}
}

// Observe adds a duration for the given tag.
func (s *Stats) Observe(tag string, d time.Duration) {
	s.Lock()
	t, have := s.timings[tag]
	if !have {
		t = &Timing{}
		s.timings[tag] = t
	}
	t.N++
	t.Total += d
	if t.Max < d {
		t.Max = d
	}
	s.Unlock()
}

// StatsSnapshot is a copy of Stats that can be marshaled.
type StatsSnapshot struct {
	At          time.Time          `json:"at"`
	Defines     int64              `json:"defines"`
	Rems        int64              `json:"rems"`
	Gets        int64              `json:"gets"`
	Matches     int64              `json:"matches"`
	Words       int64              `json:"words"`
	CacheHits   int64              `json:"cacheHits"`
	CacheMisses int64              `json:"cacheMisses"`
	Errors      int64              `json:"errors"`
	Timings     map[string]*Timing `json:"timings,omitempty"`
}

func (s *Stats) Snapshot() *StatsSnapshot {
	ss := &StatsSnapshot{
		At:          time.Now().UTC(),
		Defines:     s.Defines.Load(),
		Rems:        s.Rems.Load(),
		Gets:        s.Gets.Load(),
		Matches:     s.Matches.Load(),
		Words:       s.Words.Load(),
		CacheHits:   s.CacheHits.Load(),
		CacheMisses: s.CacheMisses.Load(),
		Errors:      s.Errors.Load(),
	}

	s.Lock()
	ss.Timings = make(map[string]*Timing, len(s.timings))
	for tag, t := range s.timings {
		copied := *t
		ss.Timings[tag] = &copied
	}
	s.Unlock()

	return ss
}

// Report calls the given function on the schedule given by the cron
// expression until the context is done.
//
// The schedule is parsed before Report returns, and a bad schedule
// is an error.
func (s *Stats) Report(ctx context.Context, schedule string, f func(*StatsSnapshot)) error {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return err
	}

	go func() {
		for {
			next := expr.Next(time.Now())
			if next.IsZero() {
				log.Printf("Stats.Report schedule '%s' has no next time", schedule)
				return
			}
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				f(s.Snapshot())
			}
		}
	}()

	return nil
}
