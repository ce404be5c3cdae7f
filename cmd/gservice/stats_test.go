package main

import (
	"context"
	"testing"
	"time"
)

func TestStatsObserve(t *testing.T) {
	s := NewStats()
	s.Observe("match", time.Millisecond)
	s.Observe("match", 3*time.Millisecond)
	s.Matches.Add(2)

	ss := s.Snapshot()
	if ss.Matches != 2 {
		t.Fatal(ss.Matches)
	}
	m := ss.Timings["match"]
	if m == nil || m.N != 2 || m.Total != 4*time.Millisecond || m.Max != 3*time.Millisecond {
		t.Fatal(JS(ss))
	}

	// The snapshot is a copy.
	s.Observe("match", time.Second)
	if m.N != 2 {
		t.Fatal(m.N)
	}
}

func TestStatsReport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := NewStats()
	s.Defines.Add(1)

	saw := make(chan *StatsSnapshot, 1)
	// Every second.
	err := s.Report(ctx, "* * * * * * *", func(ss *StatsSnapshot) {
		select {
		case saw <- ss:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case ss := <-saw:
		if ss.Defines != 1 {
			t.Fatal(JS(ss))
		}
	case <-ctx.Done():
		t.Fatal(ctx.Err())
	}
}

func TestStatsReportBadSchedule(t *testing.T) {
	if err := NewStats().Report(context.Background(), "not cron", nil); err == nil {
		t.Fatal("no error")
	}
}

func TestTimer(t *testing.T) {
	s := NewStats()
	timer := NewTimer("x", s)
	timer.StopLog()
	timer.StopLog()
	if n := s.Snapshot().Timings["x"].N; n != 2 {
		t.Fatal(n)
	}
}
