package main

import (
	"log"
	"time"
)

var TimerOutput = false

// Timer measures one operation.  StopLog reports the duration to the
// Stats (if any) under the Timer's tag.
type Timer struct {
	Tag   string
	Then  time.Time
	Stats *Stats
}

func NewTimer(tag string, stats *Stats) *Timer {
	return &Timer{
		Tag:   tag,
		Then:  time.Now(),
		Stats: stats,
	}
}

func (t *Timer) Stop() time.Duration {
	now := time.Now()
	d := now.Sub(t.Then)
	t.Then = now
	return d
}

// Sub removes a duration (measured by another Timer) from this one.
func (t *Timer) Sub(d time.Duration) {
	t.Then = t.Then.Add(d)
}

func (t *Timer) StopLog() time.Duration {
	d := t.Stop()
	if t.Stats != nil {
		t.Stats.Observe(t.Tag, d)
	}
	if TimerOutput {
		log.Printf("timer %s %fμ", t.Tag, d.Seconds()*1000*1000)
	}
	return d
}
