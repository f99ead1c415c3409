package event

import (
	"time"

	"github.com/hay-kot/tally/internal/core/task"
)

// UndoResult reports the outcome of an undo attempt. Undo never fails with an
// error; an empty log yields Success=false with a reason.
type UndoResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	// Undone is the event that was rewound, when Success is true.
	Undone *Event `json:"undone,omitempty"`
	// State is the replayed task collection after the rewind.
	State *task.Index `json:"-"`
}

// Log is the append-only event store.
//
// When a maximum entry count is configured, the oldest events are folded into
// a baseline snapshot and evicted once the cap is exceeded. Eviction keeps
// replay and undo correct within the retained window but makes a literal
// replay-from-zero impossible; Complete reports which situation holds.
type Log struct {
	baseline *task.Index
	events   []Event
	maxLen   int

	// highWater is the last sequence number ever assigned. It survives
	// truncation so sequence numbers are never reused after an undo.
	highWater int64

	evicted bool

	now func() time.Time
}

// NewLog returns an empty log. maxLen <= 0 means unbounded.
func NewLog(maxLen int) *Log {
	return &Log{
		baseline: task.NewIndex(),
		maxLen:   maxLen,
		now:      time.Now,
	}
}

// SetClock overrides the log clock. Test use only.
func (l *Log) SetClock(now func() time.Time) { l.now = now }

// Append stamps the event with the next sequence number and timestamp, then
// stores it. Returns the assigned sequence number. O(1) amortized.
func (l *Log) Append(ev Event) int64 {
	l.highWater++
	ev.Seq = l.highWater
	if ev.Timestamp.IsZero() {
		ev.Timestamp = l.now()
	}
	l.events = append(l.events, ev)
	l.evict()
	return ev.Seq
}

// evict folds the oldest events into the baseline until the cap is honored.
func (l *Log) evict() {
	if l.maxLen <= 0 {
		return
	}
	for len(l.events) > l.maxLen {
		apply(l.baseline, l.events[0])
		l.events = l.events[1:]
		l.evicted = true
	}
}

// Len returns the number of retained events.
func (l *Log) Len() int { return len(l.events) }

// LastSeq returns the highest sequence number ever assigned, including
// sequence numbers of events that have since been undone or evicted.
func (l *Log) LastSeq() int64 { return l.highWater }

// Complete reports whether the log still covers the session from sequence 1,
// i.e. no events have been evicted.
func (l *Log) Complete() bool { return !l.evicted }

// Events returns a copy of the retained events in append order.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Replay folds all retained events with Seq <= upTo into a fresh task index.
// upTo <= 0 replays everything. When events have been evicted, the fold
// starts from the baseline snapshot rather than an empty collection.
func (l *Log) Replay(upTo int64) *task.Index {
	ix := l.baseline.Clone()
	for _, ev := range l.events {
		if upTo > 0 && ev.Seq > upTo {
			break
		}
		apply(ix, ev)
	}
	return ix
}

// UndoLast rewinds the most recent event and returns the replayed prior
// state. The undone event's sequence number is retired, never reused.
func (l *Log) UndoLast() UndoResult {
	if len(l.events) == 0 {
		return UndoResult{Success: false, Reason: "nothing to undo"}
	}

	last := l.events[len(l.events)-1]
	l.events = l.events[:len(l.events)-1]

	return UndoResult{
		Success: true,
		Undone:  &last,
		State:   l.Replay(0),
	}
}

// apply folds a single event into an index.
//
// No-op audit events carry a snapshot identical to the live task, so
// restoring them unconditionally keeps the fold branch-free.
func apply(ix *task.Index, ev Event) {
	switch ev.Type {
	case TypeTaskCreated, TypeTaskUpdated, TypeTaskCompleted, TypeTaskReopened:
		ix.Restore(ev.Task)
	case TypeTaskDeleted:
		ix.Remove(ev.TaskID)
	}
}
