package event

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tally/internal/core/task"
)

// fixture drives a live index and a log in lockstep, the way the executor does.
type fixture struct {
	ix  *task.Index
	log *Log
}

func newFixture(t *testing.T, maxLen int) *fixture {
	t.Helper()

	ix := task.NewIndex()
	tick := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ix.SetClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	n := 0
	ix.SetIDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})

	return &fixture{ix: ix, log: NewLog(maxLen)}
}

func (f *fixture) create(t *testing.T, title string) task.Task {
	t.Helper()
	created, err := f.ix.Create(title, "", nil)
	require.NoError(t, err)
	f.log.Append(TaskCreated(created))
	return created
}

func TestLog_AppendAssignsSequence(t *testing.T) {
	f := newFixture(t, 0)

	a := f.create(t, "a")
	b := f.create(t, "b")
	_ = a

	events := f.log.Events()
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Seq)
	assert.Equal(t, int64(2), events[1].Seq)
	assert.Equal(t, b.ID, events[1].TaskID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestLog_ReplayMatchesLiveState(t *testing.T) {
	f := newFixture(t, 0)

	a := f.create(t, "a")
	b := f.create(t, "b")

	done, _, err := f.ix.Complete(a.ID)
	require.NoError(t, err)
	f.log.Append(TaskCompleted(done, false))

	removed, err := f.ix.Delete(b.ID)
	require.NoError(t, err)
	f.log.Append(TaskDeleted(removed))

	replayed := f.log.Replay(0)
	assert.True(t, f.ix.Equal(replayed), "replay of the full log must equal the live index")
}

func TestLog_ReplayUpTo(t *testing.T) {
	f := newFixture(t, 0)

	f.create(t, "a")
	f.create(t, "b")

	replayed := f.log.Replay(1)
	assert.Equal(t, 1, replayed.Len())
}

func TestLog_UndoLast(t *testing.T) {
	f := newFixture(t, 0)

	before := f.ix.Clone()
	f.create(t, "a")

	res := f.log.UndoLast()
	require.True(t, res.Success)
	require.NotNil(t, res.Undone)
	assert.Equal(t, TypeTaskCreated, res.Undone.Type)
	assert.True(t, before.Equal(res.State), "undo must restore the exact pre-command state")

	// Sequence numbers strictly increase across undo.
	assert.Equal(t, int64(1), f.log.LastSeq())
	seq := f.log.Append(TaskCreated(task.Task{ID: "x", Num: 9, Title: "x"}))
	assert.Equal(t, int64(2), seq)
}

func TestLog_UndoEmpty(t *testing.T) {
	l := NewLog(0)

	res := l.UndoLast()
	assert.False(t, res.Success)
	assert.Equal(t, "nothing to undo", res.Reason)
	assert.Nil(t, res.Undone)
}

func TestLog_UndoDeleteRestoresSnapshot(t *testing.T) {
	f := newFixture(t, 0)

	created := f.create(t, "keep me")
	beforeDelete := f.ix.Clone()

	removed, err := f.ix.Delete(created.ID)
	require.NoError(t, err)
	f.log.Append(TaskDeleted(removed))

	res := f.log.UndoLast()
	require.True(t, res.Success)
	assert.True(t, beforeDelete.Equal(res.State))

	restored, err := res.State.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, restored)
}

func TestLog_NoOpEventsPreserveFold(t *testing.T) {
	f := newFixture(t, 0)

	created := f.create(t, "a")
	done, _, err := f.ix.Complete(created.ID)
	require.NoError(t, err)
	f.log.Append(TaskCompleted(done, false))

	// Second complete is a domain no-op but still audited.
	again, changed, err := f.ix.Complete(created.ID)
	require.NoError(t, err)
	require.False(t, changed)
	f.log.Append(TaskCompleted(again, true))

	assert.Equal(t, 3, f.log.Len())
	assert.True(t, f.ix.Equal(f.log.Replay(0)))
}

func TestLog_EvictionKeepsRecentUndo(t *testing.T) {
	f := newFixture(t, 2)

	f.create(t, "a")
	f.create(t, "b")
	assert.True(t, f.log.Complete())

	f.create(t, "c")
	assert.False(t, f.log.Complete(), "eviction invalidates replay-from-zero")
	assert.Equal(t, 2, f.log.Len())

	// Replay still reconstructs full live state via the baseline.
	assert.True(t, f.ix.Equal(f.log.Replay(0)))

	// Undo within the retained window still works.
	res := f.log.UndoLast()
	require.True(t, res.Success)
	assert.Equal(t, 2, res.State.Len())
}
