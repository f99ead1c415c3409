package task

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Index is the live in-memory task collection. It is owned by a single
// session and is not safe for concurrent use; the CLI core is
// single-threaded by design.
type Index struct {
	tasks   map[string]Task
	byNum   map[int]string
	nextNum int

	// now is injectable for deterministic tests.
	now func() time.Time

	// newID is injectable for deterministic tests.
	newID func() string
}

// NewIndex returns an empty task index.
func NewIndex() *Index {
	return &Index{
		tasks:   make(map[string]Task),
		byNum:   make(map[int]string),
		nextNum: 1,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// SetClock overrides the index clock. Test use only.
func (ix *Index) SetClock(now func() time.Time) { ix.now = now }

// SetIDFunc overrides ID generation. Test use only.
func (ix *Index) SetIDFunc(fn func() string) { ix.newID = fn }

// Len returns the number of live tasks.
func (ix *Index) Len() int { return len(ix.tasks) }

// NextNum returns the display number the next created task will receive.
func (ix *Index) NextNum() int { return ix.nextNum }

// Create adds a new pending task. The title invariant is re-checked here even
// though callers validate first; the domain never trusts its input.
func (ix *Index) Create(title, description string, tags []string) (Task, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return Task{}, err
	}

	now := ix.now()
	t := Task{
		ID:          ix.newID(),
		Num:         ix.nextNum,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		Tags:        NormalizeTags(tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ix.nextNum++
	ix.tasks[t.ID] = t
	ix.byNum[t.Num] = t.ID

	return t, nil
}

// Get returns a task by its internal ID.
func (ix *Index) Get(id string) (Task, error) {
	t, ok := ix.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

// ByNum returns a task by its display number.
func (ix *Index) ByNum(num int) (Task, error) {
	id, ok := ix.byNum[num]
	if !ok {
		return Task{}, ErrNotFound
	}
	return ix.tasks[id], nil
}

// Has reports whether a display number refers to a live task.
func (ix *Index) Has(num int) bool {
	_, ok := ix.byNum[num]
	return ok
}

// Update applies the given fields to a task.
func (ix *Index) Update(id string, fields UpdateFields) (Task, error) {
	t, ok := ix.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}

	if fields.Title != nil {
		title, err := NormalizeTitle(*fields.Title)
		if err != nil {
			return Task{}, err
		}
		t.Title = title
	}
	if fields.Description != nil {
		t.Description = *fields.Description
	}
	if fields.Tags != nil {
		t.Tags = NormalizeTags(*fields.Tags)
	}

	t.UpdatedAt = ix.now()
	ix.tasks[id] = t
	return t, nil
}

// Complete marks a task completed. Completing an already-completed task is a
// no-op that returns the unchanged task; changed reports whether the status
// actually moved.
func (ix *Index) Complete(id string) (t Task, changed bool, err error) {
	return ix.setStatus(id, StatusCompleted)
}

// Reopen marks a task pending again. Idempotent like Complete.
func (ix *Index) Reopen(id string) (t Task, changed bool, err error) {
	return ix.setStatus(id, StatusPending)
}

func (ix *Index) setStatus(id string, status Status) (Task, bool, error) {
	t, ok := ix.tasks[id]
	if !ok {
		return Task{}, false, ErrNotFound
	}
	if t.Status == status {
		return t, false, nil
	}
	t.Status = status
	t.UpdatedAt = ix.now()
	ix.tasks[id] = t
	return t, true, nil
}

// Delete removes a task and returns its final snapshot. Display numbers are
// never reassigned after deletion.
func (ix *Index) Delete(id string) (Task, error) {
	t, ok := ix.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	delete(ix.tasks, id)
	delete(ix.byNum, t.Num)
	return t, nil
}

// List returns all live tasks ordered by display number.
func (ix *Index) List() []Task {
	out := make([]Task, 0, len(ix.tasks))
	for _, t := range ix.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Num < out[j].Num })
	return out
}

// Restore puts a task snapshot back into the index verbatim, advancing the
// number counter past it. Used by event replay; bypasses invariant checks
// because snapshots were validated when first created.
func (ix *Index) Restore(t Task) {
	ix.tasks[t.ID] = t
	ix.byNum[t.Num] = t.ID
	if t.Num >= ix.nextNum {
		ix.nextNum = t.Num + 1
	}
}

// Remove drops a task by ID without error if absent. Used by event replay.
func (ix *Index) Remove(id string) {
	t, ok := ix.tasks[id]
	if !ok {
		return
	}
	delete(ix.tasks, id)
	delete(ix.byNum, t.Num)
}

// Clone returns a deep copy of the index. The clock and ID function are shared.
func (ix *Index) Clone() *Index {
	out := &Index{
		tasks:   make(map[string]Task, len(ix.tasks)),
		byNum:   make(map[int]string, len(ix.byNum)),
		nextNum: ix.nextNum,
		now:     ix.now,
		newID:   ix.newID,
	}
	for id, t := range ix.tasks {
		out.tasks[id] = t
	}
	for num, id := range ix.byNum {
		out.byNum[num] = id
	}
	return out
}

// ReplaceWith overwrites the receiver's contents with another index. Holders
// of the receiver pointer observe the new state; used when undo rewinds the
// collection to a replayed snapshot.
func (ix *Index) ReplaceWith(other *Index) {
	ix.tasks = make(map[string]Task, len(other.tasks))
	ix.byNum = make(map[int]string, len(other.byNum))
	for id, t := range other.tasks {
		ix.tasks[id] = t
	}
	for num, id := range other.byNum {
		ix.byNum[num] = id
	}
	ix.nextNum = other.nextNum
}

// Equal reports whether two indexes hold field-for-field identical tasks and
// the same number counter. Used by the replay self-check.
func (ix *Index) Equal(other *Index) bool {
	if ix.nextNum != other.nextNum || len(ix.tasks) != len(other.tasks) {
		return false
	}
	for id, t := range ix.tasks {
		o, ok := other.tasks[id]
		if !ok || !tasksEqual(t, o) {
			return false
		}
	}
	return true
}

func tasksEqual(a, b Task) bool {
	if a.ID != b.ID || a.Num != b.Num || a.Title != b.Title ||
		a.Description != b.Description || a.Status != b.Status ||
		!a.CreatedAt.Equal(b.CreatedAt) || !a.UpdatedAt.Equal(b.UpdatedAt) ||
		len(a.Tags) != len(b.Tags) {
		return false
	}
	for i := range a.Tags {
		if a.Tags[i] != b.Tags[i] {
			return false
		}
	}
	return true
}
