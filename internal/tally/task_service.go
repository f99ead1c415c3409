package tally

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/hay-kot/tally/internal/core/event"
	"github.com/hay-kot/tally/internal/core/task"
	"github.com/hay-kot/tally/internal/core/validate"
)

// ErrInconsistent is returned when the replayed event log and the live task
// index diverge. This should not occur; recovery rebuilds the index from the
// log, which is the source of truth.
var ErrInconsistent = errors.New("event log and task index diverged")

// ListFilter controls which tasks List returns.
type ListFilter struct {
	// Status filters by lifecycle state; empty means all.
	Status task.Status
	// Pattern is a glob matched against the title and each tag; empty
	// means no pattern filter.
	Pattern string
}

// UpdateInput carries the fields an update may change. Nil means unchanged;
// Tags nil means unchanged, empty slice clears.
type UpdateInput struct {
	Title       *string
	Description *string
	Tags        []string
	HasTags     bool
}

// TaskService owns the live task index and the event log, and enforces the
// validate-then-mutate-then-append discipline: a validation failure means
// zero domain mutations and zero events.
type TaskService struct {
	index  *task.Index
	events *event.Log
	rules  *validate.Engine
	log    zerolog.Logger

	// paranoid re-replays the whole log after every mutation and compares
	// against the live index.
	paranoid bool
}

// NewTaskService wires a service around an index/log/rules triple. The rules
// engine must have been built over the same index for existence checks to
// see live state.
func NewTaskService(index *task.Index, events *event.Log, rules *validate.Engine, logger zerolog.Logger) *TaskService {
	return &TaskService{
		index:  index,
		events: events,
		rules:  rules,
		log:    logger.With().Str("component", "task-service").Logger(),
	}
}

// SetParanoid toggles the post-mutation replay self-check.
func (s *TaskService) SetParanoid(v bool) { s.paranoid = v }

// Validate exposes the rule engine for callers that need a pre-flight check
// without performing the operation (e.g. before a confirmation dialog).
func (s *TaskService) Validate(op string, data validate.Fields) error {
	return s.rules.Validate(op, data)
}

// Create validates and adds a new pending task, appending a TaskCreated event.
func (s *TaskService) Create(title, description string, tags []string) (task.Task, error) {
	data := validate.Fields{"title": title}
	if description != "" {
		data["description"] = description
	}
	if len(tags) > 0 {
		data["tags"] = strings.Join(tags, ",")
	}
	if err := s.rules.Validate("add", data); err != nil {
		return task.Task{}, err
	}

	created, err := s.index.Create(title, description, tags)
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	seq := s.events.Append(event.TaskCreated(created))
	s.log.Debug().Int("num", created.Num).Int64("seq", seq).Msg("task created")

	return created, s.verify()
}

// Update validates and applies field changes, appending a TaskUpdated event.
func (s *TaskService) Update(ref string, input UpdateInput) (task.Task, error) {
	data := validate.Fields{"id": ref}
	if input.Title != nil {
		data["title"] = *input.Title
	}
	if input.Description != nil {
		data["description"] = *input.Description
	}
	if input.HasTags {
		data["tags"] = strings.Join(input.Tags, ",")
	}
	if err := s.rules.Validate("update", data); err != nil {
		return task.Task{}, err
	}

	t, err := s.byRef(ref)
	if err != nil {
		return task.Task{}, err
	}

	fields := task.UpdateFields{Title: input.Title, Description: input.Description}
	if input.HasTags {
		tags := input.Tags
		fields.Tags = &tags
	}

	updated, err := s.index.Update(t.ID, fields)
	if err != nil {
		return task.Task{}, fmt.Errorf("update task %d: %w", t.Num, err)
	}

	seq := s.events.Append(event.TaskUpdated(updated))
	s.log.Debug().Int("num", updated.Num).Int64("seq", seq).Msg("task updated")

	return updated, s.verify()
}

// Complete validates and marks a task completed. Completing a completed task
// succeeds unchanged; the audit event is still appended, flagged no-op.
func (s *TaskService) Complete(ref string) (t task.Task, changed bool, err error) {
	return s.setStatus(ref, "complete")
}

// Reopen validates and marks a completed task pending again. Idempotent like
// Complete.
func (s *TaskService) Reopen(ref string) (t task.Task, changed bool, err error) {
	return s.setStatus(ref, "reopen")
}

func (s *TaskService) setStatus(ref, op string) (task.Task, bool, error) {
	if err := s.rules.Validate(op, validate.Fields{"id": ref}); err != nil {
		return task.Task{}, false, err
	}

	t, err := s.byRef(ref)
	if err != nil {
		return task.Task{}, false, err
	}

	var (
		updated task.Task
		changed bool
	)
	if op == "complete" {
		updated, changed, err = s.index.Complete(t.ID)
	} else {
		updated, changed, err = s.index.Reopen(t.ID)
	}
	if err != nil {
		return task.Task{}, false, fmt.Errorf("%s task %d: %w", op, t.Num, err)
	}

	var seq int64
	if op == "complete" {
		seq = s.events.Append(event.TaskCompleted(updated, !changed))
	} else {
		seq = s.events.Append(event.TaskReopened(updated, !changed))
	}
	s.log.Debug().Int("num", updated.Num).Int64("seq", seq).Bool("noop", !changed).Msg("task status set")

	return updated, changed, s.verify()
}

// Delete validates and removes a task, appending a TaskDeleted event carrying
// the final snapshot so undo can restore it.
func (s *TaskService) Delete(ref string) (task.Task, error) {
	if err := s.rules.Validate("delete", validate.Fields{"id": ref}); err != nil {
		return task.Task{}, err
	}

	t, err := s.byRef(ref)
	if err != nil {
		return task.Task{}, err
	}

	removed, err := s.index.Delete(t.ID)
	if err != nil {
		return task.Task{}, fmt.Errorf("delete task %d: %w", t.Num, err)
	}

	seq := s.events.Append(event.TaskDeleted(removed))
	s.log.Debug().Int("num", removed.Num).Int64("seq", seq).Msg("task deleted")

	return removed, s.verify()
}

// Get returns a task by display-number reference.
func (s *TaskService) Get(ref string) (task.Task, error) {
	return s.byRef(ref)
}

// List returns tasks matching the filter, ordered by display number.
func (s *TaskService) List(filter ListFilter) ([]task.Task, error) {
	if filter.Status != "" {
		if err := s.rules.Validate("list", validate.Fields{"status": string(filter.Status)}); err != nil {
			return nil, err
		}
	}
	if filter.Pattern != "" {
		if !doublestar.ValidatePattern(filter.Pattern) {
			return nil, fmt.Errorf("invalid filter pattern %q", filter.Pattern)
		}
	}

	var out []task.Task
	for _, t := range s.index.List() {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Pattern != "" && !matchesPattern(t, filter.Pattern) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func matchesPattern(t task.Task, pattern string) bool {
	if ok, _ := doublestar.Match(pattern, t.Title); ok {
		return true
	}
	for _, tag := range t.Tags {
		if ok, _ := doublestar.Match(pattern, tag); ok {
			return true
		}
	}
	return false
}

// Undo rewinds the most recent event and swaps the live index for the
// replayed prior state. Undo on an empty log is a successful no-op result
// with Success=false; it never errors.
func (s *TaskService) Undo() event.UndoResult {
	res := s.events.UndoLast()
	if res.Success {
		s.index.ReplaceWith(res.State)
		s.log.Debug().Int64("seq", res.Undone.Seq).Str("type", string(res.Undone.Type)).Msg("event undone")
	}
	return res
}

// Events returns the retained event log in append order.
func (s *TaskService) Events() []event.Event { return s.events.Events() }

// LogComplete reports whether the log still covers the session from
// sequence 1 (no eviction has occurred).
func (s *TaskService) LogComplete() bool { return s.events.Complete() }

// verify runs the replay self-check when paranoid mode is on. Divergence is
// recovered by rebuilding the index from the log, which is the source of
// truth, and reported as ErrInconsistent.
func (s *TaskService) verify() error {
	if !s.paranoid {
		return nil
	}
	replayed := s.events.Replay(0)
	if s.index.Equal(replayed) {
		return nil
	}
	s.log.Error().Msg("replay diverged from live index; rebuilding from event log")
	s.index.ReplaceWith(replayed)
	return ErrInconsistent
}

// byRef resolves a display-number reference to a live task. Callers validate
// first; this re-checks so the service never trusts its input.
func (s *TaskService) byRef(ref string) (task.Task, error) {
	n, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil {
		return task.Task{}, fmt.Errorf("task reference %q: %w", ref, task.ErrNotFound)
	}
	return s.index.ByNum(n)
}
