// Package task defines the in-memory task domain model.
package task

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Field length limits enforced by the domain and the validation engine.
const (
	TitleMaxLen       = 200
	DescriptionMaxLen = 1024
)

var (
	// ErrNotFound is returned when a task does not exist in the index.
	ErrNotFound = errors.New("task not found")
	// ErrEmptyTitle is returned when a title is empty or whitespace-only.
	ErrEmptyTitle = errors.New("title is empty or whitespace-only")
	// ErrTitleTooLong is returned when a title exceeds TitleMaxLen after trimming.
	ErrTitleTooLong = errors.New("title exceeds maximum length")
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// IsValid reports whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	}
	return false
}

// Task represents a single unit of work.
//
// ID is the immutable internal identity. Num is the session-scoped display
// number users type in commands; numbers are never reused after deletion.
type Task struct {
	ID          string    `json:"id"`
	Num         int       `json:"num"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateFields carries the mutable fields of a task. Nil means "leave as is".
type UpdateFields struct {
	Title       *string
	Description *string
	Tags        *[]string
}

// NormalizeTitle trims surrounding whitespace and validates the title invariant.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if len([]rune(title)) > TitleMaxLen {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// NormalizeTags trims, deduplicates, and sorts a tag set. Empty tags are dropped.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
