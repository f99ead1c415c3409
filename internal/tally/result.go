package tally

import (
	"errors"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/tally/internal/core/event"
	"github.com/hay-kot/tally/internal/core/task"
)

// ErrorKind classifies a recovered error for the renderer.
type ErrorKind string

const (
	ErrorKindParse      ErrorKind = "parse"
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindNotFound   ErrorKind = "not_found"
	ErrorKindAmbiguity  ErrorKind = "ambiguity"
	ErrorKindInternal   ErrorKind = "internal"
)

// ResultError is one recovered failure inside an ExecutionResult.
type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
}

// ExecutionResult is the structured outcome of dispatching one input. The
// core never formats terminal output; the renderer consumes this instead.
// In machine mode the result serializes as-is to one JSON object per line.
type ExecutionResult struct {
	Success    bool              `json:"success"`
	Intent     string            `json:"intent,omitempty"`
	State      State             `json:"state"`
	Summary    string            `json:"summary,omitempty"`
	Tasks      []task.Task       `json:"tasks,omitempty"`
	Events     []event.Event     `json:"events,omitempty"`
	Undo       *event.UndoResult `json:"undo,omitempty"`
	Errors     []ResultError     `json:"errors,omitempty"`
	Candidates []string          `json:"candidates,omitempty"`
	Usage      []string          `json:"usage,omitempty"`
	// Prompt is non-empty when the session is waiting for more input.
	Prompt string `json:"prompt,omitempty"`
	Quit   bool   `json:"quit,omitempty"`
}

// resultErrors translates a recovered error into renderer-facing entries.
// Aggregated validation errors fan out one entry per field.
func resultErrors(err error) []ResultError {
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ResultError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			kind := ErrorKindValidation
			if errors.Is(fe.Err, task.ErrNotFound) {
				kind = ErrorKindNotFound
			}
			out = append(out, ResultError{Kind: kind, Field: fe.Field, Message: fe.Err.Error()})
		}
		return out
	}

	if errors.Is(err, task.ErrNotFound) {
		return []ResultError{{Kind: ErrorKindNotFound, Message: err.Error()}}
	}
	if errors.Is(err, task.ErrEmptyTitle) || errors.Is(err, task.ErrTitleTooLong) {
		return []ResultError{{Kind: ErrorKindValidation, Field: "title", Message: err.Error()}}
	}
	return []ResultError{{Kind: ErrorKindInternal, Message: err.Error()}}
}
