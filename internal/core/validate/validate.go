// Package validate provides the rule-based pre-condition engine that guards
// every mutation. Rules are independent functions registered per operation;
// the engine runs all of them and aggregates every failure so callers can
// report the full list in one pass. The engine never mutates state.
package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/tally/internal/core/task"
)

// Fields is the untyped input a rule inspects. Missing keys are absent, not
// empty strings, so rules can distinguish "not provided" from "provided empty".
type Fields map[string]string

// Has reports whether a field was provided.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Rule checks one aspect of an operation's input. A nil return means the rule
// passed; failures are criterio field errors.
type Rule func(data Fields) error

// Lookup is the read-only existence check against the live task index. The
// engine never touches domain methods beyond it.
type Lookup interface {
	Has(num int) bool
}

// Engine holds the rule registry keyed by operation name.
type Engine struct {
	rules map[string][]Rule
}

// New returns an engine with the built-in rules for the task operations
// registered. index provides the read-only existence check.
func New(index Lookup) *Engine {
	e := &Engine{rules: make(map[string][]Rule)}

	e.Register("add", TitleRequired, TitleShape, DescriptionShape, TagShape)
	e.Register("update", IDRequired, IDShape, IDExists(index), TitleShape, DescriptionShape, TagShape)
	e.Register("complete", IDRequired, IDShape, IDExists(index))
	e.Register("reopen", IDRequired, IDShape, IDExists(index))
	e.Register("delete", IDRequired, IDShape, IDExists(index))
	e.Register("list", StatusShape)

	return e
}

// Register appends rules for an operation. Later registrations extend, not
// replace, so config-driven commands can layer their own checks.
func (e *Engine) Register(op string, rules ...Rule) {
	e.rules[op] = append(e.rules[op], rules...)
}

// Validate runs every rule registered for the operation and aggregates all
// failures. A nil return means the input is valid. Operations without rules
// are valid by definition.
func (e *Engine) Validate(op string, data Fields) error {
	var errs criterio.FieldErrorsBuilder

	for _, rule := range e.rules[op] {
		err := rule(data)
		if err == nil {
			continue
		}

		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = errs.Append(fe.Field, fe.Err)
			}
			continue
		}
		errs = errs.Append(op, err)
	}

	return errs.ToError()
}

// TitleRequired fails when no title was provided at all.
func TitleRequired(data Fields) error {
	if !data.Has("title") {
		return criterio.NewFieldErrors("title", fmt.Errorf("title is required"))
	}
	return nil
}

// TitleShape validates a provided title: non-empty after trimming, within
// the length limit.
func TitleShape(data Fields) error {
	if !data.Has("title") {
		return nil
	}
	return criterio.Run("title", data["title"], func(title string) error {
		trimmed := strings.TrimSpace(title)
		if trimmed == "" {
			return fmt.Errorf("must not be empty or whitespace-only")
		}
		if n := len([]rune(trimmed)); n > task.TitleMaxLen {
			return fmt.Errorf("must be at most %d characters, got %d", task.TitleMaxLen, n)
		}
		return nil
	})
}

// DescriptionShape validates a provided description's length.
func DescriptionShape(data Fields) error {
	if !data.Has("description") {
		return nil
	}
	return criterio.Run("description", data["description"], func(desc string) error {
		if n := len([]rune(desc)); n > task.DescriptionMaxLen {
			return fmt.Errorf("must be at most %d characters, got %d", task.DescriptionMaxLen, n)
		}
		return nil
	})
}

// IDRequired fails when no task reference was provided.
func IDRequired(data Fields) error {
	if !data.Has("id") {
		return criterio.NewFieldErrors("id", fmt.Errorf("task id is required"))
	}
	return nil
}

// IDShape validates that a provided id is a positive integer.
func IDShape(data Fields) error {
	if !data.Has("id") {
		return nil
	}
	return criterio.Run("id", data["id"], func(id string) error {
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return fmt.Errorf("must be an integer, got %q", id)
		}
		if n <= 0 {
			return fmt.Errorf("must be positive, got %d", n)
		}
		return nil
	})
}

// IDExists validates that a well-formed id refers to a live task. Malformed
// ids are left to IDShape so each problem is reported once.
func IDExists(index Lookup) Rule {
	return func(data Fields) error {
		if !data.Has("id") {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(data["id"]))
		if err != nil || n <= 0 {
			return nil
		}
		if !index.Has(n) {
			return criterio.NewFieldErrors("id", fmt.Errorf("task %d: %w", n, task.ErrNotFound))
		}
		return nil
	}
}

// StatusShape validates a provided status filter against the enum.
func StatusShape(data Fields) error {
	if !data.Has("status") {
		return nil
	}
	return criterio.Run("status", data["status"], func(s string) error {
		if !task.Status(s).IsValid() {
			return fmt.Errorf("must be one of %s, %s", task.StatusPending, task.StatusCompleted)
		}
		return nil
	})
}

// TagShape validates provided tags: comma-separated, each non-blank.
func TagShape(data Fields) error {
	if !data.Has("tags") {
		return nil
	}
	var errs criterio.FieldErrorsBuilder
	for i, tag := range strings.Split(data["tags"], ",") {
		if strings.TrimSpace(tag) == "" {
			errs = errs.Append(fmt.Sprintf("tags[%d]", i), fmt.Errorf("tag must not be blank"))
		}
	}
	return errs.ToError()
}
