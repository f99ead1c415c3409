package tally

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/tally/internal/core/grammar"
	"github.com/hay-kot/tally/internal/core/task"
	"github.com/hay-kot/tally/internal/core/validate"
)

// Executor drives the session state machine. It owns no task state; it
// routes parsed commands to the TaskService and mutates only the Session.
type Executor struct {
	tasks  *TaskService
	table  *grammar.Table
	parser *grammar.Parser
	log    zerolog.Logger
}

// NewExecutor returns an executor over the given service and grammar.
func NewExecutor(tasks *TaskService, table *grammar.Table, logger zerolog.Logger) *Executor {
	return &Executor{
		tasks:  tasks,
		table:  table,
		parser: grammar.NewParser(table),
		log:    logger.With().Str("component", "executor").Logger(),
	}
}

// HandleLine processes one raw input line according to the session state:
// collection states consume the line as the awaited entity, the confirmation
// dialog consumes it as an answer, and the main menu parses it as a command.
func (e *Executor) HandleLine(line string, sess *Session) ExecutionResult {
	switch sess.State() {
	case StateAddingTask, StateUpdatingTask, StateDeletingTask:
		return e.collect(line, sess)
	case StateConfirm:
		return e.confirm(line, sess)
	case StateExiting:
		return ExecutionResult{Success: false, State: StateExiting, Quit: true}
	default:
		parsed := e.parser.Parse(line, grammar.Options{MenuMode: sess.InMenu()})
		return e.Dispatch(parsed, sess)
	}
}

// Dispatch executes a parsed command against the session. All recoverable
// errors are folded into the result; nothing panics through here.
func (e *Executor) Dispatch(parsed grammar.ParsedCommand, sess *Session) ExecutionResult {
	e.log.Debug().
		Str("intent", parsed.Intent).
		Str("status", string(parsed.Status)).
		Str("confidence", string(parsed.Confidence)).
		Msg("dispatch")

	switch parsed.Status {
	case grammar.StatusInvalid:
		return e.parseFailure(parsed, sess)
	case grammar.StatusAmbiguous:
		return ExecutionResult{
			Success:    false,
			State:      sess.State(),
			Summary:    "ambiguous command, pick one",
			Candidates: parsed.Candidates,
			Errors: []ResultError{{
				Kind:    ErrorKindAmbiguity,
				Message: strings.Join(parsed.Ambiguity, "; "),
			}},
		}
	}

	if len(parsed.Missing) > 0 {
		return e.beginCollection(parsed, sess)
	}

	// Destructive commands never run straight from dispatch.
	if parsed.Intent == "delete" {
		pending := &PendingAction{Intent: "delete", Entities: cloneEntities(parsed.Entities)}
		return e.requestConfirmation(pending, sess)
	}

	return e.execute(parsed.Intent, parsed.Entities, parsed.Tags, parsed.Flags, sess)
}

// ConfirmTimeout is invoked by the outer loop when the confirmation dialog
// times out; it is treated as an implicit "no".
func (e *Executor) ConfirmTimeout(sess *Session) ExecutionResult {
	if sess.State() != StateConfirm {
		return ExecutionResult{Success: false, State: sess.State(), Summary: "nothing to confirm"}
	}
	return e.confirm("no", sess)
}

func (e *Executor) parseFailure(parsed grammar.ParsedCommand, sess *Session) ExecutionResult {
	msg := "empty input"
	if len(parsed.Ambiguity) > 0 {
		msg = strings.Join(parsed.Ambiguity, "; ")
	}
	return ExecutionResult{
		Success: false,
		State:   sess.State(),
		Summary: "could not understand input",
		Errors:  []ResultError{{Kind: ErrorKindParse, Message: msg}},
	}
}

// beginCollection transitions into the entity-collection state matching the
// intent. Commands without a collection state surface the gap as a
// validation failure instead.
func (e *Executor) beginCollection(parsed grammar.ParsedCommand, sess *Session) ExecutionResult {
	pending := &PendingAction{
		Intent:   parsed.Intent,
		Entities: cloneEntities(parsed.Entities),
		Tags:     parsed.Tags,
		Missing:  parsed.Missing,
	}

	var state State
	switch parsed.Intent {
	case "add":
		state = StateAddingTask
	case "update":
		state = StateUpdatingTask
	case "delete":
		state = StateDeletingTask
	default:
		err := e.tasks.Validate(parsed.Intent, validate.Fields{})
		if err == nil {
			// Grammar and rules disagree on required entities; report the
			// grammar's view rather than silently executing.
			return ExecutionResult{
				Success: false,
				State:   sess.State(),
				Summary: "missing required input",
				Errors:  []ResultError{{Kind: ErrorKindValidation, Message: fmt.Sprintf("missing: %s", strings.Join(parsed.Missing, ", "))}},
			}
		}
		return ExecutionResult{
			Success: false,
			State:   sess.State(),
			Summary: "missing required input",
			Errors:  resultErrors(err),
		}
	}

	sess.transition(state, pending)
	return ExecutionResult{
		Success: true,
		Intent:  parsed.Intent,
		State:   state,
		Summary: fmt.Sprintf("%s: more input needed", parsed.Intent),
		Prompt:  pending.Missing[0],
	}
}

// collect consumes one line as the next awaited entity. An empty line
// cancels back to the main menu without mutating anything.
func (e *Executor) collect(line string, sess *Session) ExecutionResult {
	pending := sess.Pending()
	line = strings.TrimSpace(line)

	if line == "" {
		sess.reset()
		return ExecutionResult{Success: true, State: StateMainMenu, Summary: "cancelled"}
	}

	if pending == nil || len(pending.Missing) == 0 {
		// Should not happen; recover to the menu rather than crash.
		e.log.Error().Str("state", string(sess.State())).Msg("collection state without pending action")
		sess.reset()
		return ExecutionResult{
			Success: false,
			State:   StateMainMenu,
			Errors:  []ResultError{{Kind: ErrorKindInternal, Message: "no pending action"}},
		}
	}

	if pending.Entities == nil {
		pending.Entities = make(map[string]string)
	}
	pending.Entities[pending.Missing[0]] = line
	pending.Missing = pending.Missing[1:]

	if len(pending.Missing) > 0 {
		return ExecutionResult{
			Success: true,
			Intent:  pending.Intent,
			State:   sess.State(),
			Summary: fmt.Sprintf("%s: more input needed", pending.Intent),
			Prompt:  pending.Missing[0],
		}
	}

	if pending.Intent == "delete" {
		return e.requestConfirmation(pending, sess)
	}

	sess.reset()
	return e.execute(pending.Intent, pending.Entities, pending.Tags, nil, sess)
}

// confirm consumes a line as the confirmation answer. Anything but an
// explicit yes aborts with no mutation.
func (e *Executor) confirm(answer string, sess *Session) ExecutionResult {
	pending := sess.Pending()
	sess.reset()

	if pending == nil {
		return ExecutionResult{
			Success: false,
			State:   StateMainMenu,
			Errors:  []ResultError{{Kind: ErrorKindInternal, Message: "no action awaiting confirmation"}},
		}
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return e.execute(pending.Intent, pending.Entities, pending.Tags, nil, sess)
	default:
		return ExecutionResult{
			Success: true,
			Intent:  pending.Intent,
			State:   StateMainMenu,
			Summary: "aborted, nothing changed",
		}
	}
}

// requestConfirmation validates the destructive action first so the dialog
// is only shown for operations that could actually run.
func (e *Executor) requestConfirmation(pending *PendingAction, sess *Session) ExecutionResult {
	if err := e.tasks.Validate("delete", validate.Fields{"id": pending.Entities["id"]}); err != nil {
		sess.reset()
		return ExecutionResult{
			Success: false,
			Intent:  "delete",
			State:   StateMainMenu,
			Summary: "cannot delete",
			Errors:  resultErrors(err),
		}
	}

	t, err := e.tasks.Get(pending.Entities["id"])
	if err != nil {
		sess.reset()
		return ExecutionResult{
			Success: false,
			Intent:  "delete",
			State:   StateMainMenu,
			Errors:  resultErrors(err),
		}
	}

	sess.transition(StateConfirm, pending)
	return ExecutionResult{
		Success: true,
		Intent:  "delete",
		State:   StateConfirm,
		Summary: fmt.Sprintf("delete task %d %q?", t.Num, t.Title),
		Prompt:  "yes/no",
		Tasks:   []task.Task{t},
	}
}

// execute performs a fully-collected command. The session has already been
// returned to the state the command should land in; execute only reads it.
func (e *Executor) execute(intent string, entities map[string]string, tags []string, flags map[string]bool, sess *Session) ExecutionResult {
	switch intent {
	case "add":
		return e.runAdd(entities, tags, sess)
	case "list":
		return e.runList(flags, sess)
	case "update":
		return e.runUpdate(entities, tags, sess)
	case "complete", "reopen":
		return e.runSetStatus(intent, entities, sess)
	case "delete":
		// Reached only via confirm(); dispatch and collection both route
		// delete through the confirmation dialog first.
		return e.runDelete(entities, sess)
	case "undo":
		return e.runUndo(sess)
	case "history":
		return ExecutionResult{
			Success: true,
			Intent:  "history",
			State:   sess.State(),
			Summary: fmt.Sprintf("%d event(s)", len(e.tasks.Events())),
			Events:  e.tasks.Events(),
		}
	case "help":
		return e.runHelp(sess)
	case "quit":
		sess.transition(StateExiting, nil)
		return ExecutionResult{Success: true, Intent: "quit", State: StateExiting, Summary: "bye", Quit: true}
	}

	return ExecutionResult{
		Success: false,
		State:   sess.State(),
		Errors:  []ResultError{{Kind: ErrorKindInternal, Message: fmt.Sprintf("no handler for intent %q", intent)}},
	}
}

func (e *Executor) runAdd(entities map[string]string, tags []string, sess *Session) ExecutionResult {
	created, err := e.tasks.Create(entities["title"], entities["description"], tags)
	if err != nil {
		return failure("add", sess, err)
	}
	return ExecutionResult{
		Success: true,
		Intent:  "add",
		State:   sess.State(),
		Summary: fmt.Sprintf("created task %d", created.Num),
		Tasks:   []task.Task{created},
	}
}

func (e *Executor) runList(flags map[string]bool, sess *Session) ExecutionResult {
	filter := ListFilter{}
	switch {
	case flags["done"]:
		filter.Status = task.StatusCompleted
	case flags["all"]:
		// no status filter
	default:
		// default REPL listing shows everything as well
	}

	tasks, err := e.tasks.List(filter)
	if err != nil {
		return failure("list", sess, err)
	}
	return ExecutionResult{
		Success: true,
		Intent:  "list",
		State:   sess.State(),
		Summary: fmt.Sprintf("%d task(s)", len(tasks)),
		Tasks:   tasks,
	}
}

func (e *Executor) runUpdate(entities map[string]string, tags []string, sess *Session) ExecutionResult {
	input := UpdateInput{}
	if v, ok := entities["title"]; ok {
		input.Title = &v
	}
	if v, ok := entities["description"]; ok {
		input.Description = &v
	}
	if len(tags) > 0 {
		input.Tags = tags
		input.HasTags = true
	}

	if input.Title == nil && input.Description == nil && !input.HasTags {
		return ExecutionResult{
			Success: false,
			Intent:  "update",
			State:   sess.State(),
			Summary: "nothing to update",
			Errors:  []ResultError{{Kind: ErrorKindValidation, Message: "provide at least one of title, description, tags"}},
		}
	}

	updated, err := e.tasks.Update(entities["id"], input)
	if err != nil {
		return failure("update", sess, err)
	}
	return ExecutionResult{
		Success: true,
		Intent:  "update",
		State:   sess.State(),
		Summary: fmt.Sprintf("updated task %d", updated.Num),
		Tasks:   []task.Task{updated},
	}
}

func (e *Executor) runSetStatus(intent string, entities map[string]string, sess *Session) ExecutionResult {
	var (
		t       task.Task
		changed bool
		err     error
	)
	if intent == "complete" {
		t, changed, err = e.tasks.Complete(entities["id"])
	} else {
		t, changed, err = e.tasks.Reopen(entities["id"])
	}
	if err != nil {
		return failure(intent, sess, err)
	}

	summary := fmt.Sprintf("%sd task %d", intent, t.Num)
	if intent == "reopen" {
		summary = fmt.Sprintf("reopened task %d", t.Num)
	}
	if !changed {
		summary = fmt.Sprintf("task %d already %s", t.Num, t.Status)
	}
	return ExecutionResult{
		Success: true,
		Intent:  intent,
		State:   sess.State(),
		Summary: summary,
		Tasks:   []task.Task{t},
	}
}

func (e *Executor) runDelete(entities map[string]string, sess *Session) ExecutionResult {
	removed, err := e.tasks.Delete(entities["id"])
	if err != nil {
		return failure("delete", sess, err)
	}
	return ExecutionResult{
		Success: true,
		Intent:  "delete",
		State:   sess.State(),
		Summary: fmt.Sprintf("deleted task %d", removed.Num),
		Tasks:   []task.Task{removed},
	}
}

func (e *Executor) runUndo(sess *Session) ExecutionResult {
	res := e.tasks.Undo()
	if !res.Success {
		return ExecutionResult{
			Success: false,
			Intent:  "undo",
			State:   sess.State(),
			Summary: res.Reason,
			Undo:    &res,
		}
	}
	return ExecutionResult{
		Success: true,
		Intent:  "undo",
		State:   sess.State(),
		Summary: fmt.Sprintf("undid %s (seq %d)", res.Undone.Type, res.Undone.Seq),
		Undo:    &res,
	}
}

func (e *Executor) runHelp(sess *Session) ExecutionResult {
	entries := e.table.Entries()
	usage := make([]string, 0, len(entries))
	for _, entry := range entries {
		usage = append(usage, fmt.Sprintf("%-45s %s", entry.Usage, entry.Help))
	}
	return ExecutionResult{
		Success: true,
		Intent:  "help",
		State:   sess.State(),
		Summary: "available commands",
		Usage:   usage,
	}
}

// failure builds an error result. Delete confirmations have already reset
// the session, so the reported state is always current.
func failure(intent string, sess *Session, err error) ExecutionResult {
	return ExecutionResult{
		Success: false,
		Intent:  intent,
		State:   sess.State(),
		Summary: fmt.Sprintf("%s failed", intent),
		Errors:  resultErrors(err),
	}
}

func cloneEntities(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
