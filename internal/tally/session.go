package tally

// State is the CLI session's current interaction mode.
type State string

const (
	StateMainMenu     State = "main_menu"
	StateAddingTask   State = "adding_task"
	StateUpdatingTask State = "updating_task"
	StateDeletingTask State = "deleting_task"
	StateConfirm      State = "confirmation_dialog"
	StateExiting      State = "exiting"
)

// PendingAction carries a partially-collected command across prompts: either
// a command waiting for missing entities or a destructive action awaiting
// confirmation.
type PendingAction struct {
	Intent   string
	Entities map[string]string
	Tags     []string
	// Missing lists the entity names still to be collected, in prompt order.
	Missing []string
}

// Session holds the interaction state for one CLI session. It is mutated
// exclusively by the Executor and holds no task data; each session owns an
// independent service pair, so tests construct a fresh one per case.
type Session struct {
	state   State
	pending *PendingAction
}

// NewSession returns a session at the main menu.
func NewSession() *Session {
	return &Session{state: StateMainMenu}
}

// State returns the current interaction mode.
func (s *Session) State() State { return s.state }

// Pending returns the action awaiting input or confirmation, if any.
func (s *Session) Pending() *PendingAction { return s.pending }

// InMenu reports whether bare numbers should parse as menu shortcuts.
func (s *Session) InMenu() bool { return s.state == StateMainMenu }

func (s *Session) transition(state State, pending *PendingAction) {
	s.state = state
	s.pending = pending
}

func (s *Session) reset() {
	s.state = StateMainMenu
	s.pending = nil
}
