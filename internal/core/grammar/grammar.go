// Package grammar implements the declarative command grammar, the input
// parser, and the rule-based intent resolver. Parsing never errors: every
// input line yields a ParsedCommand whose status reports what happened.
package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known entity names used across the grammar table.
const (
	EntityID          = "id"
	EntityTitle       = "title"
	EntityDescription = "description"
	EntityTags        = "tags"
)

// Entry declares a single command: its canonical name, accepted synonyms,
// the entities it requires or accepts, and its menu shortcut.
type Entry struct {
	Name     string
	Synonyms []string
	Usage    string
	Help     string
	Required []string
	Optional []string
	Flags    []string
	// MenuIndex is the numeric shortcut in menu-driven sessions. 0 = none.
	MenuIndex int
}

func (e Entry) accepts(entity string) bool {
	for _, name := range e.Required {
		if name == entity {
			return true
		}
	}
	for _, name := range e.Optional {
		if name == entity {
			return true
		}
	}
	return false
}

func (e Entry) hasFlag(name string) bool {
	for _, f := range e.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// Table is the registry of known commands. Resolution never returns a name
// absent from the table.
type Table struct {
	entries []Entry
	byName  map[string]int
	// synonyms maps alias -> canonical command name.
	synonyms map[string]string
	byMenu   map[int]string
}

// NewTable builds a table from the given entries.
func NewTable(entries ...Entry) (*Table, error) {
	t := &Table{
		byName:   make(map[string]int),
		synonyms: make(map[string]string),
		byMenu:   make(map[int]string),
	}
	for _, e := range entries {
		if err := t.Register(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Register adds a command entry. Names, synonyms, and menu indexes must not
// collide with existing registrations.
func (t *Table) Register(e Entry) error {
	name := strings.ToLower(strings.TrimSpace(e.Name))
	if name == "" {
		return fmt.Errorf("command name is required")
	}
	e.Name = name

	if _, ok := t.byName[name]; ok {
		return fmt.Errorf("duplicate command %q", name)
	}
	if cmd, ok := t.synonyms[name]; ok {
		return fmt.Errorf("command %q collides with synonym of %q", name, cmd)
	}

	t.entries = append(t.entries, e)
	t.byName[name] = len(t.entries) - 1

	for _, syn := range e.Synonyms {
		if err := t.AddSynonym(syn, name); err != nil {
			return err
		}
	}

	if e.MenuIndex > 0 {
		if prev, ok := t.byMenu[e.MenuIndex]; ok {
			return fmt.Errorf("menu index %d used by both %q and %q", e.MenuIndex, prev, name)
		}
		t.byMenu[e.MenuIndex] = name
	}

	return nil
}

// AddSynonym maps an alias to an already-registered command. Used both by
// Register and by config-driven grammar extension.
func (t *Table) AddSynonym(alias, command string) error {
	alias = strings.ToLower(strings.TrimSpace(alias))
	command = strings.ToLower(strings.TrimSpace(command))

	if alias == "" {
		return fmt.Errorf("synonym is empty")
	}
	if _, ok := t.byName[alias]; ok {
		return fmt.Errorf("synonym %q collides with command name", alias)
	}
	if prev, ok := t.synonyms[alias]; ok && prev != command {
		return fmt.Errorf("synonym %q already maps to %q", alias, prev)
	}
	if _, ok := t.byName[command]; !ok {
		return fmt.Errorf("synonym %q targets unknown command %q", alias, command)
	}

	t.synonyms[alias] = command
	return nil
}

// Lookup returns the entry for a canonical command name.
func (t *Table) Lookup(name string) (Entry, bool) {
	i, ok := t.byName[strings.ToLower(name)]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// ByMenuIndex returns the entry bound to a numeric menu shortcut.
func (t *Table) ByMenuIndex(index int) (Entry, bool) {
	name, ok := t.byMenu[index]
	if !ok {
		return Entry{}, false
	}
	return t.Lookup(name)
}

// Names returns all canonical command names sorted alphabetically.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}

// Entries returns the registered entries in menu order, entries without a
// menu index last in registration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].MenuIndex, out[j].MenuIndex
		if a == 0 {
			return false
		}
		if b == 0 {
			return true
		}
		return a < b
	})
	return out
}

// Default returns the built-in command grammar.
func Default() *Table {
	t, err := NewTable(
		Entry{
			Name:      "add",
			Synonyms:  []string{"new", "create"},
			Usage:     "add <title> [description=...] [+tag ...]",
			Help:      "create a new task",
			Required:  []string{EntityTitle},
			Optional:  []string{EntityDescription, EntityTags},
			MenuIndex: 1,
		},
		Entry{
			Name:      "list",
			Synonyms:  []string{"ls", "show"},
			Usage:     "list [--all] [--done]",
			Help:      "list tasks",
			Flags:     []string{"all", "done"},
			MenuIndex: 2,
		},
		Entry{
			Name:      "update",
			Synonyms:  []string{"edit"},
			Usage:     "update <id> [title=...] [description=...] [+tag ...]",
			Help:      "update a task's fields",
			Required:  []string{EntityID},
			Optional:  []string{EntityTitle, EntityDescription, EntityTags},
			MenuIndex: 3,
		},
		Entry{
			Name:      "complete",
			Synonyms:  []string{"done", "finish"},
			Usage:     "complete <id>",
			Help:      "mark a task completed",
			Required:  []string{EntityID},
			MenuIndex: 4,
		},
		Entry{
			Name:      "reopen",
			Synonyms:  []string{"uncheck"},
			Usage:     "reopen <id>",
			Help:      "mark a completed task pending again",
			Required:  []string{EntityID},
			MenuIndex: 5,
		},
		Entry{
			Name:      "delete",
			Synonyms:  []string{"rm", "remove"},
			Usage:     "delete <id>",
			Help:      "delete a task (asks for confirmation)",
			Required:  []string{EntityID},
			MenuIndex: 6,
		},
		Entry{
			Name:      "undo",
			Synonyms:  []string{"revert"},
			Usage:     "undo",
			Help:      "undo the last change",
			MenuIndex: 7,
		},
		Entry{
			Name:  "history",
			Usage: "history",
			Help:  "show the event log",
		},
		Entry{
			Name:      "help",
			Usage:     "help",
			Help:      "show available commands",
			MenuIndex: 8,
		},
		Entry{
			Name:      "quit",
			Synonyms:  []string{"exit", "q"},
			Usage:     "quit",
			Help:      "leave the session",
			MenuIndex: 9,
		},
	)
	if err != nil {
		// The built-in table is static; a registration error is a programming bug.
		panic(err)
	}
	return t
}
