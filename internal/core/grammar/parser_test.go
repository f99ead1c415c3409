package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "plain words",
			input:    "add Buy milk",
			expected: []string{"add", "Buy", "milk"},
		},
		{
			name:     "collapsed whitespace",
			input:    "  add   Buy   milk  ",
			expected: []string{"add", "Buy", "milk"},
		},
		{
			name:     "double quoted substring",
			input:    `add "Buy milk"`,
			expected: []string{"add", "Buy milk"},
		},
		{
			name:     "single quoted substring",
			input:    "add 'Buy milk'",
			expected: []string{"add", "Buy milk"},
		},
		{
			name:     "quote mid token",
			input:    `update 1 title="Buy oat milk"`,
			expected: []string{"update", "1", "title=Buy oat milk"},
		},
		{
			name:     "unterminated quote runs to end",
			input:    `add "Buy milk`,
			expected: []string{"add", "Buy milk"},
		},
		{
			name:     "empty",
			input:    "   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestParse(t *testing.T) {
	p := NewParser(Default())

	tests := []struct {
		name     string
		input    string
		opts     Options
		expected ParsedCommand
	}{
		{
			name:  "add with inline title",
			input: "add Buy milk",
			expected: ParsedCommand{
				Raw:        "add Buy milk",
				Intent:     "add",
				Confidence: ConfidenceHigh,
				Status:     StatusValid,
				Entities:   map[string]string{"title": "Buy milk"},
			},
		},
		{
			name:  "add with quoted title tags and description",
			input: `add "Buy milk" description="2 liters" +shopping +errands`,
			expected: ParsedCommand{
				Raw:        `add "Buy milk" description="2 liters" +shopping +errands`,
				Intent:     "add",
				Confidence: ConfidenceHigh,
				Status:     StatusValid,
				Entities:   map[string]string{"title": "Buy milk", "description": "2 liters"},
				Tags:       []string{"shopping", "errands"},
			},
		},
		{
			name:  "complete with id",
			input: "complete 1",
			expected: ParsedCommand{
				Raw:        "complete 1",
				Intent:     "complete",
				Confidence: ConfidenceHigh,
				Status:     StatusValid,
				Entities:   map[string]string{"id": "1"},
			},
		},
		{
			name:  "fuzzy delete",
			input: "del 2",
			expected: ParsedCommand{
				Raw:        "del 2",
				Intent:     "delete",
				Confidence: ConfidenceMedium,
				Status:     StatusValid,
				Entities:   map[string]string{"id": "2"},
			},
		},
		{
			name:  "empty input",
			input: "",
			expected: ParsedCommand{
				Raw:        "",
				Confidence: ConfidenceNone,
				Status:     StatusInvalid,
			},
		},
		{
			name:  "whitespace only",
			input: "   \t ",
			expected: ParsedCommand{
				Raw:        "",
				Confidence: ConfidenceNone,
				Status:     StatusInvalid,
			},
		},
		{
			name:  "unknown verb",
			input: "frobnicate 3",
			expected: ParsedCommand{
				Raw:        "frobnicate 3",
				Confidence: ConfidenceNone,
				Status:     StatusInvalid,
				Ambiguity:  []string{`unknown command "frobnicate"`},
			},
		},
		{
			name:  "ambiguous verb",
			input: "re 4",
			expected: ParsedCommand{
				Raw:        "re 4",
				Confidence: ConfidenceLow,
				Status:     StatusAmbiguous,
				Candidates: []string{"delete", "reopen", "undo"},
				Ambiguity:  []string{`verb "re" matches 3 commands`},
			},
		},
		{
			name:  "add without title reports missing",
			input: "add",
			expected: ParsedCommand{
				Raw:        "add",
				Intent:     "add",
				Confidence: ConfidenceHigh,
				Status:     StatusValid,
				Missing:    []string{"title"},
			},
		},
		{
			name:  "menu index shortcut",
			input: "2",
			opts:  Options{MenuMode: true},
			expected: ParsedCommand{
				Raw:        "2",
				Intent:     "list",
				Confidence: ConfidenceHigh,
				Status:     StatusValid,
			},
		},
		{
			name:  "menu index with required entity",
			input: "6",
			opts:  Options{MenuMode: true},
			expected: ParsedCommand{
				Raw:        "6",
				Intent:     "delete",
				Confidence: ConfidenceHigh,
				Status:     StatusValid,
				Missing:    []string{"id"},
			},
		},
		{
			name:  "unknown menu index",
			input: "42",
			opts:  Options{MenuMode: true},
			expected: ParsedCommand{
				Raw:        "42",
				Confidence: ConfidenceNone,
				Status:     StatusInvalid,
				Ambiguity:  []string{"no menu item 42"},
			},
		},
		{
			name:  "bare number outside menu is a task reference",
			input: "7",
			expected: ParsedCommand{
				Raw:        "7",
				Confidence: ConfidenceNone,
				Status:     StatusInvalid,
				Entities:   map[string]string{"id": "7"},
				Ambiguity:  []string{"task reference without a verb"},
			},
		},
		{
			name:  "list flags",
			input: "list --all",
			expected: ParsedCommand{
				Raw:        "list --all",
				Intent:     "list",
				Confidence: ConfidenceHigh,
				Status:     StatusValid,
				Flags:      map[string]bool{"all": true},
			},
		},
		{
			name:  "unknown flag flagged not fatal",
			input: "list --frob",
			expected: ParsedCommand{
				Raw:        "list --frob",
				Intent:     "list",
				Confidence: ConfidenceHigh,
				Status:     StatusValid,
				Ambiguity:  []string{`unknown flag "--frob"`},
			},
		},
		{
			name:  "update with key values",
			input: `update 3 title="New title" description="longer text"`,
			expected: ParsedCommand{
				Raw:        `update 3 title="New title" description="longer text"`,
				Intent:     "update",
				Confidence: ConfidenceHigh,
				Status:     StatusValid,
				Entities:   map[string]string{"id": "3", "title": "New title", "description": "longer text"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Parse(tt.input, tt.opts))
		})
	}
}

func TestTable_Register(t *testing.T) {
	table := Default()

	err := table.Register(Entry{Name: "add"})
	assert.Error(t, err, "duplicate names are rejected")

	err = table.Register(Entry{Name: "ls"})
	assert.Error(t, err, "names colliding with synonyms are rejected")

	err = table.AddSynonym("nuke", "delete")
	assert.NoError(t, err)
	got := table.Resolve("nuke")
	assert.Equal(t, "delete", got.Intent)
	assert.Equal(t, ConfidenceHigh, got.Confidence)

	err = table.AddSynonym("boom", "missing")
	assert.Error(t, err, "synonyms must target registered commands")
}
