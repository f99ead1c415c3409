package grammar

import (
	"fmt"
	"strings"
)

// ParseStatus reports the outcome of parsing a line.
type ParseStatus string

const (
	StatusValid     ParseStatus = "valid"
	StatusInvalid   ParseStatus = "invalid"
	StatusAmbiguous ParseStatus = "ambiguous"
)

// ParsedCommand is the normalized result of parsing one input line. It is
// created per line and discarded after dispatch.
type ParsedCommand struct {
	Raw        string            `json:"raw"`
	Intent     string            `json:"intent,omitempty"`
	Confidence Confidence        `json:"confidence"`
	Status     ParseStatus       `json:"parse_status"`
	Entities   map[string]string `json:"entities,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Flags      map[string]bool   `json:"flags,omitempty"`
	Missing    []string          `json:"missing_fields,omitempty"`
	Ambiguity  []string          `json:"ambiguity_flags,omitempty"`
	Candidates []string          `json:"candidates,omitempty"`
}

// Options adjusts parsing to the session's interaction mode.
type Options struct {
	// MenuMode interprets a bare integer as a menu-index shortcut instead of
	// a task reference.
	MenuMode bool
}

// Parser turns raw input lines into ParsedCommands against a grammar table.
type Parser struct {
	table *Table
}

// NewParser returns a parser over the given table.
func NewParser(table *Table) *Parser {
	return &Parser{table: table}
}

// Parse normalizes and interprets one line of input. It never returns an
// error: malformed input yields StatusInvalid, unresolvable-but-close input
// yields StatusAmbiguous with candidates.
func (p *Parser) Parse(raw string, opts Options) ParsedCommand {
	out := ParsedCommand{
		Raw:        strings.TrimSpace(raw),
		Confidence: ConfidenceNone,
		Status:     StatusInvalid,
	}

	tokens := Tokenize(out.Raw)
	if len(tokens) == 0 {
		return out
	}

	verb, rest := tokens[0], tokens[1:]

	// Bare integer: menu shortcut in menu mode, task reference otherwise.
	if isDigits(verb) && len(rest) == 0 {
		return p.parseBareNumber(out, verb, opts)
	}

	res := p.table.Resolve(verb)
	switch {
	case res.Ambiguous():
		out.Status = StatusAmbiguous
		out.Confidence = res.Confidence
		out.Candidates = res.Candidates
		out.Ambiguity = []string{fmt.Sprintf("verb %q matches %d commands", verb, len(res.Candidates))}
		return out
	case res.Intent == "":
		out.Ambiguity = []string{fmt.Sprintf("unknown command %q", verb)}
		return out
	}

	entry, _ := p.table.Lookup(res.Intent)
	out.Intent = entry.Name
	out.Confidence = res.Confidence
	out.Status = StatusValid

	p.extractEntities(&out, entry, rest)
	return out
}

func (p *Parser) parseBareNumber(out ParsedCommand, verb string, opts Options) ParsedCommand {
	if opts.MenuMode {
		index := 0
		for _, r := range verb {
			index = index*10 + int(r-'0')
		}
		entry, ok := p.table.ByMenuIndex(index)
		if !ok {
			out.Ambiguity = []string{fmt.Sprintf("no menu item %s", verb)}
			return out
		}
		out.Intent = entry.Name
		out.Confidence = ConfidenceHigh
		out.Status = StatusValid
		out.Missing = append([]string(nil), entry.Required...)
		return out
	}

	// A task reference without a verb cannot be dispatched on its own.
	out.Entities = map[string]string{EntityID: verb}
	out.Ambiguity = []string{"task reference without a verb"}
	return out
}

// extractEntities fills entities, tags, and flags from the remainder tokens
// per the entry's declaration. Unconsumed tokens that the entry accepts as a
// title are joined into one; anything else raises an ambiguity flag but does
// not invalidate the command (the validation engine has the final word).
func (p *Parser) extractEntities(out *ParsedCommand, entry Entry, rest []string) {
	var titleParts []string

	for _, tok := range rest {
		switch {
		case strings.HasPrefix(tok, "--"):
			name := strings.TrimPrefix(tok, "--")
			if entry.hasFlag(name) {
				if out.Flags == nil {
					out.Flags = make(map[string]bool)
				}
				out.Flags[name] = true
			} else {
				out.Ambiguity = append(out.Ambiguity, fmt.Sprintf("unknown flag %q", tok))
			}

		case strings.HasPrefix(tok, "+") && entry.accepts(EntityTags):
			tag := strings.TrimPrefix(tok, "+")
			if tag != "" {
				out.Tags = append(out.Tags, tag)
			}

		case hasEntityKey(entry, tok):
			key, value, _ := strings.Cut(tok, "=")
			p.setEntity(out, key, value)

		case isDigits(tok) && entry.accepts(EntityID) && out.Entities[EntityID] == "":
			p.setEntity(out, EntityID, tok)

		case entry.accepts(EntityTitle):
			titleParts = append(titleParts, tok)

		default:
			out.Ambiguity = append(out.Ambiguity, fmt.Sprintf("unexpected token %q", tok))
		}
	}

	if len(titleParts) > 0 && out.Entities[EntityTitle] == "" {
		p.setEntity(out, EntityTitle, strings.Join(titleParts, " "))
	}

	for _, required := range entry.Required {
		if out.Entities[required] == "" {
			out.Missing = append(out.Missing, required)
		}
	}
}

func (p *Parser) setEntity(out *ParsedCommand, key, value string) {
	if out.Entities == nil {
		out.Entities = make(map[string]string)
	}
	out.Entities[key] = value
}

// hasEntityKey reports whether tok is a key=value pair whose key names an
// entity the entry accepts.
func hasEntityKey(entry Entry, tok string) bool {
	key, _, found := strings.Cut(tok, "=")
	return found && entry.accepts(key)
}
