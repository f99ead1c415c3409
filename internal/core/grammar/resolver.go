package grammar

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Confidence grades how certain the resolver is about a match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// maxEditDistance is the typo tolerance for fuzzy verb matching.
const maxEditDistance = 2

// maxCandidates caps the ambiguity report.
const maxCandidates = 5

// Resolution is the outcome of resolving a verb against the table.
// When Candidates holds more than one name the resolution is ambiguous and
// the caller must ask the user rather than guess.
type Resolution struct {
	Intent     string
	Confidence Confidence
	Candidates []string
}

// Ambiguous reports whether disambiguation is required.
func (r Resolution) Ambiguous() bool { return len(r.Candidates) > 1 }

// Resolve matches a verb candidate to a registered command.
//
// Ranking: exact name or synonym > unambiguous prefix > lowest edit distance
// (<= 2) > no match. Ties at the winning rank produce an ambiguity report of
// up to five candidates sorted alphabetically. Resolve never returns a name
// outside the table.
func (t *Table) Resolve(verb string) Resolution {
	verb = strings.ToLower(strings.TrimSpace(verb))
	if verb == "" {
		return Resolution{Confidence: ConfidenceNone}
	}

	// Rank 1: exact command name or exact synonym.
	if _, ok := t.byName[verb]; ok {
		return Resolution{Intent: verb, Confidence: ConfidenceHigh}
	}
	if cmd, ok := t.synonyms[verb]; ok {
		return Resolution{Intent: cmd, Confidence: ConfidenceHigh}
	}

	// Rank 2: prefix of a name or synonym, unambiguous across commands.
	if res, ok := t.resolveSet(t.prefixMatches(verb)); ok {
		return res
	}

	// Rank 3: edit distance <= 2 against all names and synonyms.
	if res, ok := t.resolveSet(t.distanceMatches(verb)); ok {
		return res
	}

	return Resolution{Confidence: ConfidenceNone}
}

// resolveSet turns a set of candidate commands into a resolution: a single
// candidate wins with medium confidence, several tie into an ambiguity report.
func (t *Table) resolveSet(cmds map[string]struct{}) (Resolution, bool) {
	switch len(cmds) {
	case 0:
		return Resolution{}, false
	case 1:
		for cmd := range cmds {
			return Resolution{Intent: cmd, Confidence: ConfidenceMedium}, true
		}
	}

	names := make([]string, 0, len(cmds))
	for cmd := range cmds {
		names = append(names, cmd)
	}
	sort.Strings(names)
	if len(names) > maxCandidates {
		names = names[:maxCandidates]
	}
	return Resolution{Confidence: ConfidenceLow, Candidates: names}, true
}

func (t *Table) prefixMatches(verb string) map[string]struct{} {
	out := make(map[string]struct{})
	for name := range t.byName {
		if strings.HasPrefix(name, verb) {
			out[name] = struct{}{}
		}
	}
	for syn, cmd := range t.synonyms {
		if strings.HasPrefix(syn, verb) {
			out[cmd] = struct{}{}
		}
	}
	return out
}

// distanceMatches collects the commands whose name or synonym sits at the
// minimum edit distance from the verb, within the tolerance.
func (t *Table) distanceMatches(verb string) map[string]struct{} {
	best := maxEditDistance + 1
	out := make(map[string]struct{})

	consider := func(candidate, cmd string) {
		d := levenshtein.ComputeDistance(verb, candidate)
		if d > maxEditDistance || d > best {
			return
		}
		if d < best {
			best = d
			out = make(map[string]struct{})
		}
		out[cmd] = struct{}{}
	}

	for name := range t.byName {
		consider(name, name)
	}
	for syn, cmd := range t.synonyms {
		consider(syn, cmd)
	}
	return out
}
