package grammar

import "strings"

// Tokenize splits an input line on whitespace while keeping quoted substrings
// atomic. Quotes (single or double) may start mid-token, so key="some value"
// stays one token. Quote characters themselves are stripped. An unterminated
// quote runs to the end of the line.
func Tokenize(input string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		open    bool
		started bool
	)

	flush := func() {
		if started {
			tokens = append(tokens, current.String())
			current.Reset()
			started = false
		}
	}

	for _, r := range input {
		switch {
		case open:
			if r == quote {
				open = false
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			open = true
			quote = r
			started = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()

	return tokens
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
