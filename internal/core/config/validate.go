package config

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/tally/internal/core/grammar"
)

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("event_log.max_entries", c.EventLog.MaxEntries, nonNegative),
		criterio.Run("output.mode", c.Output.Mode, validOutputMode),
		c.validateSynonyms(),
	)
}

func nonNegative(n int) error {
	if n < 0 {
		return fmt.Errorf("must not be negative, got %d", n)
	}
	return nil
}

func validOutputMode(m OutputMode) error {
	if m == "" {
		return nil // defaulted by Load
	}
	if !m.IsValid() {
		return fmt.Errorf("must be one of %s, %s, %s", OutputAuto, OutputPretty, OutputJSON)
	}
	return nil
}

// validateSynonyms checks configured aliases against the built-in grammar:
// targets must be real commands and aliases must not shadow built-in names.
func (c *Config) validateSynonyms() error {
	if len(c.Grammar.Synonyms) == 0 {
		return nil
	}

	table := grammar.Default()
	known := make(map[string]bool)
	for _, name := range table.Names() {
		known[name] = true
	}

	var errs criterio.FieldErrorsBuilder
	for alias, command := range c.Grammar.Synonyms {
		field := fmt.Sprintf("grammar.synonyms[%s]", alias)
		if strings.TrimSpace(alias) == "" {
			errs = errs.Append(field, fmt.Errorf("alias must not be blank"))
			continue
		}
		if known[strings.ToLower(alias)] {
			errs = errs.Append(field, fmt.Errorf("alias shadows built-in command %q", alias))
		}
		if !known[strings.ToLower(command)] {
			errs = errs.Append(field, fmt.Errorf("unknown target command %q", command))
		}
	}
	return errs.ToError()
}
