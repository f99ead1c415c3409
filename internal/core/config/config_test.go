package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tally.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "/tmp/data")
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.EventLog.MaxEntries)
	assert.Equal(t, OutputAuto, cfg.Output.Mode)
	assert.False(t, cfg.Confirm.AssumeYes)
	assert.Equal(t, "/tmp/data", cfg.DataDir)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"), "/tmp/data")
	require.NoError(t, err)
	assert.Equal(t, OutputAuto, cfg.Output.Mode)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
event_log:
  max_entries: 500
grammar:
  synonyms:
    nuke: delete
    todo: add
confirm:
  assume_yes: true
output:
  mode: json
`)

	cfg, err := Load(path, "/tmp/data")
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.EventLog.MaxEntries)
	assert.Equal(t, "delete", cfg.Grammar.Synonyms["nuke"])
	assert.True(t, cfg.Confirm.AssumeYes)
	assert.Equal(t, OutputJSON, cfg.Output.Mode)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "event_log: [not a map")
	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		field   string
		message string
	}{
		{
			name:    "negative cap",
			mutate:  func(c *Config) { c.EventLog.MaxEntries = -1 },
			field:   "event_log.max_entries",
			message: "must not be negative",
		},
		{
			name:    "bad output mode",
			mutate:  func(c *Config) { c.Output.Mode = "loud" },
			field:   "output.mode",
			message: "must be one of",
		},
		{
			name:    "synonym targets unknown command",
			mutate:  func(c *Config) { c.Grammar.Synonyms = map[string]string{"nuke": "obliterate"} },
			field:   "grammar.synonyms[nuke]",
			message: "unknown target",
		},
		{
			name:    "synonym shadows built-in",
			mutate:  func(c *Config) { c.Grammar.Synonyms = map[string]string{"add": "delete"} },
			field:   "grammar.synonyms[add]",
			message: "shadows built-in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.NotEmpty(t, fieldErrs)
			assert.Equal(t, tt.field, fieldErrs[0].Field)
			assert.Contains(t, fieldErrs[0].Err.Error(), tt.message)
		})
	}
}
