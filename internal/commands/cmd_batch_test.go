package commands

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tally/internal/core/config"
	"github.com/hay-kot/tally/internal/tally"
)

func newBatchCmd(t *testing.T) *BatchCmd {
	t.Helper()

	cfg := config.DefaultConfig()
	app, err := tally.NewApp(&cfg, zerolog.Nop())
	require.NoError(t, err)

	return NewBatchCmd(&Flags{Config: &cfg}, app)
}

func TestBatchInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   BatchInput
		wantErr string
	}{
		{
			name:    "empty commands",
			input:   BatchInput{},
			wantErr: "array is empty",
		},
		{
			name:    "blank command line",
			input:   BatchInput{Commands: []string{"add Buy milk", "   "}},
			wantErr: "must not be blank",
		},
		{
			name:  "valid",
			input: BatchInput{Commands: []string{"add Buy milk", "complete 1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBatchCmd_Execute(t *testing.T) {
	cmd := newBatchCmd(t)

	input := BatchInput{Commands: []string{
		"add Buy milk",
		"add Write report +work",
		"complete 1",
		"delete 2",
		"yes",
	}}

	out := cmd.execute(input, zerolog.Nop())

	require.Len(t, out.Results, 5)
	for _, result := range out.Results {
		assert.Equal(t, StatusOK, result.Status, result.Command)
	}
	assert.Equal(t, "created task 1", out.Results[0].Summary)
	assert.Equal(t, "deleted task 2", out.Results[4].Summary)

	tasks, err := cmd.app.Tasks.List(tally.ListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].Num)
}

func TestBatchCmd_Execute_FailureThreshold(t *testing.T) {
	cmd := newBatchCmd(t)

	input := BatchInput{Commands: []string{
		"complete 1", // no such task
		"complete 2",
		"complete 3",
		"add Never runs",
		"add Also skipped",
	}}

	out := cmd.execute(input, zerolog.Nop())

	require.Len(t, out.Results, 5)
	assert.Equal(t, StatusFailed, out.Results[0].Status)
	assert.Equal(t, StatusFailed, out.Results[1].Status)
	assert.Equal(t, StatusFailed, out.Results[2].Status)
	assert.Equal(t, StatusSkipped, out.Results[3].Status)
	assert.Equal(t, StatusSkipped, out.Results[4].Status)

	assert.Empty(t, cmd.app.Tasks.Events(), "skipped commands must not execute")
}

func TestBatchCmd_Execute_QuitSkipsRemainder(t *testing.T) {
	cmd := newBatchCmd(t)

	input := BatchInput{Commands: []string{
		"add Buy milk",
		"quit",
		"add Skipped",
	}}

	out := cmd.execute(input, zerolog.Nop())

	require.Len(t, out.Results, 3)
	assert.Equal(t, StatusOK, out.Results[0].Status)
	assert.Equal(t, StatusOK, out.Results[1].Status)
	assert.Equal(t, StatusSkipped, out.Results[2].Status)
}
