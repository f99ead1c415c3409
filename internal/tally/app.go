package tally

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/tally/internal/core/config"
	"github.com/hay-kot/tally/internal/core/event"
	"github.com/hay-kot/tally/internal/core/grammar"
	"github.com/hay-kot/tally/internal/core/task"
	"github.com/hay-kot/tally/internal/core/validate"
)

// App is the central entry point for all tally operations. Commands consume
// App instead of cherry-picking raw dependencies. One App equals one session:
// tests build a fresh App per case for clean isolation.
type App struct {
	Config   *config.Config
	Grammar  *grammar.Table
	Tasks    *TaskService
	Executor *Executor
}

// NewApp wires the task index, event log, validation rules, grammar, and
// executor from configuration.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	table := grammar.Default()
	for alias, command := range cfg.Grammar.Synonyms {
		if err := table.AddSynonym(alias, command); err != nil {
			return nil, fmt.Errorf("extend grammar: %w", err)
		}
	}

	index := task.NewIndex()
	events := event.NewLog(cfg.EventLog.MaxEntries)
	rules := validate.New(index)
	tasks := NewTaskService(index, events, rules, logger)

	return &App{
		Config:   cfg,
		Grammar:  table,
		Tasks:    tasks,
		Executor: NewExecutor(tasks, table, logger),
	}, nil
}
