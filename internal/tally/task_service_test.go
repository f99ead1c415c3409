package tally

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tally/internal/core/config"
	"github.com/hay-kot/tally/internal/core/event"
	"github.com/hay-kot/tally/internal/core/task"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.DefaultConfig()
	app, err := NewApp(&cfg, zerolog.Nop())
	require.NoError(t, err)
	app.Tasks.SetParanoid(true)
	return app
}

func TestTaskService_Create(t *testing.T) {
	app := newTestApp(t)

	created, err := app.Tasks.Create("Buy milk", "", []string{"errands"})
	require.NoError(t, err)

	assert.Equal(t, 1, created.Num)
	assert.Equal(t, task.StatusPending, created.Status)

	events := app.Tasks.Events()
	require.Len(t, events, 1)
	assert.Equal(t, event.TypeTaskCreated, events[0].Type)
	assert.Equal(t, int64(1), events[0].Seq)
}

func TestTaskService_Create_InvalidAppendsNothing(t *testing.T) {
	app := newTestApp(t)

	_, err := app.Tasks.Create("   ", "", nil)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Empty(t, app.Tasks.Events(), "failed validation must append zero events")

	got, listErr := app.Tasks.List(ListFilter{})
	require.NoError(t, listErr)
	assert.Empty(t, got, "failed validation must perform zero mutations")
}

func TestTaskService_CompleteIdempotent(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Tasks.Create("Buy milk", "", nil)
	require.NoError(t, err)

	first, changed, err := app.Tasks.Complete("1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, task.StatusCompleted, first.Status)

	second, changed, err := app.Tasks.Complete("1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, second, "rendered task state identical before and after the repeat")

	events := app.Tasks.Events()
	require.Len(t, events, 3, "the repeat still lands in the audit trail")
	assert.True(t, events[2].NoOp)
}

func TestTaskService_UnknownRef(t *testing.T) {
	app := newTestApp(t)

	_, _, err := app.Tasks.Complete("7")
	assertNotFoundField(t, err)

	_, err = app.Tasks.Delete("7")
	assertNotFoundField(t, err)

	_, err = app.Tasks.Update("7", UpdateInput{Title: ptr("x")})
	assertNotFoundField(t, err)

	assert.Empty(t, app.Tasks.Events())
}

func assertNotFoundField(t *testing.T, err error) {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.NotEmpty(t, fieldErrs)
	assert.ErrorIs(t, fieldErrs[0].Err, task.ErrNotFound)
}

func ptr[T any](v T) *T { return &v }

func TestTaskService_Update(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Tasks.Create("Buy milk", "", nil)
	require.NoError(t, err)

	updated, err := app.Tasks.Update("1", UpdateInput{
		Title:       ptr("Buy oat milk"),
		Description: ptr("the blue carton"),
		Tags:        []string{"shopping"},
		HasTags:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.Equal(t, []string{"shopping"}, updated.Tags)

	events := app.Tasks.Events()
	require.Len(t, events, 2)
	assert.Equal(t, event.TypeTaskUpdated, events[1].Type)
}

func TestTaskService_List(t *testing.T) {
	app := newTestApp(t)
	mustCreate(t, app, "Buy milk", "shopping")
	mustCreate(t, app, "Write report", "work")
	mustCreate(t, app, "Buy stamps", "errands")
	_, _, err := app.Tasks.Complete("2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter ListFilter
		nums   []int
	}{
		{name: "all", filter: ListFilter{}, nums: []int{1, 2, 3}},
		{name: "pending only", filter: ListFilter{Status: task.StatusPending}, nums: []int{1, 3}},
		{name: "completed only", filter: ListFilter{Status: task.StatusCompleted}, nums: []int{2}},
		{name: "title glob", filter: ListFilter{Pattern: "Buy*"}, nums: []int{1, 3}},
		{name: "tag glob", filter: ListFilter{Pattern: "shop*"}, nums: []int{1}},
		{name: "no match", filter: ListFilter{Pattern: "zzz*"}, nums: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := app.Tasks.List(tt.filter)
			require.NoError(t, err)

			var nums []int
			for _, item := range got {
				nums = append(nums, item.Num)
			}
			assert.Equal(t, tt.nums, nums)
		})
	}

	_, err = app.Tasks.List(ListFilter{Pattern: "[unclosed"})
	assert.Error(t, err)
}

func mustCreate(t *testing.T, app *App, title, tag string) task.Task {
	t.Helper()
	created, err := app.Tasks.Create(title, "", []string{tag})
	require.NoError(t, err)
	return created
}

func TestTaskService_ReplayDeterminism(t *testing.T) {
	app := newTestApp(t)

	// A representative command sequence; paranoid mode re-checks replay
	// against the live index after every mutation.
	_, err := app.Tasks.Create("a", "", nil)
	require.NoError(t, err)
	_, err = app.Tasks.Create("b", "notes", []string{"x"})
	require.NoError(t, err)
	_, _, err = app.Tasks.Complete("1")
	require.NoError(t, err)
	_, err = app.Tasks.Update("2", UpdateInput{Title: ptr("b2")})
	require.NoError(t, err)
	_, err = app.Tasks.Delete("1")
	require.NoError(t, err)
	_, _, err = app.Tasks.Reopen("2")
	require.NoError(t, err)

	// Reopen of a pending task is a no-op; state must be unchanged.
	got, err := app.Tasks.List(ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b2", got[0].Title)
	assert.Equal(t, task.StatusPending, got[0].Status)
}

func TestTaskService_UndoInverseLaw(t *testing.T) {
	app := newTestApp(t)

	snapshot := func() []task.Task {
		got, err := app.Tasks.List(ListFilter{})
		require.NoError(t, err)
		return got
	}

	mutations := []func() error{
		func() error { _, err := app.Tasks.Create("a", "", nil); return err },
		func() error { _, err := app.Tasks.Create("b", "", []string{"t"}); return err },
		func() error { _, _, err := app.Tasks.Complete("1"); return err },
		func() error { _, err := app.Tasks.Update("2", UpdateInput{Description: ptr("d")}); return err },
		func() error { _, err := app.Tasks.Delete("2"); return err },
	}

	for i, mutate := range mutations {
		before := snapshot()
		beforeSeq := int64(len(app.Tasks.Events()))

		require.NoError(t, mutate(), "mutation %d", i)

		res := app.Tasks.Undo()
		require.True(t, res.Success, "mutation %d", i)
		assert.Equal(t, before, snapshot(), "undo after mutation %d must restore the pre-state", i)

		// Redo the mutation so the next iteration builds on it, and check
		// the retired sequence number is not reused.
		require.NoError(t, mutate(), "redo %d", i)
		events := app.Tasks.Events()
		assert.Greater(t, events[len(events)-1].Seq, beforeSeq+1,
			"sequence numbers strictly increase across undo")
	}
}

func TestTaskService_UndoEmptyLog(t *testing.T) {
	app := newTestApp(t)

	res := app.Tasks.Undo()
	assert.False(t, res.Success)
	assert.Equal(t, "nothing to undo", res.Reason)
}

func TestTaskService_UndoRestoresDeletedTask(t *testing.T) {
	app := newTestApp(t)
	created, err := app.Tasks.Create("keep me", "notes", []string{"x"})
	require.NoError(t, err)

	_, err = app.Tasks.Delete("1")
	require.NoError(t, err)

	res := app.Tasks.Undo()
	require.True(t, res.Success)

	restored, err := app.Tasks.Get("1")
	require.NoError(t, err)
	assert.Equal(t, created, restored, "delete undo restores the pre-deletion snapshot")
}

func TestTaskService_BoundedLog(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EventLog.MaxEntries = 2
	app, err := NewApp(&cfg, zerolog.Nop())
	require.NoError(t, err)
	app.Tasks.SetParanoid(true)

	for _, title := range []string{"a", "b", "c"} {
		_, err := app.Tasks.Create(title, "", nil)
		require.NoError(t, err)
	}

	assert.False(t, app.Tasks.LogComplete())
	assert.Len(t, app.Tasks.Events(), 2)

	// State is still consistent and recent undo still works.
	res := app.Tasks.Undo()
	require.True(t, res.Success)
	got, err := app.Tasks.List(ListFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
