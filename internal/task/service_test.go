package task

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&Task{}, &Subtask{}, &TaskTag{}))
	return &Service{DB: gdb}
}

func TestCreateExtractsTags(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tk, err := svc.Create(ctx, CreateInput{Title: "fix sink #home", Notes: "call plumber #Urgent"})
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "urgent"}, tk.Tags)
	assert.Equal(t, 0, tk.Position)

	tk2, err := svc.Create(ctx, CreateInput{Title: "second"})
	require.NoError(t, err)
	assert.Equal(t, 1, tk2.Position)
}

func TestUpdateRetags(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tk, err := svc.Create(ctx, CreateInput{Title: "draft #old"})
	require.NoError(t, err)

	title := "draft #new"
	tk, err = svc.Update(ctx, tk.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, tk.Tags)

	done := true
	tk, err = svc.Update(ctx, tk.ID, UpdateInput{IsDone: &done})
	require.NoError(t, err)
	assert.True(t, tk.IsDone)
	assert.Equal(t, []string{"new"}, tk.Tags)
}

func TestListFilterByTag(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateInput{Title: "one #work"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Title: "two #play"})
	require.NoError(t, err)

	rows, err := svc.List(ctx, "work")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.ID, rows[0].ID)

	rows, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestReorder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var ids []uint64
	for _, title := range []string{"a", "b", "c"} {
		tk, err := svc.Create(ctx, CreateInput{Title: title})
		require.NoError(t, err)
		ids = append(ids, tk.ID)
	}

	// move the last task to the front
	require.NoError(t, svc.Reorder(ctx, ids[2], 0))

	rows, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ids[2], rows[0].ID)
	assert.Equal(t, ids[0], rows[1].ID)
	assert.Equal(t, ids[1], rows[2].ID)

	// out-of-range positions clamp
	require.NoError(t, svc.Reorder(ctx, ids[2], 99))
	rows, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, ids[2], rows[2].ID)

	require.ErrorIs(t, svc.Reorder(ctx, 999, 0), ErrNotFound)
}

func TestDeleteCascadesDependents(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tk, err := svc.Create(ctx, CreateInput{Title: "parent #tagged"})
	require.NoError(t, err)
	_, err = svc.CreateSubtask(ctx, tk.ID, "child")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, tk.ID))
	require.ErrorIs(t, svc.Delete(ctx, tk.ID), ErrNotFound)

	var subs, tags int64
	require.NoError(t, svc.DB.Model(&Subtask{}).Count(&subs).Error)
	require.NoError(t, svc.DB.Model(&TaskTag{}).Count(&tags).Error)
	assert.Zero(t, subs)
	assert.Zero(t, tags)
}

func TestSubtasks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tk, err := svc.Create(ctx, CreateInput{Title: "parent"})
	require.NoError(t, err)

	_, err = svc.CreateSubtask(ctx, 999, "orphan")
	require.ErrorIs(t, err, ErrNotFound)

	first, err := svc.CreateSubtask(ctx, tk.ID, "first")
	require.NoError(t, err)
	second, err := svc.CreateSubtask(ctx, tk.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)

	done := true
	first, err = svc.UpdateSubtask(ctx, first.ID, SubtaskUpdateInput{IsDone: &done})
	require.NoError(t, err)
	assert.True(t, first.IsDone)

	rows, err := svc.ListSubtasks(ctx, tk.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID)

	require.NoError(t, svc.DeleteSubtask(ctx, second.ID))
	require.ErrorIs(t, svc.DeleteSubtask(ctx, second.ID), ErrNotFound)
}

func TestReorderSubtask(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tk, err := svc.Create(ctx, CreateInput{Title: "parent"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, CreateInput{Title: "untouched"})
	require.NoError(t, err)

	var ids []uint64
	for _, title := range []string{"a", "b", "c"} {
		st, err := svc.CreateSubtask(ctx, tk.ID, title)
		require.NoError(t, err)
		ids = append(ids, st.ID)
	}
	outside, err := svc.CreateSubtask(ctx, other.ID, "elsewhere")
	require.NoError(t, err)

	// move the last subtask to the front of its siblings
	require.NoError(t, svc.ReorderSubtask(ctx, ids[2], 0))

	rows, err := svc.ListSubtasks(ctx, tk.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ids[2], rows[0].ID)
	assert.Equal(t, ids[0], rows[1].ID)
	assert.Equal(t, ids[1], rows[2].ID)

	// renumbering stays scoped to the parent task
	outsideRows, err := svc.ListSubtasks(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, outsideRows, 1)
	assert.Equal(t, outside.ID, outsideRows[0].ID)
	assert.Equal(t, 0, outsideRows[0].Position)

	// out-of-range positions clamp
	require.NoError(t, svc.ReorderSubtask(ctx, ids[2], 99))
	rows, err = svc.ListSubtasks(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, ids[2], rows[2].ID)

	require.ErrorIs(t, svc.ReorderSubtask(ctx, 999, 0), ErrNotFound)
}
