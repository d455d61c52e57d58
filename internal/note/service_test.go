package note

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
	require.NoError(t, gdb.AutoMigrate(&Note{}, &NoteTag{}))
	return &Service{DB: gdb}
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{Title: "journal", Body: "today was #good"})
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, n.Tags)

	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "journal", got.Title)

	_, err = svc.Get(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRetags(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{Title: "t", Body: "#alpha"})
	require.NoError(t, err)

	body := "#beta now"
	n, err = svc.Update(ctx, n.ID, UpdateInput{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, n.Tags)
}

func TestListFilterByTag(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateInput{Title: "one", Body: "#keep"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Title: "two", Body: "#drop"})
	require.NoError(t, err)

	rows, err := svc.List(ctx, "KEEP")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.ID, rows[0].ID)
}

func TestDeleteRemovesTagRows(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{Title: "bye", Body: "#gone"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, n.ID))
	require.ErrorIs(t, svc.Delete(ctx, n.ID), ErrNotFound)

	var tags int64
	require.NoError(t, svc.DB.Model(&NoteTag{}).Count(&tags).Error)
	assert.Zero(t, tags)
}
