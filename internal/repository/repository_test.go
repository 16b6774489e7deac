package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"learnpath/internal/db"
	"learnpath/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "learnpath.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func createModule(t *testing.T, repo ModuleRepository, title string) *model.Module {
	t.Helper()
	m := &model.Module{Title: title, Content: title + " content"}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}

func TestPathRepository_CreateKeepsOrderAndPlaceholders(t *testing.T) {
	gdb := newTestDB(t)
	modules := NewModuleRepository(gdb)
	paths := NewPathRepository(gdb)
	ctx := context.Background()

	a := createModule(t, modules, "Intro")
	b := createModule(t, modules, "Basics")

	path := &model.Path{Title: "Go"}
	path.SetModuleIDs([]*uuid.UUID{&b.ID, nil, &a.ID})
	require.NoError(t, paths.Create(ctx, path))
	require.NotEqual(t, uuid.Nil, path.ID)

	stored, err := paths.FindByID(ctx, path.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", stored.Title)

	ids := stored.ModuleIDs()
	require.Len(t, ids, 3)
	assert.Equal(t, b.ID, *ids[0])
	assert.Nil(t, ids[1])
	assert.Equal(t, a.ID, *ids[2])

	_, err = paths.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPathRepository_Update(t *testing.T) {
	gdb := newTestDB(t)
	modules := NewModuleRepository(gdb)
	paths := NewPathRepository(gdb)
	ctx := context.Background()

	a := createModule(t, modules, "Intro")
	b := createModule(t, modules, "Basics")

	path := &model.Path{Title: "Go"}
	path.SetModuleIDs([]*uuid.UUID{&a.ID, nil})
	require.NoError(t, paths.Create(ctx, path))
	created := path.UpdatedAt

	t.Run("title only keeps entries", func(t *testing.T) {
		time.Sleep(5 * time.Millisecond)
		loaded, err := paths.FindByID(ctx, path.ID)
		require.NoError(t, err)
		loaded.Title = "Go 101"
		require.NoError(t, paths.Update(ctx, loaded, false))
		assert.True(t, loaded.UpdatedAt.After(created))

		stored, err := paths.FindByID(ctx, path.ID)
		require.NoError(t, err)
		assert.Equal(t, "Go 101", stored.Title)
		ids := stored.ModuleIDs()
		require.Len(t, ids, 2)
		assert.Equal(t, a.ID, *ids[0])
		assert.Nil(t, ids[1])
	})

	t.Run("replaces entries", func(t *testing.T) {
		loaded, err := paths.FindByID(ctx, path.ID)
		require.NoError(t, err)
		loaded.SetModuleIDs([]*uuid.UUID{&b.ID})
		require.NoError(t, paths.Update(ctx, loaded, true))

		stored, err := paths.FindByID(ctx, path.ID)
		require.NoError(t, err)
		ids := stored.ModuleIDs()
		require.Len(t, ids, 1)
		assert.Equal(t, b.ID, *ids[0])
	})

	t.Run("clears entries", func(t *testing.T) {
		loaded, err := paths.FindByID(ctx, path.ID)
		require.NoError(t, err)
		loaded.SetModuleIDs(nil)
		require.NoError(t, paths.Update(ctx, loaded, true))

		stored, err := paths.FindByID(ctx, path.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.ModuleIDs())
	})

	t.Run("unchanged title still succeeds", func(t *testing.T) {
		loaded, err := paths.FindByID(ctx, path.ID)
		require.NoError(t, err)
		require.NoError(t, paths.Update(ctx, loaded, false))
	})

	t.Run("missing path", func(t *testing.T) {
		err := paths.Update(ctx, &model.Path{ID: uuid.New(), Title: "x"}, true)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestPathRepository_AppendModule(t *testing.T) {
	gdb := newTestDB(t)
	modules := NewModuleRepository(gdb)
	paths := NewPathRepository(gdb)
	ctx := context.Background()

	a := createModule(t, modules, "Intro")
	b := createModule(t, modules, "Basics")

	path := &model.Path{Title: "Go"}
	path.SetModuleIDs([]*uuid.UUID{&a.ID, nil})
	require.NoError(t, paths.Create(ctx, path))

	require.NoError(t, paths.AppendModule(ctx, path.ID, b.ID))
	require.NoError(t, paths.AppendModule(ctx, path.ID, a.ID))

	stored, err := paths.FindByID(ctx, path.ID)
	require.NoError(t, err)
	ids := stored.ModuleIDs()
	require.Len(t, ids, 4)
	assert.Equal(t, a.ID, *ids[0])
	assert.Nil(t, ids[1])
	assert.Equal(t, b.ID, *ids[2])
	assert.Equal(t, a.ID, *ids[3])

	empty := &model.Path{Title: "Empty"}
	require.NoError(t, paths.Create(ctx, empty))
	require.NoError(t, paths.AppendModule(ctx, empty.ID, b.ID))
	stored, err = paths.FindByID(ctx, empty.ID)
	require.NoError(t, err)
	require.Len(t, stored.Entries, 1)
	assert.Equal(t, 0, stored.Entries[0].Position)

	err = paths.AppendModule(ctx, uuid.New(), a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPathRepository_DeleteKeepsModules(t *testing.T) {
	gdb := newTestDB(t)
	modules := NewModuleRepository(gdb)
	paths := NewPathRepository(gdb)
	ctx := context.Background()

	a := createModule(t, modules, "Intro")
	path := &model.Path{Title: "Go"}
	path.SetModuleIDs([]*uuid.UUID{&a.ID})
	require.NoError(t, paths.Create(ctx, path))

	require.NoError(t, paths.Delete(ctx, path.ID))

	_, err := paths.FindByID(ctx, path.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var entries int64
	require.NoError(t, gdb.Model(&model.PathModule{}).Where("path_id = ?", path.ID).Count(&entries).Error)
	assert.Zero(t, entries)

	kept, err := modules.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro", kept.Title)

	assert.ErrorIs(t, paths.Delete(ctx, path.ID), gorm.ErrRecordNotFound)
}

func TestPathRepository_ListInCreationOrder(t *testing.T) {
	gdb := newTestDB(t)
	paths := NewPathRepository(gdb)
	ctx := context.Background()

	for _, title := range []string{"Zig", "Go", "Rust"} {
		require.NoError(t, paths.Create(ctx, &model.Path{Title: title}))
		time.Sleep(2 * time.Millisecond)
	}

	list, err := paths.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Zig", list[0].Title)
	assert.Equal(t, "Go", list[1].Title)
	assert.Equal(t, "Rust", list[2].Title)
}

func TestModuleRepository_FindByIDs(t *testing.T) {
	gdb := newTestDB(t)
	modules := NewModuleRepository(gdb)
	ctx := context.Background()

	a := createModule(t, modules, "Intro")
	b := createModule(t, modules, "Basics")

	found, err := modules.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	projected, err := modules.FindByIDs(ctx, []uuid.UUID{a.ID}, "id", "title")
	require.NoError(t, err)
	require.Len(t, projected, 1)
	assert.Equal(t, "Intro", projected[0].Title)
	assert.Empty(t, projected[0].Content)

	none, err := modules.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	list, err := modules.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Basics", list[0].Title)

	require.NoError(t, modules.Delete(ctx, a.ID))
	assert.ErrorIs(t, modules.Delete(ctx, a.ID), gorm.ErrRecordNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	gdb := newTestDB(t)
	tx := NewTransactor(gdb)
	ctx := context.Background()
	errBoom := errors.New("boom")

	var cloned uuid.UUID
	err := tx.WithTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		m := &model.Module{Title: "Clone"}
		if err := repos.Modules.Create(ctx, m); err != nil {
			return err
		}
		cloned = m.ID
		if err := repos.Paths.Create(ctx, &model.Path{Title: "Go"}); err != nil {
			return err
		}
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	_, err = NewModuleRepository(gdb).FindByID(ctx, cloned)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	list, err := NewPathRepository(gdb).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
