package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/epikoding/dictionary/internal/database"
	"github.com/epikoding/dictionary/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type tickingClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

func newTestStore(t *testing.T, opts ...Option) (*EntryStore, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "store.db"), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return NewEntryStore(db, tokyo, opts...), db
}

func strPtr(s string) *string { return &s }

func TestEntryStore_InsertAndFindOne(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	e := &model.Entry{UserID: "alice", Word: "apple", Meaning: "a fruit", Category: strPtr("fruit")}
	require.NoError(t, s.Insert(ctx, e))
	require.NotZero(t, e.ID)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
	assert.Equal(t, "Asia/Tokyo", e.CreatedAt.Location().String())

	got, err := s.FindOne(ctx, e.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Word)
	assert.Equal(t, "a fruit", got.Meaning)
	assert.Equal(t, "fruit", got.CategoryName())
	assert.Nil(t, got.Memo)
	assert.True(t, got.CreatedAt.Equal(e.CreatedAt))
	assert.Equal(t, "Asia/Tokyo", got.UpdatedAt.Location().String())
}

func TestEntryStore_FindOneIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	e := &model.Entry{UserID: "alice", Word: "apple", Meaning: "a fruit"}
	require.NoError(t, s.Insert(ctx, e))

	_, err := s.FindOne(ctx, e.ID, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindOne(ctx, e.ID+100, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryStore_FindByOwnerOrdering(t *testing.T) {
	ctx := context.Background()
	clock := &tickingClock{cur: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s, _ := newTestStore(t, WithClock(clock.Now))

	a := &model.Entry{UserID: "alice", Word: "A", Meaning: "first"}
	b := &model.Entry{UserID: "alice", Word: "B", Meaning: "second"}
	other := &model.Entry{UserID: "bob", Word: "C", Meaning: "not yours"}
	require.NoError(t, s.Insert(ctx, a))
	require.NoError(t, s.Insert(ctx, b))
	require.NoError(t, s.Insert(ctx, other))

	list, err := s.FindByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"B", "A"}, []string{list[0].Word, list[1].Word})

	ok, err := s.ReplaceFields(ctx, a.ID, "alice", Fields{Word: "A", Meaning: "first, revised"})
	require.NoError(t, err)
	require.True(t, ok)

	list, err = s.FindByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, []string{list[0].Word, list[1].Word})
	for _, e := range list {
		assert.Equal(t, "alice", e.UserID)
	}
}

func TestEntryStore_ReplaceFields(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)

	e := &model.Entry{UserID: "alice", Word: "apple", Meaning: "a fruit", Category: strPtr("fruit"), Memo: strPtr("red")}
	require.NoError(t, s.Insert(ctx, e))

	t.Run("missing pair", func(t *testing.T) {
		ok, err := s.ReplaceFields(ctx, e.ID, "bob", Fields{Word: "x", Meaning: "y"})
		require.NoError(t, err)
		assert.False(t, ok)

		var count int64
		require.NoError(t, db.Model(&model.Entry{}).Where("word = ?", "x").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("existing pair", func(t *testing.T) {
		// Freeze the clock so the strictly-forward rule has to kick in.
		frozen := e.UpdatedAt
		s.now = func() time.Time { return frozen }

		ok, err := s.ReplaceFields(ctx, e.ID, "alice", Fields{Word: "pear", Meaning: "another fruit"})
		require.NoError(t, err)
		require.True(t, ok)

		got, err := s.FindOne(ctx, e.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, "alice", got.UserID)
		assert.Equal(t, "pear", got.Word)
		assert.Equal(t, "another fruit", got.Meaning)
		assert.Nil(t, got.Category)
		assert.Nil(t, got.Memo)
		assert.True(t, got.CreatedAt.Equal(e.CreatedAt))
		assert.True(t, got.UpdatedAt.After(e.UpdatedAt))
	})
}

func TestEntryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	e := &model.Entry{UserID: "alice", Word: "apple", Meaning: "a fruit"}
	require.NoError(t, s.Insert(ctx, e))

	ok, err := s.Delete(ctx, e.ID, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, e.ID, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, e.ID, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.FindOne(ctx, e.ID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryStore_IDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	first := &model.Entry{UserID: "alice", Word: "one", Meaning: "1"}
	require.NoError(t, s.Insert(ctx, first))
	_, err := s.Delete(ctx, first.ID, "alice")
	require.NoError(t, err)

	second := &model.Entry{UserID: "alice", Word: "two", Meaning: "2"}
	require.NoError(t, s.Insert(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}

func TestEntryStore_FailuresAreWrapped(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = s.Insert(ctx, &model.Entry{UserID: "alice", Word: "w", Meaning: "m"})
	assert.ErrorContains(t, err, "insert entry")

	_, err = s.FindByOwner(ctx, "alice")
	assert.ErrorContains(t, err, "find entries")
}
