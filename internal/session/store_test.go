package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *State {
	s := New()
	_ = s.Login("alice")
	_ = s.Edit(12)
	s.Flash(NoticeSuccess, "saved")
	s.KeepDraft(Draft{Word: "apricot", Memo: "unsaved"})
	return s
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	_, err := st.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoSession)

	want := sampleState()
	require.NoError(t, st.Save(ctx, "abc", want))

	got, err := st.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Mutating the loaded copy must not leak into the store.
	got.Notice.Message = "changed"
	got.Draft.Word = "changed"
	got.TakeNotice()
	require.NoError(t, got.BackToList())
	again, err := st.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want, again)

	require.NoError(t, st.Delete(ctx, "abc"))
	_, err = st.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNoSession)

	// Deleting twice is harmless.
	assert.NoError(t, st.Delete(ctx, "abc"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Minute)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, "a", New()))
	require.NoError(t, m.Save(ctx, "b", New()))

	now = now.Add(30 * time.Second)
	_, err := m.Load(ctx, "a")
	require.NoError(t, err)
	// Saving slides the TTL for "b" only.
	require.NoError(t, m.Save(ctx, "b", New()))

	now = now.Add(45 * time.Second)
	_, err = m.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = m.Load(ctx, "b")
	assert.NoError(t, err)

	now = now.Add(2 * time.Minute)
	require.NoError(t, m.Save(ctx, "c", New()))
	assert.Equal(t, 1, m.Len())
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStore(t *testing.T) {
	st, _ := newRedisStore(t, time.Hour)
	exerciseStore(t, st)
}

func TestRedisStore_TTLAndEncoding(t *testing.T) {
	ctx := context.Background()
	st, mr := newRedisStore(t, 10*time.Minute)

	require.NoError(t, st.Save(ctx, "xyz", sampleState()))
	assert.True(t, mr.Exists("session:xyz"))
	assert.Equal(t, 10*time.Minute, mr.TTL("session:xyz"))

	raw, err := mr.Get("session:xyz")
	require.NoError(t, err)
	assert.JSONEq(t, `{"loggedIn":true,"currentUserId":"alice","viewMode":"edit","editTargetId":12,"notice":{"level":"success","message":"saved"}}`, raw)

	mr.FastForward(11 * time.Minute)
	_, err = st.Load(ctx, "xyz")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	st, mr := newRedisStore(t, time.Hour)

	require.NoError(t, mr.Set("session:bad", "{not json"))
	_, err := st.Load(ctx, "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
	assert.ErrorContains(t, err, "decode session")
}

func TestRedisStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	st, mr := newRedisStore(t, time.Hour)
	mr.Close()

	_, err := st.Load(ctx, "any")
	assert.ErrorContains(t, err, "load session")
	assert.ErrorContains(t, st.Save(ctx, "any", New()), "save session")
}
