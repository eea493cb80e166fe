package session

import (
	"context"
	"testing"

	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_NotReadyUntilStorageChecked(t *testing.T) {
	s := New(newMemoryStore())

	st := s.State()
	assert.False(t, st.IsReady)
	assert.False(t, st.IsAuthenticated)

	require.NoError(t, s.Start(context.Background()))
	st = s.State()
	assert.True(t, st.IsReady)
	assert.False(t, st.IsAuthenticated)
}

func TestStart_RestoresPersistedSession(t *testing.T) {
	store := newMemoryStore()
	store.values[UserKey] = `{"_id":"u1","email":"jane@example.com","username":"jane","fullname":"Jane Wanjiku","phone":"0712345678"}`
	store.values[TokenKey] = "tok"
	s := New(store)

	require.NoError(t, s.Start(context.Background()))

	st := s.State()
	assert.True(t, st.IsReady)
	require.True(t, st.IsAuthenticated)
	assert.Equal(t, "u1", st.Identity.ID)
	assert.Equal(t, "Jane Wanjiku", st.Identity.FullName)
	assert.Equal(t, "tok", s.Token())
}

func TestStart_CorruptUserClearsStorage(t *testing.T) {
	store := newMemoryStore()
	store.values[UserKey] = `{"_id": "u1",`
	store.values[TokenKey] = "tok"
	s := New(store)

	require.NoError(t, s.Start(context.Background()))

	st := s.State()
	assert.True(t, st.IsReady)
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, s.Token())
	assert.False(t, store.has(UserKey))
	assert.False(t, store.has(TokenKey))
}

func TestStart_TokenWithoutUserIsLoggedOut(t *testing.T) {
	store := newMemoryStore()
	store.values[TokenKey] = "tok"
	s := New(store)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.State().IsAuthenticated)
}

func TestLogin_PersistsAndNotifiesSynchronously(t *testing.T) {
	store := newMemoryStore()
	s := New(store)
	require.NoError(t, s.Start(context.Background()))

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })

	err := s.Login(context.Background(), domain.Identity{ID: "u1", Username: "jane"}, "tok")
	require.NoError(t, err)

	require.Len(t, seen, 1, "subscribers run before Login returns")
	assert.True(t, seen[0].IsAuthenticated)
	assert.Equal(t, "u1", seen[0].Identity.ID)
	assert.True(t, store.has(UserKey))
	assert.Equal(t, "tok", store.values[TokenKey])

	unsubscribe()
	require.NoError(t, s.Logout(context.Background()))
	assert.Len(t, seen, 1, "unsubscribed callbacks are not called")
}

func TestLogin_RequiresIDAndToken(t *testing.T) {
	s := New(newMemoryStore())

	err := s.Login(context.Background(), domain.Identity{Username: "jane"}, "tok")
	assert.True(t, domain.IsValidation(err))
	err = s.Login(context.Background(), domain.Identity{ID: "u1"}, "")
	assert.True(t, domain.IsValidation(err))
	assert.False(t, s.State().IsAuthenticated)
}

func TestLogin_StorageFailureKeepsLoggedOut(t *testing.T) {
	store := newMemoryStore()
	store.setErr = errDiskFull
	s := New(store)

	err := s.Login(context.Background(), domain.Identity{ID: "u1"}, "tok")
	assert.ErrorIs(t, err, errDiskFull)
	assert.False(t, s.State().IsAuthenticated)
}

func TestLogout_ClearsStorage(t *testing.T) {
	store := newMemoryStore()
	s := New(store)
	require.NoError(t, s.Login(context.Background(), domain.Identity{ID: "u1"}, "tok"))

	require.NoError(t, s.Logout(context.Background()))

	assert.False(t, s.State().IsAuthenticated)
	assert.Nil(t, s.State().Identity)
	assert.Empty(t, s.Token())
	assert.False(t, store.has(UserKey))
	assert.False(t, store.has(TokenKey))
}

func TestExpire_LogsOutOnce(t *testing.T) {
	s := New(newMemoryStore())
	require.NoError(t, s.Login(context.Background(), domain.Identity{ID: "u1"}, "tok"))

	calls := 0
	s.Subscribe(func(State) { calls++ })
	s.Expire(context.Background())
	s.Expire(context.Background())

	assert.Equal(t, 1, calls)
	assert.False(t, s.State().IsAuthenticated)
}

func TestUpdateIdentity(t *testing.T) {
	store := newMemoryStore()
	s := New(store)
	err := s.UpdateIdentity(context.Background(), domain.Identity{ID: "u1"})
	assert.ErrorIs(t, err, domain.ErrLoginRequired)

	require.NoError(t, s.Login(context.Background(), domain.Identity{ID: "u1", Username: "jane"}, "tok"))
	require.NoError(t, s.UpdateIdentity(context.Background(), domain.Identity{Username: "jane", Phone: "0700000000"}))

	id, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, "0700000000", id.Phone)
	assert.Contains(t, store.values[UserKey], "0700000000")
}

func TestState_ReturnsCopy(t *testing.T) {
	s := New(newMemoryStore())
	require.NoError(t, s.Login(context.Background(), domain.Identity{ID: "u1", Username: "jane"}, "tok"))

	st := s.State()
	st.Identity.Username = "mutated"

	id, _ := s.Identity()
	assert.Equal(t, "jane", id.Username)
}
