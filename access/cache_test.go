package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetWritesThrough(t *testing.T) {
	_, cache, store := newTestResolver(t)

	k := Key{Command: "foo", Scope: ScopeServer, GuildID: "guild1"}
	require.NoError(t, cache.Set(k, false))

	records, err := store.AllSettings()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Record{Key: k, Allow: false}, records[0])
}

func TestSetRollsBackOnStoreFailure(t *testing.T) {
	_, cache, store := newTestResolver(t)
	store.setFailure(errStoreDown)

	k := Key{Command: "foo", Scope: ScopeGlobal}
	err := cache.Set(k, true)
	require.Error(t, err)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.ErrorIs(t, storageErr.Unwrap(), errStoreDown)

	// The in-memory copy must not diverge from the store.
	assert.False(t, cache.HasSettings("foo"))
}

func TestSetRestoresPreviousValueOnFailure(t *testing.T) {
	_, cache, store := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeGlobal}, Allow: true},
	)
	store.setFailure(errStoreDown)

	k := Key{Command: "foo", Scope: ScopeGlobal}
	require.Error(t, cache.Set(k, false))

	v, ok := cache.lookup(k)
	require.True(t, ok)
	assert.True(t, v)
}

func TestSetRejectsInvalidKeys(t *testing.T) {
	_, cache, _ := newTestResolver(t)

	for _, k := range []Key{
		{Command: "foo", Scope: "bogus"},
		{Command: "foo", Scope: ScopeGlobal, Subject: "user1"},
		{Command: "foo", Scope: ScopeGlobalUser},
		{Command: "foo", Scope: ScopeServerMember, Subject: "user1"},
		{Command: "foo", Scope: ScopeGlobal, GuildID: "guild1"},
	} {
		assert.Error(t, cache.Set(k, true), "key %+v", k)
	}
}

func TestDeleteUnsetReturnsNotFound(t *testing.T) {
	_, cache, _ := newTestResolver(t)

	err := cache.Delete(Key{Command: "foo", Scope: ScopeGlobal})
	assert.ErrorIs(t, err, ErrSettingNotFound)

	assert.ErrorIs(t, cache.DeleteCommand("foo"), ErrSettingNotFound)
	assert.ErrorIs(t, cache.DeleteBot(), ErrSettingNotFound)
	assert.ErrorIs(t, cache.DeleteGuild("guild1"), ErrSettingNotFound)
}

func TestDeleteLastSettingCollectsCommand(t *testing.T) {
	_, cache, store := newTestResolver(t)

	k := Key{Command: "foo", Scope: ScopeServerChannel, GuildID: "guild1", Subject: "chan1"}
	require.NoError(t, cache.Set(k, false))
	require.True(t, cache.HasSettings("foo"))

	require.NoError(t, cache.Delete(k))
	assert.False(t, cache.HasSettings("foo"))
	assert.Zero(t, store.settingCount())

	// No stale partial structure is left behind to trip up a later write.
	require.NoError(t, cache.Set(k, true))
	assert.True(t, cache.HasSettings("foo"))
}

func TestDeleteCommandRemovesAllScopes(t *testing.T) {
	_, cache, store := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeGlobal}, Allow: false},
		Record{Key: Key{Command: "foo", Scope: ScopeGlobalUser, Subject: "user1"}, Allow: true},
		Record{Key: Key{Command: "foo", Scope: ScopeServer, GuildID: "guild1"}, Allow: false},
		Record{Key: Key{Command: "bar", Scope: ScopeGlobal}, Allow: true},
	)

	require.NoError(t, cache.DeleteCommand("foo"))
	assert.False(t, cache.HasSettings("foo"))
	assert.True(t, cache.HasSettings("bar"))
	assert.Equal(t, 1, store.settingCount())
}

func TestDeleteGuildKeepsOwnerScopes(t *testing.T) {
	_, cache, _ := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeServer, GuildID: "guild1"}, Allow: false},
		Record{Key: Key{Scope: ScopeServerRole, GuildID: "guild1", Subject: "role1"}, Allow: false},
		Record{Key: Key{Command: "foo", Scope: ScopeServer, GuildID: "guild2"}, Allow: false},
		Record{Key: Key{Scope: ScopeGlobalServer, Subject: "guild1"}, Allow: false},
	)

	require.NoError(t, cache.DeleteGuild("guild1"))

	// guild2's settings and the owner's global_server override survive.
	_, ok := cache.lookup(Key{Command: "foo", Scope: ScopeServer, GuildID: "guild2"})
	assert.True(t, ok)
	_, ok = cache.lookup(Key{Scope: ScopeGlobalServer, Subject: "guild1"})
	assert.True(t, ok)
	_, ok = cache.lookup(Key{Command: "foo", Scope: ScopeServer, GuildID: "guild1"})
	assert.False(t, ok)
}

func TestDeleteCommandRollsBackOnStoreFailure(t *testing.T) {
	_, cache, store := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeGlobal}, Allow: false},
		Record{Key: Key{Command: "foo", Scope: ScopeServer, GuildID: "guild1"}, Allow: true},
	)
	store.setFailure(errStoreDown)

	err := cache.DeleteCommand("foo")
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)

	assert.True(t, cache.HasSettings("foo"))
	assert.Len(t, cache.CommandSettings("foo"), 2)
}

func TestOpenWithUnavailableStoreDefaultsToAllow(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.UpsertSetting(Record{Key: Key{Command: "foo", Scope: ScopeGlobal}, Allow: false}))
	store.setFailure(errStoreDown)

	cache := NewSettingsCache(store, zap.NewNop())
	cache.Open()
	defer cache.Close()

	// Stale-allow is preferred to hard failure: nothing loaded, so the
	// resolver falls back to the default of allow.
	r := NewResolver(cache)
	assert.NoError(t, r.Check(guildCtx("foo")))
}
