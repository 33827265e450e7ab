package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(t *testing.T, records ...Record) (*Resolver, *SettingsCache, *memStore) {
	t.Helper()
	store := newMemStore()
	for _, r := range records {
		require.NoError(t, store.UpsertSetting(r))
	}
	cache := NewSettingsCache(store, zap.NewNop())
	cache.Open()
	t.Cleanup(cache.Close)
	return NewResolver(cache), cache, store
}

func guildCtx(command string) Context {
	return Context{
		UserID:    "user1",
		GuildID:   "guild1",
		ChannelID: "chan1",
		RoleIDs:   []string{"roleLow", "roleHigh"},
		Command:   command,
	}
}

func TestOwnerAlwaysAllowed(t *testing.T) {
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeGlobal}, Allow: false},
		Record{Key: Key{Scope: ScopeGlobal}, Allow: false},
		Record{Key: Key{Command: "foo", Scope: ScopeGlobalUser, Subject: "user1"}, Allow: false},
	)

	ctx := guildCtx("foo")
	ctx.IsOwner = true
	assert.NoError(t, r.Check(ctx))
}

func TestDefaultAllow(t *testing.T) {
	r, _, _ := newTestResolver(t)

	assert.NoError(t, r.Check(guildCtx("foo")))

	dm := Context{UserID: "user1", ChannelID: "dm1", Command: "foo"}
	assert.NoError(t, r.Check(dm))
}

func TestGlobalUserOverrideBeatsGlobalDeny(t *testing.T) {
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeGlobal}, Allow: false},
		Record{Key: Key{Command: "foo", Scope: ScopeGlobalUser, Subject: "user1"}, Allow: true},
	)

	assert.NoError(t, r.Check(guildCtx("foo")))
}

func TestGlobalAllowIsAbsolute(t *testing.T) {
	// A guild-wide DENY cannot override the owner's unconditional global ALLOW.
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeGlobal}, Allow: true},
		Record{Key: Key{Command: "foo", Scope: ScopeServer, GuildID: "guild1"}, Allow: false},
	)

	assert.NoError(t, r.Check(guildCtx("foo")))
}

func TestGlobalDenyAbsoluteWithoutOwnerAllow(t *testing.T) {
	// With no countermanding owner-level ALLOW anywhere, a global DENY is
	// final before any server setting is consulted, even a member ALLOW.
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeGlobal}, Allow: false},
		Record{Key: Key{Command: "foo", Scope: ScopeServerMember, GuildID: "guild1", Subject: "user1"}, Allow: true},
	)

	err := r.Check(guildCtx("foo"))
	require.Error(t, err)
	denied, ok := err.(*DeniedError)
	require.True(t, ok)
	assert.Equal(t, ScopeGlobal, denied.Scope)
}

func TestSuppressedGlobalDenyStillDeniableByGuild(t *testing.T) {
	// The owner-level user ALLOW suppresses the global DENY, but the guild
	// may still deny on its own through the specific checks.
	records := []Record{
		{Key: Key{Command: "foo", Scope: ScopeGlobal}, Allow: false},
		{Key: Key{Command: "foo", Scope: ScopeGlobalUser, Subject: "user1"}, Allow: true},
	}

	r, _, _ := newTestResolver(t, records...)
	assert.NoError(t, r.Check(guildCtx("foo")))

	r, _, _ = newTestResolver(t, append(records,
		Record{Key: Key{Command: "foo", Scope: ScopeServerMember, GuildID: "guild1", Subject: "user1"}, Allow: false},
	)...)
	err := r.Check(guildCtx("foo"))
	require.Error(t, err)
	assert.Equal(t, ScopeServerMember, err.(*DeniedError).Scope)
}

func TestGlobalServerDeny(t *testing.T) {
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Scope: ScopeGlobalServer, Subject: "guild1"}, Allow: false},
	)

	err := r.Check(guildCtx("foo"))
	require.Error(t, err)
	assert.Equal(t, ScopeGlobalServer, err.(*DeniedError).Scope)

	// The same user in another guild is unaffected.
	other := guildCtx("foo")
	other.GuildID = "guild2"
	assert.NoError(t, r.Check(other))
}

func TestGlobalUserShadowsGlobalServer(t *testing.T) {
	// Steps are strictly ordered: a user-level value is found before the
	// guild-level override is ever consulted.
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeGlobalUser, Subject: "user1"}, Allow: true},
		Record{Key: Key{Command: "foo", Scope: ScopeGlobalServer, Subject: "guild1"}, Allow: false},
	)

	assert.NoError(t, r.Check(guildCtx("foo")))
}

func TestHighestRoleWins(t *testing.T) {
	// RoleIDs are ordered least to most authoritative; the most authoritative
	// role with a setting decides.
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "bar", Scope: ScopeServerRole, GuildID: "guild1", Subject: "roleHigh"}, Allow: true},
		Record{Key: Key{Command: "bar", Scope: ScopeServerRole, GuildID: "guild1", Subject: "roleLow"}, Allow: false},
	)

	assert.NoError(t, r.Check(guildCtx("bar")))

	flipped, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "bar", Scope: ScopeServerRole, GuildID: "guild1", Subject: "roleHigh"}, Allow: false},
		Record{Key: Key{Command: "bar", Scope: ScopeServerRole, GuildID: "guild1", Subject: "roleLow"}, Allow: true},
	)

	err := flipped.Check(guildCtx("bar"))
	require.Error(t, err)
	assert.Equal(t, ScopeServerRole, err.(*DeniedError).Scope)
	assert.Equal(t, "roleHigh", err.(*DeniedError).Subject)
}

func TestMemberBeatsRoleAndChannel(t *testing.T) {
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeServerMember, GuildID: "guild1", Subject: "user1"}, Allow: true},
		Record{Key: Key{Command: "foo", Scope: ScopeServerRole, GuildID: "guild1", Subject: "roleHigh"}, Allow: false},
		Record{Key: Key{Command: "foo", Scope: ScopeServerChannel, GuildID: "guild1", Subject: "chan1"}, Allow: false},
	)

	assert.NoError(t, r.Check(guildCtx("foo")))
}

func TestChannelBeatsServerWide(t *testing.T) {
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeServerChannel, GuildID: "guild1", Subject: "chan1"}, Allow: true},
		Record{Key: Key{Command: "foo", Scope: ScopeServer, GuildID: "guild1"}, Allow: false},
	)

	assert.NoError(t, r.Check(guildCtx("foo")))
}

func TestCommandScopedBeatsBotScoped(t *testing.T) {
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Command: "foo", Scope: ScopeServer, GuildID: "guild1"}, Allow: true},
		Record{Key: Key{Scope: ScopeServer, GuildID: "guild1"}, Allow: false},
	)

	assert.NoError(t, r.Check(guildCtx("foo")))

	// A different command falls through to the bot-wide DENY.
	err := r.Check(guildCtx("other"))
	require.Error(t, err)
	denied := err.(*DeniedError)
	assert.Equal(t, ScopeServer, denied.Scope)
	assert.Equal(t, "", denied.Command)
}

func TestServerWideDeny(t *testing.T) {
	r, _, _ := newTestResolver(t,
		Record{Key: Key{Scope: ScopeServer, GuildID: "guild1"}, Allow: false},
	)

	require.Error(t, r.Check(guildCtx("anything")))

	// DMs are not in the guild and stay allowed.
	dm := Context{UserID: "user1", ChannelID: "dm1", Command: "anything"}
	assert.NoError(t, r.Check(dm))
}
