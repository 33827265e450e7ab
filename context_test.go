package parhelion

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuildState(t *testing.T) *discordgo.Session {
	t.Helper()
	st := discordgo.NewState()
	require.NoError(t, st.GuildAdd(&discordgo.Guild{
		ID:      "guild1",
		OwnerID: "owner1",
		Roles: []*discordgo.Role{
			// @everyone
			{ID: "guild1", Permissions: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
			{ID: "adminRole", Permissions: discordgo.PermissionAdministrator},
		},
		Channels: []*discordgo.Channel{
			{ID: "chan1", GuildID: "guild1", Type: discordgo.ChannelTypeGuildText},
		},
	}))
	require.NoError(t, st.MemberAdd(&discordgo.Member{
		GuildID: "guild1",
		User:    &discordgo.User{ID: "plain1"},
	}))
	require.NoError(t, st.MemberAdd(&discordgo.Member{
		GuildID: "guild1",
		User:    &discordgo.User{ID: "admin1"},
		Roles:   []string{"adminRole"},
	}))
	return &discordgo.Session{State: st}
}

func guildTestCtx(t *testing.T, userID string) *Ctx {
	t.Helper()
	sess := newTestGuildState(t)
	guild, err := sess.State.Guild("guild1")
	require.NoError(t, err)
	return &Ctx{
		Sess:  sess,
		Guild: guild,
		Msg: &discordgo.Message{
			ChannelID: "chan1",
			GuildID:   "guild1",
			Author:    &discordgo.User{ID: userID},
		},
	}
}

func TestIsAdminRequiresAdministratorPermission(t *testing.T) {
	// A member whose roles only grant view/send must not count as an admin.
	assert.False(t, guildTestCtx(t, "plain1").IsAdmin())
}

func TestIsAdminAcceptsAdministratorRole(t *testing.T) {
	assert.True(t, guildTestCtx(t, "admin1").IsAdmin())
}

func TestIsAdminAcceptsGuildOwner(t *testing.T) {
	ctx := guildTestCtx(t, "owner1")
	assert.True(t, ctx.IsAdmin())
}

func TestIsAdminFalseInDMs(t *testing.T) {
	ctx := &Ctx{
		Sess: newTestGuildState(t),
		Msg: &discordgo.Message{
			ChannelID: "dm1",
			Author:    &discordgo.User{ID: "plain1"},
		},
	}
	assert.False(t, ctx.IsAdmin())
}
