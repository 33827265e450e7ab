package parhelion

import (
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wheelercj/parhelion/access"
)

func (b *Bot) readyHandler(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("logged in", zap.String("user", r.User.String()))
	if err := s.UpdateGameStatus(0, access.DefaultPrefixes[0]+"help"); err != nil {
		b.logger.Debug("failed to set status", zap.Error(err))
	}
}

func (b *Bot) disconnectHandler(s *discordgo.Session, d *discordgo.Disconnect) {
	b.logger.Warn("disconnected", zap.Time("at", time.Now()))
}

func (b *Bot) guildCreateHandler(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.logger.Info("joined guild", zap.String("name", g.Name), zap.String("id", g.ID))
}

func (b *Bot) guildDeleteHandler(s *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		return
	}
	b.logger.Info("removed from guild", zap.String("id", g.ID))

	// Best-effort cleanup of everything the guild's admins configured.
	if err := b.settings.DeleteGuild(g.ID); err != nil && !errors.Is(err, access.ErrSettingNotFound) {
		b.logger.Error("failed to delete guild settings", zap.String("id", g.ID), zap.Error(err))
	}
	if err := b.prefixes.Reset(g.ID); err != nil && !errors.Is(err, access.ErrSettingNotFound) {
		b.logger.Error("failed to delete guild prefixes", zap.String("id", g.ID), zap.Error(err))
	}
}

func (b *Bot) messageDeleteHandler(s *discordgo.Session, m *discordgo.MessageDelete) {
	msg, err := b.store.GetMessage(m.ChannelID, m.ID)
	if err != nil {
		return
	}
	if err := b.store.SetSniped(msg); err != nil {
		b.logger.Debug("failed to store sniped message", zap.Error(err))
	}
}

func (b *Bot) messageCreateHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	if m.GuildID != "" {
		if err := b.store.SetMessage(m.Message); err != nil {
			b.logger.Debug("failed to cache message", zap.Error(err))
		}
	}

	content, ok := b.stripPrefix(m)
	if !ok {
		return
	}

	fields := strings.Fields(content)
	if len(fields) == 0 {
		return
	}

	cmd, ok := b.commands[strings.ToLower(fields[0])]
	if !ok {
		return
	}

	var guild *discordgo.Guild
	if m.GuildID != "" {
		guild, _ = s.State.Guild(m.GuildID)
	}

	ctx := &Ctx{
		b:       b,
		Sess:    s,
		Msg:     m.Message,
		Guild:   guild,
		Command: cmd,
		Args:    fields[1:],
	}

	if guild == nil && !cmd.AllowDMs {
		_ = ctx.Reply("That command only works in servers.")
		return
	}
	if cmd.OwnerOnly && !ctx.IsOwner() {
		return
	}
	if cmd.AdminOnly && !ctx.IsOwner() && !ctx.IsAdmin() {
		_ = ctx.Reply("That command is for server admins only.")
		return
	}

	actx := access.Context{
		UserID:    m.Author.ID,
		IsOwner:   ctx.IsOwner(),
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		RoleIDs:   orderedRoleIDs(guild, m.Member),
		Command:   cmd.Name,
	}
	if err := b.resolver.Check(actx); err != nil {
		var denied *access.DeniedError
		if errors.As(err, &denied) {
			_ = ctx.Reply(denied.Error())
		}
		return
	}

	b.logger.Info("command",
		zap.String("name", cmd.Name),
		zap.String("userID", m.Author.ID),
		zap.String("guildID", m.GuildID),
	)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("command panicked", zap.String("name", cmd.Name), zap.Any("reason", r))
			}
		}()
		if err := cmd.Run(ctx); err != nil {
			b.logger.Error("command failed", zap.String("name", cmd.Name), zap.Error(err))
		}
	}()
}

// stripPrefix removes the matched prefix from a message, trying the mention
// prefix first and then the guild's active prefixes, longest first. In DMs
// the bare prefix matches everything.
func (b *Bot) stripPrefix(m *discordgo.MessageCreate) (string, bool) {
	content := m.Content
	if me := b.client.State.User; me != nil {
		for _, mp := range []string{"<@" + me.ID + ">", "<@!" + me.ID + ">"} {
			if strings.HasPrefix(content, mp) {
				return strings.TrimSpace(strings.TrimPrefix(content, mp)), true
			}
		}
	}
	for _, p := range b.prefixes.Resolve(m.GuildID) {
		if strings.HasPrefix(content, p) {
			return strings.TrimPrefix(content, p), true
		}
	}
	return "", false
}

// orderedRoleIDs returns the member's role ids sorted from least to most
// authoritative, the order the access resolver expects.
func orderedRoleIDs(g *discordgo.Guild, member *discordgo.Member) []string {
	if g == nil || member == nil {
		return nil
	}
	pos := make(map[string]int, len(g.Roles))
	for _, r := range g.Roles {
		pos[r.ID] = r.Position
	}
	ids := append([]string(nil), member.Roles...)
	sort.SliceStable(ids, func(i, j int) bool {
		return pos[ids[i]] < pos[ids[j]]
	})
	return ids
}
