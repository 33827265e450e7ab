package parhelion

import (
	"github.com/bwmarrin/discordgo"
)

// Ctx is passed to a command's Run once the dispatcher has matched a prefix,
// resolved the command and cleared the access gate.
type Ctx struct {
	b    *Bot
	Sess *discordgo.Session
	Msg  *discordgo.Message
	// Guild is nil in DMs.
	Guild   *discordgo.Guild
	Command *Command
	// Args are the words after the command word.
	Args []string
}

func (c *Ctx) GuildID() string {
	if c.Guild == nil {
		return ""
	}
	return c.Guild.ID
}

func (c *Ctx) Reply(text string) error {
	_, err := c.Sess.ChannelMessageSend(c.Msg.ChannelID, text)
	return err
}

func (c *Ctx) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := c.Sess.ChannelMessageSendEmbed(c.Msg.ChannelID, embed)
	return err
}

// IsOwner reports whether the invoker is the bot owner.
func (c *Ctx) IsOwner() bool {
	return c.Msg.Author.ID == c.b.config.OwnerID
}

// IsAdmin reports whether the invoker has the administrator permission in
// the current channel, or owns the guild.
func (c *Ctx) IsAdmin() bool {
	if c.Guild == nil {
		return false
	}
	if c.Msg.Author.ID == c.Guild.OwnerID {
		return true
	}
	uperms, err := c.Sess.State.UserChannelPermissions(c.Msg.Author.ID, c.Msg.ChannelID)
	if err != nil {
		return false
	}
	return uperms&discordgo.PermissionAdministrator != 0
}
