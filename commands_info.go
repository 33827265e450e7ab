package parhelion

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	dColorRed    = 13107200
	dColorOrange = 15761746
	dColorLBlue  = 6410733
	dColorGreen  = 51200
	dColorWhite  = 16777215
)

func (b *Bot) infoCommands() []*Command {
	return []*Command{
		{
			Name:        "ping",
			Description: "Check the bot's latency",
			Usage:       "ping",
			AllowDMs:    true,
			Run:         b.pingCommand,
		},
		{
			Name:        "info",
			Aliases:     []string{"about"},
			Description: "Get information about the bot",
			Usage:       "info",
			AllowDMs:    true,
			Run:         b.infoCommand,
		},
		{
			Name:        "help",
			Aliases:     []string{"h"},
			Description: "List commands, or get help with one command",
			Usage:       "help [command]",
			AllowDMs:    true,
			Run:         b.helpCommand,
		},
		{
			Name:        "snipe",
			Description: "Show the most recently deleted message in this channel",
			Usage:       "snipe",
			Run:         b.snipeCommand,
		},
	}
}

func (b *Bot) pingCommand(ctx *Ctx) error {
	return ctx.Reply(fmt.Sprintf("Pong! %v", ctx.Sess.HeartbeatLatency().Round(time.Millisecond)))
}

func (b *Bot) infoCommand(ctx *Ctx) error {
	embed := &discordgo.MessageEmbed{
		Title: "Info",
		Color: dColorLBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Golang version", Value: runtime.Version()},
			{Name: "Running since", Value: fmt.Sprintf("<t:%v:R>", b.startTime.Unix())},
			{Name: "Total guilds", Value: fmt.Sprintf("%v", len(ctx.Sess.State.Guilds))},
		},
	}
	return ctx.ReplyEmbed(embed)
}

func (b *Bot) helpCommand(ctx *Ctx) error {
	if len(ctx.Args) > 0 {
		cmd, ok := b.commands[strings.ToLower(ctx.Args[0])]
		if !ok {
			return ctx.Reply("I don't know that command.")
		}
		embed := &discordgo.MessageEmbed{
			Title:       cmd.Name,
			Color:       dColorLBlue,
			Description: cmd.Description,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Usage", Value: "`" + cmd.Usage + "`"},
			},
		}
		if len(cmd.Aliases) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "Aliases",
				Value: strings.Join(cmd.Aliases, ", "),
			})
		}
		return ctx.ReplyEmbed(embed)
	}

	text := strings.Builder{}
	for _, cmd := range b.commandList {
		text.WriteString(fmt.Sprintf("`%v` - %v\n", cmd.Name, cmd.Description))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Commands",
		Color:       dColorLBlue,
		Description: text.String(),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Use help [command] for more about one command. Mentioning me always works as a prefix.",
		},
	}
	return ctx.ReplyEmbed(embed)
}

func (b *Bot) snipeCommand(ctx *Ctx) error {
	msg, err := b.store.GetSniped(ctx.Msg.ChannelID)
	if err != nil {
		return ctx.Reply("There is nothing to snipe here.")
	}

	// Stamp the embed with when the message was sent, not when it was sniped.
	sentAt := time.Now()
	if ts, err := ParseSnowflake(msg.ID); err == nil {
		sentAt = ts
	}

	embed := &discordgo.MessageEmbed{
		Title: "Message deleted",
		Color: dColorWhite,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%v\n%v", msg.Author.Mention(), msg.Author.String()), Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%v>", msg.ChannelID), Inline: true},
		},
		Timestamp: sentAt.Format(time.RFC3339),
	}
	if msg.Content != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Content", Value: msg.Content})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Content", Value: "No content"})
	}
	if len(msg.Attachments) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Total attachments",
			Value: fmt.Sprint(len(msg.Attachments)),
		})
	}
	return ctx.ReplyEmbed(embed)
}
