package parhelion

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wheelercj/parhelion/database"
)

func (b *Bot) tagCommands() []*Command {
	return []*Command{
		{
			Name:        "tag",
			Aliases:     []string{"t"},
			Description: "Show a tag",
			Usage:       "tag [name]",
			Run:         b.tagCommand,
		},
		{
			Name:        "tags",
			Description: "List this server's tags",
			Usage:       "tags",
			Run:         b.tagsCommand,
		},
		{
			Name:        "addtag",
			Description: "Create a tag in this server",
			Usage:       "addtag [name] [content]",
			Run:         b.addTagCommand,
		},
		{
			Name:        "deltag",
			Aliases:     []string{"deletetag"},
			Description: "Delete a tag you own",
			Usage:       "deltag [name]",
			Run:         b.delTagCommand,
		},
	}
}

func (b *Bot) tagCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	name := strings.ToLower(ctx.Args[0])

	tag, err := b.db.GetTag(ctx.GuildID(), name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ctx.Reply("There is no tag with that name.")
		}
		return err
	}
	if err := b.db.IncrementTagUses(ctx.GuildID(), name); err != nil {
		b.logger.Debug("failed to count tag use", zap.String("name", name), zap.Error(err))
	}
	return ctx.Reply(tag.Content)
}

func (b *Bot) tagsCommand(ctx *Ctx) error {
	tags, err := b.db.GetGuildTags(ctx.GuildID())
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return ctx.Reply("This server has no tags yet.")
	}

	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, "`"+t.Name+"`")
	}
	return ctx.Reply("Tags: " + strings.Join(names, ", "))
}

func (b *Bot) addTagCommand(ctx *Ctx) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	name := strings.ToLower(ctx.Args[0])
	if len(name) > 64 {
		return ctx.Reply("Tag names can be at most 64 characters.")
	}
	if _, taken := b.commands[name]; taken {
		return ctx.Reply("That name belongs to a command.")
	}
	if _, err := b.db.GetTag(ctx.GuildID(), name); err == nil {
		return ctx.Reply("That tag already exists.")
	}

	tag := &database.Tag{
		GuildID:   ctx.GuildID(),
		Name:      name,
		Content:   strings.Join(ctx.Args[1:], " "),
		OwnerID:   ctx.Msg.Author.ID,
		CreatedAt: time.Now(),
	}
	if err := b.db.CreateTag(tag); err != nil {
		b.logger.Error("failed to create tag", zap.Error(err))
		return ctx.Reply("Something went wrong saving that tag, sorry.")
	}
	return ctx.Reply(fmt.Sprintf("Tag `%v` created.", name))
}

func (b *Bot) delTagCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	name := strings.ToLower(ctx.Args[0])

	tag, err := b.db.GetTag(ctx.GuildID(), name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ctx.Reply("There is no tag with that name.")
		}
		return err
	}
	if tag.OwnerID != ctx.Msg.Author.ID && !ctx.IsAdmin() && !ctx.IsOwner() {
		return ctx.Reply("Only the tag's owner or a server admin can delete it.")
	}

	if err := b.db.DeleteTag(ctx.GuildID(), name); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Tag `%v` deleted.", name))
}
