package parhelion

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/wheelercj/parhelion/access"
)

func (b *Bot) prefixCommands() []*Command {
	return []*Command{
		{
			Name:        "prefixes",
			Description: "List this server's command prefixes",
			Usage:       "prefixes",
			AllowDMs:    true,
			Run:         b.prefixesCommand,
		},
		{
			Name:        "addprefix",
			Description: "Add a custom command prefix for this server",
			Usage:       "addprefix [prefix]",
			AdminOnly:   true,
			Run:         b.addPrefixCommand,
		},
		{
			Name:        "delprefix",
			Aliases:     []string{"deleteprefix"},
			Description: "Remove a custom prefix, or turn off a default one",
			Usage:       "delprefix [prefix]",
			AdminOnly:   true,
			Run:         b.delPrefixCommand,
		},
		{
			Name:        "resetprefixes",
			Description: "Restore this server's prefixes to the defaults",
			Usage:       "resetprefixes",
			AdminOnly:   true,
			Run:         b.resetPrefixesCommand,
		},
	}
}

func (b *Bot) prefixesCommand(ctx *Ctx) error {
	active := b.prefixes.Resolve(ctx.GuildID())

	text := strings.Builder{}
	text.WriteString("My prefixes here are: ")
	parts := make([]string, 0, len(active)+1)
	for _, p := range active {
		if p == "" {
			continue
		}
		parts = append(parts, "`"+p+"`")
	}
	parts = append(parts, "and mentioning me")
	text.WriteString(strings.Join(parts, ", "))
	if ctx.Guild == nil {
		text.WriteString(". In DMs no prefix is needed at all.")
	}
	return ctx.Reply(text.String())
}

func (b *Bot) addPrefixCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	// Quoting allows prefixes with trailing spaces, e.g. "pls ".
	prefix := strings.Trim(strings.Join(ctx.Args, " "), `"`)

	if err := b.prefixes.Add(ctx.GuildID(), prefix); err != nil {
		switch {
		case errors.Is(err, access.ErrTooManyPrefixes):
			return ctx.Reply(fmt.Sprintf("This server already has %v custom prefixes, remove one first.", access.MaxCustomPrefixes))
		default:
			var se *access.StorageError
			if errors.As(err, &se) {
				return ctx.Reply("I couldn't save that prefix, the database is unavailable. Nothing changed.")
			}
			return ctx.Reply(err.Error())
		}
	}
	return ctx.Reply(fmt.Sprintf("`%v` added as a prefix.", prefix))
}

func (b *Bot) delPrefixCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	prefix := strings.Trim(strings.Join(ctx.Args, " "), `"`)

	if err := b.prefixes.Remove(ctx.GuildID(), prefix); err != nil {
		switch {
		case errors.Is(err, access.ErrPrefixNotFound):
			return ctx.Reply(fmt.Sprintf("`%v` is not an active prefix here.", prefix))
		default:
			var se *access.StorageError
			if errors.As(err, &se) {
				return ctx.Reply("I couldn't save that change, the database is unavailable. Nothing changed.")
			}
			return ctx.Reply(err.Error())
		}
	}
	return ctx.Reply(fmt.Sprintf("`%v` removed.", prefix))
}

func (b *Bot) resetPrefixesCommand(ctx *Ctx) error {
	if err := b.prefixes.Reset(ctx.GuildID()); err != nil {
		if errors.Is(err, access.ErrSettingNotFound) {
			return ctx.Reply("This server already uses the default prefixes.")
		}
		var se *access.StorageError
		if errors.As(err, &se) {
			return ctx.Reply("I couldn't save that change, the database is unavailable. Nothing changed.")
		}
		return err
	}
	return ctx.Reply("Prefixes restored to the defaults.")
}
