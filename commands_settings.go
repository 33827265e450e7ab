package parhelion

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/wheelercj/parhelion/access"
)

func (b *Bot) settingsCommands() []*Command {
	return []*Command{
		{
			Name:        "setcmd",
			Description: "Allow or deny a command for a scope",
			Usage:       "setcmd [command] [allow|deny] [global|user|guild|server|channel|role|member] [target?]",
			AllowDMs:    true,
			AdminOnly:   true,
			Run:         b.setCmdCommand,
		},
		{
			Name:        "clearcmd",
			Description: "Reset one scope of a command back to unset",
			Usage:       "clearcmd [command] [global|user|guild|server|channel|role|member] [target?]",
			AllowDMs:    true,
			AdminOnly:   true,
			Run:         b.clearCmdCommand,
		},
		{
			Name:        "resetcmd",
			Description: "Wipe every setting of a command, in every scope and every server",
			Usage:       "resetcmd [command]",
			AllowDMs:    true,
			OwnerOnly:   true,
			Run:         b.resetCmdCommand,
		},
		{
			Name:        "setbot",
			Description: "Allow or deny the whole bot for a scope",
			Usage:       "setbot [allow|deny] [global|user|guild|server|channel|role|member] [target?]",
			AllowDMs:    true,
			AdminOnly:   true,
			Run:         b.setBotCommand,
		},
		{
			Name:        "clearbot",
			Description: "Reset one bot-wide scope back to unset",
			Usage:       "clearbot [global|user|guild|server|channel|role|member] [target?]",
			AllowDMs:    true,
			AdminOnly:   true,
			Run:         b.clearBotCommand,
		},
		{
			Name:        "resetbot",
			Description: "Wipe every bot-wide setting, in every scope and every server",
			Usage:       "resetbot",
			AllowDMs:    true,
			OwnerOnly:   true,
			Run:         b.resetBotCommand,
		},
		{
			Name:        "resetserver",
			Description: "Wipe every setting this server's admins have made",
			Usage:       "resetserver",
			AdminOnly:   true,
			Run:         b.resetServerCommand,
		},
		{
			Name:        "settings",
			Description: "Show the stored settings for a command, or for the whole bot",
			Usage:       "settings [command|bot]",
			AllowDMs:    true,
			AdminOnly:   true,
			Run:         b.settingsCommand,
		},
	}
}

func (b *Bot) setCmdCommand(ctx *Ctx) error {
	if len(ctx.Args) < 3 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	name, err := b.rootCommandName(ctx.Args[0])
	if err != nil {
		return ctx.Reply(err.Error())
	}
	return b.applySetting(ctx, name, ctx.Args[1], ctx.Args[2:])
}

func (b *Bot) clearCmdCommand(ctx *Ctx) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	name, err := b.rootCommandName(ctx.Args[0])
	if err != nil {
		return ctx.Reply(err.Error())
	}
	return b.clearSetting(ctx, name, ctx.Args[1:])
}

func (b *Bot) resetCmdCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	name, err := b.rootCommandName(ctx.Args[0])
	if err != nil {
		return ctx.Reply(err.Error())
	}
	if err := b.settings.DeleteCommand(name); err != nil {
		if errors.Is(err, access.ErrSettingNotFound) {
			return ctx.Reply(fmt.Sprintf("`%v` has no settings.", name))
		}
		return err
	}
	return ctx.Reply(fmt.Sprintf("All settings for `%v` removed.", name))
}

func (b *Bot) setBotCommand(ctx *Ctx) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	return b.applySetting(ctx, "", ctx.Args[0], ctx.Args[1:])
}

func (b *Bot) clearBotCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	return b.clearSetting(ctx, "", ctx.Args)
}

func (b *Bot) resetBotCommand(ctx *Ctx) error {
	if err := b.settings.DeleteBot(); err != nil {
		if errors.Is(err, access.ErrSettingNotFound) {
			return ctx.Reply("There are no bot-wide settings.")
		}
		return err
	}
	return ctx.Reply("All bot-wide settings removed.")
}

func (b *Bot) resetServerCommand(ctx *Ctx) error {
	if err := b.settings.DeleteGuild(ctx.GuildID()); err != nil {
		if errors.Is(err, access.ErrSettingNotFound) {
			return ctx.Reply("This server has no settings.")
		}
		return err
	}
	return ctx.Reply("All of this server's settings removed.")
}

func (b *Bot) settingsCommand(ctx *Ctx) error {
	name := ""
	if len(ctx.Args) > 0 && !strings.EqualFold(ctx.Args[0], "bot") {
		var err error
		if name, err = b.rootCommandName(ctx.Args[0]); err != nil {
			return ctx.Reply(err.Error())
		}
	}

	records := b.settings.CommandSettings(name)
	if !ctx.IsOwner() {
		// Admins only see what their own server configured.
		filtered := records[:0]
		for _, r := range records {
			if r.Scope.GuildManaged() && r.GuildID == ctx.GuildID() {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	label := "the bot"
	if name != "" {
		label = "`" + name + "`"
	}
	if len(records) == 0 {
		return ctx.Reply(fmt.Sprintf("There are no settings for %v.", label))
	}

	text := strings.Builder{}
	text.WriteString(fmt.Sprintf("Settings for %v:\n", label))
	for _, r := range records {
		verdict := "deny"
		if r.Allow {
			verdict = "allow"
		}
		line := fmt.Sprintf("`%v` %v", r.Scope, verdict)
		if r.Subject != "" {
			line += " for " + r.Subject
		}
		if ctx.IsOwner() && r.GuildID != "" {
			line += " in " + r.GuildID
		}
		text.WriteString(line + "\n")
	}
	return ctx.Reply(text.String())
}

// rootCommandName resolves a command name or alias to its registered root
// name, so settings always attach to one canonical key.
func (b *Bot) rootCommandName(arg string) (string, error) {
	cmd, ok := b.commands[strings.ToLower(arg)]
	if !ok {
		return "", errors.Errorf("there is no command named %q", arg)
	}
	return cmd.Name, nil
}

func (b *Bot) applySetting(ctx *Ctx, command, verdict string, scopeArgs []string) error {
	var allow bool
	switch strings.ToLower(verdict) {
	case "allow", "on", "enable":
		allow = true
	case "deny", "off", "disable":
		allow = false
	default:
		return ctx.Reply("The second word must be `allow` or `deny`.")
	}

	key, err := b.parseScopeKey(ctx, command, scopeArgs)
	if err != nil {
		return ctx.Reply(err.Error())
	}
	if err := b.settings.Set(key, allow); err != nil {
		var se *access.StorageError
		if errors.As(err, &se) {
			return ctx.Reply("I couldn't save that setting, the database is unavailable. Nothing changed.")
		}
		return ctx.Reply(err.Error())
	}
	word := "denied"
	if allow {
		word = "allowed"
	}
	return ctx.Reply(settingReply(command, key, word))
}

func (b *Bot) clearSetting(ctx *Ctx, command string, scopeArgs []string) error {
	key, err := b.parseScopeKey(ctx, command, scopeArgs)
	if err != nil {
		return ctx.Reply(err.Error())
	}
	if err := b.settings.Delete(key); err != nil {
		switch {
		case errors.Is(err, access.ErrSettingNotFound):
			return ctx.Reply("That scope has no setting.")
		default:
			var se *access.StorageError
			if errors.As(err, &se) {
				return ctx.Reply("I couldn't save that change, the database is unavailable. Nothing changed.")
			}
			return ctx.Reply(err.Error())
		}
	}
	return ctx.Reply(settingReply(command, key, "unset"))
}

// parseScopeKey turns the scope words of a settings command into a storage
// key, enforcing who may touch which scope: the three global scopes belong to
// the bot owner, the four server scopes to the current server's admins.
func (b *Bot) parseScopeKey(ctx *Ctx, command string, args []string) (access.Key, error) {
	key := access.Key{Command: command}
	target := ""
	if len(args) > 1 {
		target = args[1]
	}

	switch strings.ToLower(args[0]) {
	case "global":
		key.Scope = access.ScopeGlobal
	case "user":
		key.Scope = access.ScopeGlobalUser
		key.Subject = TrimUserString(target)
	case "guild":
		key.Scope = access.ScopeGlobalServer
		key.Subject = target
	case "server":
		key.Scope = access.ScopeServer
	case "channel":
		key.Scope = access.ScopeServerChannel
		key.Subject = TrimChannelString(target)
	case "role":
		key.Scope = access.ScopeServerRole
		key.Subject = TrimRoleString(target)
	case "member":
		key.Scope = access.ScopeServerMember
		key.Subject = TrimUserString(target)
	default:
		return key, errors.Errorf("unknown scope %q", args[0])
	}

	if key.Scope.GuildManaged() {
		if ctx.Guild == nil {
			return key, errors.New("that scope only works inside a server")
		}
		key.GuildID = ctx.Guild.ID
	} else if !ctx.IsOwner() {
		return key, errors.New("only the bot owner can change global scopes")
	}

	if key.Subject == "" && key.Scope != access.ScopeGlobal && key.Scope != access.ScopeServer {
		return key, errors.Errorf("scope %v needs a target", key.Scope)
	}
	return key, nil
}

func settingReply(command string, key access.Key, word string) string {
	what := "The bot"
	if command != "" {
		what = "`" + command + "`"
	}
	where := string(key.Scope)
	if key.Subject != "" {
		where += " " + key.Subject
	}
	return fmt.Sprintf("%v is now %v at %v.", what, word, where)
}
