package parhelion

// Command describes one text command. Name is the root name used as the
// settings key; aliases resolve to it before the access gate runs, so
// settings can never target an alias.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	AllowDMs    bool
	// OwnerOnly commands never reach the access gate for anyone else.
	OwnerOnly bool
	// AdminOnly commands additionally require the guild administrator
	// permission.
	AdminOnly bool
	Run       func(ctx *Ctx) error
}

func (b *Bot) registerCommand(cmd *Command) {
	b.commandList = append(b.commandList, cmd)
	b.commands[cmd.Name] = cmd
	for _, a := range cmd.Aliases {
		b.commands[a] = cmd
	}
}

func (b *Bot) registerCommands() {
	for _, cmd := range [][]*Command{
		b.infoCommands(),
		b.settingsCommands(),
		b.prefixCommands(),
		b.reminderCommands(),
		b.tagCommands(),
		b.noteCommands(),
		b.quoteCommands(),
	} {
		for _, c := range cmd {
			b.registerCommand(c)
		}
	}
}
