package parhelion

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wheelercj/parhelion/database"
)

func (b *Bot) noteCommands() []*Command {
	return []*Command{
		{
			Name:        "note",
			Description: "Show one of your notes",
			Usage:       "note [name]",
			AllowDMs:    true,
			Run:         b.noteCommand,
		},
		{
			Name:        "notes",
			Description: "List your notes",
			Usage:       "notes",
			AllowDMs:    true,
			Run:         b.notesCommand,
		},
		{
			Name:        "addnote",
			Description: "Save a private note",
			Usage:       "addnote [name] [content]",
			AllowDMs:    true,
			Run:         b.addNoteCommand,
		},
		{
			Name:        "delnote",
			Aliases:     []string{"deletenote"},
			Description: "Delete one of your notes",
			Usage:       "delnote [name]",
			AllowDMs:    true,
			Run:         b.delNoteCommand,
		},
	}
}

func (b *Bot) noteCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	name := strings.ToLower(ctx.Args[0])

	note, err := b.db.GetNote(ctx.Msg.Author.ID, name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ctx.Reply("You have no note with that name.")
		}
		return err
	}
	return ctx.Reply(note.Content)
}

func (b *Bot) notesCommand(ctx *Ctx) error {
	notes, err := b.db.GetUserNotes(ctx.Msg.Author.ID)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return ctx.Reply("You have no notes yet.")
	}

	names := make([]string, 0, len(notes))
	for _, n := range notes {
		names = append(names, "`"+n.Name+"`")
	}
	return ctx.Reply("Your notes: " + strings.Join(names, ", "))
}

func (b *Bot) addNoteCommand(ctx *Ctx) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	name := strings.ToLower(ctx.Args[0])
	if len(name) > 64 {
		return ctx.Reply("Note names can be at most 64 characters.")
	}
	if _, err := b.db.GetNote(ctx.Msg.Author.ID, name); err == nil {
		return ctx.Reply("You already have a note with that name.")
	}

	note := &database.Note{
		UserID:    ctx.Msg.Author.ID,
		Name:      name,
		Content:   strings.Join(ctx.Args[1:], " "),
		CreatedAt: time.Now(),
	}
	if err := b.db.CreateNote(note); err != nil {
		b.logger.Error("failed to create note", zap.Error(err))
		return ctx.Reply("Something went wrong saving that note, sorry.")
	}
	return ctx.Reply(fmt.Sprintf("Note `%v` saved.", name))
}

func (b *Bot) delNoteCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	name := strings.ToLower(ctx.Args[0])

	if _, err := b.db.GetNote(ctx.Msg.Author.ID, name); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ctx.Reply("You have no note with that name.")
		}
		return err
	}
	if err := b.db.DeleteNote(ctx.Msg.Author.ID, name); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Note `%v` deleted.", name))
}
