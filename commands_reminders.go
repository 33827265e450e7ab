package parhelion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/karrick/tparse/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wheelercj/parhelion/database"
)

func (b *Bot) reminderCommands() []*Command {
	return []*Command{
		{
			Name:        "remind",
			Aliases:     []string{"remindme", "reminder"},
			Description: "Get pinged with a message after some time",
			Usage:       "remind [time] [message] | remind 2h30m laundry",
			AllowDMs:    true,
			Run:         b.remindCommand,
		},
		{
			Name:        "reminders",
			Description: "List your pending reminders",
			Usage:       "reminders",
			AllowDMs:    true,
			Run:         b.remindersCommand,
		},
		{
			Name:        "delreminder",
			Aliases:     []string{"deletereminder"},
			Description: "Delete one of your reminders",
			Usage:       "delreminder [id]",
			AllowDMs:    true,
			Run:         b.delReminderCommand,
		},
	}
}

func (b *Bot) remindCommand(ctx *Ctx) error {
	if len(ctx.Args) < 2 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}

	now := time.Now()
	dueAt, err := tparse.AddDuration(now, ctx.Args[0])
	if err != nil || !dueAt.After(now) {
		return ctx.Reply("I couldn't parse that as a time in the future. Try something like `45m` or `1d12h`.")
	}
	if dueAt.Sub(now) > 365*24*time.Hour {
		return ctx.Reply("That's too far away. The most I can do is one year.")
	}

	rem := &database.Reminder{
		UserID:    ctx.Msg.Author.ID,
		ChannelID: ctx.Msg.ChannelID,
		GuildID:   ctx.GuildID(),
		Content:   strings.Join(ctx.Args[1:], " "),
		CreatedAt: now,
		DueAt:     dueAt,
	}
	if err := b.db.CreateReminder(rem); err != nil {
		b.logger.Error("failed to create reminder", zap.Error(err))
		return ctx.Reply("Something went wrong saving that reminder, sorry.")
	}

	b.scheduleReminder(rem)
	return ctx.Reply(fmt.Sprintf("Alright, I'll remind you %v.", humanize.Time(dueAt)))
}

func (b *Bot) remindersCommand(ctx *Ctx) error {
	rems, err := b.db.GetUserReminders(ctx.Msg.Author.ID)
	if err != nil {
		b.logger.Error("failed to fetch reminders", zap.Error(err))
		return ctx.Reply("Something went wrong, sorry.")
	}
	if len(rems) == 0 {
		return ctx.Reply("You have no reminders.")
	}

	text := strings.Builder{}
	for _, r := range rems {
		text.WriteString(fmt.Sprintf("`%v` %v - %v\n", r.ID, humanize.Time(r.DueAt), r.Content))
	}
	return ctx.Reply(text.String())
}

func (b *Bot) delReminderCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 {
		return ctx.Reply("Usage: `" + ctx.Command.Usage + "`")
	}
	id, err := strconv.ParseInt(ctx.Args[0], 10, 64)
	if err != nil {
		return ctx.Reply("That's not a reminder id.")
	}

	rem, err := b.db.GetReminder(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ctx.Reply("There is no reminder with that id.")
		}
		return err
	}
	if rem.UserID != ctx.Msg.Author.ID {
		return ctx.Reply("That reminder isn't yours.")
	}

	if err := b.db.DeleteReminder(id); err != nil {
		return err
	}
	b.cancelReminder(id)
	return ctx.Reply("Reminder deleted.")
}

// rescheduleReminders arms a timer for every stored reminder. Reminders that
// came due while the bot was offline fire immediately.
func (b *Bot) rescheduleReminders() error {
	rems, err := b.db.GetReminders()
	if err != nil {
		return err
	}
	for _, r := range rems {
		b.scheduleReminder(r)
	}
	if len(rems) > 0 {
		b.logger.Info("rescheduled reminders", zap.Int("count", len(rems)))
	}
	return nil
}

func (b *Bot) scheduleReminder(r *database.Reminder) {
	delay := time.Until(r.DueAt)
	if delay < 0 {
		delay = 0
	}
	id := r.ID

	b.remindersMu.Lock()
	defer b.remindersMu.Unlock()
	if old, ok := b.reminders[id]; ok {
		old.Stop()
	}
	b.reminders[id] = time.AfterFunc(delay, func() { b.fireReminder(id) })
}

func (b *Bot) fireReminder(id int64) {
	b.remindersMu.Lock()
	delete(b.reminders, id)
	b.remindersMu.Unlock()

	// Re-read the row so a reminder deleted after scheduling stays silent.
	rem, err := b.db.GetReminder(id)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			b.logger.Error("failed to load due reminder", zap.Int64("id", id), zap.Error(err))
		}
		return
	}
	if err := b.db.DeleteReminder(id); err != nil {
		b.logger.Error("failed to delete fired reminder", zap.Int64("id", id), zap.Error(err))
	}

	msg := fmt.Sprintf("<@%v> Reminder from %v: %v", rem.UserID, humanize.Time(rem.CreatedAt), rem.Content)
	if _, err := b.client.ChannelMessageSend(rem.ChannelID, msg); err != nil {
		b.logger.Error("failed to send reminder", zap.Int64("id", id), zap.Error(err))
	}
}

func (b *Bot) cancelReminder(id int64) {
	b.remindersMu.Lock()
	defer b.remindersMu.Unlock()
	if t, ok := b.reminders[id]; ok {
		t.Stop()
		delete(b.reminders, id)
	}
}

func (b *Bot) cancelAllReminders() {
	b.remindersMu.Lock()
	defer b.remindersMu.Unlock()
	for id, t := range b.reminders {
		t.Stop()
		delete(b.reminders, id)
	}
}
