package parhelion

import (
	"fmt"
	"regexp"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/wheelercj/parhelion/database"
	"github.com/wheelercj/parhelion/quotes"
)

var sendAtPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (b *Bot) quoteCommands() []*Command {
	return []*Command{
		{
			Name:        "quote",
			Aliases:     []string{"q"},
			Description: "Get the quote of the day",
			Usage:       "quote",
			AllowDMs:    true,
			Run:         b.quoteCommand,
		},
		{
			Name:        "randomquote",
			Aliases:     []string{"rq"},
			Description: "Get a random quote",
			Usage:       "randomquote",
			AllowDMs:    true,
			Run:         b.randomQuoteCommand,
		},
		{
			Name:        "quotesub",
			Description: "Get the quote of the day in this channel, every day at a UTC time",
			Usage:       "quotesub [HH:MM]",
			AllowDMs:    true,
			Run:         b.quoteSubCommand,
		},
		{
			Name:        "unquotesub",
			Description: "Stop your daily quote subscription",
			Usage:       "unquotesub",
			AllowDMs:    true,
			Run:         b.unquoteSubCommand,
		},
	}
}

func (b *Bot) quoteCommand(ctx *Ctx) error {
	q, err := b.quoteOfTheDay()
	if err != nil {
		b.logger.Error("failed to fetch quote", zap.Error(err))
		return ctx.Reply("I couldn't reach the quote service, try again later.")
	}
	return ctx.ReplyEmbed(quoteEmbed(q.Text, q.Author))
}

func (b *Bot) randomQuoteCommand(ctx *Ctx) error {
	q, err := b.quotes.Random()
	if err != nil {
		b.logger.Error("failed to fetch quote", zap.Error(err))
		return ctx.Reply("I couldn't reach the quote service, try again later.")
	}
	return ctx.ReplyEmbed(quoteEmbed(q.Text, q.Author))
}

func (b *Bot) quoteSubCommand(ctx *Ctx) error {
	if len(ctx.Args) < 1 || !sendAtPattern.MatchString(ctx.Args[0]) {
		return ctx.Reply("Give me a UTC time like `15:04` and I'll post the daily quote here at that time.")
	}

	sub := &database.QuoteSub{
		UserID:    ctx.Msg.Author.ID,
		ChannelID: ctx.Msg.ChannelID,
		SendAt:    ctx.Args[0],
	}
	if err := b.db.UpsertQuoteSub(sub); err != nil {
		b.logger.Error("failed to save quote subscription", zap.Error(err))
		return ctx.Reply("Something went wrong, sorry.")
	}
	return ctx.Reply(fmt.Sprintf("Done. I'll post the quote of the day here every day at %v UTC.", sub.SendAt))
}

func (b *Bot) unquoteSubCommand(ctx *Ctx) error {
	if err := b.db.DeleteQuoteSub(ctx.Msg.Author.ID); err != nil {
		b.logger.Error("failed to delete quote subscription", zap.Error(err))
		return ctx.Reply("Something went wrong, sorry.")
	}
	return ctx.Reply("If you had a quote subscription, it's gone now.")
}

// quoteOfTheDay serves today's quote from the kvstore, hitting the remote
// service only once per UTC day.
func (b *Bot) quoteOfTheDay() (*quotes.Quote, error) {
	if q, err := b.store.GetQuoteOfDay(); err == nil {
		return q, nil
	}
	q, err := b.quotes.QuoteOfTheDay()
	if err != nil {
		return nil, err
	}
	if err := b.store.SetQuoteOfDay(q); err != nil {
		b.logger.Debug("failed to cache quote of the day", zap.Error(err))
	}
	return q, nil
}

func quoteEmbed(text, author string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: fmt.Sprintf("\"%v\"", text),
		Color:       dColorLBlue,
		Footer:      &discordgo.MessageEmbedFooter{Text: author},
	}
}

// quoteSubLoop delivers subscribed daily quotes. It wakes every minute and
// posts to every subscription whose send time matches the current UTC minute.
func (b *Bot) quoteSubLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case now := <-ticker.C:
			b.deliverQuoteSubs(now.UTC().Format("15:04"))
		}
	}
}

func (b *Bot) deliverQuoteSubs(minute string) {
	subs, err := b.db.GetQuoteSubs()
	if err != nil {
		b.logger.Error("failed to load quote subscriptions", zap.Error(err))
		return
	}

	var due []*database.QuoteSub
	for _, s := range subs {
		if s.SendAt == minute {
			due = append(due, s)
		}
	}
	if len(due) == 0 {
		return
	}

	q, err := b.quoteOfTheDay()
	if err != nil {
		b.logger.Error("failed to fetch quote for subscriptions", zap.Error(err))
		return
	}
	for _, s := range due {
		if _, err := b.client.ChannelMessageSendEmbed(s.ChannelID, quoteEmbed(q.Text, q.Author)); err != nil {
			b.logger.Warn("failed to deliver daily quote",
				zap.String("channelID", s.ChannelID), zap.Error(err))
		}
	}
}
