package database

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wheelercj/parhelion/access"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// DB is everything the bot persists: the settings/prefix store consumed by
// the access engine, plus reminders, tags, notes and daily-quote
// subscriptions.
type DB interface {
	access.Store
	Close() error

	CreateReminder(r *Reminder) error
	GetReminder(id int64) (*Reminder, error)
	GetReminders() ([]*Reminder, error)
	GetUserReminders(userID string) ([]*Reminder, error)
	DeleteReminder(id int64) error

	CreateTag(t *Tag) error
	GetTag(guildID, name string) (*Tag, error)
	GetGuildTags(guildID string) ([]*Tag, error)
	IncrementTagUses(guildID, name string) error
	DeleteTag(guildID, name string) error

	CreateNote(n *Note) error
	GetNote(userID, name string) (*Note, error)
	GetUserNotes(userID string) ([]*Note, error)
	DeleteNote(userID, name string) error

	UpsertQuoteSub(q *QuoteSub) error
	GetQuoteSubs() ([]*QuoteSub, error)
	DeleteQuoteSub(userID string) error
}

type Config struct {
	Log     *zap.Logger
	ConnStr string
}

// Reminder is one scheduled reminder. CreateReminder assigns ID.
type Reminder struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	GuildID   string    `json:"guild_id" db:"guild_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	DueAt     time.Time `json:"due_at" db:"due_at"`
}

// Tag is a named text snippet belonging to a guild.
type Tag struct {
	GuildID   string    `json:"guild_id" db:"guild_id"`
	Name      string    `json:"name" db:"name"`
	Content   string    `json:"content" db:"content"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Uses      int       `json:"uses" db:"uses"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Note is a private text snippet belonging to a user.
type Note struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// QuoteSub subscribes a channel to the daily quote. SendAt is a UTC wall
// clock time formatted "15:04". One subscription per user.
type QuoteSub struct {
	UserID    string `json:"user_id" db:"user_id"`
	ChannelID string `json:"channel_id" db:"channel_id"`
	SendAt    string `json:"send_at" db:"send_at"`
}
