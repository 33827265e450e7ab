package database

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wheelercj/parhelion/access"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS command_settings (
		command  TEXT NOT NULL,
		scope    TEXT NOT NULL,
		guild_id TEXT NOT NULL DEFAULT '',
		subject  TEXT NOT NULL DEFAULT '',
		allowed  BOOLEAN NOT NULL,
		PRIMARY KEY (command, scope, guild_id, subject)
	);`,
	`CREATE TABLE IF NOT EXISTS guild_prefixes (
		guild_id TEXT PRIMARY KEY,
		custom   TEXT[] NOT NULL DEFAULT '{}',
		removed  TEXT[] NOT NULL DEFAULT '{}'
	);`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id         BIGSERIAL PRIMARY KEY,
		user_id    TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		guild_id   TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		due_at     TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS tags (
		guild_id   TEXT NOT NULL,
		name       TEXT NOT NULL,
		content    TEXT NOT NULL,
		owner_id   TEXT NOT NULL,
		uses       INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (guild_id, name)
	);`,
	`CREATE TABLE IF NOT EXISTS notes (
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, name)
	);`,
	`CREATE TABLE IF NOT EXISTS quote_subs (
		user_id    TEXT PRIMARY KEY,
		channel_id TEXT NOT NULL,
		send_at    TEXT NOT NULL
	);`,
}

type PsqlDB struct {
	pool *sqlx.DB
	log  *zap.Logger
}

func NewPSQLDatabase(c *Config) (*PsqlDB, error) {
	pool, err := sqlx.Connect("postgres", c.ConnStr)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to db")
	}

	for _, stmt := range schema {
		if _, err := pool.Exec(stmt); err != nil {
			return nil, errors.Wrap(err, "unable to create schema")
		}
	}

	return &PsqlDB{pool: pool, log: c.Log}, nil
}

func (p *PsqlDB) Close() error {
	return p.pool.Close()
}

type settingRow struct {
	Command string `db:"command"`
	Scope   string `db:"scope"`
	GuildID string `db:"guild_id"`
	Subject string `db:"subject"`
	Allowed bool   `db:"allowed"`
}

func (p *PsqlDB) AllSettings() ([]access.Record, error) {
	var rows []settingRow
	if err := p.pool.Select(&rows, "SELECT command, scope, guild_id, subject, allowed FROM command_settings;"); err != nil {
		return nil, errors.Wrap(err, "select settings")
	}

	records := make([]access.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, access.Record{
			Key: access.Key{
				Command: r.Command,
				Scope:   access.Scope(r.Scope),
				GuildID: r.GuildID,
				Subject: r.Subject,
			},
			Allow: r.Allowed,
		})
	}
	return records, nil
}

func (p *PsqlDB) UpsertSetting(r access.Record) error {
	_, err := p.pool.Exec(`INSERT INTO command_settings (command, scope, guild_id, subject, allowed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (command, scope, guild_id, subject) DO UPDATE SET allowed = EXCLUDED.allowed;`,
		r.Command, string(r.Scope), r.GuildID, r.Subject, r.Allow)
	return errors.Wrap(err, "upsert setting")
}

func (p *PsqlDB) DeleteSetting(k access.Key) error {
	_, err := p.pool.Exec("DELETE FROM command_settings WHERE command=$1 AND scope=$2 AND guild_id=$3 AND subject=$4;",
		k.Command, string(k.Scope), k.GuildID, k.Subject)
	return errors.Wrap(err, "delete setting")
}

func (p *PsqlDB) DeleteCommandSettings(command string) error {
	_, err := p.pool.Exec("DELETE FROM command_settings WHERE command=$1;", command)
	return errors.Wrap(err, "delete command settings")
}

func (p *PsqlDB) DeleteGuildSettings(guildID string) error {
	_, err := p.pool.Exec(`DELETE FROM command_settings
		WHERE guild_id=$1 AND scope IN ('server', 'server_channel', 'server_role', 'server_member');`,
		guildID)
	return errors.Wrap(err, "delete guild settings")
}

type prefixRow struct {
	GuildID string         `db:"guild_id"`
	Custom  pq.StringArray `db:"custom"`
	Removed pq.StringArray `db:"removed"`
}

func (p *PsqlDB) AllPrefixes() ([]access.GuildPrefixes, error) {
	var rows []prefixRow
	if err := p.pool.Select(&rows, "SELECT guild_id, custom, removed FROM guild_prefixes;"); err != nil {
		return nil, errors.Wrap(err, "select prefixes")
	}

	out := make([]access.GuildPrefixes, 0, len(rows))
	for _, r := range rows {
		out = append(out, access.GuildPrefixes{
			GuildID: r.GuildID,
			Custom:  r.Custom,
			Removed: r.Removed,
		})
	}
	return out, nil
}

func (p *PsqlDB) UpsertPrefixes(gp access.GuildPrefixes) error {
	_, err := p.pool.Exec(`INSERT INTO guild_prefixes (guild_id, custom, removed)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id) DO UPDATE SET custom = EXCLUDED.custom, removed = EXCLUDED.removed;`,
		gp.GuildID, pq.StringArray(gp.Custom), pq.StringArray(gp.Removed))
	return errors.Wrap(err, "upsert prefixes")
}

func (p *PsqlDB) DeletePrefixes(guildID string) error {
	_, err := p.pool.Exec("DELETE FROM guild_prefixes WHERE guild_id=$1;", guildID)
	return errors.Wrap(err, "delete prefixes")
}

func (p *PsqlDB) CreateReminder(r *Reminder) error {
	err := p.pool.QueryRowx(`INSERT INTO reminders (user_id, channel_id, guild_id, content, created_at, due_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		r.UserID, r.ChannelID, r.GuildID, r.Content, r.CreatedAt, r.DueAt).Scan(&r.ID)
	return errors.Wrap(err, "create reminder")
}

func (p *PsqlDB) GetReminder(id int64) (*Reminder, error) {
	var r Reminder
	err := p.pool.Get(&r, "SELECT * FROM reminders WHERE id=$1;", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get reminder")
	}
	return &r, nil
}

func (p *PsqlDB) GetReminders() ([]*Reminder, error) {
	var rs []*Reminder
	err := p.pool.Select(&rs, "SELECT * FROM reminders ORDER BY due_at;")
	return rs, errors.Wrap(err, "get reminders")
}

func (p *PsqlDB) GetUserReminders(userID string) ([]*Reminder, error) {
	var rs []*Reminder
	err := p.pool.Select(&rs, "SELECT * FROM reminders WHERE user_id=$1 ORDER BY due_at;", userID)
	return rs, errors.Wrap(err, "get user reminders")
}

func (p *PsqlDB) DeleteReminder(id int64) error {
	_, err := p.pool.Exec("DELETE FROM reminders WHERE id=$1;", id)
	return errors.Wrap(err, "delete reminder")
}

func (p *PsqlDB) CreateTag(t *Tag) error {
	_, err := p.pool.Exec(`INSERT INTO tags (guild_id, name, content, owner_id, uses, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		t.GuildID, t.Name, t.Content, t.OwnerID, t.Uses, t.CreatedAt)
	return errors.Wrap(err, "create tag")
}

func (p *PsqlDB) GetTag(guildID, name string) (*Tag, error) {
	var t Tag
	err := p.pool.Get(&t, "SELECT * FROM tags WHERE guild_id=$1 AND name=$2;", guildID, name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get tag")
	}
	return &t, nil
}

func (p *PsqlDB) GetGuildTags(guildID string) ([]*Tag, error) {
	var ts []*Tag
	err := p.pool.Select(&ts, "SELECT * FROM tags WHERE guild_id=$1 ORDER BY name;", guildID)
	return ts, errors.Wrap(err, "get guild tags")
}

func (p *PsqlDB) IncrementTagUses(guildID, name string) error {
	_, err := p.pool.Exec("UPDATE tags SET uses = uses + 1 WHERE guild_id=$1 AND name=$2;", guildID, name)
	return errors.Wrap(err, "increment tag uses")
}

func (p *PsqlDB) DeleteTag(guildID, name string) error {
	_, err := p.pool.Exec("DELETE FROM tags WHERE guild_id=$1 AND name=$2;", guildID, name)
	return errors.Wrap(err, "delete tag")
}

func (p *PsqlDB) CreateNote(n *Note) error {
	_, err := p.pool.Exec(`INSERT INTO notes (user_id, name, content, created_at)
		VALUES ($1, $2, $3, $4);`,
		n.UserID, n.Name, n.Content, n.CreatedAt)
	return errors.Wrap(err, "create note")
}

func (p *PsqlDB) GetNote(userID, name string) (*Note, error) {
	var n Note
	err := p.pool.Get(&n, "SELECT * FROM notes WHERE user_id=$1 AND name=$2;", userID, name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get note")
	}
	return &n, nil
}

func (p *PsqlDB) GetUserNotes(userID string) ([]*Note, error) {
	var ns []*Note
	err := p.pool.Select(&ns, "SELECT * FROM notes WHERE user_id=$1 ORDER BY name;", userID)
	return ns, errors.Wrap(err, "get user notes")
}

func (p *PsqlDB) DeleteNote(userID, name string) error {
	_, err := p.pool.Exec("DELETE FROM notes WHERE user_id=$1 AND name=$2;", userID, name)
	return errors.Wrap(err, "delete note")
}

func (p *PsqlDB) UpsertQuoteSub(q *QuoteSub) error {
	_, err := p.pool.Exec(`INSERT INTO quote_subs (user_id, channel_id, send_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET channel_id = EXCLUDED.channel_id, send_at = EXCLUDED.send_at;`,
		q.UserID, q.ChannelID, q.SendAt)
	return errors.Wrap(err, "upsert quote sub")
}

func (p *PsqlDB) GetQuoteSubs() ([]*QuoteSub, error) {
	var qs []*QuoteSub
	err := p.pool.Select(&qs, "SELECT * FROM quote_subs;")
	return qs, errors.Wrap(err, "get quote subs")
}

func (p *PsqlDB) DeleteQuoteSub(userID string) error {
	_, err := p.pool.Exec("DELETE FROM quote_subs WHERE user_id=$1;", userID)
	return errors.Wrap(err, "delete quote sub")
}
