package access

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SettingsCache mirrors every persisted setting in memory. It is the only
// reader and writer of the settings side of the Store: reads during command
// dispatch never touch the database, and every mutation is written through to
// the store before it is considered done.
type SettingsCache struct {
	mu       sync.RWMutex
	settings map[Key]bool
	store    Store
	log      *zap.Logger

	stop chan struct{}
	once sync.Once
}

func NewSettingsCache(store Store, log *zap.Logger) *SettingsCache {
	return &SettingsCache{
		settings: make(map[Key]bool),
		store:    store,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Open loads all settings from the store. A failed load is not fatal: the
// cache starts empty, which resolves everything to the default of allow, and
// a background loop keeps retrying until a load succeeds.
func (c *SettingsCache) Open() {
	if err := c.load(); err != nil {
		c.log.Warn("initial settings load failed, retrying in background", zap.Error(err))
		go c.retryLoad()
	}
}

func (c *SettingsCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *SettingsCache) load() error {
	records, err := c.store.AllSettings()
	if err != nil {
		return err
	}

	settings := make(map[Key]bool, len(records))
	for _, r := range records {
		settings[r.Key] = r.Allow
	}

	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()

	c.log.Info("loaded settings", zap.Int("count", len(settings)))
	return nil
}

func (c *SettingsCache) retryLoad() {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			if err := c.load(); err != nil {
				c.log.Warn("settings load retry failed", zap.Error(err))
				continue
			}
			return
		}
	}
}

// Set stores a value for one scope, write-through. If the durable write
// fails, the in-memory change is rolled back and a *StorageError returned.
func (c *SettingsCache) Set(k Key, allow bool) error {
	if err := k.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, had := c.settings[k]
	c.settings[k] = allow
	if err := c.store.UpsertSetting(Record{Key: k, Allow: allow}); err != nil {
		if had {
			c.settings[k] = prev
		} else {
			delete(c.settings, k)
		}
		return &StorageError{Err: err}
	}
	return nil
}

// Delete resets one scope to unset. Because records are keyed flat, removing
// the key is the whole cleanup pass: an emptied command or guild simply has
// no keys left.
func (c *SettingsCache) Delete(k Key) error {
	if err := k.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, had := c.settings[k]
	if !had {
		return ErrSettingNotFound
	}
	delete(c.settings, k)
	if err := c.store.DeleteSetting(k); err != nil {
		c.settings[k] = prev
		return &StorageError{Err: err}
	}
	return nil
}

// DeleteCommand removes every setting for one command. An empty command name
// removes every bot-wide setting.
func (c *SettingsCache) DeleteCommand(command string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.removeMatching(func(k Key) bool { return k.Command == command })
	if len(removed) == 0 {
		return ErrSettingNotFound
	}
	if err := c.store.DeleteCommandSettings(command); err != nil {
		c.restore(removed)
		return &StorageError{Err: err}
	}
	return nil
}

// DeleteBot removes every bot-wide setting.
func (c *SettingsCache) DeleteBot() error {
	return c.DeleteCommand("")
}

// DeleteGuild removes every guild-managed setting for one guild, across all
// commands and the bot itself. Owner-set global_server settings for the guild
// are untouched.
func (c *SettingsCache) DeleteGuild(guildID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.removeMatching(func(k Key) bool {
		return k.Scope.GuildManaged() && k.GuildID == guildID
	})
	if len(removed) == 0 {
		return ErrSettingNotFound
	}
	if err := c.store.DeleteGuildSettings(guildID); err != nil {
		c.restore(removed)
		return &StorageError{Err: err}
	}
	return nil
}

func (c *SettingsCache) removeMatching(match func(Key) bool) map[Key]bool {
	removed := make(map[Key]bool)
	for k, v := range c.settings {
		if match(k) {
			removed[k] = v
			delete(c.settings, k)
		}
	}
	return removed
}

func (c *SettingsCache) restore(records map[Key]bool) {
	for k, v := range records {
		c.settings[k] = v
	}
}

// HasSettings reports whether any setting exists for the given command name.
// An empty name asks about bot-wide settings.
func (c *SettingsCache) HasSettings(command string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k := range c.settings {
		if k.Command == command {
			return true
		}
	}
	return false
}

// CommandSettings returns every stored setting for one command, sorted for
// stable display. An empty name returns the bot-wide settings.
func (c *SettingsCache) CommandSettings(command string) []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Record
	for k, v := range c.settings {
		if k.Command == command {
			out = append(out, Record{Key: k, Allow: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		if a.GuildID != b.GuildID {
			return a.GuildID < b.GuildID
		}
		return a.Subject < b.Subject
	})
	return out
}

func (c *SettingsCache) lookup(k Key) (bool, bool) {
	v, ok := c.settings[k]
	return v, ok
}
