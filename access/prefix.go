package access

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// MaxCustomPrefixes is the most custom prefixes one guild may add.
	MaxCustomPrefixes = 10
	// MaxPrefixLength is the longest allowed custom prefix.
	MaxPrefixLength = 15
)

// DefaultPrefixes are the process-wide default command prefixes. The mention
// prefix is accepted in addition to these and is not part of prefix
// configuration.
var DefaultPrefixes = []string{";", "!"}

// PrefixResolver computes the active command prefixes for a guild: the
// defaults minus whatever the guild suppressed, plus the guild's own custom
// prefixes. Like SettingsCache it mirrors the store in memory and writes
// through on every mutation.
type PrefixResolver struct {
	mu       sync.RWMutex
	defaults []string
	guilds   map[string]*GuildPrefixes
	store    Store
	log      *zap.Logger

	stop chan struct{}
	once sync.Once
}

// NewPrefixResolver creates a resolver using the given defaults, or
// DefaultPrefixes when defaults is empty.
func NewPrefixResolver(store Store, defaults []string, log *zap.Logger) *PrefixResolver {
	if len(defaults) == 0 {
		defaults = DefaultPrefixes
	}
	return &PrefixResolver{
		defaults: defaults,
		guilds:   make(map[string]*GuildPrefixes),
		store:    store,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Open loads all guild prefix rows. Like SettingsCache.Open, a failed load
// leaves the defaults in effect and retries in the background.
func (p *PrefixResolver) Open() {
	if err := p.load(); err != nil {
		p.log.Warn("initial prefix load failed, retrying in background", zap.Error(err))
		go p.retryLoad()
	}
}

func (p *PrefixResolver) Close() {
	p.once.Do(func() { close(p.stop) })
}

func (p *PrefixResolver) load() error {
	rows, err := p.store.AllPrefixes()
	if err != nil {
		return err
	}

	guilds := make(map[string]*GuildPrefixes, len(rows))
	for i := range rows {
		gp := rows[i]
		guilds[gp.GuildID] = &gp
	}

	p.mu.Lock()
	p.guilds = guilds
	p.mu.Unlock()

	p.log.Info("loaded guild prefixes", zap.Int("guilds", len(guilds)))
	return nil
}

func (p *PrefixResolver) retryLoad() {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-t.C:
			if err := p.load(); err != nil {
				p.log.Warn("prefix load retry failed", zap.Error(err))
				continue
			}
			return
		}
	}
}

// Resolve returns the prefixes active for a guild, longest first so that
// matching always picks the most specific one. An empty guild id means a DM,
// where the bare (empty) prefix is appended last; guild contexts never get
// it. The mention prefix is implicit and never part of the result.
func (p *PrefixResolver) Resolve(guildID string) []string {
	p.mu.RLock()
	gp := p.guilds[guildID]

	out := make([]string, 0, len(p.defaults)+2)
	for _, d := range p.defaults {
		if gp != nil && contains(gp.Removed, d) {
			continue
		}
		out = append(out, d)
	}
	if gp != nil {
		out = append(out, gp.Custom...)
	}
	p.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})

	if guildID == "" {
		out = append(out, "")
	}
	return out
}

// Add registers a custom prefix for a guild. The constraints: at most
// MaxCustomPrefixes per guild, at most MaxPrefixLength characters, no leading
// space, not empty and not the bare slash reserved for the platform's native
// invocation form. A capacity or validation failure mutates nothing.
func (p *PrefixResolver) Add(guildID, prefix string) error {
	if prefix == "" {
		return errors.New("a prefix cannot be empty")
	}
	if prefix == "/" {
		return errors.New("\"/\" is reserved for slash commands")
	}
	if strings.HasPrefix(prefix, " ") {
		return errors.New("a prefix cannot start with a space")
	}
	if utf8.RuneCountInString(prefix) > MaxPrefixLength {
		return errors.Errorf("a prefix cannot be longer than %d characters", MaxPrefixLength)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	gp := p.guilds[guildID]
	if gp == nil {
		gp = &GuildPrefixes{GuildID: guildID}
	}
	if len(gp.Custom) >= MaxCustomPrefixes {
		return ErrTooManyPrefixes
	}
	if contains(gp.Custom, prefix) {
		return errors.Errorf("%q is already a prefix here", prefix)
	}
	if contains(p.defaults, prefix) && !contains(gp.Removed, prefix) {
		return errors.Errorf("%q is already a prefix here", prefix)
	}

	next := gp.clone()
	next.Custom = append(next.Custom, prefix)
	if err := p.store.UpsertPrefixes(*next); err != nil {
		return &StorageError{Err: err}
	}
	p.guilds[guildID] = next
	return nil
}

// Remove drops a custom prefix, or suppresses a default prefix for the
// guild. Removing a prefix that is not active returns ErrPrefixNotFound.
func (p *PrefixResolver) Remove(guildID, prefix string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	gp := p.guilds[guildID]
	if gp == nil {
		gp = &GuildPrefixes{GuildID: guildID}
	}

	next := gp.clone()
	switch {
	case contains(gp.Custom, prefix):
		next.Custom = remove(next.Custom, prefix)
	case contains(p.defaults, prefix) && !contains(gp.Removed, prefix):
		next.Removed = append(next.Removed, prefix)
	default:
		return ErrPrefixNotFound
	}

	if err := p.store.UpsertPrefixes(*next); err != nil {
		return &StorageError{Err: err}
	}
	p.guilds[guildID] = next
	return nil
}

// Reset restores a guild to the process-wide defaults.
func (p *PrefixResolver) Reset(guildID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.guilds[guildID]; !ok {
		return ErrSettingNotFound
	}
	if err := p.store.DeletePrefixes(guildID); err != nil {
		return &StorageError{Err: err}
	}
	delete(p.guilds, guildID)
	return nil
}

func (gp *GuildPrefixes) clone() *GuildPrefixes {
	next := &GuildPrefixes{GuildID: gp.GuildID}
	next.Custom = append(next.Custom, gp.Custom...)
	next.Removed = append(next.Removed, gp.Removed...)
	return next
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
