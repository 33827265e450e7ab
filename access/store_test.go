package access

import (
	"errors"
	"sync"
)

// memStore is an in-memory Store used by the tests, with optional failure
// injection for the write-through rollback paths.
type memStore struct {
	mu       sync.Mutex
	settings map[Key]bool
	prefixes map[string]GuildPrefixes
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		settings: make(map[Key]bool),
		prefixes: make(map[string]GuildPrefixes),
	}
}

var errStoreDown = errors.New("store down")

func (m *memStore) AllSettings() ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]Record, 0, len(m.settings))
	for k, v := range m.settings {
		out = append(out, Record{Key: k, Allow: v})
	}
	return out, nil
}

func (m *memStore) UpsertSetting(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.settings[r.Key] = r.Allow
	return nil
}

func (m *memStore) DeleteSetting(k Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.settings, k)
	return nil
}

func (m *memStore) DeleteCommandSettings(command string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for k := range m.settings {
		if k.Command == command {
			delete(m.settings, k)
		}
	}
	return nil
}

func (m *memStore) DeleteGuildSettings(guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for k := range m.settings {
		if k.Scope.GuildManaged() && k.GuildID == guildID {
			delete(m.settings, k)
		}
	}
	return nil
}

func (m *memStore) AllPrefixes() ([]GuildPrefixes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]GuildPrefixes, 0, len(m.prefixes))
	for _, p := range m.prefixes {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) UpsertPrefixes(p GuildPrefixes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.prefixes[p.GuildID] = p
	return nil
}

func (m *memStore) DeletePrefixes(guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.prefixes, guildID)
	return nil
}

func (m *memStore) setFailure(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
}

func (m *memStore) settingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.settings)
}
