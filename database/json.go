package database

import (
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/wheelercj/parhelion/access"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//
// JSON file implementation, for running without postgres.
//

type JsonDB struct {
	path  string
	state *state
}

type state struct {
	sync.Mutex
	Settings       []access.Record                  `json:"settings"`
	Prefixes       map[string]*access.GuildPrefixes `json:"prefixes"`
	Reminders      map[int64]*Reminder              `json:"reminders"`
	NextReminderID int64                            `json:"next_reminder_id"`
	Tags           map[string]*Tag                  `json:"tags"`
	Notes          map[string]*Note                 `json:"notes"`
	QuoteSubs      map[string]*QuoteSub             `json:"quote_subs"`
}

func newState() *state {
	return &state{
		Prefixes:       make(map[string]*access.GuildPrefixes),
		Reminders:      make(map[int64]*Reminder),
		NextReminderID: 1,
		Tags:           make(map[string]*Tag),
		Notes:          make(map[string]*Note),
		QuoteSubs:      make(map[string]*QuoteSub),
	}
}

func NewJsonDatabase(path string) (*JsonDB, error) {
	db := &JsonDB{
		path:  path,
		state: newState(),
	}
	err := db.load(path)
	return db, err
}

func (j *JsonDB) Close() error {
	j.state.Lock()
	defer j.state.Unlock()
	return j.save()
}

func (j *JsonDB) load(path string) error {
	if _, err := os.Stat(path); err != nil {
		// file does not exist, so use default
		return nil
	}

	d, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	s := newState()
	if err := json.Unmarshal(d, s); err != nil {
		return err
	}

	j.state = s
	return nil
}

// save writes the whole state back out. Callers hold the state lock.
func (j *JsonDB) save() error {
	d, err := json.Marshal(j.state)
	if err != nil {
		return err
	}
	return os.WriteFile(j.path, d, 0644)
}

func (j *JsonDB) AllSettings() ([]access.Record, error) {
	j.state.Lock()
	defer j.state.Unlock()
	out := make([]access.Record, len(j.state.Settings))
	copy(out, j.state.Settings)
	return out, nil
}

func (j *JsonDB) UpsertSetting(r access.Record) error {
	j.state.Lock()
	defer j.state.Unlock()
	for i := range j.state.Settings {
		if j.state.Settings[i].Key == r.Key {
			j.state.Settings[i] = r
			return j.save()
		}
	}
	j.state.Settings = append(j.state.Settings, r)
	return j.save()
}

func (j *JsonDB) DeleteSetting(k access.Key) error {
	return j.deleteSettings(func(r access.Record) bool { return r.Key == k })
}

func (j *JsonDB) DeleteCommandSettings(command string) error {
	return j.deleteSettings(func(r access.Record) bool { return r.Command == command })
}

func (j *JsonDB) DeleteGuildSettings(guildID string) error {
	return j.deleteSettings(func(r access.Record) bool {
		return r.Scope.GuildManaged() && r.GuildID == guildID
	})
}

func (j *JsonDB) deleteSettings(match func(access.Record) bool) error {
	j.state.Lock()
	defer j.state.Unlock()
	kept := j.state.Settings[:0]
	for _, r := range j.state.Settings {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	j.state.Settings = kept
	return j.save()
}

func (j *JsonDB) AllPrefixes() ([]access.GuildPrefixes, error) {
	j.state.Lock()
	defer j.state.Unlock()
	out := make([]access.GuildPrefixes, 0, len(j.state.Prefixes))
	for _, p := range j.state.Prefixes {
		out = append(out, *p)
	}
	return out, nil
}

func (j *JsonDB) UpsertPrefixes(gp access.GuildPrefixes) error {
	j.state.Lock()
	defer j.state.Unlock()
	j.state.Prefixes[gp.GuildID] = &gp
	return j.save()
}

func (j *JsonDB) DeletePrefixes(guildID string) error {
	j.state.Lock()
	defer j.state.Unlock()
	delete(j.state.Prefixes, guildID)
	return j.save()
}

func (j *JsonDB) CreateReminder(r *Reminder) error {
	j.state.Lock()
	defer j.state.Unlock()
	r.ID = j.state.NextReminderID
	j.state.NextReminderID++
	j.state.Reminders[r.ID] = r
	return j.save()
}

func (j *JsonDB) GetReminder(id int64) (*Reminder, error) {
	j.state.Lock()
	defer j.state.Unlock()
	r, ok := j.state.Reminders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (j *JsonDB) GetReminders() ([]*Reminder, error) {
	j.state.Lock()
	defer j.state.Unlock()
	out := make([]*Reminder, 0, len(j.state.Reminders))
	for _, r := range j.state.Reminders {
		out = append(out, r)
	}
	return out, nil
}

func (j *JsonDB) GetUserReminders(userID string) ([]*Reminder, error) {
	j.state.Lock()
	defer j.state.Unlock()
	var out []*Reminder
	for _, r := range j.state.Reminders {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (j *JsonDB) DeleteReminder(id int64) error {
	j.state.Lock()
	defer j.state.Unlock()
	delete(j.state.Reminders, id)
	return j.save()
}

func tagKey(guildID, name string) string {
	return fmt.Sprintf("%v:%v", guildID, name)
}

func (j *JsonDB) CreateTag(t *Tag) error {
	j.state.Lock()
	defer j.state.Unlock()
	j.state.Tags[tagKey(t.GuildID, t.Name)] = t
	return j.save()
}

func (j *JsonDB) GetTag(guildID, name string) (*Tag, error) {
	j.state.Lock()
	defer j.state.Unlock()
	t, ok := j.state.Tags[tagKey(guildID, name)]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (j *JsonDB) GetGuildTags(guildID string) ([]*Tag, error) {
	j.state.Lock()
	defer j.state.Unlock()
	var out []*Tag
	for _, t := range j.state.Tags {
		if t.GuildID == guildID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (j *JsonDB) IncrementTagUses(guildID, name string) error {
	j.state.Lock()
	defer j.state.Unlock()
	t, ok := j.state.Tags[tagKey(guildID, name)]
	if !ok {
		return ErrNotFound
	}
	t.Uses++
	return j.save()
}

func (j *JsonDB) DeleteTag(guildID, name string) error {
	j.state.Lock()
	defer j.state.Unlock()
	delete(j.state.Tags, tagKey(guildID, name))
	return j.save()
}

func (j *JsonDB) CreateNote(n *Note) error {
	j.state.Lock()
	defer j.state.Unlock()
	j.state.Notes[tagKey(n.UserID, n.Name)] = n
	return j.save()
}

func (j *JsonDB) GetNote(userID, name string) (*Note, error) {
	j.state.Lock()
	defer j.state.Unlock()
	n, ok := j.state.Notes[tagKey(userID, name)]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

func (j *JsonDB) GetUserNotes(userID string) ([]*Note, error) {
	j.state.Lock()
	defer j.state.Unlock()
	var out []*Note
	for _, n := range j.state.Notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (j *JsonDB) DeleteNote(userID, name string) error {
	j.state.Lock()
	defer j.state.Unlock()
	delete(j.state.Notes, tagKey(userID, name))
	return j.save()
}

func (j *JsonDB) UpsertQuoteSub(q *QuoteSub) error {
	j.state.Lock()
	defer j.state.Unlock()
	j.state.QuoteSubs[q.UserID] = q
	return j.save()
}

func (j *JsonDB) GetQuoteSubs() ([]*QuoteSub, error) {
	j.state.Lock()
	defer j.state.Unlock()
	out := make([]*QuoteSub, 0, len(j.state.QuoteSubs))
	for _, q := range j.state.QuoteSubs {
		out = append(out, q)
	}
	return out, nil
}

func (j *JsonDB) DeleteQuoteSub(userID string) error {
	j.state.Lock()
	defer j.state.Unlock()
	delete(j.state.QuoteSubs, userID)
	return j.save()
}
