package access

// Scope is one of the seven granularities a setting can attach to. The three
// global scopes are managed by the bot owner, the four server scopes by guild
// admins.
type Scope string

const (
	ScopeGlobal        Scope = "global"
	ScopeGlobalUser    Scope = "global_user"
	ScopeGlobalServer  Scope = "global_server"
	ScopeServer        Scope = "server"
	ScopeServerChannel Scope = "server_channel"
	ScopeServerRole    Scope = "server_role"
	ScopeServerMember  Scope = "server_member"
)

// GuildManaged reports whether the scope is controlled by guild admins rather
// than the bot owner.
func (s Scope) GuildManaged() bool {
	switch s {
	case ScopeServer, ScopeServerChannel, ScopeServerRole, ScopeServerMember:
		return true
	}
	return false
}

func (s Scope) valid() bool {
	switch s {
	case ScopeGlobal, ScopeGlobalUser, ScopeGlobalServer,
		ScopeServer, ScopeServerChannel, ScopeServerRole, ScopeServerMember:
		return true
	}
	return false
}

// Key identifies a single stored setting.
//
// Command is the root command name the setting applies to, or empty for a
// bot-wide setting. GuildID is set only for the guild-managed scopes, so that
// all of a guild's own settings share a common key segment. Subject is the id
// the scope targets: a user id for global_user, a guild id for global_server,
// a channel, role or member id for the corresponding server scopes, and empty
// for global and server.
type Key struct {
	Command string
	Scope   Scope
	GuildID string
	Subject string
}

func (k Key) validate() error {
	if !k.Scope.valid() {
		return errBadKey("unknown scope %q", string(k.Scope))
	}
	switch k.Scope {
	case ScopeGlobal, ScopeServer:
		if k.Subject != "" {
			return errBadKey("scope %v takes no subject", k.Scope)
		}
	default:
		if k.Subject == "" {
			return errBadKey("scope %v requires a subject", k.Scope)
		}
	}
	if k.Scope.GuildManaged() {
		if k.GuildID == "" {
			return errBadKey("scope %v requires a guild", k.Scope)
		}
	} else if k.GuildID != "" {
		return errBadKey("scope %v takes no guild", k.Scope)
	}
	return nil
}

// Record is a key together with its stored value. Unset values are never
// persisted; absence of a record means unset.
type Record struct {
	Key
	Allow bool
}

// GuildPrefixes holds a guild's prefix configuration: custom prefixes in the
// order they were added, and default prefixes the guild has suppressed.
type GuildPrefixes struct {
	GuildID string
	Custom  []string
	Removed []string
}

// Store is the durable side of the settings engine. Implementations live in
// the database package; absence of a row always means unset.
type Store interface {
	AllSettings() ([]Record, error)
	UpsertSetting(r Record) error
	DeleteSetting(k Key) error
	// DeleteCommandSettings removes every setting for one command, or every
	// bot-wide setting when command is empty.
	DeleteCommandSettings(command string) error
	// DeleteGuildSettings removes every guild-managed setting for one guild
	// across all commands and the bot itself.
	DeleteGuildSettings(guildID string) error

	AllPrefixes() ([]GuildPrefixes, error)
	UpsertPrefixes(p GuildPrefixes) error
	DeletePrefixes(guildID string) error
}
