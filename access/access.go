package access

// Context describes one command invocation, as seen by the dispatch layer
// right before the command body would run.
type Context struct {
	UserID    string
	IsOwner   bool
	GuildID   string // empty in DMs
	ChannelID string
	// RoleIDs holds the invoker's role ids ordered from least to most
	// authoritative.
	RoleIDs []string
	// Command is the root command name. Subcommands and aliases must be
	// resolved to the root name before the check runs.
	Command string
}

// Resolver decides ALLOW or DENY for a single invocation against the current
// cache snapshot. Evaluation is pure and synchronous; the default with no
// applicable setting is ALLOW.
type Resolver struct {
	cache *SettingsCache
}

func NewResolver(cache *SettingsCache) *Resolver {
	return &Resolver{cache: cache}
}

// Check returns nil if the invocation is allowed and a *DeniedError if it is
// not. The precedence order, most specific first:
//
//  1. owner-set overrides for the invoking user, then for the current guild
//     (command-scoped before bot-scoped); the first one set wins, and an
//     ALLOW here is remembered as ownerAllow,
//  2. the unconditional global toggles (command-scoped before bot-scoped);
//     an ALLOW is absolute, a DENY is absolute only when no ownerAllow was
//     seen above,
//  3. inside a guild: member, then roles from most to least authoritative,
//     then channel, then guild-wide (command-scoped before bot-scoped at
//     every step); the first one set wins.
func (r *Resolver) Check(ctx Context) error {
	if ctx.IsOwner {
		return nil
	}

	c := r.cache
	c.mu.RLock()
	defer c.mu.RUnlock()

	ownerKeys := []Key{
		{Command: ctx.Command, Scope: ScopeGlobalUser, Subject: ctx.UserID},
		{Scope: ScopeGlobalUser, Subject: ctx.UserID},
	}
	if ctx.GuildID != "" {
		ownerKeys = append(ownerKeys,
			Key{Command: ctx.Command, Scope: ScopeGlobalServer, Subject: ctx.GuildID},
			Key{Scope: ScopeGlobalServer, Subject: ctx.GuildID},
		)
	}

	ownerAllow := false
	for _, k := range ownerKeys {
		if v, ok := c.lookup(k); ok {
			if !v {
				return denied(k)
			}
			ownerAllow = true
			break
		}
	}

	globalKeys := []Key{
		{Command: ctx.Command, Scope: ScopeGlobal},
		{Scope: ScopeGlobal},
	}
	for _, k := range globalKeys {
		v, ok := c.lookup(k)
		if !ok {
			continue
		}
		if v {
			// An unconditional global ALLOW cannot be overridden by
			// guild-level settings.
			return nil
		}
		if !ownerAllow {
			return denied(k)
		}
		// The global DENY is countermanded by a more specific owner-level
		// ALLOW, but the guild may still deny on its own below.
		break
	}

	if ctx.GuildID == "" {
		return nil
	}

	guildKeys := make([]Key, 0, 2*len(ctx.RoleIDs)+6)
	addPair := func(scope Scope, subject string) {
		guildKeys = append(guildKeys,
			Key{Command: ctx.Command, Scope: scope, GuildID: ctx.GuildID, Subject: subject},
			Key{Scope: scope, GuildID: ctx.GuildID, Subject: subject},
		)
	}
	addPair(ScopeServerMember, ctx.UserID)
	for i := len(ctx.RoleIDs) - 1; i >= 0; i-- {
		addPair(ScopeServerRole, ctx.RoleIDs[i])
	}
	addPair(ScopeServerChannel, ctx.ChannelID)
	addPair(ScopeServer, "")

	for _, k := range guildKeys {
		if v, ok := c.lookup(k); ok {
			if v {
				return nil
			}
			return denied(k)
		}
	}
	return nil
}

func denied(k Key) *DeniedError {
	return &DeniedError{Command: k.Command, Scope: k.Scope, Subject: k.Subject}
}
