package parhelion

// Config is loaded from config.json at startup.
type Config struct {
	Token string `json:"token"`
	// OwnerID is the account with unconditional override authority.
	OwnerID string `json:"owner_id"`
	// ConnectionString selects the postgres database. When empty, a JSON
	// file at DataPath is used instead.
	ConnectionString string `json:"connection_string"`
	DataPath         string `json:"data_path"`
	// KVDir is where the badger cache lives.
	KVDir string `json:"kv_dir"`
	// DefaultPrefixes overrides the built-in default command prefixes.
	DefaultPrefixes []string `json:"default_prefixes"`
}
