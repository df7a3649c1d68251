package config

// Defaults applied before the config file, env vars, and flags.
const (
	DefaultStoreFile = ".peter/revisions.db"
	DefaultCacheDir  = ".peter/cache"
	DefaultCacheTTL  = "15m"
	DefaultAddr      = "127.0.0.1:8080"
	DefaultOutput    = "auto"
)

// Config is the resolved toolchain configuration.
type Config struct {
	// ProjectRoot is the directory the config file was found in, or the
	// working directory when none exists. Relative paths resolve
	// against it.
	ProjectRoot string `koanf:"-"`

	// StorePath is the SQLite revision store location.
	StorePath string `koanf:"store_path"`

	// CacheDir holds cached query results. Empty disables caching.
	CacheDir string `koanf:"cache_dir"`

	// CacheTTL is how long cached query results stay fresh, as a
	// time.Duration string.
	CacheTTL string `koanf:"cache_ttl"`

	// Database is the DuckDB path used for local query preview. Empty
	// means in-memory.
	Database string `koanf:"database"`

	// Addr is the preview server listen address.
	Addr string `koanf:"addr"`

	// NoAuth disables the preview server's session check.
	NoAuth bool `koanf:"no_auth"`

	// SessionSecret signs preview server session cookies. A random
	// secret is generated when empty.
	SessionSecret string `koanf:"session_secret"`

	// OutputFormat selects the renderer mode (auto|text|markdown|json).
	OutputFormat string `koanf:"output"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}
