package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvFile is read from the working directory when present.
const EnvFile = ".env"

// OpMode is a custom type to represent the application's operating mode - read from the configured file or stdin
type OpMode int

const (
	ModeServer OpMode = iota
	ModePipe
)

// StoreBackend selects where the dataset is persisted. It is defined here to be the single source of truth for configuration.
type StoreBackend int

const (
	// BackendJSON keeps the dataset in a single pretty-printed JSON file.
	BackendJSON StoreBackend = iota
	// BackendSQLite keeps one row per top-level resource in a SQLite database.
	BackendSQLite
	// BackendMemory loads the data file once and never writes it back.
	BackendMemory
)

func (b StoreBackend) String() string {
	switch b {
	case BackendJSON:
		return "json"
	case BackendSQLite:
		return "sqlite"
	case BackendMemory:
		return "memory"
	default:
		return fmt.Sprintf("StoreBackend(%d)", int(b))
	}
}

type Config struct {
	ServerAddr string `mapstructure:"server_addr"`
	DataFile   string `mapstructure:"data_file"`
	OpMode     OpMode `mapstructure:"-"`
	// persistence settings
	StoreBackend StoreBackend `mapstructure:"store_backend"`
	SQLiteFile   string       `mapstructure:"sqlite_file"`
	WatchData    bool         `mapstructure:"watch_data"`
	// http settings
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	// articles deployment
	ArticlesAddr string `mapstructure:"articles_addr"`
	ArticlesFile string `mapstructure:"articles_file"`
	// delay settings
	EnableDelay bool          `mapstructure:"enable_delay"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	RandDelay   time.Duration `mapstructure:"rand_delay"`
}

type setting struct {
	value string
	usage string
}

// change here only as it populates defaults, flags and env lookups
var cfgDefaults = map[string]setting{
	"server_addr": {":3000", "address the REST server listens on"},
	"data_file":   {"db.json", "JSON document holding every resource"},
	// "op_mode" should not be here as the mode is set at run time
	// persistence settings
	"store_backend": {"json", "persistence backend: json, sqlite or memory"},
	"sqlite_file":   {"db.sqlite", "database file for the sqlite backend"},
	"watch_data":    {"true", "reload the data file when it changes on disk"},
	// http settings
	"allowed_origins": {"*", "comma separated CORS origins, * for any"},
	"read_timeout":    {"5s", "HTTP server read timeout"},
	"write_timeout":   {"10s", "HTTP server write timeout"},
	// articles deployment
	"articles_addr": {":3040", "address the articles server listens on"},
	"articles_file": {"data.json", "JSON document served by the articles server"},
	// delay settings
	"enable_delay": {"false", "hold every request to simulate latency"},
	"base_delay":   {"0s", "fixed latency added when delay is enabled"},
	"rand_delay":   {"0s", "maximum random latency added on top of base_delay"},
}

// Default return a configuration object with defaults so can bypass .env file or ENV vars
func Default() *Config {
	// safe to ignore the error as the defaults are defined by us just above
	cfg, _ := decode(newViper())
	return cfg
}

// RegisterFlags adds one flag per setting, named with dashes (data-file for DATA_FILE).
func RegisterFlags(flags *pflag.FlagSet) {
	for key, s := range cfgDefaults {
		flags.String(flagName(key), s.value, s.usage)
	}
}

// Load resolves settings from, in order of precedence: changed flags,
// environment variables, the .env file, then defaults. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := newViper()

	// Try to load a standard ".env" file. It's not an error if it doesn't exist.
	v.SetConfigFile(EnvFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not read env file %s: %w", EnvFile, err)
	}

	if flags != nil {
		for key := range cfgDefaults {
			if f := flags.Lookup(flagName(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config error: binding flag %s: %w", f.Name, err)
				}
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	for key, s := range cfgDefaults {
		v.SetDefault(key, s.value)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		storeBackendHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))

	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddr == "" {
		return errors.New("config error: SERVER_ADDR cannot be empty")
	}
	if c.StoreBackend != BackendMemory && c.DataFile == "" {
		return errors.New("config error: DATA_FILE cannot be empty")
	}
	if c.StoreBackend == BackendSQLite && c.SQLiteFile == "" {
		return errors.New("config error: SQLITE_FILE cannot be empty for the sqlite backend")
	}
	if c.BaseDelay < 0 || c.RandDelay < 0 {
		return errors.New("config error: BASE_DELAY and RAND_DELAY cannot be negative")
	}
	return nil
}

func storeBackendHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(StoreBackend(0)) {
		return data, nil
	}
	return ParseStoreBackend(data.(string))
}

func ParseStoreBackend(s string) (StoreBackend, error) {
	var backend StoreBackend
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		backend = BackendJSON
	case "sqlite":
		backend = BackendSQLite
	case "memory":
		backend = BackendMemory
	default:
		return 0, fmt.Errorf("invalid STORE_BACKEND: '%s'. valid options are 'json', 'sqlite', 'memory'", s)
	}

	return backend, nil
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
