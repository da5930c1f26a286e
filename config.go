package pgwrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables LoadConfig reads,
// e.g. PGWRAP_CONN_STRING or PGWRAP_MAX_CONNS.
const envPrefix = "PGWRAP_"

// Config holds connection settings. Prefer providing a DSN via ConnString;
// when empty, one is synthesized from the discrete fields.
type Config struct {
	ConnString string `koanf:"conn_string"`
	Host       string `koanf:"host"`
	Port       string `koanf:"port"`
	User       string `koanf:"user"`
	Password   string `koanf:"password"`
	DBName     string `koanf:"db_name"`
	SSLMode    string `koanf:"ssl_mode"    validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	// Pool bounds and timeouts, forwarded to pgxpool.
	MaxConns          int           `koanf:"max_conns"           validate:"min=0"`
	MinConns          int           `koanf:"min_conns"           validate:"min=0"`
	HealthCheckPeriod time.Duration `koanf:"health_check_period"`
	ConnectTimeout    time.Duration `koanf:"connect_timeout"`
	PingTimeout       time.Duration `koanf:"ping_timeout"`

	// ConnectRetries is the number of additional connect attempts made with
	// exponential backoff before giving up. Zero disables retrying.
	ConnectRetries uint64 `koanf:"connect_retries"`
}

// DefaultConfig returns settings suitable for a local development database.
func DefaultConfig() *Config {
	return &Config{
		Host:              "localhost",
		Port:              "5432",
		User:              "postgres",
		DBName:            "postgres",
		SSLMode:           "disable",
		MaxConns:          20,
		MinConns:          0,
		HealthCheckPeriod: 30 * time.Second,
		ConnectTimeout:    5 * time.Second,
		PingTimeout:       3 * time.Second,
	}
}

// DSN returns the connection string the driver is handed. ConnString wins
// when set; otherwise a keyword/value DSN is built from the discrete fields.
func (c *Config) DSN() string {
	if c.ConnString != "" {
		return c.ConnString
	}
	parts := make([]string, 0, 6)
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	add("host", c.Host)
	add("port", c.Port)
	add("user", c.User)
	add("password", c.Password)
	add("dbname", c.DBName)
	add("sslmode", c.SSLMode)
	return strings.Join(parts, " ")
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("pgwrap: invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from defaults overlaid with PGWRAP_* environment
// variables. For example PGWRAP_CONN_STRING sets ConnString and
// PGWRAP_CONNECT_TIMEOUT accepts duration strings like "10s".
func LoadConfig() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("pgwrap: load defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("pgwrap: load environment: %w", err)
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("pgwrap: unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
