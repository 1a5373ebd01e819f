// Package config loads engine configuration from defaults, an optional YAML
// file and WAYMARK_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration of the waymark binary.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// WorkflowFile overrides the built-in node table when set.
	WorkflowFile string `mapstructure:"workflow_file"`

	Store  StoreConfig  `mapstructure:"store"`
	Source SourceConfig `mapstructure:"source"`
	Server ServerConfig `mapstructure:"server"`
	Lock   LockConfig   `mapstructure:"lock"`
}

// StoreConfig selects and configures workflow state persistence.
type StoreConfig struct {
	// Backend is one of "memory", "file", "sqlite", "redis".
	Backend string `mapstructure:"backend"`

	// Path is the base directory (file backend) or database file (sqlite).
	Path string `mapstructure:"path"`

	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the redis store and distributed lock.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SourceConfig selects where artifacts are read from.
type SourceConfig struct {
	// Backend is one of "loam" (local directory) or "rest" (remote store).
	Backend string `mapstructure:"backend"`

	// Path is the artifact directory for the loam backend.
	Path string `mapstructure:"path"`

	// URL and Token configure the rest backend.
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// ServerConfig configures the HTTP and MCP surfaces.
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	MCPPort   int    `mapstructure:"mcp_port"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Metrics   bool   `mapstructure:"metrics"`
}

// LockConfig configures per-project locking.
type LockConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Default returns the configuration used when nothing else is specified:
// file store and loam source under the working directory, open local server.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Store: StoreConfig{
			Backend: "file",
			Path:    ".waymark/projects",
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
		Source: SourceConfig{
			Backend: "loam",
			Path:    ".",
		},
		Server: ServerConfig{
			Address: ":8080",
			MCPPort: 8081,
			Metrics: true,
		},
		Lock: LockConfig{
			TTL: 30 * time.Second,
		},
	}
}

// Load reads configuration. An empty path means "use ./waymark.yaml if it
// exists, else defaults". WAYMARK_* environment variables override both,
// e.g. WAYMARK_STORE_BACKEND=redis.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("store.backend", defaults.Store.Backend)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("store.redis.address", defaults.Store.Redis.Address)
	v.SetDefault("store.redis.db", defaults.Store.Redis.DB)
	v.SetDefault("source.backend", defaults.Source.Backend)
	v.SetDefault("source.path", defaults.Source.Path)
	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("server.mcp_port", defaults.Server.MCPPort)
	v.SetDefault("server.metrics", defaults.Server.Metrics)
	v.SetDefault("lock.ttl", defaults.Lock.TTL)

	v.SetEnvPrefix("WAYMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if _, err := os.Stat("waymark.yaml"); err == nil {
			v.SetConfigFile("waymark.yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read waymark.yaml: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case "memory", "file", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	switch cfg.Source.Backend {
	case "loam", "rest", "memory":
	default:
		return fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}

	if cfg.Source.Backend == "rest" && cfg.Source.URL == "" {
		return fmt.Errorf("source.url is required for the rest backend")
	}

	return nil
}
