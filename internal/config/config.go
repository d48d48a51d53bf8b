package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when TOKENSCOPE_CONFIG is unset.
const DefaultPath = "config/tokenscope.yaml"

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration shared by every tokenscope binary.
type Config struct {
	Feed      Feed      `yaml:"feed"`
	Server    Server    `yaml:"server"`
	Dashboard Dashboard `yaml:"dashboard"`
	Storage   Storage   `yaml:"storage"`
	Logging   Logging   `yaml:"logging"`
}

// Feed configures the mock price generator.
type Feed struct {
	Interval     time.Duration `yaml:"interval"`
	LoadingDelay time.Duration `yaml:"loading_delay"`
}

// Server holds network listener configuration.
type Server struct {
	Host     string `yaml:"host"`
	HTTPPort int    `yaml:"http_port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// Dashboard configures the terminal dashboard.
type Dashboard struct {
	// RemoteAddr is the feed server's gRPC address. Empty runs the
	// generator in-process.
	RemoteAddr    string        `yaml:"remote_addr"`
	FlashDuration time.Duration `yaml:"flash_duration"`
	SkeletonRows  int           `yaml:"skeleton_rows"`
}

// Storage holds paths for the optional tick recorders. Empty disables one.
type Storage struct {
	SQLitePath    string        `yaml:"sqlite_path"`
	ParquetDir    string        `yaml:"parquet_dir"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPAddr returns the HTTP listen address.
func (s Server) HTTPAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.HTTPPort))
}

// GRPCAddr returns the gRPC listen address.
func (s Server) GRPCAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.GRPCPort))
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Feed: Feed{
			Interval:     3 * time.Second,
			LoadingDelay: 1500 * time.Millisecond,
		},
		Server: Server{
			Host:     "0.0.0.0",
			HTTPPort: 8080,
			GRPCPort: 50051,
		},
		Dashboard: Dashboard{
			FlashDuration: 500 * time.Millisecond,
			SkeletonRows:  5,
		},
		Storage: Storage{
			FlushInterval: time.Minute,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Path returns the configuration file path from TOKENSCOPE_CONFIG, or
// DefaultPath.
func Path() string {
	if v := os.Getenv("TOKENSCOPE_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads the YAML configuration file at the given path over the defaults,
// applies environment variable overrides and validates the result. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no binary can run with.
func (c *Config) Validate() error {
	if c.Feed.Interval <= 0 {
		return fmt.Errorf("feed.interval must be positive, got %s", c.Feed.Interval)
	}
	if c.Feed.LoadingDelay < 0 {
		return fmt.Errorf("feed.loading_delay must not be negative, got %s", c.Feed.LoadingDelay)
	}
	if c.Dashboard.FlashDuration <= 0 {
		return fmt.Errorf("dashboard.flash_duration must be positive, got %s", c.Dashboard.FlashDuration)
	}
	if c.Dashboard.SkeletonRows < 1 {
		return fmt.Errorf("dashboard.skeleton_rows must be at least 1, got %d", c.Dashboard.SkeletonRows)
	}
	if c.Storage.FlushInterval <= 0 {
		return fmt.Errorf("storage.flush_interval must be positive, got %s", c.Storage.FlushInterval)
	}
	for name, port := range map[string]int{
		"server.http_port": c.Server.HTTPPort,
		"server.grpc_port": c.Server.GRPCPort,
	} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%s out of range: %d", name, port)
		}
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TOKENSCOPE_FEED_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKENSCOPE_FEED_INTERVAL: %w", err)
		}
		cfg.Feed.Interval = d
	}

	if v := os.Getenv("TOKENSCOPE_REMOTE_ADDR"); v != "" {
		cfg.Dashboard.RemoteAddr = v
	}

	if v := os.Getenv("TOKENSCOPE_HTTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TOKENSCOPE_HTTP_PORT: %w", err)
		}
		cfg.Server.HTTPPort = p
	}

	if v := os.Getenv("TOKENSCOPE_GRPC_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TOKENSCOPE_GRPC_PORT: %w", err)
		}
		cfg.Server.GRPCPort = p
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("PARQUET_DIR"); v != "" {
		cfg.Storage.ParquetDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}
