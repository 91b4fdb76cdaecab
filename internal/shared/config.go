package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Upstream  UpstreamConfig  `toml:"upstream"`
	Pools     PoolsConfig     `toml:"pools"`
	Resolvers ResolversConfig `toml:"resolvers"`
	Probe     ProbeConfig     `toml:"probe"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// UpstreamConfig contains timeout budgets for outbound aggregation.
type UpstreamConfig struct {
	AttemptTimeoutSecs int    `toml:"attempt_timeout_secs"`
	GlobalDeadlineSecs int    `toml:"global_deadline_secs"`
	PrimaryTimeoutSecs int    `toml:"primary_timeout_secs"`
	Lang               string `toml:"lang"`
}

// AttemptTimeout returns the per-attempt connect/read timeout.
func (u UpstreamConfig) AttemptTimeout() time.Duration {
	return secsOr(u.AttemptTimeoutSecs, 10)
}

// GlobalDeadline returns the whole-race time budget.
func (u UpstreamConfig) GlobalDeadline() time.Duration {
	return secsOr(u.GlobalDeadlineSecs, 15)
}

// PrimaryTimeout returns the timeout for the dedicated primary service.
func (u UpstreamConfig) PrimaryTimeout() time.Duration {
	return secsOr(u.PrimaryTimeoutSecs, 10)
}

// PoolsConfig lists mirror base URLs per capability. Empty pools are valid;
// operations on them fail fast instead of dialing anything.
type PoolsConfig struct {
	Video    []string `toml:"video"`
	Search   []string `toml:"search"`
	Comments []string `toml:"comments"`
	Channel  []string `toml:"channel"`
	Playlist []string `toml:"playlist"`
}

// ResolversConfig lists the dedicated (non-mirror) services.
type ResolversConfig struct {
	VideoPrimary string   `toml:"video_primary"`
	Stream       []string `toml:"stream"`
}

// ProbeConfig contains endpoint health-probe settings.
type ProbeConfig struct {
	Workers     int     `toml:"workers"`
	RateLimit   float64 `toml:"rate_limit"`
	TimeoutSecs int     `toml:"timeout_secs"`
}

// Timeout returns the per-probe request timeout.
func (p ProbeConfig) Timeout() time.Duration {
	return secsOr(p.TimeoutSecs, 10)
}

func secsOr(secs, fallback int) time.Duration {
	if secs <= 0 {
		secs = fallback
	}
	return time.Duration(secs) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
