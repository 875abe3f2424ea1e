package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/singleton/internal/channel"
	"github.com/Iron-Ham/singleton/internal/logging"
)

// AppName names the configuration, cache and log directories.
const AppName = "singleton"

// EnvPrefix is the prefix of environment variable overrides, e.g.
// SINGLETON_FOLLOWER_MAX_ATTEMPTS for follower.max_attempts.
const EnvPrefix = "SINGLETON"

// Config represents the complete singleton configuration
type Config struct {
	Channel  ChannelConfig  `mapstructure:"channel"`
	Follower FollowerConfig `mapstructure:"follower"`
	Leader   LeaderConfig   `mapstructure:"leader"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	TUI      TUIConfig      `mapstructure:"tui"`
}

// ChannelConfig controls the shared message channel
type ChannelConfig struct {
	// Dir is the base directory holding channel logs and leadership locks.
	// Empty means <user cache dir>/singleton.
	Dir string `mapstructure:"dir"`
	// MinMessageAge is how long a published record stays in the log before
	// publishers may prune it (default: 30s)
	MinMessageAge time.Duration `mapstructure:"min_message_age"`
	// PollInterval is how often subscribers re-read the log when no
	// filesystem notification arrives (default: 250ms)
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// FollowerConfig controls how a follower forwards its arguments
type FollowerConfig struct {
	// MaxAttempts bounds channel-open attempts (default: 50)
	MaxAttempts int `mapstructure:"max_attempts"`
	// BackoffInitial is the first inter-attempt delay (default: 1ms)
	BackoffInitial time.Duration `mapstructure:"backoff_initial"`
	// BackoffMax caps the inter-attempt delay (default: 50ms)
	BackoffMax time.Duration `mapstructure:"backoff_max"`
	// Jitter randomizes each delay between zero and its computed value (default: true)
	Jitter bool `mapstructure:"jitter"`
	// PublishTimeout bounds the wait for publish confirmation (default: 5s)
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
	// RequireAck makes the follower wait for the leader's acknowledgment (default: false)
	RequireAck bool `mapstructure:"require_ack"`
	// AckTimeout bounds the wait for an acknowledgment (default: 2s)
	AckTimeout time.Duration `mapstructure:"ack_timeout"`
}

// LeaderConfig controls the leader's receive handler
type LeaderConfig struct {
	// Ack publishes the activator's result back to the follower (default: true)
	Ack bool `mapstructure:"ack"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where the log file is written. Empty means <user cache dir>/singleton/logs.
	// Use "-" to log to stderr.
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 5)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 2)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated backups (default: false)
	Compress bool `mapstructure:"compress"`
}

// TUIConfig controls the demo terminal UI
type TUIConfig struct {
	// MaxBatches limits how many forwarded batches stay on screen (default: 100)
	MaxBatches int `mapstructure:"max_batches"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Channel: ChannelConfig{
			Dir:           "",
			MinMessageAge: 30 * time.Second,
			PollInterval:  250 * time.Millisecond,
		},
		Follower: FollowerConfig{
			MaxAttempts:    50,
			BackoffInitial: time.Millisecond,
			BackoffMax:     50 * time.Millisecond,
			Jitter:         true,
			PublishTimeout: 5 * time.Second,
			RequireAck:     false,
			AckTimeout:     2 * time.Second,
		},
		Leader: LeaderConfig{
			Ack: true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  5,
			MaxBackups: 2,
			Compress:   false,
		},
		TUI: TUIConfig{
			MaxBatches: 100,
		},
	}
}

// ResolvedDir returns Dir, or the default channel directory when Dir is empty.
func (c *ChannelConfig) ResolvedDir() string {
	if c.Dir != "" {
		return expandHome(c.Dir)
	}
	return channel.DefaultDir()
}

// ResolvedDir returns the directory the log file goes to. An empty result
// means stderr.
func (c *LoggingConfig) ResolvedDir() string {
	switch c.Dir {
	case "-":
		return ""
	case "":
		return filepath.Join(channel.DefaultDir(), "logs")
	default:
		return expandHome(c.Dir)
	}
}

// Rotation returns the rotation settings for the log writer.
func (c *LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

// NewLogger builds the logger described by c. A disabled configuration
// yields a logger that discards everything.
func (c *LoggingConfig) NewLogger() (*logging.Logger, error) {
	if !c.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(c.ResolvedDir(), c.Level, c.Rotation())
}

// SetDefaults registers default values with viper
func SetDefaults() {
	SetDefaultsOn(viper.GetViper())
}

// SetDefaultsOn registers default values with v
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	// Channel defaults
	v.SetDefault("channel.dir", defaults.Channel.Dir)
	v.SetDefault("channel.min_message_age", defaults.Channel.MinMessageAge)
	v.SetDefault("channel.poll_interval", defaults.Channel.PollInterval)

	// Follower defaults
	v.SetDefault("follower.max_attempts", defaults.Follower.MaxAttempts)
	v.SetDefault("follower.backoff_initial", defaults.Follower.BackoffInitial)
	v.SetDefault("follower.backoff_max", defaults.Follower.BackoffMax)
	v.SetDefault("follower.jitter", defaults.Follower.Jitter)
	v.SetDefault("follower.publish_timeout", defaults.Follower.PublishTimeout)
	v.SetDefault("follower.require_ack", defaults.Follower.RequireAck)
	v.SetDefault("follower.ack_timeout", defaults.Follower.AckTimeout)

	// Leader defaults
	v.SetDefault("leader.ack", defaults.Leader.Ack)

	// Logging defaults
	v.SetDefault("logging.enabled", defaults.Logging.Enabled)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)

	// TUI defaults
	v.SetDefault("tui.max_batches", defaults.TUI.MaxBatches)
}

// Keys returns every configuration key in dot notation, sorted by section.
func Keys() []string {
	return []string{
		"channel.dir",
		"channel.min_message_age",
		"channel.poll_interval",
		"follower.max_attempts",
		"follower.backoff_initial",
		"follower.backoff_max",
		"follower.jitter",
		"follower.publish_timeout",
		"follower.require_ack",
		"follower.ack_timeout",
		"leader.ack",
		"logging.enabled",
		"logging.level",
		"logging.dir",
		"logging.max_size_mb",
		"logging.max_backups",
		"logging.compress",
		"tui.max_batches",
	}
}

// BindEnv enables SINGLETON_* environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	// e.g. SINGLETON_FOLLOWER_MAX_ATTEMPTS for follower.max_attempts
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v into a Config struct and validates it
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// stored values do not decode or validate.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// DecodeHook converts raw config values into Config field types. Durations
// accept Go duration strings ("250ms") or bare numbers, read as
// milliseconds. Surrounding whitespace is trimmed from strings.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		millisecondsToDurationHook,
		trimStringHook,
	)
}

var durationType = reflect.TypeOf(time.Duration(0))

func millisecondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case uint64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return data, nil
}

func trimStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.String {
		return data, nil
	}
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	return strings.TrimSpace(s), nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	// Fall back to ~/.config/singleton
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SearchPaths lists the directories searched for config.yaml, in order.
func SearchPaths() []string {
	return []string{ConfigDir(), "$HOME/.config/" + AppName, "."}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
