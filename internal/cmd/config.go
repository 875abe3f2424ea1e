package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/singleton/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify singleton configuration",
	Long: `View or modify singleton configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  singleton config set follower.max_attempts 100
  singleton config set follower.require_ack true
  singleton config set channel.poll_interval 100ms

Run 'singleton config show' to list every key with its current value.
The new value is validated together with the rest of the configuration
before the file is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/singleton/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configShowYAML bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowYAML, "yaml", false, "Print the effective configuration as YAML")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if configShowYAML {
		data, err := yaml.Marshal(effectiveSettings())
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(out, "Warning: %v\n\n", err)
	}

	section := ""
	for _, key := range config.Keys() {
		sec, name, _ := strings.Cut(key, ".")
		if sec != section {
			fmt.Fprintf(out, "%s:\n", sec)
			section = sec
		}
		fmt.Fprintf(out, "  %s: %v\n", name, viper.Get(key))
	}

	if cfg != nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Channel directory: %s\n", cfg.Channel.ResolvedDir())
		if dir := cfg.Logging.ResolvedDir(); dir != "" {
			fmt.Fprintf(out, "Log directory:     %s\n", dir)
		} else {
			fmt.Fprintln(out, "Log directory:     (stderr)")
		}
	}
	return nil
}

// effectiveSettings returns every key's current value grouped by section.
// Durations are rendered as strings so the result can be written back as a
// config file.
func effectiveSettings() map[string]map[string]any {
	settings := make(map[string]map[string]any)
	for _, key := range config.Keys() {
		sec, name, _ := strings.Cut(key, ".")
		if settings[sec] == nil {
			settings[sec] = make(map[string]any)
		}
		value := viper.Get(key)
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		settings[sec][name] = value
	}
	return settings
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	if !slices.Contains(config.Keys(), key) {
		return fmt.Errorf("unknown configuration key: %s\nRun 'singleton config show' to see valid keys", key)
	}

	typedValue, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}

	// Validate against the effective configuration before touching the file
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	// Ensure config directory exists
	configFile := configFilePath()
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write only what the file already held plus the new value
	file := viper.New()
	file.SetConfigFile(configFile)
	if _, statErr := os.Stat(configFile); statErr == nil {
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	file.Set(key, typedValue)
	if err := file.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)
	return nil
}

// parseConfigValue converts value to the type of key's default. Durations
// are kept in their string form so the file stays readable.
func parseConfigValue(key, value string) (any, error) {
	defaults := viper.New()
	config.SetDefaultsOn(defaults)

	switch defaults.Get(key).(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a duration such as 250ms or 5s", key)
		}
		return d.String(), nil
	default:
		return value, nil
	}
}

func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return config.ConfigFile()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'singleton config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent(config.Default())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize singleton's behavior.")
	return nil
}

func defaultConfigContent(d *config.Config) string {
	return fmt.Sprintf(`# singleton configuration

# Message channel shared by the leader and later instances
channel:
  # Directory holding lock files and channel logs (empty = user cache dir)
  dir: %q
  # Records older than this are pruned by publishers
  min_message_age: %s
  # Poll interval used alongside filesystem notifications
  poll_interval: %s

# Behavior of later instances that forward their arguments
follower:
  # Attempts to open the channel before giving up
  max_attempts: %d
  # Delay before the second attempt, doubled up to backoff_max
  backoff_initial: %s
  backoff_max: %s
  # Randomize retry delays
  jitter: %t
  # How long to wait for the publish to be confirmed
  publish_timeout: %s
  # Wait for the leader to acknowledge the batch
  require_ack: %t
  ack_timeout: %s

# Behavior of the first instance
leader:
  # Send an acknowledgment for every batch received
  ack: %t

# Structured JSON logging
logging:
  enabled: %t
  # Options: debug, info, warn, error
  level: %s
  # Log directory (empty = <channel dir>/logs, "-" = stderr)
  dir: %q
  max_size_mb: %d
  max_backups: %d
  compress: %t

# Demo window
tui:
  # Batches kept on screen
  max_batches: %d
`,
		d.Channel.Dir, d.Channel.MinMessageAge, d.Channel.PollInterval,
		d.Follower.MaxAttempts, d.Follower.BackoffInitial, d.Follower.BackoffMax, d.Follower.Jitter,
		d.Follower.PublishTimeout, d.Follower.RequireAck, d.Follower.AckTimeout,
		d.Leader.Ack,
		d.Logging.Enabled, d.Logging.Level, d.Logging.Dir, d.Logging.MaxSizeMB, d.Logging.MaxBackups, d.Logging.Compress,
		d.TUI.MaxBatches,
	)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	for i, dir := range config.SearchPaths() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, filepath.Join(dir, "config.yaml"))
	}
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_FOLLOWER_MAX_ATTEMPTS)\n", config.EnvPrefix, config.EnvPrefix)
	return nil
}
