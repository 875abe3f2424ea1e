package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaultsOn(v)
	return v
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Follower protocol defaults
	if cfg.Follower.MaxAttempts != 50 {
		t.Errorf("Follower.MaxAttempts = %d, want 50", cfg.Follower.MaxAttempts)
	}
	if cfg.Follower.BackoffInitial != time.Millisecond {
		t.Errorf("Follower.BackoffInitial = %v, want 1ms", cfg.Follower.BackoffInitial)
	}
	if cfg.Follower.BackoffMax != 50*time.Millisecond {
		t.Errorf("Follower.BackoffMax = %v, want 50ms", cfg.Follower.BackoffMax)
	}
	if cfg.Follower.PublishTimeout != 5*time.Second {
		t.Errorf("Follower.PublishTimeout = %v, want 5s", cfg.Follower.PublishTimeout)
	}
	if cfg.Follower.RequireAck {
		t.Error("Follower.RequireAck should be false by default")
	}
	if cfg.Follower.AckTimeout != 2*time.Second {
		t.Errorf("Follower.AckTimeout = %v, want 2s", cfg.Follower.AckTimeout)
	}

	// Leader defaults
	if !cfg.Leader.Ack {
		t.Error("Leader.Ack should be true by default")
	}

	// Channel defaults
	if cfg.Channel.MinMessageAge != 30*time.Second {
		t.Errorf("Channel.MinMessageAge = %v, want 30s", cfg.Channel.MinMessageAge)
	}
	if cfg.Channel.PollInterval != 250*time.Millisecond {
		t.Errorf("Channel.PollInterval = %v, want 250ms", cfg.Channel.PollInterval)
	}

	// Logging defaults
	if !cfg.Logging.Enabled || cfg.Logging.Level != "info" {
		t.Errorf("Logging = %+v, want enabled at info", cfg.Logging)
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(newViper(t))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("LoadFrom with defaults only = %+v, want %+v", *cfg, *Default())
	}
}

func TestLoadFrom_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
channel:
  dir: /tmp/singleton-test
  poll_interval: 20ms
follower:
  max_attempts: 7
  publish_timeout: 1500
  require_ack: true
  ack_timeout: 3s
leader:
  ack: false
logging:
  level: " debug "
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	v := newViper(t)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Channel.Dir != "/tmp/singleton-test" {
		t.Errorf("Channel.Dir = %q", cfg.Channel.Dir)
	}
	if cfg.Channel.PollInterval != 20*time.Millisecond {
		t.Errorf("Channel.PollInterval = %v, want 20ms", cfg.Channel.PollInterval)
	}
	if cfg.Follower.MaxAttempts != 7 {
		t.Errorf("Follower.MaxAttempts = %d, want 7", cfg.Follower.MaxAttempts)
	}
	if cfg.Follower.PublishTimeout != 1500*time.Millisecond {
		t.Errorf("Follower.PublishTimeout = %v, want 1.5s (bare numbers are milliseconds)", cfg.Follower.PublishTimeout)
	}
	if !cfg.Follower.RequireAck || cfg.Follower.AckTimeout != 3*time.Second {
		t.Errorf("Follower ack settings = %v/%v", cfg.Follower.RequireAck, cfg.Follower.AckTimeout)
	}
	if cfg.Leader.Ack {
		t.Error("Leader.Ack should be overridden to false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want trimmed %q", cfg.Logging.Level, "debug")
	}
	// Untouched keys keep their defaults
	if cfg.Follower.BackoffMax != 50*time.Millisecond {
		t.Errorf("Follower.BackoffMax = %v, want default 50ms", cfg.Follower.BackoffMax)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("SINGLETON_FOLLOWER_MAX_ATTEMPTS", "3")
	t.Setenv("SINGLETON_CHANNEL_MIN_MESSAGE_AGE", "1m")

	v := newViper(t)
	BindEnv(v)

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Follower.MaxAttempts != 3 {
		t.Errorf("Follower.MaxAttempts = %d, want 3", cfg.Follower.MaxAttempts)
	}
	if cfg.Channel.MinMessageAge != time.Minute {
		t.Errorf("Channel.MinMessageAge = %v, want 1m", cfg.Channel.MinMessageAge)
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	v := newViper(t)
	v.Set("follower.max_attempts", 0)
	v.Set("logging.level", "verbose")

	_, err := LoadFrom(v)
	if err == nil {
		t.Fatal("LoadFrom should reject invalid values")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d validation errors, want 2: %v", len(verrs), verrs)
	}
}

func TestGet_FallsBackToDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("follower.max_attempts", -1)
	if got := Get(); got.Follower.MaxAttempts != 50 {
		t.Errorf("Get() with invalid config returned MaxAttempts %d, want default 50", got.Follower.MaxAttempts)
	}
}

func TestChannelConfig_ResolvedDir(t *testing.T) {
	explicit := ChannelConfig{Dir: "/var/tmp/x"}
	if got := explicit.ResolvedDir(); got != "/var/tmp/x" {
		t.Errorf("ResolvedDir() = %q, want /var/tmp/x", got)
	}

	def := ChannelConfig{}
	if got := def.ResolvedDir(); filepath.Base(got) != AppName {
		t.Errorf("default ResolvedDir() = %q, want a %q directory", got, AppName)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		tilde := ChannelConfig{Dir: "~/chan"}
		if got := tilde.ResolvedDir(); got != filepath.Join(home, "chan") {
			t.Errorf("ResolvedDir(~/chan) = %q, want %q", got, filepath.Join(home, "chan"))
		}
	}
}

func TestLoggingConfig_ResolvedDir(t *testing.T) {
	stderr := LoggingConfig{Dir: "-"}
	if got := stderr.ResolvedDir(); got != "" {
		t.Errorf("ResolvedDir(-) = %q, want empty (stderr)", got)
	}
	def := LoggingConfig{}
	if got := def.ResolvedDir(); !strings.HasSuffix(got, filepath.Join(AppName, "logs")) {
		t.Errorf("default ResolvedDir() = %q", got)
	}
}

func TestLoggingConfig_NewLogger(t *testing.T) {
	disabled := LoggingConfig{Enabled: false}
	logger, err := disabled.NewLogger()
	if err != nil || logger == nil {
		t.Fatalf("disabled NewLogger = %v, %v", logger, err)
	}

	dir := t.TempDir()
	enabled := LoggingConfig{Enabled: true, Level: "debug", Dir: dir, MaxSizeMB: 1, MaxBackups: 1}
	logger, err = enabled.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()
	logger.Info("hello")

	if _, err := os.Stat(filepath.Join(dir, "singleton.log")); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestKeysHaveDefaults(t *testing.T) {
	v := newViper(t)
	for _, key := range Keys() {
		if !v.IsSet(key) {
			t.Errorf("key %q has no registered default", key)
		}
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := ConfigDir(); got != filepath.Join("/xdg", AppName) {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigFile(); got != filepath.Join("/xdg", AppName, "config.yaml") {
		t.Errorf("ConfigFile() = %q", got)
	}
}
