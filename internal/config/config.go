// Package config holds the console's startup configuration. Polling
// intervals and the debounce window are deliberately fixed in the engine and
// not configurable here.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config contains configurable parameters for the console.
// Use Default() to get sensible defaults, then override as needed.
type Config struct {
	// Audit journal settings
	AuditEnabled bool   // Whether executed actions are journaled (default: true)
	AuditPath    string // DuckDB file for the journal; empty keeps it in memory

	// Action settings
	ConfirmKills  bool          // Whether kill actions require confirmation (default: true)
	ActionTimeout time.Duration // Bound on a single mutating action (default: 15s)

	// Startup settings
	StartTab string // Which tab opens first: processes, services, connections
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		AuditEnabled:  true,
		AuditPath:     "",
		ConfirmKills:  true,
		ActionTimeout: 15 * time.Second,
		StartTab:      "processes",
	}
}

// WithAudit returns a copy of the config with journaling enabled/disabled.
func (c Config) WithAudit(enabled bool) Config {
	c.AuditEnabled = enabled
	return c
}

// WithAuditPath returns a copy of the config with a journal file path.
func (c Config) WithAuditPath(path string) Config {
	c.AuditPath = path
	return c
}

// WithConfirmKills returns a copy of the config with kill confirmation
// enabled/disabled.
func (c Config) WithConfirmKills(enabled bool) Config {
	c.ConfirmKills = enabled
	return c
}

// WithStartTab returns a copy of the config with a different initial tab.
func (c Config) WithStartTab(tab string) Config {
	c.StartTab = tab
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c Config) Validate() error {
	if c.ActionTimeout <= 0 {
		return &ConfigError{Field: "ActionTimeout", Message: "must be positive"}
	}
	switch c.StartTab {
	case "processes", "services", "connections":
	default:
		return &ConfigError{Field: "StartTab", Message: "must be processes, services, or connections"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}

// Load reads configuration from the given file (optional), the environment,
// and defaults, in that order of precedence. Environment variables use the
// SYSCONSOLE_ prefix, e.g. SYSCONSOLE_AUDIT_PATH.
func Load(file string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SYSCONSOLE")
	v.AutomaticEnv()

	defaults := Default()
	v.SetDefault("audit_enabled", defaults.AuditEnabled)
	v.SetDefault("audit_path", defaults.AuditPath)
	v.SetDefault("confirm_kills", defaults.ConfirmKills)
	v.SetDefault("action_timeout", defaults.ActionTimeout)
	v.SetDefault("start_tab", defaults.StartTab)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		AuditEnabled:  v.GetBool("audit_enabled"),
		AuditPath:     v.GetString("audit_path"),
		ConfirmKills:  v.GetBool("confirm_kills"),
		ActionTimeout: v.GetDuration("action_timeout"),
		StartTab:      v.GetString("start_tab"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
