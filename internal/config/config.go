// Package config loads and validates reminder store settings.
//
// Settings come from a YAML file decoded with strict field checking, are
// checked against an embedded CUE schema, and are finally converted into
// reminder.Option values. Unset fields keep the defaults from Default.
//
// Example file:
//
//	delayMs: 10000
//	idPolicy: counter
//	logLevel: info
//	normalizeText: false
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reminders/internal/reminder"
)

// Config holds every recognised setting.
type Config struct {
	// DelayMS is the auto-expire quiet period in milliseconds.
	DelayMS int `yaml:"delayMs" json:"delayMs"`

	// IDPolicy is "counter" (never reuse ids) or "length" (len+1, may collide).
	IDPolicy string `yaml:"idPolicy" json:"idPolicy"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel" json:"logLevel"`

	// NormalizeText stores reminders trimmed and in NFC form instead of as typed.
	NormalizeText bool `yaml:"normalizeText" json:"normalizeText"`
}

// Default returns the reference settings.
func Default() Config {
	return Config{
		DelayMS:  int(reminder.DefaultAutoExpireDelay / time.Millisecond),
		IDPolicy: string(reminder.IDCounter),
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults and validates it.
// An empty file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	// Unknown keys are rejected so a typo like "delay_ms" is not silently ignored.
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Delay returns the auto-expire delay as a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Options converts the config into store options.
func (c Config) Options() ([]reminder.Option, error) {
	policy, err := reminder.ParseIDPolicy(c.IDPolicy)
	if err != nil {
		return nil, err
	}
	opts := []reminder.Option{
		reminder.WithAutoExpireDelay(c.Delay()),
		reminder.WithIDPolicy(policy),
	}
	if c.NormalizeText {
		opts = append(opts, reminder.WithTextNormalization())
	}
	return opts, nil
}
