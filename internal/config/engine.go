package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPort is used when neither the config file nor SELECTOR_PORT sets one.
const DefaultPort = 8320

// SelectionConfig tunes model selection.
type SelectionConfig struct {
	FallbackModel string `yaml:"fallback-model"`
}

// EvaluationConfig tunes the evaluation engine.
type EvaluationConfig struct {
	SampleDelay          time.Duration `yaml:"sample-delay"`
	Concurrency          int           `yaml:"concurrency"`
	HistoryRetentionDays int           `yaml:"history-retention-days"`
	ProviderTimeout      time.Duration `yaml:"provider-timeout"`
}

// HistoryRetention converts the configured day count into a duration.
func (c EvaluationConfig) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * 24 * time.Hour
}

// MetricsConfig tunes usage metric persistence.
type MetricsConfig struct {
	FlushInterval time.Duration `yaml:"flush-interval"`
}

// RateLimitConfig mirrors the rate-limit section of the config file.
type RateLimitConfig struct {
	Limit         int            `yaml:"limit"`
	Routes        map[string]int `yaml:"routes"`
	RedisEnabled  bool           `yaml:"redis-enabled"`
	RedisAddr     string         `yaml:"redis-addr"`
	RedisPassword string         `yaml:"redis-password"`
	RedisDB       int            `yaml:"redis-db"`
	RedisPrefix   string         `yaml:"redis-prefix"`
}

// EngineConfig holds the service settings outside the database and JWT sections.
type EngineConfig struct {
	Port       int              `yaml:"port"`
	LogLevel   string           `yaml:"log-level"`
	Selection  SelectionConfig  `yaml:"selection"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	RateLimit  RateLimitConfig  `yaml:"rate-limit"`
}

// DefaultEngineConfig returns the settings used for anything the file leaves out.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Port:     DefaultPort,
		LogLevel: "info",
		Selection: SelectionConfig{
			FallbackModel: "gpt-3.5-turbo",
		},
		Evaluation: EvaluationConfig{
			SampleDelay:          10 * time.Millisecond,
			Concurrency:          8,
			HistoryRetentionDays: 30,
			ProviderTimeout:      30 * time.Second,
		},
		Metrics: MetricsConfig{
			FlushInterval: time.Minute,
		},
	}
}

// LoadEngineConfig reads the engine settings from configPath. A missing file yields the
// defaults; a malformed file is an error. Environment overrides apply last.
func LoadEngineConfig(configPath string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	data, errRead := os.ReadFile(configPath)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return EngineConfig{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	case os.IsNotExist(errRead):
	default:
		return EngineConfig{}, fmt.Errorf("read config file: %w", errRead)
	}

	if raw := strings.TrimSpace(os.Getenv(EnvPort)); raw != "" {
		port, errParse := strconv.Atoi(raw)
		if errParse != nil || port <= 0 || port > 65535 {
			return EngineConfig{}, fmt.Errorf("invalid %s: %q", EnvPort, raw)
		}
		cfg.Port = port
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.LogLevel = level
	}

	return cfg.normalize(), nil
}

func (c EngineConfig) normalize() EngineConfig {
	defaults := DefaultEngineConfig()
	if c.Port <= 0 {
		c.Port = defaults.Port
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	c.Selection.FallbackModel = strings.TrimSpace(c.Selection.FallbackModel)
	if c.Selection.FallbackModel == "" {
		c.Selection.FallbackModel = defaults.Selection.FallbackModel
	}
	if c.Evaluation.SampleDelay < 0 {
		c.Evaluation.SampleDelay = 0
	}
	if c.Evaluation.Concurrency <= 0 {
		c.Evaluation.Concurrency = defaults.Evaluation.Concurrency
	}
	if c.Evaluation.HistoryRetentionDays < 0 {
		c.Evaluation.HistoryRetentionDays = 0
	}
	if c.Evaluation.ProviderTimeout <= 0 {
		c.Evaluation.ProviderTimeout = defaults.Evaluation.ProviderTimeout
	}
	if c.Metrics.FlushInterval < 0 {
		c.Metrics.FlushInterval = 0
	}
	return c
}
