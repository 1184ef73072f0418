package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/MimeLyc/checkmp/pkg/log"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// Config holds all application configuration.
// Values come from the environment first, then the config file, then defaults.
//
// Config file (CONFIG_FILE, default config_base.txt) keys and matching env vars:
//
// MoviePilot:
// - base_url / MP_BASE_URL: MoviePilot base URL (required)
// - api_key / MP_API_KEY: MoviePilot API token (required)
// - mp_timeout / MP_TIMEOUT: request timeout in seconds (default: 15)
//
// TMDB:
// - tmdb_read_access_token / TMDB_TOKEN: TMDB v4 read access token (required)
// - tmdb_base_url / TMDB_BASE_URL: API base (default: https://api.themoviedb.org/3)
// - tmdb_image_base / TMDB_IMAGE_BASE: image base (default: https://image.tmdb.org/t/p/w500)
// - tmdb_language / TMDB_LANGUAGE: display language for titles (default: zh-CN)
// - tmdb_timeout / TMDB_TIMEOUT: request timeout in seconds (default: 15)
// - tmdb_rate_limit / TMDB_RATE_LIMIT: max requests per second, 0 disables (default: 40)
//
// Service:
// - service_host / SERVICE_HOST (default: 0.0.0.0)
// - service_port / SERVICE_PORT (default: 8899)
// - filter_concurrency / FILTER_CONCURRENCY: parallel detail lookups (default: 5)
// - probe_cron / PROBE_CRON: upstream probe schedule, empty disables (default: @every 5m)
// - log_level / LOG_LEVEL (default: info)
// - log_file / LOG_FILE: optional rotating log file
type Config struct {
	MP     MPConfig     `json:"mp"`
	TMDB   TMDBConfig   `json:"tmdb"`
	HTTP   HTTPConfig   `json:"http"`
	Filter FilterConfig `json:"filter"`
	Probe  ProbeConfig  `json:"probe"`
	Log    LogConfig    `json:"log"`
}

// MPConfig holds the MoviePilot connection settings
type MPConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"-"`
	Timeout int    `json:"timeout"`
}

// TMDBConfig holds the TMDB connection settings
type TMDBConfig struct {
	Token     string       `json:"-"`
	BaseURL   string       `json:"base_url"`
	ImageBase string       `json:"image_base"`
	Language  language.Tag `json:"language"`
	Timeout   int          `json:"timeout"`
	RateLimit float64      `json:"rate_limit"`
}

type HTTPConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type FilterConfig struct {
	Concurrency int `json:"concurrency"`
}

type ProbeConfig struct {
	CronExpr string `json:"cron_expr"`
}

func (c ProbeConfig) Enabled() bool {
	return strings.TrimSpace(c.CronExpr) != ""
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// DefaultConfigFile is read when CONFIG_FILE is unset.
const DefaultConfigFile = "config_base.txt"

// New loads configuration from the file named by CONFIG_FILE and the environment.
func New(opts ...Option) (*Config, error) {
	return NewFromFile(getEnvString("CONFIG_FILE", DefaultConfigFile), opts...)
}

// NewFromFile loads configuration from path (a missing file is not an error),
// lets environment variables override it and finally applies opts.
func NewFromFile(path string, opts ...Option) (*Config, error) {
	fileValues, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	src := source{file: fileValues}

	tmdbLang, err := language.Parse(src.str("TMDB_LANGUAGE", "tmdb_language", "zh-CN"))
	if err != nil {
		return nil, fmt.Errorf("invalid tmdb_language: %w", err)
	}

	config := &Config{
		MP: MPConfig{
			BaseURL: trimBaseURL(src.str("MP_BASE_URL", "base_url", "")),
			APIKey:  src.str("MP_API_KEY", "api_key", ""),
			Timeout: src.intVal("MP_TIMEOUT", "mp_timeout", 15),
		},
		TMDB: TMDBConfig{
			Token:     src.str("TMDB_TOKEN", "tmdb_read_access_token", ""),
			BaseURL:   trimBaseURL(src.str("TMDB_BASE_URL", "tmdb_base_url", "https://api.themoviedb.org/3")),
			ImageBase: trimBaseURL(src.str("TMDB_IMAGE_BASE", "tmdb_image_base", "https://image.tmdb.org/t/p/w500")),
			Language:  tmdbLang,
			Timeout:   src.intVal("TMDB_TIMEOUT", "tmdb_timeout", 15),
			RateLimit: src.floatVal("TMDB_RATE_LIMIT", "tmdb_rate_limit", 40),
		},
		HTTP: HTTPConfig{
			Host: src.str("SERVICE_HOST", "service_host", "0.0.0.0"),
			Port: src.intVal("SERVICE_PORT", "service_port", 8899),
		},
		Filter: FilterConfig{
			Concurrency: src.intVal("FILTER_CONCURRENCY", "filter_concurrency", 5),
		},
		Probe: ProbeConfig{
			CronExpr: src.strAllowEmpty("PROBE_CRON", "probe_cron", "@every 5m"),
		},
		Log: LogConfig{
			Level: src.str("LOG_LEVEL", "log_level", "info"),
			File:  src.str("LOG_FILE", "log_file", ""),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Info("Config: mp=%s tmdb=%s lang=%s listen=%s concurrency=%d probe=%q",
		config.MP.BaseURL, config.TMDB.BaseURL, config.TMDB.Language,
		config.HTTP.Addr(), config.Filter.Concurrency, config.Probe.CronExpr)

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.MP.BaseURL == "" || c.MP.APIKey == "" {
		return fmt.Errorf("base_url and api_key are required (config file or MP_BASE_URL/MP_API_KEY)")
	}
	if c.TMDB.Token == "" {
		return fmt.Errorf("tmdb_read_access_token is required (config file or TMDB_TOKEN)")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid service_port: %d", c.HTTP.Port)
	}
	if c.Filter.Concurrency <= 0 {
		return fmt.Errorf("filter_concurrency must be positive, got %d", c.Filter.Concurrency)
	}
	if c.Probe.Enabled() {
		if _, err := cron.ParseStandard(c.Probe.CronExpr); err != nil {
			return fmt.Errorf("invalid probe_cron: %w", err)
		}
	}
	return nil
}

func trimBaseURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

// source layers environment variables over config file values.
type source struct {
	file map[string]string
}

func (s source) lookup(envKey, fileKey string) (string, bool) {
	if value, ok := os.LookupEnv(envKey); ok {
		return value, true
	}
	value, ok := s.file[fileKey]
	return value, ok
}

func (s source) str(envKey, fileKey, defaultValue string) string {
	if value, ok := s.lookup(envKey, fileKey); ok && value != "" {
		return value
	}
	return defaultValue
}

// strAllowEmpty lets an explicitly empty value override the default.
func (s source) strAllowEmpty(envKey, fileKey, defaultValue string) string {
	if value, ok := s.lookup(envKey, fileKey); ok {
		return value
	}
	return defaultValue
}

func (s source) intVal(envKey, fileKey string, defaultValue int) int {
	if value := s.str(envKey, fileKey, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn("Ignoring invalid integer %s=%q", envKey, value)
	}
	return defaultValue
}

func (s source) floatVal(envKey, fileKey string, defaultValue float64) float64 {
	if value := s.str(envKey, fileKey, ""); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn("Ignoring invalid number %s=%q", envKey, value)
	}
	return defaultValue
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
