// Package config loads client and server settings from defaults, an
// optional TOML file, and MCPREG_* environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mcptooling/mcpreg/pkg/errors"
)

// Cache backend selectors accepted by Config.Cache.
const (
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheOff    = "off"
)

// DefaultBaseURL is the public MCP registry endpoint.
const DefaultBaseURL = "https://registry.modelcontextprotocol.io"

// Config holds every tunable of the client and the serve-mode proxy.
type Config struct {
	// Registry endpoint and HTTP behavior.
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// Retry policy for transient failures.
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration

	// Response cache.
	CacheTTL  time.Duration
	Cache     string
	CacheDir  string
	RedisAddr string

	// Serve mode.
	ListenAddr string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Timeout:       30 * time.Second,
		MaxRetries:    3,
		RetryDelay:    time.Second,
		MaxRetryDelay: 8 * time.Second,
		CacheTTL:      5 * time.Minute,
		Cache:         CacheFile,
		ListenAddr:    "127.0.0.1:8080",
	}
}

// Path returns the default config file location,
// ~/.config/mcpreg/config.toml. An empty string means no home directory
// could be resolved and only defaults plus environment apply.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mcpreg", "config.toml")
}

// Load builds the effective configuration: defaults, then the TOML file at
// path (skipped when path is empty or the file does not exist), then
// MCPREG_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := applyFile(&cfg, path); err != nil {
				return Config{}, err
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fileConfig mirrors Config for TOML decoding. Pointer fields distinguish
// "absent" from "zero", and durations accept either Go duration strings
// ("2s") or bare numbers of seconds (300, 1.5).
type fileConfig struct {
	BaseURL       *string   `toml:"base_url"`
	Timeout       *duration `toml:"timeout"`
	UserAgent     *string   `toml:"user_agent"`
	MaxRetries    *int      `toml:"max_retries"`
	RetryDelay    *duration `toml:"retry_delay"`
	MaxRetryDelay *duration `toml:"max_retry_delay"`
	CacheTTL      *duration `toml:"cache_ttl"`
	Cache         *string   `toml:"cache"`
	CacheDir      *string   `toml:"cache_dir"`
	RedisAddr     *string   `toml:"redis_addr"`
	ListenAddr    *string   `toml:"listen_addr"`
}

type duration time.Duration

func (d *duration) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case string:
		parsed, err := time.ParseDuration(t)
		if err != nil {
			return err
		}
		*d = duration(parsed)
		return nil
	case int64:
		*d = duration(time.Duration(t) * time.Second)
		return nil
	case float64:
		*d = duration(t * float64(time.Second))
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", v)
	}
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config file %s", path)
	}

	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.Timeout != nil {
		cfg.Timeout = time.Duration(*fc.Timeout)
	}
	if fc.UserAgent != nil {
		cfg.UserAgent = *fc.UserAgent
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.RetryDelay != nil {
		cfg.RetryDelay = time.Duration(*fc.RetryDelay)
	}
	if fc.MaxRetryDelay != nil {
		cfg.MaxRetryDelay = time.Duration(*fc.MaxRetryDelay)
	}
	if fc.CacheTTL != nil {
		cfg.CacheTTL = time.Duration(*fc.CacheTTL)
	}
	if fc.Cache != nil {
		cfg.Cache = *fc.Cache
	}
	if fc.CacheDir != nil {
		cfg.CacheDir = *fc.CacheDir
	}
	if fc.RedisAddr != nil {
		cfg.RedisAddr = *fc.RedisAddr
	}
	if fc.ListenAddr != nil {
		cfg.ListenAddr = *fc.ListenAddr
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.BaseURL, "MCPREG_BASE_URL")
	setString(&cfg.UserAgent, "MCPREG_USER_AGENT")
	setString(&cfg.Cache, "MCPREG_CACHE")
	setString(&cfg.CacheDir, "MCPREG_CACHE_DIR")
	setString(&cfg.RedisAddr, "MCPREG_REDIS_ADDR")
	setString(&cfg.ListenAddr, "MCPREG_LISTEN_ADDR")
	setDuration(&cfg.Timeout, "MCPREG_TIMEOUT")
	setDuration(&cfg.RetryDelay, "MCPREG_RETRY_DELAY")
	setDuration(&cfg.MaxRetryDelay, "MCPREG_MAX_RETRY_DELAY")
	setDuration(&cfg.CacheTTL, "MCPREG_CACHE_TTL")
	setInt(&cfg.MaxRetries, "MCPREG_MAX_RETRIES")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	// Same forms as the TOML file: "2s" or bare seconds.
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = time.Duration(secs * float64(time.Second))
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.BaseURL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_retries cannot be negative")
	}
	if c.RetryDelay <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "retry_delay must be positive")
	}
	if c.MaxRetryDelay < c.RetryDelay {
		return errors.New(errors.ErrCodeInvalidInput, "max_retry_delay cannot be below retry_delay")
	}
	if c.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache_ttl cannot be negative")
	}
	switch c.Cache {
	case CacheMemory, CacheFile, CacheRedis, CacheOff:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"unknown cache backend %q (want memory, file, redis or off)", c.Cache)
	}
	if c.Cache == CacheRedis && c.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "redis cache backend needs redis_addr")
	}
	return nil
}

// CacheDirOrDefault returns the configured cache directory, falling back
// to the user cache dir under an mcpreg subdirectory.
func (c Config) CacheDirOrDefault() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "resolve cache directory")
	}
	return filepath.Join(base, "mcpreg"), nil
}
