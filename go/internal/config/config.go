// Package config loads service configuration from defaults, an optional YAML file, and the
// environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of the clock server
type Config struct {
	Port        string       `yaml:"port"`
	Log         LogConfig    `yaml:"log"`
	Codec       CodecConfig  `yaml:"codec"`
	Clocks      ClockConfig  `yaml:"clocks"`
	Stream      StreamConfig `yaml:"stream"`
	NATS        NATSConfig   `yaml:"nats"`
	CORSOrigins []string     `yaml:"cors_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	File   string `yaml:"file"`   // empty disables the rotating file sink
}

type CodecConfig struct {
	Kind      string `yaml:"kind"` // sqids or decimal
	Alphabet  string `yaml:"alphabet"`
	MinLength int    `yaml:"min_length"`
}

type ClockConfig struct {
	DefaultPlayerCount    int `yaml:"default_player_count"`
	DefaultAllowedSeconds int `yaml:"default_allowed_seconds"`
	MaxPlayers            int `yaml:"max_players"`
	MaxAllowedSeconds     int `yaml:"max_allowed_seconds"`
}

type StreamConfig struct {
	PushInterval time.Duration `yaml:"push_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	PingInterval time.Duration `yaml:"ping_interval"`
}

type NATSConfig struct {
	URL           string `yaml:"url"` // empty publishes events to the log only
	Stream        string `yaml:"stream"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Port: "8080",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Codec: CodecConfig{
			Kind:      "sqids",
			MinLength: 6,
		},
		Clocks: ClockConfig{
			DefaultPlayerCount:    2,
			DefaultAllowedSeconds: 120,
			MaxPlayers:            64,
			MaxAllowedSeconds:     24 * 60 * 60,
		},
		Stream: StreamConfig{
			PushInterval: 500 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  60 * time.Second,
			PingInterval: 30 * time.Second,
		},
		NATS: NATSConfig{
			Stream:        "CLOCK_EVENTS",
			SubjectPrefix: "clock.events",
		},
		CORSOrigins: []string{"*"},
	}
}

// Load reads .env, then the YAML file named by CONFIG_FILE if set, then environment
// overrides, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)

	c.Codec.Kind = getEnv("CLOCK_CODEC", c.Codec.Kind)
	c.Codec.Alphabet = getEnv("CODEC_ALPHABET", c.Codec.Alphabet)
	c.Codec.MinLength = getEnvAsInt("CODEC_MIN_LENGTH", c.Codec.MinLength)

	c.Clocks.DefaultPlayerCount = getEnvAsInt("DEFAULT_PLAYER_COUNT", c.Clocks.DefaultPlayerCount)
	c.Clocks.DefaultAllowedSeconds = getEnvAsInt("DEFAULT_ALLOWED_SECONDS", c.Clocks.DefaultAllowedSeconds)
	c.Clocks.MaxPlayers = getEnvAsInt("MAX_PLAYERS", c.Clocks.MaxPlayers)
	c.Clocks.MaxAllowedSeconds = getEnvAsInt("MAX_ALLOWED_SECONDS", c.Clocks.MaxAllowedSeconds)

	c.Stream.PushInterval = getEnvAsDuration("PUSH_INTERVAL", c.Stream.PushInterval)
	c.Stream.WriteTimeout = getEnvAsDuration("WS_WRITE_TIMEOUT", c.Stream.WriteTimeout)
	c.Stream.ReadTimeout = getEnvAsDuration("WS_READ_TIMEOUT", c.Stream.ReadTimeout)
	c.Stream.PingInterval = getEnvAsDuration("WS_PING_INTERVAL", c.Stream.PingInterval)

	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.Stream = getEnv("NATS_STREAM", c.NATS.Stream)
	c.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("port must be a number between 1 and 65535, got %q", c.Port))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format must be console or json, got %q", c.Log.Format))
	}
	if c.Codec.Kind != "sqids" && c.Codec.Kind != "decimal" {
		errs = append(errs, fmt.Errorf("codec must be sqids or decimal, got %q", c.Codec.Kind))
	}
	if c.Codec.MinLength < 0 || c.Codec.MinLength > 255 {
		errs = append(errs, fmt.Errorf("codec min length must be between 0 and 255, got %d", c.Codec.MinLength))
	}

	if c.Clocks.MaxPlayers < 1 {
		errs = append(errs, fmt.Errorf("max players must be positive, got %d", c.Clocks.MaxPlayers))
	}
	// allowed seconds travel as int32 on the RPC surface
	if c.Clocks.MaxAllowedSeconds < 1 || c.Clocks.MaxAllowedSeconds > math.MaxInt32 {
		errs = append(errs, fmt.Errorf("max allowed seconds must be between 1 and %d, got %d",
			math.MaxInt32, c.Clocks.MaxAllowedSeconds))
	}
	if c.Clocks.DefaultPlayerCount < 1 || c.Clocks.DefaultPlayerCount > c.Clocks.MaxPlayers {
		errs = append(errs, fmt.Errorf("default player count must be between 1 and %d, got %d",
			c.Clocks.MaxPlayers, c.Clocks.DefaultPlayerCount))
	}
	if c.Clocks.DefaultAllowedSeconds < 1 || c.Clocks.DefaultAllowedSeconds > c.Clocks.MaxAllowedSeconds {
		errs = append(errs, fmt.Errorf("default allowed seconds must be between 1 and %d, got %d",
			c.Clocks.MaxAllowedSeconds, c.Clocks.DefaultAllowedSeconds))
	}

	for name, d := range map[string]time.Duration{
		"push interval": c.Stream.PushInterval,
		"write timeout": c.Stream.WriteTimeout,
		"read timeout":  c.Stream.ReadTimeout,
		"ping interval": c.Stream.PingInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.Stream.PingInterval >= c.Stream.ReadTimeout {
		errs = append(errs, fmt.Errorf("ping interval %s must be shorter than read timeout %s",
			c.Stream.PingInterval, c.Stream.ReadTimeout))
	}

	if c.NATS.URL != "" && (c.NATS.Stream == "" || c.NATS.SubjectPrefix == "") {
		errs = append(errs, errors.New("nats stream and subject prefix are required when NATS_URL is set"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-integer environment value")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid duration environment value")
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
