package config

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Gate modes accepted by POWCHAT_GATE.
const (
	GateOff    = "off"
	GateVerify = "verify"
)

// Config holds all configuration for the application.
type Config struct {
	Addr          string        `validate:"required,hostname_port"`
	Difficulty    uint8         `validate:"lte=64"`
	Gate          string        `validate:"oneof=off verify"`
	Backlog       int           `validate:"gte=1"`
	SolverWorkers int           `validate:"gte=1"`
	SolverQueue   int           `validate:"gte=1"`
	WriteTimeout  time.Duration `validate:"gt=0"`
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Addr:          "127.0.0.1:3000",
		Difficulty:    0,
		Gate:          GateOff,
		Backlog:       100,
		SolverWorkers: runtime.NumCPU(),
		SolverQueue:   64,
		WriteTimeout:  10 * time.Second,
	}
}

// New loads configuration from a .env file, if present, and the
// environment, on top of Default.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a configuration using lookup for every key.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if v, ok := lookup("POWCHAT_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("POWCHAT_GATE"); ok && v != "" {
		cfg.Gate = v
	}
	if v, ok := lookup("POWCHAT_DIFFICULTY"); ok && v != "" {
		d, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("POWCHAT_DIFFICULTY: %w", err)
		}
		cfg.Difficulty = uint8(d)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"POWCHAT_BACKLOG", &cfg.Backlog},
		{"POWCHAT_SOLVER_WORKERS", &cfg.SolverWorkers},
		{"POWCHAT_SOLVER_QUEUE", &cfg.SolverQueue},
	}
	for _, kv := range ints {
		if v, ok := lookup(kv.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", kv.key, err)
			}
			*kv.dst = n
		}
	}

	if v, ok := lookup("POWCHAT_WRITE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("POWCHAT_WRITE_TIMEOUT: %w", err)
		}
		cfg.WriteTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
