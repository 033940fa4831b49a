// Package config provides YAML-based configuration loading for the arena
// server, with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Matchmaking MatchmakingConfig `yaml:"matchmaking"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig defines the listening transports.
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" env:"ARENA_HTTP_ADDR"`
	SSHAddr         string        `yaml:"ssh_addr" env:"ARENA_SSH_ADDR"` // Empty disables SSH
	HostKeyPath     string        `yaml:"host_key_path" env:"ARENA_HOST_KEY_PATH"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"ARENA_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ARENA_SHUTDOWN_TIMEOUT"`
}

// StorageConfig defines where matches are persisted.
type StorageConfig struct {
	DBPath string `yaml:"db_path" env:"ARENA_DB_PATH"` // ":memory:" for a throwaway database
}

// MatchmakingConfig tunes the match service.
type MatchmakingConfig struct {
	TurnTimeout time.Duration `yaml:"turn_timeout" env:"ARENA_TURN_TIMEOUT"`
	JoinRetries int           `yaml:"join_retries" env:"ARENA_JOIN_RETRIES"`
	IDRetries   int           `yaml:"id_retries" env:"ARENA_ID_RETRIES"`
}

// LogConfig defines logger output.
type LogConfig struct {
	Level  string `yaml:"level" env:"ARENA_LOG_LEVEL"` // debug, info, warn, error
	Prefix string `yaml:"prefix" env:"ARENA_LOG_PREFIX"`
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Server.HTTPAddr == "" {
		errs = append(errs, errors.New("server.http_addr must not be empty"))
	}
	if c.Server.SSHAddr != "" && c.Server.HostKeyPath == "" {
		errs = append(errs, errors.New("server.host_key_path is required when ssh_addr is set"))
	}
	if c.Server.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.idle_timeout must not be negative, got %s", c.Server.IdleTimeout))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout))
	}
	if c.Storage.DBPath == "" {
		errs = append(errs, errors.New("storage.db_path must not be empty"))
	}
	if c.Matchmaking.TurnTimeout <= 0 {
		errs = append(errs, fmt.Errorf("matchmaking.turn_timeout must be positive, got %s", c.Matchmaking.TurnTimeout))
	}
	if c.Matchmaking.JoinRetries < 0 {
		errs = append(errs, fmt.Errorf("matchmaking.join_retries must not be negative, got %d", c.Matchmaking.JoinRetries))
	}
	if c.Matchmaking.IDRetries < 0 {
		errs = append(errs, fmt.Errorf("matchmaking.id_retries must not be negative, got %d", c.Matchmaking.IDRetries))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error, fatal", c.Log.Level))
	}
	return errors.Join(errs...)
}
