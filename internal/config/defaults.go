package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/arena.yaml
var defaultArenaYAML []byte

// Default returns the hardcoded configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			SSHAddr:         ":2222",
			HostKeyPath:     ".ssh/arena_ed25519",
			IdleTimeout:     10 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			DBPath: "~/.arena/arena.db",
		},
		Matchmaking: MatchmakingConfig{
			TurnTimeout: 30 * time.Second,
			JoinRetries: 3,
			IDRetries:   5,
		},
		Log: LogConfig{
			Level:  "info",
			Prefix: "arena",
		},
	}
}
