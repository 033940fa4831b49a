// arena is a turn-based board game server with matchmaking, an HTTP/JSON
// API with WebSocket notifications, and a line-oriented SSH front end.
//
// Usage:
//
//	arena serve              - Start the HTTP and SSH servers
//	arena types              - List available match types
//	arena stats <user>       - Show a user's record per match type
//	arena matches <user>     - Show a user's most recent matches
//
// Global flags:
//
//	--config <path>  - Config file (default: ~/.arena/arena.yaml, then configs/arena.yaml)
//	--db <path>      - Override storage.db_path
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/turn-arena/internal/config"

	// Import games to register them
	_ "github.com/vovakirdan/turn-arena/internal/games/reversi"
	_ "github.com/vovakirdan/turn-arena/internal/games/tictactoe"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Turn Arena - two-player board games over HTTP and SSH",
	Long: `Turn Arena pairs players into tic-tac-toe and reversi matches, enforces
turn order and turn timeouts, and records results.

Available commands:
  serve    - Start the HTTP and SSH servers
  types    - Show all match types
  stats    - View a user's statistics
  matches  - View a user's recent matches

Examples:
  arena serve
  arena serve --config ./arena.yaml
  arena types
  arena stats 42`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to match database (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(matchesCmd)
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          cfg.Prefix,
	})
	if level, err := log.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}
