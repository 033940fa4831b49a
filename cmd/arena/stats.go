package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/turn-arena/internal/match"
	"github.com/vovakirdan/turn-arena/internal/storage"
	"github.com/vovakirdan/turn-arena/internal/transport/sshcmd"
)

var flagLimit int

var statsCmd = &cobra.Command{
	Use:   "stats <user>",
	Short: "Show a user's statistics",
	Long: `Display games played, wins, draws, losses and win rate per match type.

Examples:
  arena stats 42
  arena stats 42 --db ./arena.db`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

var matchesCmd = &cobra.Command{
	Use:   "matches <user>",
	Short: "Show a user's recent matches",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatches,
}

func init() {
	matchesCmd.Flags().IntVarP(&flagLimit, "limit", "n", 10, "Number of matches to show")
}

func openStore() (*storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return storage.Open(cfg.Storage.DBPath)
}

func runStats(cmd *cobra.Command, args []string) error {
	user, err := match.ParseUserID(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.GetStatistics(cmd.Context(), user)
	if err != nil {
		return err
	}
	fmt.Println(sshcmd.RenderStatistics(stats))
	return nil
}

func runMatches(cmd *cobra.Command, args []string) error {
	user, err := match.ParseUserID(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	matches, err := store.RecentMatches(cmd.Context(), user, flagLimit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Printf("No matches for user %s.\n", user)
		return nil
	}
	for _, m := range matches {
		opponent := "-"
		if other, err := m.OtherPlayer(user); err == nil {
			opponent = other.String()
		}
		fmt.Printf("  %-20s %-10s %-8s v%-3d opponent %s\n", m.ID, m.Type, m.State(), m.Version, opponent)
	}
	return nil
}
