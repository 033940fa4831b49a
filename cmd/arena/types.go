package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/turn-arena/internal/board"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List all match types",
	Long:  `Shows every match type players can enter.`,
	Run:   runTypes,
}

func runTypes(_ *cobra.Command, _ []string) {
	types := board.Types()

	if len(types) == 0 {
		fmt.Println("No match types available.")
		return
	}

	fmt.Println("Available match types:")
	fmt.Println()

	maxLen := len("TYPE")
	for _, t := range types {
		if len(t.Type) > maxLen {
			maxLen = len(t.Type)
		}
	}

	fmt.Printf("  %-*s  %-5s  %s\n", maxLen, "TYPE", "BOARD", "Title")
	fmt.Printf("  %-*s  %-5s  %s\n", maxLen, "----", "-----", "-----")
	for _, t := range types {
		fmt.Printf("  %-*s  %-5s  %s\n", maxLen, t.Type, fmt.Sprintf("%dx%d", t.Dimension, t.Dimension), t.Title)
	}

	fmt.Println()
	fmt.Println("Connect with 'ssh <user>@host -p 2222' and run 'enter <type>' to play.")
}
