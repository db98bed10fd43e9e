package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/routeboard/internal/agent"
	"github.com/vovakirdan/routeboard/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List variants and routers",
	Long:  `Shows the registered puzzle variants and the baseline routers.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No variants available.")
		return
	}

	fmt.Println("Available variants:")
	fmt.Println()

	maxIDLen := 2
	for _, g := range games {
		if len(g.ID) > maxIDLen {
			maxIDLen = len(g.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, g := range games {
		fmt.Printf("  %-*s  %s\n", maxIDLen, g.ID, g.Title)
	}

	fmt.Println()
	fmt.Printf("Routers: %v\n", agent.Names())
	fmt.Println()
	fmt.Println("Run 'routeboard play <id>' to play a variant.")
}
