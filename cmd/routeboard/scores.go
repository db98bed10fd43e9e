package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/routeboard/internal/registry"
	"github.com/vovakirdan/routeboard/internal/storage"
)

var (
	flagLimit  int
	flagRecent bool
	flagClear  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [variant]",
	Short: "Show best episodes for a variant",
	Long: `Display the best (lowest scoring) episodes of a variant, or the most
recent episodes across variants with --recent.

Examples:
  routeboard scores
  routeboard scores routing_classic --limit 20
  routeboard scores --recent
  routeboard scores routing --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of episodes to show")
	scoresCmd.Flags().BoolVar(&flagRecent, "recent", false, "Show most recent episodes of all variants")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete stored episodes of the variant")
}

func runScores(_ *cobra.Command, args []string) {
	id := variantArg(args)
	if !registry.Exists(id) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'routeboard list' to see available variants.")
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening episodes database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearEpisodes(id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			store.Close()
			os.Exit(1)
		}
		fmt.Printf("Cleared episodes of %s.\n", id)
	case flagRecent:
		printRecent(store)
	default:
		printBest(store, id)
	}
}

func printBest(store *storage.Store, id string) {
	game, err := registry.Create(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		return
	}

	episodes, err := store.TopEpisodes(id, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving episodes: %v\n", err)
		return
	}

	fmt.Printf("Best Episodes - %s\n", game.Title())
	fmt.Println()

	if len(episodes) == 0 {
		fmt.Println("No episodes recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'routeboard play %s' to set the first score!\n", id)
		return
	}

	fmt.Printf("  %-4s  %-6s  %-6s  %-6s  %-8s  %-8s  %s\n", "Rank", "Score", "Drain", "Eaten", "Leftover", "Source", "Date")
	fmt.Printf("  %-4s  %-6s  %-6s  %-6s  %-8s  %-8s  %s\n", "----", "-----", "-----", "-----", "--------", "------", "----")
	for i, e := range episodes {
		fmt.Printf("  %-4d  %-6d  %-6d  %-6d  %-8d  %-8s  %s\n",
			i+1, e.Score, e.DrainSteps, e.Eaten, e.Leftover, e.Source, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats(id)
	if err == nil && stats.Episodes > 0 {
		fmt.Println()
		fmt.Printf("Best: %d  Worst: %d  Average: %.2f over %d episodes\n",
			stats.BestScore, stats.WorstScore, stats.AvgScore, stats.Episodes)
	}
}

func printRecent(store *storage.Store) {
	episodes, err := store.RecentEpisodes(flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving episodes: %v\n", err)
		return
	}
	if len(episodes) == 0 {
		fmt.Println("No episodes recorded yet.")
		return
	}

	fmt.Printf("  %-16s  %-6s  %-8s  %-20s  %s\n", "Variant", "Score", "Source", "Seed", "Date")
	fmt.Printf("  %-16s  %-6s  %-8s  %-20s  %s\n", "-------", "-----", "------", "----", "----")
	for _, e := range episodes {
		fmt.Printf("  %-16s  %-6d  %-8s  %-20d  %s\n",
			e.Variant, e.Score, e.Source, e.Seed, e.CreatedAt.Format("2006-01-02 15:04"))
	}
}
