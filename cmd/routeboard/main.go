// routeboard is a two-role grid routing puzzle: a placer drops pieces on a
// board and a router steers them to the exit. It runs as a terminal game, a
// remote SSH game, a websocket environment for external agents, and a
// parallel rollout generator for training data.
//
// Usage:
//
//	routeboard list                  - List variants
//	routeboard play [variant]        - Play in the terminal UI
//	routeboard play --text           - Place pieces yourself, a router steers
//	routeboard menu                  - Variant picker and leaderboard
//	routeboard scores [variant]      - Show best episodes
//	routeboard serve                 - Start SSH server for remote play
//	routeboard bridge                - Start websocket environment server
//	routeboard rollout               - Generate episodes with a baseline router
//	routeboard inspect <file>        - Summarize a parquet dataset file
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: 30)
//	--seed <value>   - Set RNG seed for reproducible episodes
//	--db <path>      - Set database path (default: ~/.routeboard/routeboard.db)
//	--config <path>  - Use a custom routing.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/routeboard/internal/games/routing"
)

var (
	flagFPS    int
	flagSeed   int64
	flagDBPath string
	flagConfig string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "routeboard",
	Short: "Routeboard - steer pieces to the exit on a grid",
	Long: `Routeboard is a turn-based routing puzzle. Each turn the placer drops a
piece and the router rewrites the direction of the editable cells. Pieces
move one cell per tick; collisions eat pieces and cost points. Once the
placer is done the board drains; whatever is left costs points too.
Lower scores are better.

Available commands:
  list     - Show variants
  play     - Play a variant
  menu     - Interactive variant picker
  scores   - Best episodes
  serve    - SSH server for remote play
  bridge   - Websocket environment for external agents
  rollout  - Baseline rollouts, optionally exported to parquet
  inspect  - Summarize an exported parquet file

Examples:
  routeboard play
  routeboard play routing_classic --seed 42
  routeboard play --text --router flow
  routeboard rollout --episodes 1000 --workers 8 --out ./data
  routeboard bridge --addr :8765`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		routing.SetConfigPath(flagConfig)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.routeboard/routeboard.db", "Path to episodes database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom routing config YAML")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(rolloutCmd)
	rootCmd.AddCommand(inspectCmd)
}
