package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/routeboard/internal/agent"
	routingcore "github.com/vovakirdan/routeboard/internal/games/routing/core"
	"github.com/vovakirdan/routeboard/internal/platform/tui"
	"github.com/vovakirdan/routeboard/internal/registry"
	"github.com/vovakirdan/routeboard/internal/storage"
)

var (
	flagText   bool
	flagRouter string
)

var playCmd = &cobra.Command{
	Use:   "play [variant]",
	Short: "Play a variant",
	Long: `Play as the router in the terminal UI. The random placer drops pieces;
you set directions on the editable cells and commit the turn.

Controls:
  Arrows/hjkl  - Move cursor
  W/A/S/D      - Point the cell up/left/down/right
  Space        - Rotate the cell's direction
  X            - Clear direction (when the variant allows it)
  U            - Undo last edit this turn
  F            - Autopilot: fill the editable cells toward the exit
  Enter        - Commit turn
  P            - Pause
  R            - Restart (after the episode ends)
  Esc/B        - Back
  Q/Ctrl+C     - Quit
  Ctrl+S       - Screenshot to ~/.routeboard/screenshots

With --text you play the placer instead: type "x y" for each piece and a
baseline router steers them.

Examples:
  routeboard play
  routeboard play routing_classic
  routeboard play --seed 42
  routeboard play --text --router random`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagText, "text", false, "Line-based play: you place, a router routes")
	playCmd.Flags().StringVar(&flagRouter, "router", "flow", "Router used with --text (keep, random, flow)")
}

func runPlay(_ *cobra.Command, args []string) {
	id := variantArg(args)
	if flagText {
		runTextPlay(id)
		return
	}

	if !registry.Exists(id) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'routeboard list' to see available variants.")
		os.Exit(1)
	}

	game, err := registry.Create(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store := openStoreOrWarn()
	_, runErr := tui.Run(game, store, runtimeConfig())
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// runTextPlay runs one episode with a human placer on stdin.
func runTextPlay(id string) {
	v, rules := variantRules(id)

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	router, err := agent.New(flagRouter, rules, seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var env *routingcore.Env
	placer := routingcore.NewPromptPlacer(os.Stdin, os.Stdout)
	placer.Show = func(w io.Writer, occ *routingcore.Grid[bool]) {
		if env != nil {
			fmt.Fprintln(w, env.Render())
			return
		}
		// Initial placement runs inside NewEnv, before env is assigned.
		fmt.Fprintln(w, routingcore.RenderASCII(routingcore.Snapshot{
			Occupied: occ,
			Dirs:     routingcore.NewGrid[routingcore.Dir](rules.Width, rules.Height),
			Mask:     routingcore.NewGrid[bool](rules.Width, rules.Height),
			Exit:     rules.Exit,
		}, routingcore.PhaseInit))
	}

	fmt.Printf("%s | %dx%d board, exit at %s | router: %s | seed %d\n",
		v.Title, rules.Width, rules.Height, rules.Exit, router.Name(), seed)
	fmt.Printf("Place %d initial pieces, then one per turn for %d turns.\n\n",
		rules.InitialPieces, rules.ExtraPieces)

	env, err = routingcore.NewEnv(routingcore.Config{Rules: rules, Seed: seed, Placer: placer})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for !env.Done() {
		if _, err := env.Step(router.Act(env.Observation())); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	score, _ := env.Score()
	snap := env.Snapshot()
	fmt.Println(env.Render())
	fmt.Printf("Episode over. Score: %d (drain %d, eaten %d, leftover %d)\n",
		score.Total, score.DrainSteps, score.Eaten, score.Leftover)

	store := openStoreOrWarn()
	if store == nil {
		return
	}
	defer store.Close()
	if _, err := store.SaveEpisode(storage.EpisodeRecord{
		Variant:    v.ID,
		Seed:       seed,
		Score:      score.Total,
		DrainSteps: score.DrainSteps,
		Eaten:      score.Eaten,
		Leftover:   score.Leftover,
		Placed:     snap.Placed,
		Turns:      snap.Turn,
		Source:     storage.SourceText,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
