package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/routeboard/internal/dataset"
	routingcore "github.com/vovakirdan/routeboard/internal/games/routing/core"
)

var flagShowRows int

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.parquet>",
	Short: "Summarize a parquet transitions file",
	Long: `Print the metadata, row count and per-episode score summary of a file
written by 'routeboard rollout --out'.

Examples:
  routeboard inspect ./data/transitions_1760000000_1.parquet
  routeboard inspect ./data/transitions_1760000000_1.parquet --rows 2`,
	Args: cobra.ExactArgs(1),
	Run:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&flagShowRows, "rows", 0, "Render the first N rows as boards")
}

func runInspect(_ *cobra.Command, args []string) {
	path := args[0]

	rows, err := dataset.ReadTransitions(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, key := range []string{"schema", "variant"} {
		v, ok, err := dataset.ReadMetadata(path, key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if ok {
			fmt.Printf("%-9s %s\n", key+":", v)
		}
	}
	if raw, ok, err := dataset.ReadMetadata(path, "rules"); err == nil && ok {
		var rules routingcore.Rules
		if json.Unmarshal([]byte(raw), &rules) == nil {
			fmt.Printf("%-9s %dx%d, exit %s, %d+%d pieces, drain ceiling %d\n", "rules:",
				rules.Width, rules.Height, rules.Exit, rules.InitialPieces, rules.ExtraPieces, rules.DrainCeiling)
		}
	}

	type episode struct {
		turns int
		score int32
	}
	episodes := map[int32]*episode{}
	var order []int32
	for _, r := range rows {
		ep, ok := episodes[r.EpisodeID]
		if !ok {
			ep = &episode{}
			episodes[r.EpisodeID] = ep
			order = append(order, r.EpisodeID)
		}
		ep.turns++
		ep.score = r.Score
	}

	fmt.Printf("%-9s %d\n", "rows:", len(rows))
	fmt.Printf("%-9s %d\n", "episodes:", len(order))
	if len(order) > 0 {
		var sum int64
		best, worst := episodes[order[0]].score, episodes[order[0]].score
		for _, id := range order {
			s := episodes[id].score
			sum += int64(s)
			best = min(best, s)
			worst = max(worst, s)
		}
		fmt.Printf("%-9s mean %.2f  best %d  worst %d\n", "score:",
			float64(sum)/float64(len(order)), best, worst)
	}

	for i := 0; i < flagShowRows && i < len(rows); i++ {
		r := rows[i]
		fmt.Printf("\nepisode %d turn %d (reward %.0f, terminated %v)\n", r.EpisodeID, r.Turn, r.Reward, r.Terminated)
		fmt.Print(renderRow(r))
	}
}

// renderRow prints the board a row's router saw.
func renderRow(r dataset.TransitionRow) string {
	obs := r.Observation()
	dirs := obs.DirGrid()
	var sb strings.Builder
	for y := 0; y < obs.Height; y++ {
		for x := 0; x < obs.Width; x++ {
			c := routingcore.C(x, y)
			g := string(dirs.Get(c).Glyph())
			switch {
			case obs.Occupied(c):
				sb.WriteString("[" + g + "]")
			case obs.Editable(c):
				sb.WriteString(":" + g + ":")
			default:
				sb.WriteString(" " + g + " ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
