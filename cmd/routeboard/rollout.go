package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/routeboard/internal/dataset"
	"github.com/vovakirdan/routeboard/internal/rollout"
	"github.com/vovakirdan/routeboard/internal/storage"
)

var (
	flagEpisodes    int
	flagWorkers     int
	flagRollRouter  string
	flagOutDir      string
	flagBatchRows   int
	flagSave        bool
	flagRollVariant string
)

var rolloutCmd = &cobra.Command{
	Use:   "rollout",
	Short: "Play episodes with a baseline router",
	Long: `Play many independent episodes in parallel with a baseline router.

Episode i uses seed <seed> + i*1000003, so results do not depend on the
number of workers. With --out every router turn is written as a parquet row
(zstd compressed, files named transitions_<unix>_<n>.parquet). With --save
every episode is also stored in the episodes database with source "rollout".

Examples:
  routeboard rollout --episodes 100
  routeboard rollout --episodes 10000 --workers 16 --router random --out ./data
  routeboard rollout --variant routing_classic --seed 7 --save`,
	Run: runRollout,
}

func init() {
	rolloutCmd.Flags().IntVar(&flagEpisodes, "episodes", 100, "Number of episodes")
	rolloutCmd.Flags().IntVar(&flagWorkers, "workers", runtime.NumCPU(), "Parallel workers")
	rolloutCmd.Flags().StringVar(&flagRollRouter, "router", "flow", "Router (keep, random, flow)")
	rolloutCmd.Flags().StringVar(&flagOutDir, "out", "", "Directory for parquet transition files")
	rolloutCmd.Flags().IntVar(&flagBatchRows, "batch-rows", 50000, "Rows per parquet file")
	rolloutCmd.Flags().BoolVar(&flagSave, "save", false, "Store episodes in the database")
	rolloutCmd.Flags().StringVar(&flagRollVariant, "variant", "routing", "Variant to play")
}

func runRollout(_ *cobra.Command, _ []string) {
	v, rules := variantRules(flagRollVariant)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "routeboard-rollout",
	})

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var writer *dataset.BatchWriter
	if flagOutDir != "" {
		meta, err := dataset.Metadata(v.ID, rules)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		writer, err = dataset.NewBatchWriter(flagOutDir, flagBatchRows, meta)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	var store *storage.Store
	if flagSave {
		var err error
		store, err = storage.Open(flagDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening episodes database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := rollout.Config{
		Variant:  v.ID,
		Rules:    rules,
		Router:   flagRollRouter,
		Episodes: flagEpisodes,
		Workers:  flagWorkers,
		Seed:     seed,
		Record:   writer != nil,
		Logger:   logger,
	}

	start := time.Now()
	summary, err := rollout.Run(ctx, cfg, func(ep rollout.Episode) error {
		if writer != nil {
			if err := writer.Write(dataset.FromEpisode(ep)...); err != nil {
				return err
			}
		}
		if store != nil {
			_, err := store.SaveEpisode(storage.EpisodeRecord{
				Variant:    ep.Variant,
				Seed:       ep.Seed,
				Score:      ep.Score.Total,
				DrainSteps: ep.Score.DrainSteps,
				Eaten:      ep.Score.Eaten,
				Leftover:   ep.Score.Leftover,
				Placed:     ep.Placed,
				Turns:      ep.Turns,
				Source:     storage.SourceRollout,
			})
			return err
		}
		return nil
	})

	// Flush what was collected even when the run stopped early.
	if writer != nil {
		if closeErr := writer.Close(); closeErr != nil {
			logger.Error("could not flush dataset", "error", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rollout error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("rollout finished",
		"episodes", summary.Episodes,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	fmt.Printf("Variant:   %s (router %s, base seed %d)\n", v.ID, flagRollRouter, seed)
	fmt.Printf("Episodes:  %d\n", summary.Episodes)
	fmt.Printf("Score:     mean %.2f  best %d  worst %d\n", summary.MeanScore, summary.BestScore, summary.WorstScore)
	fmt.Printf("Eaten:     mean %.2f\n", summary.MeanEaten)
	fmt.Printf("Leftover:  mean %.2f\n", summary.MeanLeftover)
	if writer != nil {
		fmt.Printf("Dataset:   %d rows in %d files under %s\n", writer.Rows(), len(writer.Files()), flagOutDir)
	}
}
