// Package rollout plays many independent episodes in parallel with a
// baseline router and streams them to a sink.
package rollout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/routeboard/internal/agent"
	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

// seedStride separates the seeds of consecutive episodes.
const seedStride = 1000003

// Config describes a rollout run.
type Config struct {
	Variant  string
	Rules    core.Rules
	Router   string // agent name: keep, random or flow
	Episodes int
	Workers  int
	Seed     int64
	Record   bool        // keep per-turn transitions on each Episode
	Logger   *log.Logger // nil disables progress logging
}

// Transition is one router turn.
type Transition struct {
	Turn        int
	Observation core.Observation // what the router saw
	Action      core.Action
	Reward      float64
	Terminated  bool
}

// Episode is the outcome of one finished episode.
type Episode struct {
	Index       int
	Variant     string
	Seed        int64
	Score       core.Score
	Turns       int
	Placed      int
	Transitions []Transition
}

// Sink receives finished episodes. It is always called from the goroutine
// that called Run.
type Sink func(Episode) error

// Summary aggregates a run.
type Summary struct {
	Episodes     int
	MeanScore    float64
	BestScore    int
	WorstScore   int
	MeanEaten    float64
	MeanLeftover float64

	total, eaten, leftover int
}

// add folds in one episode. Means come from integer sums so the result does
// not depend on arrival order.
func (s *Summary) add(ep Episode) {
	total := ep.Score.Total
	if s.Episodes == 0 || total < s.BestScore {
		s.BestScore = total
	}
	if s.Episodes == 0 || total > s.WorstScore {
		s.WorstScore = total
	}
	s.Episodes++
	s.total += total
	s.eaten += ep.Score.Eaten
	s.leftover += ep.Score.Leftover

	n := float64(s.Episodes)
	s.MeanScore = float64(s.total) / n
	s.MeanEaten = float64(s.eaten) / n
	s.MeanLeftover = float64(s.leftover) / n
}

// EpisodeSeed returns the env seed of episode i.
func EpisodeSeed(base int64, i int) int64 {
	return base + int64(i)*seedStride
}

// routerSeed derives the router's seed from the env seed.
func routerSeed(envSeed int64) int64 {
	return envSeed*31 + 7
}

// Run plays cfg.Episodes episodes over cfg.Workers goroutines. Each episode
// depends only on its index, so results do not depend on scheduling. A sink
// error or context cancellation stops the run; the summary covers the
// episodes delivered so far.
func Run(ctx context.Context, cfg Config, sink Sink) (Summary, error) {
	var summary Summary

	if cfg.Episodes <= 0 {
		return summary, errors.New("rollout: episodes must be positive")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if err := cfg.Rules.Validate(); err != nil {
		return summary, fmt.Errorf("rollout: %w", err)
	}
	if _, err := agent.New(cfg.Router, cfg.Rules, 0); err != nil {
		return summary, fmt.Errorf("rollout: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan int)
	results := make(chan Episode)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < cfg.Episodes; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for i := range jobs {
				ep, err := playEpisode(gctx, cfg, i)
				if err != nil {
					return err
				}
				select {
				case results <- ep:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var sinkErr error
	for ep := range results {
		if sinkErr != nil {
			continue
		}
		if sink != nil {
			if err := sink(ep); err != nil {
				sinkErr = fmt.Errorf("rollout: sink: %w", err)
				cancel()
				continue
			}
		}
		summary.add(ep)
		if cfg.Logger != nil {
			cfg.Logger.Debug("episode finished",
				"index", ep.Index, "seed", ep.Seed, "score", ep.Score.Total,
				"eaten", ep.Score.Eaten, "leftover", ep.Score.Leftover)
		}
	}

	err := g.Wait()
	if sinkErr != nil {
		return summary, sinkErr
	}
	if err != nil {
		return summary, err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("rollout finished",
			"episodes", summary.Episodes, "mean", summary.MeanScore,
			"best", summary.BestScore, "worst", summary.WorstScore)
	}
	return summary, nil
}

// playEpisode runs episode i to termination, checking ctx between turns.
func playEpisode(ctx context.Context, cfg Config, i int) (Episode, error) {
	seed := EpisodeSeed(cfg.Seed, i)
	env, err := core.NewEnv(core.Config{Rules: cfg.Rules, Seed: seed})
	if err != nil {
		return Episode{}, fmt.Errorf("rollout: episode %d: %w", i, err)
	}
	router, err := agent.New(cfg.Router, cfg.Rules, routerSeed(seed))
	if err != nil {
		return Episode{}, fmt.Errorf("rollout: episode %d: %w", i, err)
	}

	ep := Episode{Index: i, Variant: cfg.Variant, Seed: seed}
	obs := env.Observation()
	for turn := 0; !env.Done(); turn++ {
		if err := ctx.Err(); err != nil {
			return Episode{}, err
		}
		a := router.Act(obs)
		res, err := env.Step(a)
		if err != nil {
			return Episode{}, fmt.Errorf("rollout: episode %d turn %d: %w", i, turn, err)
		}
		if cfg.Record {
			ep.Transitions = append(ep.Transitions, Transition{
				Turn:        turn,
				Observation: obs,
				Action:      a,
				Reward:      res.Reward,
				Terminated:  res.Terminated,
			})
		}
		obs = res.Observation
	}

	ep.Score, _ = env.Score()
	snap := env.Snapshot()
	ep.Turns = snap.Turn
	ep.Placed = snap.Placed
	return ep, nil
}
