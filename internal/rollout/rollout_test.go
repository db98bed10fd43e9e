package rollout

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

func collect(t *testing.T, cfg Config) ([]Episode, Summary) {
	t.Helper()
	var eps []Episode
	sum, err := Run(context.Background(), cfg, func(ep Episode) error {
		eps = append(eps, ep)
		return nil
	})
	require.NoError(t, err)
	sort.Slice(eps, func(i, j int) bool { return eps[i].Index < eps[j].Index })
	return eps, sum
}

func baseConfig() Config {
	return Config{
		Variant:  "routing",
		Rules:    core.StandardRules(),
		Router:   "random",
		Episodes: 12,
		Workers:  4,
		Seed:     100,
	}
}

func TestRunIndependentOfWorkers(t *testing.T) {
	cfg := baseConfig()
	parallel, sumP := collect(t, cfg)

	cfg.Workers = 1
	serial, sumS := collect(t, cfg)

	require.Len(t, parallel, 12)
	require.Equal(t, serial, parallel)
	require.Equal(t, sumS, sumP)
}

func TestRunSeeds(t *testing.T) {
	eps, _ := collect(t, baseConfig())
	for i, ep := range eps {
		require.Equal(t, i, ep.Index)
		require.Equal(t, int64(100)+int64(i)*1000003, ep.Seed)
		require.Equal(t, "routing", ep.Variant)
		require.Equal(t, 6, ep.Turns, "extra pieces + 1 router turns")
	}
}

func TestRunSummary(t *testing.T) {
	eps, sum := collect(t, baseConfig())

	require.Equal(t, len(eps), sum.Episodes)
	best, worst, total := eps[0].Score.Total, eps[0].Score.Total, 0
	for _, ep := range eps {
		best = min(best, ep.Score.Total)
		worst = max(worst, ep.Score.Total)
		total += ep.Score.Total
	}
	require.Equal(t, best, sum.BestScore)
	require.Equal(t, worst, sum.WorstScore)
	require.InDelta(t, float64(total)/float64(len(eps)), sum.MeanScore, 1e-9)
}

func TestRunRecordsTransitions(t *testing.T) {
	cfg := baseConfig()
	cfg.Episodes = 2
	cfg.Record = true
	eps, _ := collect(t, cfg)

	for _, ep := range eps {
		require.Len(t, ep.Transitions, ep.Turns)
		last := ep.Transitions[len(ep.Transitions)-1]
		require.True(t, last.Terminated)
		require.Equal(t, ep.Score.Reward(), last.Reward)
		for _, tr := range ep.Transitions[:len(ep.Transitions)-1] {
			require.False(t, tr.Terminated)
			require.Zero(t, tr.Reward)
			require.Len(t, tr.Action, cfg.Rules.Cells())
		}
	}

	cfg.Record = false
	plain, _ := collect(t, cfg)
	require.Nil(t, plain[0].Transitions)
}

func TestRunSinkError(t *testing.T) {
	boom := errors.New("disk full")
	calls := 0
	_, err := Run(context.Background(), baseConfig(), func(Episode) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := baseConfig()
	cfg.Episodes = 1000
	_, err := Run(ctx, cfg, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Router = "oracle"
	_, err := Run(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg = baseConfig()
	cfg.Episodes = 0
	_, err = Run(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg = baseConfig()
	cfg.Rules.Width = 0
	_, err = Run(context.Background(), cfg, nil)
	var re *core.RulesError
	require.ErrorAs(t, err, &re)
}
