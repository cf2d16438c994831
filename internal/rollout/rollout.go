// Package rollout evaluates scripted policies over many independent
// environments in parallel and summarizes the results.
package rollout

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/playmatatu/pongenv/internal/pong"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Options controls one evaluation run.
type Options struct {
	Episodes  int   // number of episodes; episode i is seeded with Seed+i
	Workers   int   // <= 0 means 1
	Seed      int64 // base seed
	MaxFrames int   // <= 0 means no limit; a capped episode counts as truncated
}

// Stats summarizes a sample.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// Report is the outcome of Run.
type Report struct {
	Episodes      int     `json:"episodes"`
	PlayerWins    int     `json:"player_wins"`
	AIWins        int     `json:"ai_wins"`
	Truncated     int     `json:"truncated"`
	PlayerWinRate float64 `json:"player_win_rate"`
	PlayerHits    int     `json:"player_hits"`
	Return        Stats   `json:"return"`
	Frames        Stats   `json:"frames"`
}

// EpisodeResult is the outcome of a single episode.
type EpisodeResult struct {
	Seed       int64
	Return     float64
	Frames     int
	Winner     pong.Scorer
	PlayerHits int
}

// ctxCheckFrames is how often a running episode polls for cancellation.
const ctxCheckFrames = 1024

// Episode plays one episode from a seeded reset until a goal or maxFrames.
// Uncapped episodes can run for tens of thousands of frames, so ctx is
// polled every ctxCheckFrames frames.
func Episode(ctx context.Context, env *pong.Env, policy Policy, seed int64, maxFrames int) (EpisodeResult, error) {
	res := EpisodeResult{Seed: seed}
	obs, _ := env.Reset(&seed)
	for maxFrames <= 0 || res.Frames < maxFrames {
		if res.Frames%ctxCheckFrames == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		step, err := env.Step(policy.Act(obs))
		if err != nil {
			return res, err
		}
		res.Frames++
		res.Return += step.Reward
		if step.Events.PlayerHit {
			res.PlayerHits++
		}
		obs = step.Observation
		if step.Terminated {
			res.Winner = step.Events.Goal
			break
		}
	}
	return res, nil
}

// Run plays opts.Episodes episodes across opts.Workers goroutines. Every
// worker owns its own Env, and episode i always uses seed opts.Seed+i, so
// the report does not depend on the worker count.
func Run(ctx context.Context, params pong.Params, factory PolicyFactory, opts Options) (Report, error) {
	if opts.Episodes <= 0 {
		return Report{}, nil
	}
	if factory == nil {
		return Report{}, errors.New("rollout: nil policy factory")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > opts.Episodes {
		workers = opts.Episodes
	}
	if err := params.Validate(); err != nil {
		return Report{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]EpisodeResult, opts.Episodes)
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			env, err := pong.NewEnv(params, opts.Seed)
			if err != nil {
				fail(err)
				return
			}
			for i := range jobs {
				seed := opts.Seed + int64(i)
				r, err := Episode(ctx, env, factory(seed), seed, opts.MaxFrames)
				if err != nil {
					fail(err)
					return
				}
				results[i] = r
			}
		}()
	}

feed:
	for i := 0; i < opts.Episodes; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return Report{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	return summarize(results), nil
}

func summarize(results []EpisodeResult) Report {
	rep := Report{Episodes: len(results)}
	returns := make([]float64, len(results))
	frames := make([]float64, len(results))
	for i, r := range results {
		returns[i] = r.Return
		frames[i] = float64(r.Frames)
		rep.PlayerHits += r.PlayerHits
		switch r.Winner {
		case pong.ScorerPlayer:
			rep.PlayerWins++
		case pong.ScorerAI:
			rep.AIWins++
		default:
			rep.Truncated++
		}
	}
	rep.PlayerWinRate = float64(rep.PlayerWins) / float64(rep.Episodes)
	rep.Return = calcStats(returns)
	rep.Frames = calcStats(frames)
	return rep
}

// calcStats computes mean, population stddev and percentiles interpolated
// between closest ranks.
func calcStats(xs []float64) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	mean, std := stat.PopMeanStdDev(xs, nil)

	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	percentile := func(p float64) float64 {
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		if i+1 >= n {
			return cp[n-1]
		}
		f := pos - float64(i)
		return cp[i]*(1-f) + cp[i+1]*f
	}

	return Stats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(cp),
		Max:    floats.Max(cp),
		P50:    percentile(0.50),
		P90:    percentile(0.90),
		P99:    percentile(0.99),
	}
}
