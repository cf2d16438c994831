package rollout

import (
	"fmt"
	"math/rand/v2"

	"github.com/playmatatu/pongenv/internal/pong"
)

// Policy picks the next action from an observation.
type Policy interface {
	Act(obs pong.Observation) pong.Action
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(obs pong.Observation) pong.Action

func (f PolicyFunc) Act(obs pong.Observation) pong.Action { return f(obs) }

// PolicyFactory builds a fresh policy for one episode. The seed is the
// episode's seed, so stochastic policies stay reproducible.
type PolicyFactory func(seed int64) Policy

// Hold never moves the paddle.
func Hold(int64) Policy {
	return PolicyFunc(func(pong.Observation) pong.Action { return pong.ActionHold })
}

// Tracker returns a factory for a policy that moves the paddle center toward
// the ball center, holding inside a dead band of half a paddle step.
func Tracker(params pong.Params) PolicyFactory {
	deadBand := params.PlayerSpeed / 2
	return func(int64) Policy {
		return PolicyFunc(func(obs pong.Observation) pong.Action {
			paddleCenter := obs[pong.ObsPlayerY] + params.PaddleHeight/2
			ballCenter := obs[pong.ObsBallY] + params.BallSize/2
			switch {
			case paddleCenter < ballCenter-deadBand:
				return pong.ActionDown
			case paddleCenter > ballCenter+deadBand:
				return pong.ActionUp
			}
			return pong.ActionHold
		})
	}
}

// Random picks uniformly among the actions.
func Random(seed int64) Policy {
	rng := rand.New(rand.NewPCG(uint64(seed), 1))
	return PolicyFunc(func(pong.Observation) pong.Action {
		return pong.Action(rng.IntN(pong.NumActions))
	})
}

// PolicyByName resolves "hold", "tracker" or "random".
func PolicyByName(name string, params pong.Params) (PolicyFactory, error) {
	switch name {
	case "", "hold":
		return Hold, nil
	case "tracker":
		return Tracker(params), nil
	case "random":
		return Random, nil
	}
	return nil, fmt.Errorf("unknown policy %q: must be one of hold, tracker, random", name)
}
