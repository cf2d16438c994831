// Package pong is a deterministic two-paddle ball game used as a training
// environment. One paddle follows the caller's Action, the other is a
// scripted tracker, and each Step returns an observation, a shaped reward
// and a termination flag.
//
// An Env is not safe for concurrent use. Independent Env values share
// nothing and may run on separate goroutines freely.
package pong

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Environment is the contract a driving harness uses.
type Environment interface {
	Reset(seed *int64) (Observation, Info)
	Step(a Action) (StepResult, error)
	ObservationBounds() Bounds
	ActionSpaceSize() int
}

var _ Environment = (*Env)(nil)

// serveStream is the fixed PCG stream used with the caller's seed.
const serveStream = 0x9e3779b97f4a7c15

// Scorer identifies which side scored on a step.
type Scorer int

const (
	ScorerNone Scorer = iota
	ScorerPlayer
	ScorerAI
)

func (s Scorer) String() string {
	switch s {
	case ScorerPlayer:
		return "player"
	case ScorerAI:
		return "ai"
	}
	return "none"
}

// MarshalText encodes the scorer by name.
func (s Scorer) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a scorer name written by MarshalText.
func (s *Scorer) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none", "":
		*s = ScorerNone
	case "player":
		*s = ScorerPlayer
	case "ai":
		*s = ScorerAI
	default:
		return fmt.Errorf("unknown scorer %q", b)
	}
	return nil
}

// Events records what happened during one step.
type Events struct {
	PlayerHit   bool   `json:"player_hit"`
	OpponentHit bool   `json:"opponent_hit"`
	Goal        Scorer `json:"goal"`
}

// StepResult is the outcome of one Step. Truncated is always false: the
// engine defines no time limit.
type StepResult struct {
	Observation Observation `json:"observation"`
	Reward      float64     `json:"reward"`
	Terminated  bool        `json:"terminated"`
	Truncated   bool        `json:"truncated"`
	Info        Info        `json:"info"`
	Terms       RewardTerms `json:"terms"`
	Events      Events      `json:"events"`
}

// Env is one simulation instance. It owns its state and its random source;
// only Reset draws from the random source.
type Env struct {
	params Params
	state  State
	src    *rand.PCG
	rng    *rand.Rand
}

// NewEnv validates params and builds an environment seeded with seed. The
// ball is centered and at rest until the first Reset serves it.
func NewEnv(params Params, seed int64) (*Env, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	src := rand.NewPCG(uint64(seed), serveStream)
	return &Env{
		params: params,
		state:  newState(params),
		src:    src,
		rng:    rand.New(src),
	}, nil
}

// Params returns the environment's fixed parameters.
func (e *Env) Params() Params {
	return e.params
}

// Reset re-centers paddles and ball and serves: the angle is uniform in
// [-ServeAngle, +ServeAngle] and the horizontal direction is a coin flip.
// A non-nil seed reseeds the generator first, making the episode
// reproducible. Scores are kept.
func (e *Env) Reset(seed *int64) (Observation, Info) {
	if seed != nil {
		e.src.Seed(uint64(*seed), serveStream)
	}

	score := e.state.Score
	e.state = newState(e.params)
	e.state.Score = score

	angle := -e.params.ServeAngle + e.rng.Float64()*2*e.params.ServeAngle
	e.state.Ball.VX = e.params.BallInitialSpeed * math.Cos(angle)
	e.state.Ball.VY = e.params.BallInitialSpeed * math.Sin(angle)
	if e.rng.IntN(2) == 0 {
		e.state.Ball.VX = -e.state.Ball.VX
	}

	return encodeObservation(e.state), infoFor(e.state)
}

// ResetScores clears both scores. Reset never does this on its own.
func (e *Env) ResetScores() {
	e.state.Score = Score{}
}

// Step advances the simulation by one frame.
//
// Order: player paddle, ball and walls, scripted opponent, per-step reward
// terms, player paddle hit, opponent paddle hit, goal check. The opponent
// check sees the ball as left by the player check.
func (e *Env) Step(a Action) (StepResult, error) {
	if !a.Valid() {
		return StepResult{}, &InvalidActionError{Action: a}
	}
	if e.state.Episode.Terminated {
		return StepResult{}, ErrEpisodeTerminated
	}

	s := &e.state
	p := e.params

	movePlayer(s, a, p)
	integrateBall(&s.Ball, p.ScreenHeight)
	trackBall(s, p)
	s.Episode.Frame++

	var terms RewardTerms
	shapeMotion(&terms, *s, p)
	s.Episode.LastPlayerY = s.Player.Y

	var ev Events
	if resolvePaddleHit(&s.Ball, s.Player, sidePlayer, p) {
		ev.PlayerHit = true
		shapePlayerHit(&terms, *s, p)
	}
	if resolvePaddleHit(&s.Ball, s.Opponent, sideOpponent, p) {
		ev.OpponentHit = true
	}

	switch {
	case s.Ball.X < 0:
		s.Score.AI++
		ev.Goal = ScorerAI
	case s.Ball.X+s.Ball.Size > p.ScreenWidth:
		s.Score.Player++
		ev.Goal = ScorerPlayer
	}
	if ev.Goal != ScorerNone {
		shapeGoal(&terms, ev.Goal, s.Score)
		s.Episode.Terminated = true
	}

	return StepResult{
		Observation: encodeObservation(*s),
		Reward:      terms.Total(),
		Terminated:  s.Episode.Terminated,
		Info:        infoFor(*s),
		Terms:       terms,
		Events:      ev,
	}, nil
}

// Snapshot returns a copy of the current state.
func (e *Env) Snapshot() Snapshot {
	return e.state
}

// Observation returns the current observation without advancing.
func (e *Env) Observation() Observation {
	return encodeObservation(e.state)
}

// ObservationBounds returns the nominal range of every observation component.
func (e *Env) ObservationBounds() Bounds {
	return BoundsFor(e.params)
}

// ActionSpaceSize returns the number of discrete actions.
func (e *Env) ActionSpaceSize() int {
	return NumActions
}
