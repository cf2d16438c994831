package pong

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidParams is returned when a Params value cannot describe a playable field.
var ErrInvalidParams = errors.New("invalid pong params")

// Params holds the fixed geometry and speed parameters of one environment.
// They are read-only for the lifetime of an Env.
type Params struct {
	ScreenWidth      float64 `json:"screen_width"`
	ScreenHeight     float64 `json:"screen_height"`
	PaddleWidth      float64 `json:"paddle_width"`
	PaddleHeight     float64 `json:"paddle_height"`
	PaddleMargin     float64 `json:"paddle_margin"` // distance from each side wall to the paddle's outer edge
	PlayerSpeed      float64 `json:"player_speed"`
	OpponentSpeed    float64 `json:"opponent_speed"`
	BallSize         float64 `json:"ball_size"`
	BallInitialSpeed float64 `json:"ball_initial_speed"`
	MaxBallSpeed     float64 `json:"max_ball_speed"`
	MaxBounceAngle   float64 `json:"max_bounce_angle"` // radians
	ServeAngle       float64 `json:"serve_angle"`      // radians, serve drawn from [-ServeAngle, +ServeAngle]
	SpeedMultiplier  float64 `json:"speed_multiplier"` // applied on every paddle hit while below MaxBallSpeed
}

// DefaultParams returns the standard 800x600 field.
func DefaultParams() Params {
	return Params{
		ScreenWidth:      800,
		ScreenHeight:     600,
		PaddleWidth:      20,
		PaddleHeight:     100,
		PaddleMargin:     50,
		PlayerSpeed:      13,
		OpponentSpeed:    8,
		BallSize:         20,
		BallInitialSpeed: 10,
		MaxBallSpeed:     18,
		MaxBounceAngle:   math.Pi / 3,
		ServeAngle:       math.Pi / 4,
		SpeedMultiplier:  1.0185,
	}
}

// PlayerX is the fixed left edge of the player paddle.
func (p Params) PlayerX() float64 {
	return p.PaddleMargin
}

// OpponentX is the fixed left edge of the opponent paddle.
func (p Params) OpponentX() float64 {
	return p.ScreenWidth - p.PaddleMargin - p.PaddleWidth
}

// Validate checks that the parameters describe a playable field.
// All violations are reported in a single error wrapping ErrInvalidParams.
func (p Params) Validate() error {
	var errs []string

	positive := []struct {
		name string
		v    float64
	}{
		{"screen_width", p.ScreenWidth},
		{"screen_height", p.ScreenHeight},
		{"paddle_width", p.PaddleWidth},
		{"paddle_height", p.PaddleHeight},
		{"player_speed", p.PlayerSpeed},
		{"opponent_speed", p.OpponentSpeed},
		{"ball_size", p.BallSize},
		{"ball_initial_speed", p.BallInitialSpeed},
		{"max_ball_speed", p.MaxBallSpeed},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			errs = append(errs, f.name+" must be > 0")
		}
	}

	if p.PaddleHeight >= p.ScreenHeight {
		errs = append(errs, "paddle_height must be < screen_height")
	}
	if p.BallSize >= p.ScreenHeight {
		errs = append(errs, "ball_size must be < screen_height")
	}
	if p.PaddleMargin < 0 {
		errs = append(errs, "paddle_margin must be >= 0")
	}
	if p.PlayerX()+p.PaddleWidth >= p.OpponentX() {
		errs = append(errs, "paddles overlap: screen_width too small for paddle_margin and paddle_width")
	}
	if p.BallInitialSpeed > p.MaxBallSpeed {
		errs = append(errs, "ball_initial_speed must be <= max_ball_speed")
	}
	if !(p.MaxBounceAngle > 0 && p.MaxBounceAngle < math.Pi/2) {
		errs = append(errs, "max_bounce_angle must be in (0, pi/2)")
	}
	if !(p.ServeAngle >= 0 && p.ServeAngle < math.Pi/2) {
		errs = append(errs, "serve_angle must be in [0, pi/2)")
	}
	if !(p.SpeedMultiplier >= 1) || math.IsInf(p.SpeedMultiplier, 0) {
		errs = append(errs, "speed_multiplier must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(errs, "; "))
	}
	return nil
}
