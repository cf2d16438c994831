package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/playmatatu/pongenv/internal/pong"
)

// PhysicsFile mirrors the physics YAML. Every field is optional; absent
// fields keep pong.DefaultParams.
type PhysicsFile struct {
	Screen   *ScreenCfg   `yaml:"screen,omitempty"`
	Paddle   *PaddleCfg   `yaml:"paddle,omitempty"`
	Ball     *BallCfg     `yaml:"ball,omitempty"`
	Opponent *OpponentCfg `yaml:"opponent,omitempty"`
}

type ScreenCfg struct {
	Width  *float64 `yaml:"width"`
	Height *float64 `yaml:"height"`
}

type PaddleCfg struct {
	Width  *float64 `yaml:"width"`
	Height *float64 `yaml:"height"`
	Margin *float64 `yaml:"margin"`
	Speed  *float64 `yaml:"speed"`
}

type OpponentCfg struct {
	Speed *float64 `yaml:"speed"`
}

type BallCfg struct {
	Size            *float64 `yaml:"size"`
	InitialSpeed    *float64 `yaml:"initial_speed"`
	MaxSpeed        *float64 `yaml:"max_speed"`
	MaxBounceAngle  *float64 `yaml:"max_bounce_angle"` // radians
	ServeAngle      *float64 `yaml:"serve_angle"`      // radians
	SpeedMultiplier *float64 `yaml:"speed_multiplier"`
}

// LoadPhysics reads path and merges it over pong.DefaultParams. A missing
// file yields the defaults. The merged result is validated.
func LoadPhysics(path string) (pong.Params, error) {
	params := pong.DefaultParams()
	if path == "" {
		return params, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return params, nil
		}
		return pong.Params{}, fmt.Errorf("read physics config: %w", err)
	}
	return ParsePhysics(b)
}

// ParsePhysics merges a YAML document over pong.DefaultParams.
func ParsePhysics(b []byte) (pong.Params, error) {
	var file PhysicsFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return pong.Params{}, fmt.Errorf("parse physics config: %w", err)
	}

	params := file.apply(pong.DefaultParams())
	if err := params.Validate(); err != nil {
		return pong.Params{}, err
	}
	return params, nil
}

func (f PhysicsFile) apply(p pong.Params) pong.Params {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}

	if f.Screen != nil {
		set(&p.ScreenWidth, f.Screen.Width)
		set(&p.ScreenHeight, f.Screen.Height)
	}
	if f.Paddle != nil {
		set(&p.PaddleWidth, f.Paddle.Width)
		set(&p.PaddleHeight, f.Paddle.Height)
		set(&p.PaddleMargin, f.Paddle.Margin)
		set(&p.PlayerSpeed, f.Paddle.Speed)
	}
	if f.Ball != nil {
		set(&p.BallSize, f.Ball.Size)
		set(&p.BallInitialSpeed, f.Ball.InitialSpeed)
		set(&p.MaxBallSpeed, f.Ball.MaxSpeed)
		set(&p.MaxBounceAngle, f.Ball.MaxBounceAngle)
		set(&p.ServeAngle, f.Ball.ServeAngle)
		set(&p.SpeedMultiplier, f.Ball.SpeedMultiplier)
	}
	if f.Opponent != nil {
		set(&p.OpponentSpeed, f.Opponent.Speed)
	}
	return p
}
