package pong

import "math"

// Paddle is a vertical paddle. Only Y changes during play.
type Paddle struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"` // top edge
	Width  float64 `json:"width" msgpack:"w"`
	Height float64 `json:"height" msgpack:"h"`
}

// CenterY returns the paddle's vertical center.
func (p Paddle) CenterY() float64 {
	return p.Y + p.Height/2
}

// Right returns the x coordinate of the paddle's right edge.
func (p Paddle) Right() float64 {
	return p.X + p.Width
}

// Ball is the ball's bounding box and velocity.
type Ball struct {
	X    float64 `json:"x" msgpack:"x"` // top-left corner
	Y    float64 `json:"y" msgpack:"y"`
	VX   float64 `json:"vx" msgpack:"vx"`
	VY   float64 `json:"vy" msgpack:"vy"`
	Size float64 `json:"size" msgpack:"s"`
}

// CenterY returns the ball's vertical center.
func (b Ball) CenterY() float64 {
	return b.Y + b.Size/2
}

// Speed returns the magnitude of the ball's velocity.
func (b Ball) Speed() float64 {
	return math.Sqrt(b.VX*b.VX + b.VY*b.VY)
}

// Score counts goals. It survives Reset and is cleared only by Env.ResetScores.
type Score struct {
	Player int `json:"player_score" msgpack:"p"`
	AI     int `json:"ai_score" msgpack:"a"`
}

// Episode is the per-episode bookkeeping.
type Episode struct {
	Frame       int     `json:"frame" msgpack:"f"`
	LastPlayerY float64 `json:"last_player_y" msgpack:"ly"`
	Terminated  bool    `json:"terminated" msgpack:"t"`
}

// State is the complete mutable simulation state of one Env.
// Being a plain value, a copy of State is an immutable snapshot.
type State struct {
	Player   Paddle  `json:"player" msgpack:"pl"`
	Opponent Paddle  `json:"opponent" msgpack:"op"`
	Ball     Ball    `json:"ball" msgpack:"b"`
	Score    Score   `json:"score" msgpack:"sc"`
	Episode  Episode `json:"episode" msgpack:"ep"`
}

// Snapshot is a read-only copy of State handed to rendering collaborators.
type Snapshot = State

// Renderer consumes snapshots. Implementations must not retain references
// into the engine; a Snapshot is a value and is safe to keep.
type Renderer interface {
	Render(Snapshot) error
}

// newState builds the centered layout used at construction and on reset.
// Ball velocity is left at zero; a serve is drawn only by Reset.
func newState(p Params) State {
	paddleY := p.ScreenHeight/2 - p.PaddleHeight/2
	return State{
		Player: Paddle{
			X:      p.PlayerX(),
			Y:      paddleY,
			Width:  p.PaddleWidth,
			Height: p.PaddleHeight,
		},
		Opponent: Paddle{
			X:      p.OpponentX(),
			Y:      paddleY,
			Width:  p.PaddleWidth,
			Height: p.PaddleHeight,
		},
		Ball: Ball{
			X:    p.ScreenWidth/2 - p.BallSize/2,
			Y:    p.ScreenHeight/2 - p.BallSize/2,
			Size: p.BallSize,
		},
		Episode: Episode{LastPlayerY: paddleY},
	}
}
