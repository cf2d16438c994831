package pong

import "math"

type side int

const (
	sidePlayer side = iota
	sideOpponent
)

// overlaps is a strict axis-aligned rectangle test: touching edges do not collide.
func overlaps(b Ball, p Paddle) bool {
	return b.X < p.X+p.Width &&
		b.X+b.Size > p.X &&
		b.Y < p.Y+p.Height &&
		b.Y+b.Size > p.Y
}

// resolvePaddleHit bounces the ball off the paddle if they overlap and
// reports whether a hit happened.
//
// The outgoing angle depends only on where the ball struck relative to the
// paddle center; the pre-collision speed is kept, then increased by
// SpeedMultiplier only while below MaxBallSpeed. The last speed-up may carry
// the ball past the cap by up to one multiplier step.
func resolvePaddleHit(b *Ball, p Paddle, s side, params Params) bool {
	if !overlaps(*b, p) {
		return false
	}

	relativeIntersect := (p.CenterY() - b.CenterY()) / (p.Height / 2)
	bounceAngle := relativeIntersect * params.MaxBounceAngle

	speed := b.Speed()
	if speed == 0 || math.IsNaN(speed) {
		speed = params.BallInitialSpeed
	}

	vx := math.Abs(speed * math.Cos(bounceAngle))
	vy := speed * -math.Sin(bounceAngle)

	switch s {
	case sidePlayer:
		b.X = p.Right()
	case sideOpponent:
		vx = -vx
		b.X = p.X - b.Size
	}

	if math.Sqrt(vx*vx+vy*vy) < params.MaxBallSpeed {
		vx *= params.SpeedMultiplier
		vy *= params.SpeedMultiplier
	}

	b.VX = vx
	b.VY = vy
	return true
}
