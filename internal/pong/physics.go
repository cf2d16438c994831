package pong

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampPaddle keeps 0 <= y <= screenHeight-height.
func clampPaddle(p *Paddle, screenHeight float64) {
	p.Y = clamp(p.Y, 0, screenHeight-p.Height)
}

// movePlayer applies the action to the player paddle. Up is toward y=0.
func movePlayer(s *State, a Action, p Params) {
	switch a {
	case ActionUp:
		s.Player.Y -= p.PlayerSpeed
	case ActionDown:
		s.Player.Y += p.PlayerSpeed
	}
	clampPaddle(&s.Player, p.ScreenHeight)
}

// integrateBall advances the ball one step and reflects it off the top and
// bottom walls without energy loss.
func integrateBall(b *Ball, screenHeight float64) {
	b.X += b.VX
	b.Y += b.VY

	if b.Y <= 0 {
		b.Y = 0
		b.VY = -b.VY
	} else if b.Y >= screenHeight-b.Size {
		b.Y = screenHeight - b.Size
		b.VY = -b.VY
	}
}
