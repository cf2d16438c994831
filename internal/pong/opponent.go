package pong

// trackBall moves the scripted opponent one step toward the ball's vertical
// center at a fixed speed. It holds when the centers are level.
func trackBall(s *State, p Params) {
	paddleCenter := s.Opponent.CenterY()
	ballCenter := s.Ball.CenterY()

	switch {
	case paddleCenter < ballCenter:
		s.Opponent.Y += p.OpponentSpeed
	case paddleCenter > ballCenter:
		s.Opponent.Y -= p.OpponentSpeed
	}
	clampPaddle(&s.Opponent, p.ScreenHeight)
}
