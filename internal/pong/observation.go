package pong

// Observation is the externally visible state vector. The order is fixed:
// player paddle y, opponent paddle y, ball x, ball y, ball vx, ball vy.
// Values are raw coordinates; no normalization is applied.
type Observation [6]float64

const (
	ObsPlayerY = iota
	ObsOpponentY
	ObsBallX
	ObsBallY
	ObsBallVX
	ObsBallVY
)

func encodeObservation(s State) Observation {
	return Observation{
		s.Player.Y,
		s.Opponent.Y,
		s.Ball.X,
		s.Ball.Y,
		s.Ball.VX,
		s.Ball.VY,
	}
}

// Bounds describes the nominal range of each observation component.
// On a terminal step the ball may sit just outside the x range.
type Bounds struct {
	Low  Observation `json:"low"`
	High Observation `json:"high"`
}

// BoundsFor returns the observation bounds implied by p.
func BoundsFor(p Params) Bounds {
	return Bounds{
		Low:  Observation{0, 0, 0, 0, -p.MaxBallSpeed, -p.MaxBallSpeed},
		High: Observation{p.ScreenHeight, p.ScreenHeight, p.ScreenWidth, p.ScreenHeight, p.MaxBallSpeed, p.MaxBallSpeed},
	}
}

// Info carries the running score alongside each observation.
type Info struct {
	PlayerScore int `json:"player_score"`
	AIScore     int `json:"ai_score"`
}

func infoFor(s State) Info {
	return Info{PlayerScore: s.Score.Player, AIScore: s.Score.AI}
}
