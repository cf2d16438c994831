package pong

import "math"

const (
	stepPenalty     = -0.1
	jitterWeight    = 0.01
	proximityWeight = 0.1
	forwardBonus    = 0.1
	hitBonus        = 10.0
	placementWeight = 5.0
	concedePenalty  = -50.0
	goalBonus       = 30.0
	scoreDiffWeight = 5
)

// RewardTerms is the per-step reward broken down by shaping term.
// Terms that did not apply this step are zero.
type RewardTerms struct {
	Step      float64 `json:"step"`
	Jitter    float64 `json:"jitter"`
	Proximity float64 `json:"proximity"`
	Forward   float64 `json:"forward"`
	Hit       float64 `json:"hit"`
	Placement float64 `json:"placement"`
	Goal      float64 `json:"goal"`
	ScoreDiff float64 `json:"score_diff"`
}

// Total sums the terms in a fixed order so the scalar reward is bit-stable.
func (t RewardTerms) Total() float64 {
	r := t.Step
	r += t.Jitter
	r += t.Proximity
	r += t.Forward
	r += t.Hit
	r += t.Placement
	r += t.Goal
	r += t.ScoreDiff
	return r
}

// shapeMotion fills the terms that are evaluated every step, before paddle
// collisions: step penalty, jitter, vertical alignment and forward motion.
func shapeMotion(t *RewardTerms, s State, p Params) {
	t.Step = stepPenalty
	t.Jitter = -(math.Abs(s.Player.Y-s.Episode.LastPlayerY) * jitterWeight)

	distance := math.Abs(s.Player.CenterY() - s.Ball.CenterY())
	t.Proximity = (1 - distance/(p.ScreenHeight/2)) * proximityWeight

	if s.Ball.VX > 0 {
		t.Forward = forwardBonus
	}
}

// shapePlayerHit rewards a return by the player, plus a bonus for placing
// the ball far from the opponent's paddle. Opponent hits are not rewarded.
func shapePlayerHit(t *RewardTerms, s State, p Params) {
	t.Hit = hitBonus
	distance := math.Abs(s.Opponent.CenterY() - s.Ball.CenterY())
	t.Placement = (distance / (p.ScreenHeight / 2)) * placementWeight
}

// shapeGoal applies the goal terms using scores after the increment.
func shapeGoal(t *RewardTerms, scorer Scorer, score Score) {
	diff := score.Player - score.AI
	switch scorer {
	case ScorerAI:
		t.Goal = concedePenalty
		t.ScoreDiff = float64(diff * scoreDiffWeight)
	case ScorerPlayer:
		t.Goal = goalBonus
		if diff > 0 {
			t.ScoreDiff = float64(diff * scoreDiffWeight)
		}
	}
}
