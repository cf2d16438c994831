package pong

import (
	"errors"
	"fmt"
)

// Action is the decision applied to the player paddle for one step.
type Action int

const (
	ActionHold Action = iota
	ActionUp
	ActionDown
)

// NumActions is the size of the discrete action space.
const NumActions = 3

// Valid reports whether a is one of the defined actions.
func (a Action) Valid() bool {
	return a >= ActionHold && a <= ActionDown
}

func (a Action) String() string {
	switch a {
	case ActionHold:
		return "hold"
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// InvalidActionError is returned by Step for an action outside {0, 1, 2}.
type InvalidActionError struct {
	Action Action
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %d: must be 0 (hold), 1 (up) or 2 (down)", int(e.Action))
}

// ErrEpisodeTerminated is returned by Step once a goal has ended the episode.
// The caller must Reset before stepping again.
var ErrEpisodeTerminated = errors.New("episode terminated: reset required")
