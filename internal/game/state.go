package game

// SessionStatus represents the lifecycle state of a session
type SessionStatus string

const (
	StatusActive  SessionStatus = "ACTIVE"
	StatusClosed  SessionStatus = "CLOSED"
	StatusExpired SessionStatus = "EXPIRED"
)

// EpisodeOutcome records how an episode ended
type EpisodeOutcome string

const (
	OutcomePlayerGoal EpisodeOutcome = "player_goal"
	OutcomeAIGoal     EpisodeOutcome = "ai_goal"
	OutcomeTruncated  EpisodeOutcome = "truncated"
	OutcomeAbandoned  EpisodeOutcome = "abandoned" // reset or closed mid-episode
)

// Event types published on the session_events channel
const (
	EventReset          = "reset"
	EventStep           = "step"
	EventEpisodeEnd     = "episode_end"
	EventSessionClosed  = "session_closed"
	EventSessionExpired = "session_expired"
)
