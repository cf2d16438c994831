package game

import (
	"sync"
	"time"

	"github.com/playmatatu/pongenv/internal/pong"
)

// historyLimit caps the in-memory episode history kept per session.
const historyLimit = 100

// Session is one environment owned by the manager. All access to env and
// the episode counters goes through mu.
type Session struct {
	ID        string
	Label     string
	CreatedAt time.Time

	mu         sync.Mutex
	env        *pong.Env
	status     SessionStatus
	lastActive time.Time
	episode    episodeProgress
	completed  int
	history    []EpisodeSummary
}

// episodeProgress tracks the running episode at the session layer.
type episodeProgress struct {
	Index      int
	Seed       *int64
	Frames     int
	Return     float64
	PlayerHits int
	StartedAt  time.Time
	Done       bool
}

// EpisodeSummary is a finished episode.
type EpisodeSummary struct {
	SessionID   string         `json:"session_id"`
	Index       int            `json:"episode_index"`
	Seed        *int64         `json:"seed,omitempty"`
	Frames      int            `json:"frames"`
	TotalReward float64        `json:"total_reward"`
	Outcome     EpisodeOutcome `json:"outcome"`
	PlayerScore int            `json:"player_score"`
	AIScore     int            `json:"ai_score"`
	PlayerHits  int            `json:"player_hits"`
	StartedAt   time.Time      `json:"started_at"`
	EndedAt     time.Time      `json:"ended_at"`
}

// SessionInfo is a point-in-time view of a session, safe to serialize.
type SessionInfo struct {
	ID                string        `json:"session_id"`
	Label             string        `json:"label,omitempty"`
	Status            SessionStatus `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	LastActive        time.Time     `json:"last_active"`
	EpisodeIndex      int           `json:"episode_index"`
	EpisodeFrames     int           `json:"episode_frames"`
	EpisodeReturn     float64       `json:"episode_return"`
	EpisodeDone       bool          `json:"episode_done"`
	EpisodesCompleted int           `json:"episodes_completed"`
	Snapshot          pong.Snapshot `json:"snapshot"`
}

// StepOutcome is an engine step as seen through the session layer.
// Truncated is set when the session's frame limit closed the episode.
type StepOutcome struct {
	pong.StepResult
	EpisodeIndex  int     `json:"episode_index"`
	EpisodeFrames int     `json:"episode_frames"`
	EpisodeReturn float64 `json:"episode_return"`
}

// ResetOutcome is the result of a session reset.
type ResetOutcome struct {
	Observation  pong.Observation `json:"observation"`
	Info         pong.Info        `json:"info"`
	EpisodeIndex int              `json:"episode"`
}

// info must be called with s.mu held.
func (s *Session) info() SessionInfo {
	return SessionInfo{
		ID:                s.ID,
		Label:             s.Label,
		Status:            s.status,
		CreatedAt:         s.CreatedAt,
		LastActive:        s.lastActive,
		EpisodeIndex:      s.episode.Index,
		EpisodeFrames:     s.episode.Frames,
		EpisodeReturn:     s.episode.Return,
		EpisodeDone:       s.episode.Done,
		EpisodesCompleted: s.completed,
		Snapshot:          s.env.Snapshot(),
	}
}

// finishEpisode closes the running episode. Must be called with s.mu held.
func (s *Session) finishEpisode(outcome EpisodeOutcome, now time.Time) EpisodeSummary {
	snap := s.env.Snapshot()
	sum := EpisodeSummary{
		SessionID:   s.ID,
		Index:       s.episode.Index,
		Seed:        s.episode.Seed,
		Frames:      s.episode.Frames,
		TotalReward: s.episode.Return,
		Outcome:     outcome,
		PlayerScore: snap.Score.Player,
		AIScore:     snap.Score.AI,
		PlayerHits:  s.episode.PlayerHits,
		StartedAt:   s.episode.StartedAt,
		EndedAt:     now,
	}
	s.episode.Done = true
	s.completed++
	s.history = append(s.history, sum)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
	return sum
}

func outcomeFor(g pong.Scorer) EpisodeOutcome {
	if g == pong.ScorerPlayer {
		return OutcomePlayerGoal
	}
	return OutcomeAIGoal
}
