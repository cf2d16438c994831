package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/pong"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
	ErrSessionClosed   = errors.New("session closed")
)

// SessionManager owns every live environment, keyed by session ID
type SessionManager struct {
	sessions  map[string]*Session
	params    pong.Params
	rdb       *redis.Client  // Redis client for snapshots, idle tracking and events
	db        *sqlx.DB       // SQL DB for session and episode records
	config    *config.Config // Application config
	listeners []func(Event)
	limits    Limits
	now       func() time.Time
	mu        sync.RWMutex
}

// Limits are the knobs an operator can change at runtime
type Limits struct {
	MaxSessions        int `json:"max_sessions"`
	MaxEpisodeFrames   int `json:"max_episode_frames"`
	SessionIdleSeconds int `json:"session_idle_seconds"`
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager initializes the global session manager with Redis, DB and config
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, params pong.Params) {
	Manager = NewSessionManager(db, rdb, cfg, params)
}

// NewSessionManager creates a new session manager. db and rdb may be nil;
// persistence is then skipped.
func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, params pong.Params) *SessionManager {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		params:   params,
		rdb:      rdb,
		db:       db,
		config:   cfg,
		limits: Limits{
			MaxSessions:        cfg.MaxSessions,
			MaxEpisodeFrames:   cfg.MaxEpisodeFrames,
			SessionIdleSeconds: cfg.SessionIdleSeconds,
		},
		now: time.Now,
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateSessionID generates a unique session ID
func generateSessionID() string {
	return "sess_" + generateToken(8)
}

// Params returns the physics parameters every session is built with
func (sm *SessionManager) Params() pong.Params {
	return sm.params
}

// Limits returns the current runtime limits
func (sm *SessionManager) Limits() Limits {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.limits
}

// SetLimits replaces the runtime limits. Zero MaxSessions means unlimited;
// zero MaxEpisodeFrames disables truncation.
func (sm *SessionManager) SetLimits(l Limits) {
	sm.mu.Lock()
	sm.limits = l
	sm.mu.Unlock()
	log.Printf("[SESSION] Limits updated: max_sessions=%d max_episode_frames=%d idle_seconds=%d", l.MaxSessions, l.MaxEpisodeFrames, l.SessionIdleSeconds)
}

// AddListener registers fn to receive events in-process. Without Redis this
// is the only delivery path.
func (sm *SessionManager) AddListener(fn func(Event)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.listeners = append(sm.listeners, fn)
}

// Create starts a new session and serves its first episode
func (sm *SessionManager) Create(seed *int64, label string) (SessionInfo, pong.Observation, pong.Info, error) {
	envSeed := sm.now().UnixNano()
	if seed != nil {
		envSeed = *seed
	}
	env, err := pong.NewEnv(sm.params, envSeed)
	if err != nil {
		return SessionInfo{}, pong.Observation{}, pong.Info{}, err
	}

	now := sm.now()
	s := &Session{
		ID:         generateSessionID(),
		Label:      label,
		CreatedAt:  now,
		env:        env,
		status:     StatusActive,
		lastActive: now,
	}

	sm.mu.Lock()
	if sm.limits.MaxSessions > 0 && len(sm.sessions) >= sm.limits.MaxSessions {
		sm.mu.Unlock()
		return SessionInfo{}, pong.Observation{}, pong.Info{}, ErrSessionLimit
	}
	sm.sessions[s.ID] = s
	sm.mu.Unlock()

	s.mu.Lock()
	obs, info := env.Reset(seed)
	s.episode = episodeProgress{Index: 1, Seed: seed, StartedAt: now}
	view := s.info()
	s.mu.Unlock()

	log.Printf("[SESSION] Created %s label=%q", s.ID, label)

	sm.insertSession(s, seed)
	sm.touch(s.ID, now)
	sm.saveSnapshot(view)
	sm.publish(Event{Type: EventReset, SessionID: s.ID, Snapshot: &view.Snapshot, Episode: view.EpisodeIndex})

	return view, obs, info, nil
}

// Get returns a view of the session
func (sm *SessionManager) Get(id string) (SessionInfo, error) {
	s, err := sm.lookup(id)
	if err != nil {
		return SessionInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info(), nil
}

// List returns views of all live sessions ordered by creation time
func (sm *SessionManager) List() []SessionInfo {
	sm.mu.RLock()
	all := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		all = append(all, s)
	}
	sm.mu.RUnlock()

	out := make([]SessionInfo, 0, len(all))
	for _, s := range all {
		s.mu.Lock()
		out = append(out, s.info())
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Reset starts a new episode. A running episode with at least one frame is
// recorded as abandoned. clearScores zeroes the score first.
func (sm *SessionManager) Reset(id string, seed *int64, clearScores bool) (ResetOutcome, error) {
	s, err := sm.lookup(id)
	if err != nil {
		return ResetOutcome{}, err
	}

	now := sm.now()
	var ended *EpisodeSummary

	s.mu.Lock()
	if s.status != StatusActive {
		s.mu.Unlock()
		return ResetOutcome{}, ErrSessionClosed
	}
	if !s.episode.Done && s.episode.Frames > 0 {
		sum := s.finishEpisode(OutcomeAbandoned, now)
		ended = &sum
	}
	if clearScores {
		s.env.ResetScores()
	}
	obs, info := s.env.Reset(seed)
	s.episode = episodeProgress{Index: s.episode.Index + 1, Seed: seed, StartedAt: now}
	s.lastActive = now
	view := s.info()
	s.mu.Unlock()

	if ended != nil {
		sm.recordEpisode(*ended)
		sm.publish(Event{Type: EventEpisodeEnd, SessionID: id, Summary: ended})
	}
	sm.touch(id, now)
	sm.saveSnapshot(view)
	sm.publish(Event{Type: EventReset, SessionID: id, Snapshot: &view.Snapshot, Episode: view.EpisodeIndex})

	return ResetOutcome{Observation: obs, Info: info, EpisodeIndex: view.EpisodeIndex}, nil
}

// Step applies one action to the session's environment
func (sm *SessionManager) Step(id string, action pong.Action) (StepOutcome, error) {
	s, err := sm.lookup(id)
	if err != nil {
		return StepOutcome{}, err
	}
	maxFrames := sm.Limits().MaxEpisodeFrames
	now := sm.now()

	s.mu.Lock()
	if s.status != StatusActive {
		s.mu.Unlock()
		return StepOutcome{}, ErrSessionClosed
	}
	if !action.Valid() {
		s.mu.Unlock()
		return StepOutcome{}, &pong.InvalidActionError{Action: action}
	}
	if s.episode.Done {
		s.mu.Unlock()
		return StepOutcome{}, pong.ErrEpisodeTerminated
	}

	res, err := s.env.Step(action)
	if err != nil {
		s.mu.Unlock()
		return StepOutcome{}, err
	}
	s.episode.Frames++
	s.episode.Return += res.Reward
	if res.Events.PlayerHit {
		s.episode.PlayerHits++
	}
	s.lastActive = now

	var ended *EpisodeSummary
	switch {
	case res.Terminated:
		sum := s.finishEpisode(outcomeFor(res.Events.Goal), now)
		ended = &sum
	case maxFrames > 0 && s.episode.Frames >= maxFrames:
		res.Truncated = true
		sum := s.finishEpisode(OutcomeTruncated, now)
		ended = &sum
	}

	out := StepOutcome{
		StepResult:    res,
		EpisodeIndex:  s.episode.Index,
		EpisodeFrames: s.episode.Frames,
		EpisodeReturn: s.episode.Return,
	}
	view := s.info()
	s.mu.Unlock()

	sm.touch(id, now)
	sm.saveSnapshot(view)
	sm.publish(Event{Type: EventStep, SessionID: id, Snapshot: &view.Snapshot, Step: &out.StepResult, Episode: out.EpisodeIndex})
	if ended != nil {
		log.Printf("[SESSION] %s episode %d ended: %s frames=%d return=%.3f", id, ended.Index, ended.Outcome, ended.Frames, ended.TotalReward)
		sm.recordEpisode(*ended)
		sm.publish(Event{Type: EventEpisodeEnd, SessionID: id, Summary: ended})
	}

	return out, nil
}

// Snapshot returns the current state of a session. Sessions not held by this
// process are looked up in the Redis snapshot cache.
func (sm *SessionManager) Snapshot(id string) (pong.Snapshot, error) {
	if s, err := sm.lookup(id); err == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.env.Snapshot(), nil
	}
	rec, err := sm.loadSnapshot(id)
	if err != nil {
		return pong.Snapshot{}, err
	}
	return rec.State, nil
}

// Episodes returns the recent finished episodes held in memory for a session
func (sm *SessionManager) Episodes(id string) ([]EpisodeSummary, error) {
	s, err := sm.lookup(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EpisodeSummary(nil), s.history...), nil
}

// Close ends a session with the given status and drops it from memory
func (sm *SessionManager) Close(id string, status SessionStatus) error {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	now := sm.now()
	var ended *EpisodeSummary

	s.mu.Lock()
	if !s.episode.Done && s.episode.Frames > 0 {
		sum := s.finishEpisode(OutcomeAbandoned, now)
		ended = &sum
	}
	s.status = status
	s.mu.Unlock()

	log.Printf("[SESSION] Closed %s status=%s", id, status)

	if ended != nil {
		sm.recordEpisode(*ended)
	}
	sm.markClosed(id, status, now)

	evType := EventSessionClosed
	if status == StatusExpired {
		evType = EventSessionExpired
	}
	sm.publish(Event{Type: evType, SessionID: id})
	return nil
}

// ExpireIdle closes every session idle for at least the configured idle
// time and returns their IDs. Used when Redis is not available.
func (sm *SessionManager) ExpireIdle(now time.Time) []string {
	idle := time.Duration(sm.Limits().SessionIdleSeconds) * time.Second
	if idle <= 0 {
		return nil
	}

	var stale []string
	sm.mu.RLock()
	for id, s := range sm.sessions {
		s.mu.Lock()
		if now.Sub(s.lastActive) >= idle {
			stale = append(stale, id)
		}
		s.mu.Unlock()
	}
	sm.mu.RUnlock()

	var expired []string
	for _, id := range stale {
		if err := sm.Close(id, StatusExpired); err == nil {
			expired = append(expired, id)
		}
	}
	return expired
}

// lastActive reports when the session was last used
func (sm *SessionManager) lastActive(id string) (time.Time, bool) {
	s, err := sm.lookup(id)
	if err != nil {
		return time.Time{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, true
}

func (sm *SessionManager) lookup(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}
