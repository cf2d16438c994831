package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/playmatatu/pongenv/internal/pong"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// idleSetKey is the sorted set of session IDs scored by idle deadline
const idleSetKey = "session_idle"

func snapshotKey(id string) string   { return "session:" + id + ":snapshot" }
func lastActiveKey(id string) string { return "session:" + id + ":last_active" }

// snapshotRecord is the msgpack payload cached in Redis for each session
type snapshotRecord struct {
	State   pong.State    `msgpack:"s"`
	Status  SessionStatus `msgpack:"st"`
	Episode int           `msgpack:"e"`
	Frames  int           `msgpack:"f"`
	Return  float64       `msgpack:"r"`
	SavedAt int64         `msgpack:"t"`
}

// saveSnapshot caches the session view in Redis
func (sm *SessionManager) saveSnapshot(v SessionInfo) {
	if sm.rdb == nil {
		return
	}
	rec := snapshotRecord{
		State:   v.Snapshot,
		Status:  v.Status,
		Episode: v.EpisodeIndex,
		Frames:  v.EpisodeFrames,
		Return:  v.EpisodeReturn,
		SavedAt: sm.now().Unix(),
	}
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		log.Printf("[REDIS] Failed to encode snapshot for %s: %v", v.ID, err)
		return
	}
	ttl := time.Duration(sm.config.SnapshotTTLSeconds) * time.Second
	if err := sm.rdb.Set(context.Background(), snapshotKey(v.ID), data, ttl).Err(); err != nil {
		log.Printf("[REDIS] Failed to save snapshot for %s: %v", v.ID, err)
	}
}

// loadSnapshot reads a cached snapshot from Redis
func (sm *SessionManager) loadSnapshot(id string) (snapshotRecord, error) {
	if sm.rdb == nil {
		return snapshotRecord{}, ErrSessionNotFound
	}
	data, err := sm.rdb.Get(context.Background(), snapshotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snapshotRecord{}, ErrSessionNotFound
		}
		return snapshotRecord{}, fmt.Errorf("load snapshot: %w", err)
	}
	var rec snapshotRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return snapshotRecord{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return rec, nil
}

// touch records activity and schedules the idle expiry check
func (sm *SessionManager) touch(id string, now time.Time) {
	if sm.rdb == nil {
		return
	}
	ctx := context.Background()
	idle := int64(sm.Limits().SessionIdleSeconds)
	sm.rdb.Set(ctx, lastActiveKey(id), strconv.FormatInt(now.Unix(), 10), 0)
	if idle > 0 {
		sm.rdb.ZAdd(ctx, idleSetKey, redis.Z{Score: float64(now.Unix() + idle), Member: id})
	}
}

// insertSession persists a sessions row
func (sm *SessionManager) insertSession(s *Session, seed *int64) {
	if sm.db == nil {
		return
	}
	_, err := sm.db.Exec(`INSERT INTO sessions (session_id, label, seed, status, created_at, last_active) VALUES ($1, $2, $3, $4, $5, $5)`,
		s.ID, s.Label, seed, string(StatusActive), s.CreatedAt)
	if err != nil {
		log.Printf("[DB] Failed to insert session %s: %v", s.ID, err)
	}
}

// recordEpisode persists a finished episode and bumps the session totals
func (sm *SessionManager) recordEpisode(e EpisodeSummary) {
	if sm.db == nil {
		return
	}
	_, err := sm.db.Exec(`
		INSERT INTO episodes (session_id, episode_index, seed, frames, total_reward, outcome, player_score, ai_score, player_hits, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.SessionID, e.Index, e.Seed, e.Frames, e.TotalReward, string(e.Outcome), e.PlayerScore, e.AIScore, e.PlayerHits, e.StartedAt, e.EndedAt)
	if err != nil {
		log.Printf("[DB] Failed to insert episode %d for %s: %v", e.Index, e.SessionID, err)
		return
	}
	if _, err := sm.db.Exec(`UPDATE sessions SET episodes_completed = episodes_completed + 1, last_active = $1 WHERE session_id = $2`, e.EndedAt, e.SessionID); err != nil {
		log.Printf("[DB] Failed to update session %s totals: %v", e.SessionID, err)
	}
}

// markClosed updates the sessions row and drops Redis idle tracking
func (sm *SessionManager) markClosed(id string, status SessionStatus, now time.Time) {
	if sm.db != nil {
		if _, err := sm.db.Exec(`UPDATE sessions SET status = $1, closed_at = $2 WHERE session_id = $3`, string(status), now, id); err != nil {
			log.Printf("[DB] Failed to close session %s: %v", id, err)
		}
	}
	if sm.rdb != nil {
		ctx := context.Background()
		sm.rdb.ZRem(ctx, idleSetKey, id)
		sm.rdb.Del(ctx, lastActiveKey(id))
	}
}
