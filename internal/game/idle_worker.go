package game

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartIdleWorker starts a background worker that expires idle sessions.
// With Redis it polls the session_idle sorted set; without it, it sweeps
// the manager's sessions directly.
func StartIdleWorker(ctx context.Context, sm *SessionManager, rdb *redis.Client, interval time.Duration) {
	if sm == nil {
		log.Println("[IDLE] Session manager missing; idle worker not started")
		return
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				if rdb == nil {
					for _, id := range sm.ExpireIdle(time.Now()) {
						log.Printf("[IDLE] Expired session %s", id)
					}
					continue
				}
				processIdleSet(ctx, sm, rdb, time.Now())
			}
		}
	}()
}

// processIdleSet expires every session whose idle deadline has passed
func processIdleSet(ctx context.Context, sm *SessionManager, rdb *redis.Client, now time.Time) {
	members, err := rdb.ZRangeByScore(ctx, idleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
		return
	}

	idle := int64(sm.Limits().SessionIdleSeconds)
	for _, id := range members {
		// Attempt to remove (race-safe)
		if removed, _ := rdb.ZRem(ctx, idleSetKey, id).Result(); removed == 0 {
			continue
		}

		last, ok := sm.lastActive(id)
		if !ok {
			// Held by another instance; trust the shared timestamp
			raw, _ := rdb.Get(ctx, lastActiveKey(id)).Result()
			ts, _ := strconv.ParseInt(raw, 10, 64)
			last = time.Unix(ts, 0)
		}
		if now.Unix()-last.Unix() < idle {
			rdb.ZAdd(ctx, idleSetKey, redis.Z{Score: float64(last.Unix() + idle), Member: id})
			continue
		}

		if err := sm.Close(id, StatusExpired); err != nil {
			log.Printf("[IDLE] Session %s not held here: %v", id, err)
			continue
		}
		log.Printf("[IDLE] Expired session %s (idle since %s)", id, last.Format(time.RFC3339))
	}
}
