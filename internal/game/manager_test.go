package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/pong"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	cfg := &config.Config{MaxSessions: 4, SessionIdleSeconds: 60}
	return NewSessionManager(nil, nil, cfg, pong.DefaultParams())
}

func seed(v int64) *int64 { return &v }

func TestCreateAndGet(t *testing.T) {
	sm := newTestManager(t)
	view, obs, info, err := sm.Create(seed(1), "agent-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if view.ID == "" || view.Status != StatusActive || view.EpisodeIndex != 1 {
		t.Errorf("unexpected view: %+v", view)
	}
	if info.PlayerScore != 0 || info.AIScore != 0 {
		t.Errorf("fresh session should have zero scores: %+v", info)
	}
	if obs[pong.ObsBallVX] == 0 {
		t.Error("first episode should already be served")
	}

	got, err := sm.Get(view.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Label != "agent-a" || got.Snapshot != view.Snapshot {
		t.Errorf("Get returned %+v", got)
	}
}

func TestSessionsMatchStandaloneEnv(t *testing.T) {
	sm := newTestManager(t)
	view, _, _, err := sm.Create(seed(42), "")
	if err != nil {
		t.Fatal(err)
	}

	env, _ := pong.NewEnv(pong.DefaultParams(), 42)
	env.Reset(seed(42))

	for i := 0; i < 300; i++ {
		a := pong.Action(i % pong.NumActions)
		want, werr := env.Step(a)
		got, gerr := sm.Step(view.ID, a)
		if (werr != nil) != (gerr != nil) {
			t.Fatalf("step %d: error mismatch %v vs %v", i, werr, gerr)
		}
		if werr != nil {
			break
		}
		if got.Observation != want.Observation || got.Reward != want.Reward {
			t.Fatalf("step %d diverged", i)
		}
	}
}

func TestSessionLimit(t *testing.T) {
	sm := newTestManager(t)
	for i := 0; i < 4; i++ {
		if _, _, _, err := sm.Create(nil, ""); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, _, _, err := sm.Create(nil, ""); !errors.Is(err, ErrSessionLimit) {
		t.Errorf("expected ErrSessionLimit, got %v", err)
	}

	sm.SetLimits(Limits{MaxSessions: 0})
	if _, _, _, err := sm.Create(nil, ""); err != nil {
		t.Errorf("zero limit should be unlimited: %v", err)
	}
}

func TestUnknownSession(t *testing.T) {
	sm := newTestManager(t)
	if _, err := sm.Step("sess_missing", pong.ActionHold); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Step: %v", err)
	}
	if _, err := sm.Reset("sess_missing", nil, false); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Reset: %v", err)
	}
	if err := sm.Close("sess_missing", StatusClosed); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Close: %v", err)
	}
	if _, err := sm.Snapshot("sess_missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Snapshot: %v", err)
	}
}

func TestStepInvalidAction(t *testing.T) {
	sm := newTestManager(t)
	view, _, _, _ := sm.Create(seed(1), "")

	_, err := sm.Step(view.ID, pong.Action(7))
	var invalid *pong.InvalidActionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidActionError, got %v", err)
	}
	got, _ := sm.Get(view.ID)
	if got.EpisodeFrames != 0 || got.Snapshot != view.Snapshot {
		t.Error("invalid action must not advance the session")
	}
}

func TestEpisodeTerminatesAndIsRecorded(t *testing.T) {
	sm := newTestManager(t)
	view, _, _, _ := sm.Create(seed(1), "")

	var last StepOutcome
	for i := 0; i < 100000; i++ {
		out, err := sm.Step(view.ID, pong.ActionHold)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		last = out
		if out.Terminated {
			break
		}
	}
	if !last.Terminated || last.Truncated {
		t.Fatalf("expected a goal, got %+v", last)
	}

	if _, err := sm.Step(view.ID, pong.ActionHold); !errors.Is(err, pong.ErrEpisodeTerminated) {
		t.Errorf("expected ErrEpisodeTerminated, got %v", err)
	}

	eps, err := sm.Episodes(view.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 1 {
		t.Fatalf("expected 1 episode, got %d", len(eps))
	}
	if eps[0].Frames != last.EpisodeFrames || eps[0].TotalReward != last.EpisodeReturn {
		t.Errorf("summary %+v does not match last step %+v", eps[0], last)
	}
	if eps[0].Outcome != OutcomePlayerGoal && eps[0].Outcome != OutcomeAIGoal {
		t.Errorf("unexpected outcome %s", eps[0].Outcome)
	}

	res, err := sm.Reset(view.ID, seed(2), false)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if res.EpisodeIndex != 2 {
		t.Errorf("expected episode 2, got %d", res.EpisodeIndex)
	}
	if res.Info.PlayerScore+res.Info.AIScore != 1 {
		t.Errorf("scores should survive reset: %+v", res.Info)
	}
}

func TestFrameLimitTruncates(t *testing.T) {
	sm := newTestManager(t)
	sm.SetLimits(Limits{MaxSessions: 4, MaxEpisodeFrames: 5})
	view, _, _, _ := sm.Create(seed(1), "")

	for i := 1; i <= 5; i++ {
		out, err := sm.Step(view.ID, pong.ActionHold)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if out.Terminated {
			t.Fatalf("unexpected goal at step %d", i)
		}
		if got := out.Truncated; got != (i == 5) {
			t.Errorf("step %d: truncated=%v", i, got)
		}
	}
	if _, err := sm.Step(view.ID, pong.ActionHold); !errors.Is(err, pong.ErrEpisodeTerminated) {
		t.Errorf("expected ErrEpisodeTerminated after truncation, got %v", err)
	}

	eps, _ := sm.Episodes(view.ID)
	if len(eps) != 1 || eps[0].Outcome != OutcomeTruncated || eps[0].Frames != 5 {
		t.Errorf("unexpected history %+v", eps)
	}

	if _, err := sm.Reset(view.ID, nil, false); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := sm.Step(view.ID, pong.ActionHold); err != nil {
		t.Errorf("step after reset: %v", err)
	}
}

func TestResetMidEpisodeIsAbandoned(t *testing.T) {
	sm := newTestManager(t)
	view, _, _, _ := sm.Create(seed(3), "")
	sm.Step(view.ID, pong.ActionUp)
	sm.Step(view.ID, pong.ActionUp)

	if _, err := sm.Reset(view.ID, nil, false); err != nil {
		t.Fatal(err)
	}
	eps, _ := sm.Episodes(view.ID)
	if len(eps) != 1 || eps[0].Outcome != OutcomeAbandoned || eps[0].Frames != 2 {
		t.Errorf("unexpected history %+v", eps)
	}

	// A reset with no frames played records nothing.
	sm.Reset(view.ID, nil, false)
	eps, _ = sm.Episodes(view.ID)
	if len(eps) != 1 {
		t.Errorf("expected history to stay at 1, got %d", len(eps))
	}
}

func TestResetClearScores(t *testing.T) {
	sm := newTestManager(t)
	view, _, _, _ := sm.Create(seed(1), "")
	for i := 0; i < 100000; i++ {
		out, err := sm.Step(view.ID, pong.ActionHold)
		if err != nil {
			t.Fatal(err)
		}
		if out.Terminated {
			break
		}
	}

	res, _ := sm.Reset(view.ID, nil, true)
	if res.Info.PlayerScore != 0 || res.Info.AIScore != 0 {
		t.Errorf("clear_scores should zero the score, got %+v", res.Info)
	}
}

func TestCloseAndEvents(t *testing.T) {
	sm := newTestManager(t)

	var (
		mu     sync.Mutex
		events []Event
	)
	sm.AddListener(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	view, _, _, _ := sm.Create(seed(1), "")
	sm.Step(view.ID, pong.ActionHold)
	if err := sm.Close(view.ID, StatusClosed); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := sm.Get(view.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("closed session should be gone, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	var types []string
	for _, ev := range events {
		if ev.SessionID != view.ID {
			t.Errorf("event for wrong session: %+v", ev)
		}
		types = append(types, ev.Type)
	}
	want := []string{EventReset, EventStep, EventSessionClosed}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestUnseededCreateUsesManagerClock(t *testing.T) {
	sm := newTestManager(t)
	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return clock }

	_, a, _, err := sm.Create(nil, "a")
	if err != nil {
		t.Fatal(err)
	}
	_, b, _, err := sm.Create(nil, "b")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same clock should give the same serve: %v vs %v", a, b)
	}

	env, _ := pong.NewEnv(pong.DefaultParams(), clock.UnixNano())
	if want, _ := env.Reset(nil); a != want {
		t.Errorf("serve %v, want %v from clock seed", a, want)
	}
}

func TestExpireIdle(t *testing.T) {
	sm := newTestManager(t)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return clock }

	stale, _, _, _ := sm.Create(nil, "stale")
	clock = clock.Add(45 * time.Second)
	fresh, _, _, _ := sm.Create(nil, "fresh")
	clock = clock.Add(20 * time.Second)

	expired := sm.ExpireIdle(clock)
	if len(expired) != 1 || expired[0] != stale.ID {
		t.Fatalf("expected only %s to expire, got %v", stale.ID, expired)
	}
	if _, err := sm.Get(fresh.ID); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
	if sm.Count() != 1 {
		t.Errorf("expected 1 live session, got %d", sm.Count())
	}
}

func TestConcurrentSessions(t *testing.T) {
	sm := newTestManager(t)
	sm.SetLimits(Limits{MaxEpisodeFrames: 200})

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		view, _, _, err := sm.Create(seed(int64(w)), "")
		if err != nil {
			t.Fatal(err)
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				out, err := sm.Step(id, pong.Action(i%pong.NumActions))
				if errors.Is(err, pong.ErrEpisodeTerminated) {
					sm.Reset(id, nil, false)
					continue
				}
				if err != nil {
					t.Errorf("step: %v", err)
					return
				}
				if out.Terminated || out.Truncated {
					sm.Reset(id, nil, false)
				}
			}
		}(view.ID)
	}
	wg.Wait()

	if len(sm.List()) != 4 {
		t.Errorf("expected 4 sessions listed")
	}
}
