package app_test

import (
	"context"
	"testing"
	"time"

	"quiz-arena-service/internal/app"
	"quiz-arena-service/internal/domain"
	"quiz-arena-service/internal/infra/memory"
)

func newStreakEngine(current *time.Time) (*app.StreakEngine, *memory.AttemptStore) {
	store := memory.NewAttemptStore()
	return app.NewStreakEngineWithClock(store, func() time.Time { return *current }), store
}

func TestStreakFirstCompletion(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	engine, _ := newStreakEngine(&now)

	update, err := engine.UpdateOnCompletion(ctx, "u1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if update.CurrentStreak != 1 || update.LongestStreak != 1 || update.LongestBefore != 0 {
		t.Fatalf("unexpected first-day update: %+v", update)
	}
}

func TestStreakSameDayDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	engine, _ := newStreakEngine(&now)

	if _, err := engine.UpdateOnCompletion(ctx, "u1"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	update, err := engine.UpdateOnCompletion(ctx, "u1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if update.CurrentStreak != 1 {
		t.Fatalf("same-day completion double-counted: %+v", update)
	}
}

func TestStreakConsecutiveDaysExtend(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	engine, _ := newStreakEngine(&now)

	for day := 0; day < 3; day++ {
		if _, err := engine.UpdateOnCompletion(ctx, "u1"); err != nil {
			t.Fatalf("update failed on day %d: %v", day, err)
		}
		now = now.AddDate(0, 0, 1)
	}
	now = now.AddDate(0, 0, -1) // back to the third play day
	streak, err := engine.DisplayStreak(ctx, "u1")
	if err != nil {
		t.Fatalf("display failed: %v", err)
	}
	if streak.CurrentStreak != 3 || streak.LongestStreak != 3 {
		t.Fatalf("expected 3-day streak, got %+v", streak)
	}
}

func TestStreakGapResets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	engine, _ := newStreakEngine(&now)

	if _, err := engine.UpdateOnCompletion(ctx, "u1"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := engine.UpdateOnCompletion(ctx, "u1"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	now = now.AddDate(0, 0, 3)
	update, err := engine.UpdateOnCompletion(ctx, "u1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if update.CurrentStreak != 1 {
		t.Fatalf("expected reset to 1 after gap, got %+v", update)
	}
	if update.LongestStreak != 1 {
		t.Fatalf("longest should survive as the historical max, got %+v", update)
	}
}

func TestStreakLongestSurvivesReset(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	engine, store := newStreakEngine(&now)

	yesterday := now.AddDate(0, 0, -1).Format(domain.DateLayout)
	if _, err := store.UpdateStreak(ctx, "u1", func(s *domain.UserStreak) {
		s.CurrentStreak = 5
		s.LongestStreak = 9
		s.LastPlayedDate = yesterday
	}); err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	update, err := engine.UpdateOnCompletion(ctx, "u1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if update.CurrentStreak != 6 || update.LongestStreak != 9 || update.LongestBefore != 9 {
		t.Fatalf("unexpected update: %+v", update)
	}
}

func TestDisplayStreakBrokenReadsZeroWithoutMutation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	engine, store := newStreakEngine(&now)

	if _, err := engine.UpdateOnCompletion(ctx, "u1"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	now = now.AddDate(0, 0, 5)

	streak, err := engine.DisplayStreak(ctx, "u1")
	if err != nil {
		t.Fatalf("display failed: %v", err)
	}
	if streak.CurrentStreak != 0 {
		t.Fatalf("expected broken streak to display 0, got %+v", streak)
	}
	stored, ok, err := store.GetStreak(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("expected stored streak, got ok=%v err=%v", ok, err)
	}
	if stored.CurrentStreak != 1 {
		t.Fatalf("display mutated the stored streak: %+v", stored)
	}
}

func TestDisplayStreakUnknownUser(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	engine, _ := newStreakEngine(&now)

	streak, err := engine.DisplayStreak(ctx, "nobody")
	if err != nil {
		t.Fatalf("display failed: %v", err)
	}
	if streak.CurrentStreak != 0 || streak.LongestStreak != 0 {
		t.Fatalf("expected zero streak for unknown user, got %+v", streak)
	}
}
