package app

import (
	"context"
	"time"

	"quiz-arena-service/internal/domain"
)

// StreakEngine maintains per-user consecutive-day counters. The
// check-then-write runs inside the store's UpdateStreak transaction, so
// concurrent completions cannot double-increment a day.
type StreakEngine struct {
	store StreakStore
	now   func() time.Time
}

func NewStreakEngine(store StreakStore) *StreakEngine {
	return NewStreakEngineWithClock(store, time.Now)
}

// NewStreakEngineWithClock allows deterministic dates in tests.
func NewStreakEngineWithClock(store StreakStore, now func() time.Time) *StreakEngine {
	return &StreakEngine{store: store, now: now}
}

// StreakUpdate reports the outcome of counting today's completion.
type StreakUpdate struct {
	CurrentStreak int
	LongestStreak int
	LongestBefore int
}

// UpdateOnCompletion counts today's daily-challenge completion at most once.
// Same-day repeats are no-ops, yesterday extends the streak, any larger gap
// resets it to 1.
func (e *StreakEngine) UpdateOnCompletion(ctx context.Context, userID string) (StreakUpdate, error) {
	today := e.now().UTC().Format(domain.DateLayout)
	yesterday := e.now().UTC().AddDate(0, 0, -1).Format(domain.DateLayout)

	var longestBefore int
	updated, err := e.store.UpdateStreak(ctx, userID, func(s *domain.UserStreak) {
		longestBefore = s.LongestStreak
		switch s.LastPlayedDate {
		case today:
			// already counted today
		case yesterday:
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		s.LastPlayedDate = today
	})
	if err != nil {
		return StreakUpdate{}, err
	}
	return StreakUpdate{
		CurrentStreak: updated.CurrentStreak,
		LongestStreak: updated.LongestStreak,
		LongestBefore: longestBefore,
	}, nil
}

// DisplayStreak returns the user's streak for display. A streak whose last
// play is older than yesterday reads as 0 without mutating the stored row;
// the stored value is corrected lazily on the next completion.
func (e *StreakEngine) DisplayStreak(ctx context.Context, userID string) (domain.UserStreak, error) {
	streak, ok, err := e.store.GetStreak(ctx, userID)
	if err != nil {
		return domain.UserStreak{}, err
	}
	if !ok {
		return domain.UserStreak{UserID: userID}, nil
	}
	today := e.now().UTC().Format(domain.DateLayout)
	yesterday := e.now().UTC().AddDate(0, 0, -1).Format(domain.DateLayout)
	if streak.LastPlayedDate != today && streak.LastPlayedDate != yesterday {
		streak.CurrentStreak = 0
	}
	return streak, nil
}
