package app

import (
	"context"
	"math"
	"sort"
	"time"

	"quiz-arena-service/internal/domain"
)

// DefaultLeaderboardLimit bounds a ranking page when the caller gives none.
const DefaultLeaderboardLimit = 10

// Ranker is the leaderboard read path. Satisfied by LeaderboardAggregator
// and by the redis cache that wraps it.
type Ranker interface {
	GetRanking(ctx context.Context, q domain.RankingQuery) (*domain.Ranking, error)
}

// LeaderboardAggregator computes time-windowed rankings over completed
// sessions on every read. It shares no mutable state with the write paths.
type LeaderboardAggregator struct {
	sessions SessionStore
	now      func() time.Time
}

func NewLeaderboardAggregator(sessions SessionStore) *LeaderboardAggregator {
	return NewLeaderboardAggregatorWithClock(sessions, time.Now)
}

// NewLeaderboardAggregatorWithClock allows deterministic windows in tests.
func NewLeaderboardAggregatorWithClock(sessions SessionStore, now func() time.Time) *LeaderboardAggregator {
	return &LeaderboardAggregator{sessions: sessions, now: now}
}

type userTotals struct {
	userID         string
	score          int
	games          int
	correctAnswers int
	totalQuestions int
}

// GetRanking aggregates completed sessions per user within the period's
// window. Page ranks are positional (offset + index + 1, ties kept in score
// desc / userID asc order); the requesting user's own rank is the count of
// strictly greater scores plus one. The two can disagree for tied scores,
// matching the upstream behavior on purpose.
func (a *LeaderboardAggregator) GetRanking(ctx context.Context, q domain.RankingQuery) (*domain.Ranking, error) {
	filter := domain.SessionFilter{CategoryID: q.CategoryID}
	if start := windowStart(a.now(), q.Period); start != nil {
		filter.CompletedAfter = start
	}

	sessions, err := a.sessions.ListCompletedSessions(ctx, filter)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*userTotals)
	for _, s := range sessions {
		t, ok := byUser[s.UserID]
		if !ok {
			t = &userTotals{userID: s.UserID}
			byUser[s.UserID] = t
		}
		t.score += s.Score
		t.games++
		t.correctAnswers += s.CorrectAnswers
		t.totalQuestions += s.TotalQuestions
	}

	users := make([]*userTotals, 0, len(byUser))
	for _, t := range byUser {
		users = append(users, t)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].score != users[j].score {
			return users[i].score > users[j].score
		}
		return users[i].userID < users[j].userID
	})

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(users) {
		offset = len(users)
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}

	entries := make([]domain.LeaderboardEntry, 0, end-offset)
	for i, t := range users[offset:end] {
		entries = append(entries, entryFor(t, offset+i+1))
	}

	ranking := &domain.Ranking{Entries: entries, Total: len(users)}

	if q.RequestingUserID != "" {
		if mine, ok := byUser[q.RequestingUserID]; ok {
			rank := 1
			for _, t := range users {
				if t.score > mine.score {
					rank++
				}
			}
			entry := entryFor(mine, rank)
			ranking.UserRank = &entry
		}
	}
	return ranking, nil
}

func entryFor(t *userTotals, rank int) domain.LeaderboardEntry {
	accuracy := 0.0
	if t.totalQuestions > 0 {
		accuracy = math.Round(float64(t.correctAnswers)/float64(t.totalQuestions)*100*100) / 100
	}
	return domain.LeaderboardEntry{
		Rank:        rank,
		UserID:      t.userID,
		Score:       t.score,
		GamesPlayed: t.games,
		Accuracy:    accuracy,
	}
}

// windowStart returns the inclusive lower bound for the period, or nil for
// all-time. Windows use the clock's location: today's midnight, the most
// recent Monday, or the first of the month.
func windowStart(now time.Time, p domain.Period) *time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case domain.PeriodDaily:
		return &midnight
	case domain.PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := midnight.AddDate(0, 0, -(weekday - 1))
		return &monday
	case domain.PeriodMonthly:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &first
	default:
		return nil
	}
}
