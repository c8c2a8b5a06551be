package domain

import "time"

// QuestionFilter narrows question lookups. Every field is optional; zero
// values mean "no constraint".
type QuestionFilter struct {
	CategoryID string
	Difficulty Difficulty
	ActiveOnly bool
	Search     string
	Limit      int
}

// SessionFilter narrows completed-session scans for leaderboard aggregation.
type SessionFilter struct {
	CompletedAfter *time.Time
	CategoryID     string
}
