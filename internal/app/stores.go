package app

import (
	"context"
	"time"

	"quiz-arena-service/internal/domain"
)

// CategoryStore is the read-only category collaborator.
type CategoryStore interface {
	// FindActive returns the category when it exists and is active,
	// domain.ErrCategoryNotFound otherwise.
	FindActive(ctx context.Context, id string) (domain.Category, error)
}

// QuestionStore is the read-only question collaborator.
type QuestionStore interface {
	// ListActive lists questions matching the filter.
	ListActive(ctx context.Context, f domain.QuestionFilter) ([]domain.Question, error)
	// FindByIDs returns questions in the order of the requested ids.
	// Missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Question, error)
	// CategoriesWithQuestions lists active categories having at least
	// minQuestions active questions.
	CategoriesWithQuestions(ctx context.Context, minQuestions int) ([]domain.Category, error)
}

// SessionStore persists quiz sessions and their answers. Implementations
// must make RecordAnswer and FinalizeSession atomic; the engine keeps no
// state of its own.
type SessionStore interface {
	CreateSession(ctx context.Context, s *domain.QuizSession) error
	// GetSession returns domain.ErrSessionNotFound for unknown ids.
	GetSession(ctx context.Context, id string) (domain.QuizSession, error)
	// RecordAnswer inserts the answer and applies the session's score,
	// correct-answer and index increments in one transaction. A duplicate
	// (session, question) pair fails with domain.ErrAnswerAlreadyRecorded
	// and leaves the session untouched; a terminal session fails with
	// domain.ErrSessionNotActive. Returns the updated session.
	RecordAnswer(ctx context.Context, ans domain.UserAnswer) (domain.QuizSession, error)
	AnswersBySession(ctx context.Context, sessionID string) ([]domain.UserAnswer, error)
	// FinalizeSession moves an in-progress session to the given terminal
	// status. Fails with domain.ErrSessionNotActive when the session is
	// already terminal.
	FinalizeSession(ctx context.Context, id string, status domain.SessionStatus, completedAt time.Time) (domain.QuizSession, error)
	// ListCompletedSessions returns completed sessions matching the filter.
	ListCompletedSessions(ctx context.Context, f domain.SessionFilter) ([]domain.QuizSession, error)
}

// ChallengeStore persists daily challenges and attempts.
type ChallengeStore interface {
	GetChallengeByDate(ctx context.Context, date string) (domain.DailyChallenge, error)
	GetChallenge(ctx context.Context, id string) (domain.DailyChallenge, error)
	// CreateChallenge fails with domain.ErrChallengeExists when a challenge
	// for the same date already exists.
	CreateChallenge(ctx context.Context, c *domain.DailyChallenge) error
	GetAttempt(ctx context.Context, id string) (domain.DailyChallengeAttempt, error)
	GetAttemptForUser(ctx context.Context, challengeID, userID string) (domain.DailyChallengeAttempt, error)
	// CreateAttempt fails with domain.ErrAttemptExists when the
	// (challenge, user) pair already has an attempt.
	CreateAttempt(ctx context.Context, a *domain.DailyChallengeAttempt) error
	// FinalizeAttempt records the score exactly once; a second call fails
	// with domain.ErrAttemptCompleted.
	FinalizeAttempt(ctx context.Context, id string, score, correctAnswers int, completedAt time.Time) (domain.DailyChallengeAttempt, error)
}

// StreakStore persists per-user streak counters.
type StreakStore interface {
	// GetStreak reports ok=false when the user has no streak row yet.
	GetStreak(ctx context.Context, userID string) (domain.UserStreak, bool, error)
	// UpdateStreak loads (or initializes) the user's row, applies fn and
	// persists the result within one transaction.
	UpdateStreak(ctx context.Context, userID string, fn func(*domain.UserStreak)) (domain.UserStreak, error)
}
