package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// DateLayout is the calendar-day key used for daily challenges and streaks.
// Date keys are always computed in UTC.
const DateLayout = "2006-01-02"

// Difficulty grades a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every known difficulty grade.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// SessionStatus tracks the quiz session state machine. Completed and
// abandoned are terminal.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Category groups questions; only active categories are playable.
type Category struct {
	bun.BaseModel `bun:"table:categories" json:"-"`

	ID     string `bun:"id,pk" json:"id"`
	Name   string `bun:"name" json:"name"`
	Active bool   `bun:"active" json:"active"`
}

// Question is an MCQ with a single correct answer. CorrectAnswer and
// Explanation are never serialized to clients mid-attempt.
type Question struct {
	bun.BaseModel `bun:"table:questions" json:"-"`

	ID               string     `bun:"id,pk" json:"id"`
	CategoryID       string     `bun:"category_id" json:"categoryId"`
	Text             string     `bun:"text" json:"text"`
	Options          []string   `bun:"options,type:jsonb" json:"options"`
	CorrectAnswer    string     `bun:"correct_answer" json:"-"`
	Explanation      string     `bun:"explanation" json:"-"`
	Points           int        `bun:"points" json:"points"`
	TimeLimitSeconds int        `bun:"time_limit_seconds" json:"timeLimitSeconds"`
	Difficulty       Difficulty `bun:"difficulty" json:"difficulty"`
	Active           bool       `bun:"active" json:"active"`
}

// View strips the fields a player must not see before answering.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:               q.ID,
		CategoryID:       q.CategoryID,
		Text:             q.Text,
		Options:          q.Options,
		Points:           q.Points,
		TimeLimitSeconds: q.TimeLimitSeconds,
		Difficulty:       q.Difficulty,
	}
}

// QuestionView is the client-safe shape of a question.
type QuestionView struct {
	ID               string     `json:"id"`
	CategoryID       string     `json:"categoryId"`
	Text             string     `json:"text"`
	Options          []string   `json:"options"`
	Points           int        `json:"points"`
	TimeLimitSeconds int        `json:"timeLimitSeconds"`
	Difficulty       Difficulty `json:"difficulty"`
}

// QuizSession is one timed attempt. QuestionIDs is fixed at creation;
// Score, CorrectAnswers and CurrentIndex only move while in progress.
type QuizSession struct {
	bun.BaseModel `bun:"table:quiz_sessions" json:"-"`

	ID             string        `bun:"id,pk" json:"id"`
	UserID         string        `bun:"user_id" json:"userId"`
	CategoryID     string        `bun:"category_id" json:"categoryId"`
	Status         SessionStatus `bun:"status" json:"status"`
	TotalQuestions int           `bun:"total_questions" json:"totalQuestions"`
	QuestionIDs    []string      `bun:"question_ids,type:jsonb" json:"questionIds"`
	CurrentIndex   int           `bun:"current_index" json:"currentIndex"`
	Score          int           `bun:"score" json:"score"`
	CorrectAnswers int           `bun:"correct_answers" json:"correctAnswers"`
	StartedAt      time.Time     `bun:"started_at" json:"startedAt"`
	CompletedAt    *time.Time    `bun:"completed_at" json:"completedAt,omitempty"`
}

// HasQuestion reports whether id belongs to the session's fixed question set.
func (s QuizSession) HasQuestion(id string) bool {
	for _, qid := range s.QuestionIDs {
		if qid == id {
			return true
		}
	}
	return false
}

// UserAnswer records one answer to one question within one session.
// The (SessionID, QuestionID) pair is unique; rows are write-once.
type UserAnswer struct {
	bun.BaseModel `bun:"table:user_answers" json:"-"`

	SessionID        string `bun:"session_id,pk" json:"sessionId"`
	QuestionID       string `bun:"question_id,pk" json:"questionId"`
	SelectedAnswer   string `bun:"selected_answer" json:"selectedAnswer"`
	IsCorrect        bool   `bun:"is_correct" json:"isCorrect"`
	PointsEarned     int    `bun:"points_earned" json:"pointsEarned"`
	TimeSpentSeconds int    `bun:"time_spent_seconds" json:"timeSpentSeconds"`
}

// DailyChallenge is the shared challenge for one UTC calendar day.
type DailyChallenge struct {
	bun.BaseModel `bun:"table:daily_challenges" json:"-"`

	ID           string     `bun:"id,pk" json:"id"`
	Date         string     `bun:"challenge_date" json:"date"`
	CategoryID   string     `bun:"category_id" json:"categoryId"`
	Difficulty   Difficulty `bun:"difficulty" json:"difficulty"`
	QuestionIDs  []string   `bun:"question_ids,type:jsonb" json:"questionIds"`
	RewardPoints int        `bun:"reward_points" json:"rewardPoints"`
}

// DailyChallengeAttempt is one user's pass at one challenge. CompletedAt
// is nil until the attempt is finalized, and terminal once set.
type DailyChallengeAttempt struct {
	bun.BaseModel `bun:"table:daily_challenge_attempts" json:"-"`

	ID             string     `bun:"id,pk" json:"id"`
	ChallengeID    string     `bun:"challenge_id" json:"challengeId"`
	UserID         string     `bun:"user_id" json:"userId"`
	Score          int        `bun:"score" json:"score"`
	CorrectAnswers int        `bun:"correct_answers" json:"correctAnswers"`
	CompletedAt    *time.Time `bun:"completed_at" json:"completedAt,omitempty"`
}

// Completed reports whether the attempt has been finalized.
func (a DailyChallengeAttempt) Completed() bool {
	return a.CompletedAt != nil
}

// UserStreak is the per-user consecutive-day counter. LastPlayedDate is a
// UTC date key; longest never drops below current.
type UserStreak struct {
	bun.BaseModel `bun:"table:user_streaks" json:"-"`

	UserID         string `bun:"user_id,pk" json:"userId"`
	CurrentStreak  int    `bun:"current_streak" json:"currentStreak"`
	LongestStreak  int    `bun:"longest_streak" json:"longestStreak"`
	LastPlayedDate string `bun:"last_played_date" json:"lastPlayedDate,omitempty"`
}
