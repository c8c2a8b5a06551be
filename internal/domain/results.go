package domain

// StartedSession is the response to starting a timed quiz attempt.
type StartedSession struct {
	Session   QuizSession    `json:"session"`
	Questions []QuestionView `json:"questions"`
}

// AnswerResult summarizes the outcome of one answer submission.
type AnswerResult struct {
	IsCorrect      bool   `json:"isCorrect"`
	CorrectAnswer  string `json:"correctAnswer"`
	Explanation    string `json:"explanation"`
	PointsEarned   int    `json:"pointsEarned"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	CurrentIndex   int    `json:"currentIndex"`
	IsLastQuestion bool   `json:"isLastQuestion"`
}

// SessionView is a snapshot of an in-flight or finished session, with the
// questions in their original order and the set of already-answered ids.
type SessionView struct {
	Session             QuizSession    `json:"session"`
	Questions           []QuestionView `json:"questions"`
	AnsweredQuestionIDs []string       `json:"answeredQuestionIds"`
}

// QuestionReview is one row of the post-completion breakdown. Unanswered
// questions appear with an empty SelectedAnswer and zero points.
type QuestionReview struct {
	QuestionID       string   `json:"questionId"`
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	CorrectAnswer    string   `json:"correctAnswer"`
	Explanation      string   `json:"explanation"`
	SelectedAnswer   string   `json:"selectedAnswer"`
	IsCorrect        bool     `json:"isCorrect"`
	PointsEarned     int      `json:"pointsEarned"`
	TimeSpentSeconds int      `json:"timeSpentSeconds"`
}

// SessionResult is the full snapshot returned by completing a session.
type SessionResult struct {
	Session            QuizSession      `json:"session"`
	TotalTimeSeconds   int              `json:"totalTimeSeconds"`
	Accuracy           int              `json:"accuracy"`
	AverageTimeSeconds int              `json:"averageTimeSeconds"`
	Review             []QuestionReview `json:"review"`
}

// ChallengeAnswer is one submitted answer in a daily challenge completion.
type ChallengeAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// ChallengeSession is the response to starting (or resuming) a daily
// challenge attempt.
type ChallengeSession struct {
	Challenge DailyChallenge        `json:"challenge"`
	Attempt   DailyChallengeAttempt `json:"attempt"`
	Questions []QuestionView        `json:"questions"`
}

// ChallengeAnswerResult grades one submitted daily challenge answer.
type ChallengeAnswerResult struct {
	QuestionID    string `json:"questionId"`
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	PointsEarned  int    `json:"pointsEarned"`
}

// ChallengeResult is the outcome of completing a daily challenge attempt.
type ChallengeResult struct {
	Score             int                     `json:"score"`
	CorrectAnswers    int                     `json:"correctAnswers"`
	TotalQuestions    int                     `json:"totalQuestions"`
	BasePoints        int                     `json:"basePoints"`
	StreakMultiplier  float64                 `json:"streakMultiplier"`
	StreakBonusPoints int                     `json:"streakBonusPoints"`
	CurrentStreak     int                     `json:"currentStreak"`
	LongestStreak     int                     `json:"longestStreak"`
	Answers           []ChallengeAnswerResult `json:"answers"`
	IsNewRecord       bool                    `json:"isNewRecord"`
}

// Period selects the leaderboard aggregation window.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all_time"
)

// ParsePeriod normalizes a raw period value, defaulting to all-time.
func ParsePeriod(raw string) Period {
	switch Period(raw) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(raw)
	default:
		return PeriodAllTime
	}
}

// RankingQuery parameterizes a leaderboard read.
type RankingQuery struct {
	Period           Period `json:"period"`
	CategoryID       string `json:"categoryId,omitempty"`
	Limit            int    `json:"limit"`
	Offset           int    `json:"offset"`
	RequestingUserID string `json:"-"`
}

// LeaderboardEntry is one ranked row, derived on read from completed sessions.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"userId"`
	Score       int     `json:"score"`
	GamesPlayed int     `json:"gamesPlayed"`
	Accuracy    float64 `json:"accuracy"`
}

// Ranking is a leaderboard page. UserRank carries the requesting user's own
// position even when it falls outside the page; nil when they have no
// qualifying sessions.
type Ranking struct {
	Entries  []LeaderboardEntry `json:"entries"`
	UserRank *LeaderboardEntry  `json:"userRank,omitempty"`
	Total    int                `json:"total"`
}
