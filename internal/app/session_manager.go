package app

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"quiz-arena-service/internal/domain"
	"quiz-arena-service/internal/scoring"
)

// DefaultQuestionCount is used when a start request does not say how many
// questions it wants.
const DefaultQuestionCount = 10

// SessionManager owns the timed-quiz attempt state machine.
type SessionManager struct {
	categories   CategoryStore
	questions    QuestionStore
	sessions     SessionStore
	now          func() time.Time
	rnd          *rand.Rand
	defaultCount int
}

func NewSessionManager(categories CategoryStore, questions QuestionStore, sessions SessionStore) *SessionManager {
	return NewSessionManagerWithClock(categories, questions, sessions, time.Now)
}

// NewSessionManagerWithClock allows deterministic timestamps in tests.
func NewSessionManagerWithClock(categories CategoryStore, questions QuestionStore, sessions SessionStore, now func() time.Time) *SessionManager {
	return &SessionManager{
		categories:   categories,
		questions:    questions,
		sessions:     sessions,
		now:          now,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		defaultCount: DefaultQuestionCount,
	}
}

// SetDefaultQuestionCount overrides the fallback question count for start
// requests that do not specify one.
func (m *SessionManager) SetDefaultQuestionCount(n int) {
	if n > 0 {
		m.defaultCount = n
	}
}

// Start creates a new in-progress session over a random selection of
// questions from the category. Correct answers are never included in the
// returned question views.
func (m *SessionManager) Start(ctx context.Context, userID, categoryID string, difficulty domain.Difficulty, questionCount int) (*domain.StartedSession, error) {
	if questionCount <= 0 {
		questionCount = m.defaultCount
	}
	if _, err := m.categories.FindActive(ctx, categoryID); err != nil {
		return nil, err
	}

	eligible, err := m.questions.ListActive(ctx, domain.QuestionFilter{
		CategoryID: categoryID,
		Difficulty: difficulty,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, domain.ErrNoQuestionsAvailable
	}

	m.rnd.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > questionCount {
		eligible = eligible[:questionCount]
	}

	ids := make([]string, len(eligible))
	views := make([]domain.QuestionView, len(eligible))
	for i, q := range eligible {
		ids[i] = q.ID
		views[i] = q.View()
	}

	session := &domain.QuizSession{
		ID:             uuid.NewString(),
		UserID:         userID,
		CategoryID:     categoryID,
		Status:         domain.SessionInProgress,
		TotalQuestions: len(ids),
		QuestionIDs:    ids,
		StartedAt:      m.now().UTC(),
	}
	if err := m.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return &domain.StartedSession{Session: *session, Questions: views}, nil
}

// SubmitAnswer scores one answer and applies it atomically. The duplicate
// check lives in the store so concurrent retries cannot double-score.
func (m *SessionManager) SubmitAnswer(ctx context.Context, userID, sessionID, questionID, selectedAnswer string, timeSpentSeconds int) (*domain.AnswerResult, error) {
	session, err := m.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionInProgress {
		return nil, fmt.Errorf("session is %s: %w", session.Status, domain.ErrSessionNotActive)
	}
	if !session.HasQuestion(questionID) {
		return nil, domain.ErrQuestionNotInSession
	}

	questions, err := m.questions.FindByIDs(ctx, []string{questionID})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrQuestionNotFound
	}
	question := questions[0]

	isCorrect := selectedAnswer == question.CorrectAnswer
	points, _ := scoring.Points(question.Points, question.TimeLimitSeconds, timeSpentSeconds, isCorrect)

	updated, err := m.sessions.RecordAnswer(ctx, domain.UserAnswer{
		SessionID:        sessionID,
		QuestionID:       questionID,
		SelectedAnswer:   selectedAnswer,
		IsCorrect:        isCorrect,
		PointsEarned:     points,
		TimeSpentSeconds: timeSpentSeconds,
	})
	if err != nil {
		return nil, err
	}

	return &domain.AnswerResult{
		IsCorrect:      isCorrect,
		CorrectAnswer:  question.CorrectAnswer,
		Explanation:    question.Explanation,
		PointsEarned:   points,
		Score:          updated.Score,
		CorrectAnswers: updated.CorrectAnswers,
		CurrentIndex:   updated.CurrentIndex,
		IsLastQuestion: updated.CurrentIndex >= updated.TotalQuestions,
	}, nil
}

// GetSession returns the session, its questions in original order and the
// ids already answered.
func (m *SessionManager) GetSession(ctx context.Context, userID, sessionID string) (*domain.SessionView, error) {
	session, err := m.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	views, _, err := m.orderedQuestions(ctx, session.QuestionIDs)
	if err != nil {
		return nil, err
	}

	answers, err := m.sessions.AnswersBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	answered := make([]string, 0, len(answers))
	for _, a := range answers {
		answered = append(answered, a.QuestionID)
	}

	return &domain.SessionView{
		Session:             session,
		Questions:           views,
		AnsweredQuestionIDs: answered,
	}, nil
}

// Complete finalizes an in-progress session as completed or abandoned and
// builds the per-question review in the original question order. Unanswered
// questions count as wrong. Calling it on a terminal session fails.
func (m *SessionManager) Complete(ctx context.Context, userID, sessionID string, abandon bool) (*domain.SessionResult, error) {
	session, err := m.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionInProgress {
		return nil, fmt.Errorf("session already %s: %w", session.Status, domain.ErrSessionNotActive)
	}

	status := domain.SessionCompleted
	if abandon {
		status = domain.SessionAbandoned
	}
	updated, err := m.sessions.FinalizeSession(ctx, sessionID, status, m.now().UTC())
	if err != nil {
		return nil, err
	}

	answers, err := m.sessions.AnswersBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]domain.UserAnswer, len(answers))
	totalTime := 0
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
		totalTime += a.TimeSpentSeconds
	}

	_, questions, err := m.orderedQuestions(ctx, updated.QuestionIDs)
	if err != nil {
		return nil, err
	}
	review := make([]domain.QuestionReview, 0, len(questions))
	for _, q := range questions {
		row := domain.QuestionReview{
			QuestionID:    q.ID,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if a, ok := byQuestion[q.ID]; ok {
			row.SelectedAnswer = a.SelectedAnswer
			row.IsCorrect = a.IsCorrect
			row.PointsEarned = a.PointsEarned
			row.TimeSpentSeconds = a.TimeSpentSeconds
		}
		review = append(review, row)
	}

	accuracy := 0
	averageTime := 0
	if answered := len(answers); answered > 0 {
		accuracy = int(math.Round(float64(updated.CorrectAnswers) / float64(answered) * 100))
		averageTime = int(math.Round(float64(totalTime) / float64(answered)))
	}

	return &domain.SessionResult{
		Session:            updated,
		TotalTimeSeconds:   totalTime,
		Accuracy:           accuracy,
		AverageTimeSeconds: averageTime,
		Review:             review,
	}, nil
}

func (m *SessionManager) ownedSession(ctx context.Context, userID, sessionID string) (domain.QuizSession, error) {
	session, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.QuizSession{}, err
	}
	if session.UserID != userID {
		return domain.QuizSession{}, domain.ErrNotSessionOwner
	}
	return session, nil
}

// orderedQuestions fetches questions and re-sorts them to match ids exactly.
func (m *SessionManager) orderedQuestions(ctx context.Context, ids []string) ([]domain.QuestionView, []domain.Question, error) {
	fetched, err := m.questions.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]domain.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}
	views := make([]domain.QuestionView, 0, len(ids))
	questions := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			continue
		}
		views = append(views, q.View())
		questions = append(questions, q)
	}
	return views, questions, nil
}
