package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"quiz-arena-service/internal/domain"
)

// AttemptStore is an in-memory implementation of the session, challenge and
// streak stores. A single mutex stands in for the database transaction, so
// it gives the same atomicity and uniqueness guarantees as the postgres
// store. Used for tests and for running the server without postgres.
type AttemptStore struct {
	mu         sync.RWMutex
	sessions   map[string]domain.QuizSession
	answers    map[string]map[string]domain.UserAnswer // sessionID -> questionID
	challenges map[string]domain.DailyChallenge        // by id
	byDate     map[string]string                       // date -> challenge id
	attempts   map[string]domain.DailyChallengeAttempt // by id
	byUser     map[string]string                       // challengeID+"/"+userID -> attempt id
	streaks    map[string]domain.UserStreak
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		sessions:   make(map[string]domain.QuizSession),
		answers:    make(map[string]map[string]domain.UserAnswer),
		challenges: make(map[string]domain.DailyChallenge),
		byDate:     make(map[string]string),
		attempts:   make(map[string]domain.DailyChallengeAttempt),
		byUser:     make(map[string]string),
		streaks:    make(map[string]domain.UserStreak),
	}
}

func (s *AttemptStore) CreateSession(_ context.Context, session *domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	s.sessions[session.ID] = cloneSession(*session)
	return nil
}

func (s *AttemptStore) GetSession(_ context.Context, id string) (domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *AttemptStore) RecordAnswer(_ context.Context, ans domain.UserAnswer) (domain.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[ans.SessionID]
	if !ok {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	if session.Status != domain.SessionInProgress {
		return domain.QuizSession{}, domain.ErrSessionNotActive
	}
	byQuestion := s.answers[ans.SessionID]
	if byQuestion == nil {
		byQuestion = make(map[string]domain.UserAnswer)
		s.answers[ans.SessionID] = byQuestion
	}
	if _, dup := byQuestion[ans.QuestionID]; dup {
		return domain.QuizSession{}, domain.ErrAnswerAlreadyRecorded
	}

	byQuestion[ans.QuestionID] = ans
	session.Score += ans.PointsEarned
	if ans.IsCorrect {
		session.CorrectAnswers++
	}
	session.CurrentIndex++
	s.sessions[ans.SessionID] = session
	return cloneSession(session), nil
}

func (s *AttemptStore) AnswersBySession(_ context.Context, sessionID string) ([]domain.UserAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byQuestion := s.answers[sessionID]
	out := make([]domain.UserAnswer, 0, len(byQuestion))
	for _, a := range byQuestion {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (s *AttemptStore) FinalizeSession(_ context.Context, id string, status domain.SessionStatus, completedAt time.Time) (domain.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	if session.Status != domain.SessionInProgress {
		return domain.QuizSession{}, domain.ErrSessionNotActive
	}
	session.Status = status
	session.CompletedAt = &completedAt
	s.sessions[id] = session
	return cloneSession(session), nil
}

func (s *AttemptStore) ListCompletedSessions(_ context.Context, f domain.SessionFilter) ([]domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizSession, 0)
	for _, session := range s.sessions {
		if session.Status != domain.SessionCompleted || session.CompletedAt == nil {
			continue
		}
		if f.CompletedAfter != nil && session.CompletedAt.Before(*f.CompletedAfter) {
			continue
		}
		if f.CategoryID != "" && session.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, cloneSession(session))
	}
	return out, nil
}

func (s *AttemptStore) GetChallengeByDate(_ context.Context, date string) (domain.DailyChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byDate[date]
	if !ok {
		return domain.DailyChallenge{}, domain.ErrChallengeNotFound
	}
	return cloneChallenge(s.challenges[id]), nil
}

func (s *AttemptStore) GetChallenge(_ context.Context, id string) (domain.DailyChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return domain.DailyChallenge{}, domain.ErrChallengeNotFound
	}
	return cloneChallenge(challenge), nil
}

func (s *AttemptStore) CreateChallenge(_ context.Context, c *domain.DailyChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byDate[c.Date]; ok {
		return domain.ErrChallengeExists
	}
	s.challenges[c.ID] = cloneChallenge(*c)
	s.byDate[c.Date] = c.ID
	return nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, id string) (domain.DailyChallengeAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return domain.DailyChallengeAttempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptStore) GetAttemptForUser(_ context.Context, challengeID, userID string) (domain.DailyChallengeAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUser[attemptKey(challengeID, userID)]
	if !ok {
		return domain.DailyChallengeAttempt{}, domain.ErrAttemptNotFound
	}
	return s.attempts[id], nil
}

func (s *AttemptStore) CreateAttempt(_ context.Context, a *domain.DailyChallengeAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := attemptKey(a.ChallengeID, a.UserID)
	if _, ok := s.byUser[key]; ok {
		return domain.ErrAttemptExists
	}
	s.attempts[a.ID] = *a
	s.byUser[key] = a.ID
	return nil
}

func (s *AttemptStore) FinalizeAttempt(_ context.Context, id string, score, correctAnswers int, completedAt time.Time) (domain.DailyChallengeAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return domain.DailyChallengeAttempt{}, domain.ErrAttemptNotFound
	}
	if attempt.CompletedAt != nil {
		return domain.DailyChallengeAttempt{}, domain.ErrAttemptCompleted
	}
	attempt.Score = score
	attempt.CorrectAnswers = correctAnswers
	attempt.CompletedAt = &completedAt
	s.attempts[id] = attempt
	return attempt, nil
}

func (s *AttemptStore) GetStreak(_ context.Context, userID string) (domain.UserStreak, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	streak, ok := s.streaks[userID]
	return streak, ok, nil
}

func (s *AttemptStore) UpdateStreak(_ context.Context, userID string, fn func(*domain.UserStreak)) (domain.UserStreak, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	streak, ok := s.streaks[userID]
	if !ok {
		streak = domain.UserStreak{UserID: userID}
	}
	fn(&streak)
	s.streaks[userID] = streak
	return streak, nil
}

func attemptKey(challengeID, userID string) string {
	return challengeID + "/" + userID
}

func cloneSession(s domain.QuizSession) domain.QuizSession {
	s.QuestionIDs = append([]string(nil), s.QuestionIDs...)
	if s.CompletedAt != nil {
		ts := *s.CompletedAt
		s.CompletedAt = &ts
	}
	return s
}

func cloneChallenge(c domain.DailyChallenge) domain.DailyChallenge {
	c.QuestionIDs = append([]string(nil), c.QuestionIDs...)
	return c
}
