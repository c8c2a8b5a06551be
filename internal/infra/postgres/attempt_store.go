package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-arena-service/internal/domain"
)

// AttemptStore persists sessions, answers, daily challenges and streaks in
// postgres via bun. Multi-row mutations run in a transaction; the uniqueness
// rules are enforced by database constraints, and constraint violations are
// surfaced as the matching domain conflict errors.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) CreateSession(ctx context.Context, session *domain.QuizSession) error {
	if _, err := s.db.NewInsert().Model(session).Exec(ctx); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *AttemptStore) GetSession(ctx context.Context, id string) (domain.QuizSession, error) {
	var session domain.QuizSession
	err := s.db.NewSelect().Model(&session).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.QuizSession{}, fmt.Errorf("select session: %w", err)
	}
	return session, nil
}

func (s *AttemptStore) RecordAnswer(ctx context.Context, ans domain.UserAnswer) (domain.QuizSession, error) {
	var updated domain.QuizSession
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&ans).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAnswerAlreadyRecorded
			}
			return fmt.Errorf("insert answer: %w", err)
		}

		correct := 0
		if ans.IsCorrect {
			correct = 1
		}
		res, err := tx.NewUpdate().
			Model((*domain.QuizSession)(nil)).
			Set("score = score + ?", ans.PointsEarned).
			Set("correct_answers = correct_answers + ?", correct).
			Set("current_index = current_index + 1").
			Where("id = ? AND status = ?", ans.SessionID, domain.SessionInProgress).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update session counters: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// The insert above proved the session row exists (FK), so the
			// session must be terminal.
			return domain.ErrSessionNotActive
		}

		return tx.NewSelect().Model(&updated).Where("id = ?", ans.SessionID).Scan(ctx)
	})
	if err != nil {
		return domain.QuizSession{}, err
	}
	return updated, nil
}

func (s *AttemptStore) AnswersBySession(ctx context.Context, sessionID string) ([]domain.UserAnswer, error) {
	var answers []domain.UserAnswer
	err := s.db.NewSelect().
		Model(&answers).
		Where("session_id = ?", sessionID).
		Order("question_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}
	return answers, nil
}

func (s *AttemptStore) FinalizeSession(ctx context.Context, id string, status domain.SessionStatus, completedAt time.Time) (domain.QuizSession, error) {
	var updated domain.QuizSession
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*domain.QuizSession)(nil)).
			Set("status = ?", status).
			Set("completed_at = ?", completedAt).
			Where("id = ? AND status = ?", id, domain.SessionInProgress).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("finalize session: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			err := tx.NewSelect().Model(&updated).Where("id = ?", id).Scan(ctx)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrSessionNotFound
			}
			if err != nil {
				return err
			}
			return domain.ErrSessionNotActive
		}
		return tx.NewSelect().Model(&updated).Where("id = ?", id).Scan(ctx)
	})
	if err != nil {
		return domain.QuizSession{}, err
	}
	return updated, nil
}

func (s *AttemptStore) ListCompletedSessions(ctx context.Context, f domain.SessionFilter) ([]domain.QuizSession, error) {
	var sessions []domain.QuizSession
	q := s.db.NewSelect().
		Model(&sessions).
		Where("status = ?", domain.SessionCompleted)
	if f.CompletedAfter != nil {
		q = q.Where("completed_at >= ?", *f.CompletedAfter)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select completed sessions: %w", err)
	}
	return sessions, nil
}

func (s *AttemptStore) GetChallengeByDate(ctx context.Context, date string) (domain.DailyChallenge, error) {
	var challenge domain.DailyChallenge
	err := s.db.NewSelect().Model(&challenge).Where("challenge_date = ?", date).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyChallenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.DailyChallenge{}, fmt.Errorf("select challenge by date: %w", err)
	}
	return challenge, nil
}

func (s *AttemptStore) GetChallenge(ctx context.Context, id string) (domain.DailyChallenge, error) {
	var challenge domain.DailyChallenge
	err := s.db.NewSelect().Model(&challenge).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyChallenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.DailyChallenge{}, fmt.Errorf("select challenge: %w", err)
	}
	return challenge, nil
}

func (s *AttemptStore) CreateChallenge(ctx context.Context, c *domain.DailyChallenge) error {
	if _, err := s.db.NewInsert().Model(c).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrChallengeExists
		}
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, id string) (domain.DailyChallengeAttempt, error) {
	var attempt domain.DailyChallengeAttempt
	err := s.db.NewSelect().Model(&attempt).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyChallengeAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.DailyChallengeAttempt{}, fmt.Errorf("select attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptStore) GetAttemptForUser(ctx context.Context, challengeID, userID string) (domain.DailyChallengeAttempt, error) {
	var attempt domain.DailyChallengeAttempt
	err := s.db.NewSelect().
		Model(&attempt).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyChallengeAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.DailyChallengeAttempt{}, fmt.Errorf("select attempt for user: %w", err)
	}
	return attempt, nil
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, a *domain.DailyChallengeAttempt) error {
	if _, err := s.db.NewInsert().Model(a).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAttemptExists
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) FinalizeAttempt(ctx context.Context, id string, score, correctAnswers int, completedAt time.Time) (domain.DailyChallengeAttempt, error) {
	var updated domain.DailyChallengeAttempt
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*domain.DailyChallengeAttempt)(nil)).
			Set("score = ?", score).
			Set("correct_answers = ?", correctAnswers).
			Set("completed_at = ?", completedAt).
			Where("id = ? AND completed_at IS NULL", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("finalize attempt: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			err := tx.NewSelect().Model(&updated).Where("id = ?", id).Scan(ctx)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrAttemptNotFound
			}
			if err != nil {
				return err
			}
			return domain.ErrAttemptCompleted
		}
		return tx.NewSelect().Model(&updated).Where("id = ?", id).Scan(ctx)
	})
	if err != nil {
		return domain.DailyChallengeAttempt{}, err
	}
	return updated, nil
}

func (s *AttemptStore) GetStreak(ctx context.Context, userID string) (domain.UserStreak, bool, error) {
	var streak domain.UserStreak
	err := s.db.NewSelect().Model(&streak).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserStreak{}, false, nil
	}
	if err != nil {
		return domain.UserStreak{}, false, fmt.Errorf("select streak: %w", err)
	}
	return streak, true, nil
}

func (s *AttemptStore) UpdateStreak(ctx context.Context, userID string, fn func(*domain.UserStreak)) (domain.UserStreak, error) {
	var streak domain.UserStreak
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists := true
		err := tx.NewSelect().
			Model(&streak).
			Where("user_id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			exists = false
			streak = domain.UserStreak{UserID: userID}
		} else if err != nil {
			return fmt.Errorf("select streak for update: %w", err)
		}

		fn(&streak)

		if exists {
			_, err = tx.NewUpdate().Model(&streak).WherePK().Exec(ctx)
		} else {
			_, err = tx.NewInsert().Model(&streak).Exec(ctx)
		}
		if err != nil {
			return fmt.Errorf("persist streak: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.UserStreak{}, err
	}
	return streak, nil
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
