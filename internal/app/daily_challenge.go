package app

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"quiz-arena-service/internal/domain"
)

// ChallengeQuestionCount is the fixed size of a daily challenge.
const ChallengeQuestionCount = 10

// streakTiers maps a minimum streak length to its score multiplier. Highest
// qualifying threshold wins.
var streakTiers = []struct {
	minDays    int
	multiplier float64
}{
	{30, 2.00},
	{14, 1.50},
	{7, 1.25},
	{3, 1.10},
	{0, 1.00},
}

func streakMultiplier(currentStreak int) float64 {
	for _, tier := range streakTiers {
		if currentStreak >= tier.minDays {
			return tier.multiplier
		}
	}
	return 1.0
}

// DailyChallengeManager owns the one-challenge-per-day variant. Scoring is
// flat (no time bonus); the streak multiplier is applied on completion.
type DailyChallengeManager struct {
	challenges ChallengeStore
	questions  QuestionStore
	streaks    *StreakEngine
	now        func() time.Time
	rnd        *rand.Rand
	sf         singleflight.Group
}

func NewDailyChallengeManager(challenges ChallengeStore, questions QuestionStore, streaks *StreakEngine) *DailyChallengeManager {
	return NewDailyChallengeManagerWithClock(challenges, questions, streaks, time.Now)
}

// NewDailyChallengeManagerWithClock allows deterministic dates in tests.
func NewDailyChallengeManagerWithClock(challenges ChallengeStore, questions QuestionStore, streaks *StreakEngine, now func() time.Time) *DailyChallengeManager {
	return &DailyChallengeManager{
		challenges: challenges,
		questions:  questions,
		streaks:    streaks,
		now:        now,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *DailyChallengeManager) todayKey() string {
	return m.now().UTC().Format(domain.DateLayout)
}

// GetOrCreateToday returns today's challenge, creating it on first access.
// Creation is deduplicated in-process via singleflight and across processes
// by the unique date constraint; "already exists" resolves to the winner's row.
func (m *DailyChallengeManager) GetOrCreateToday(ctx context.Context) (domain.DailyChallenge, error) {
	date := m.todayKey()
	if challenge, err := m.challenges.GetChallengeByDate(ctx, date); err == nil {
		return challenge, nil
	} else if !errors.Is(err, domain.ErrChallengeNotFound) {
		return domain.DailyChallenge{}, err
	}

	v, err, _ := m.sf.Do(date, func() (interface{}, error) {
		if challenge, err := m.challenges.GetChallengeByDate(ctx, date); err == nil {
			return challenge, nil
		} else if !errors.Is(err, domain.ErrChallengeNotFound) {
			return nil, err
		}
		return m.createChallenge(ctx, date)
	})
	if err != nil {
		return domain.DailyChallenge{}, err
	}
	return v.(domain.DailyChallenge), nil
}

func (m *DailyChallengeManager) createChallenge(ctx context.Context, date string) (domain.DailyChallenge, error) {
	categories, err := m.questions.CategoriesWithQuestions(ctx, ChallengeQuestionCount)
	if err != nil {
		return domain.DailyChallenge{}, err
	}
	if len(categories) == 0 {
		return domain.DailyChallenge{}, domain.ErrNoEligibleCategories
	}
	category := categories[m.rnd.Intn(len(categories))]

	difficulties := domain.Difficulties()
	difficulty := difficulties[m.rnd.Intn(len(difficulties))]

	questions, err := m.drawQuestions(ctx, category.ID, difficulty)
	if err != nil {
		return domain.DailyChallenge{}, err
	}

	ids := make([]string, len(questions))
	reward := 0
	for i, q := range questions {
		ids[i] = q.ID
		reward += q.Points
	}
	challenge := domain.DailyChallenge{
		ID:           uuid.NewString(),
		Date:         date,
		CategoryID:   category.ID,
		Difficulty:   difficulty,
		QuestionIDs:  ids,
		RewardPoints: reward,
	}
	if err := m.challenges.CreateChallenge(ctx, &challenge); err != nil {
		// Another process created today's challenge first; use theirs.
		if errors.Is(err, domain.ErrChallengeExists) {
			return m.challenges.GetChallengeByDate(ctx, date)
		}
		return domain.DailyChallenge{}, err
	}
	return challenge, nil
}

// drawQuestions picks 10 random active questions at the requested
// difficulty, falling back to any difficulty when the category is thin.
func (m *DailyChallengeManager) drawQuestions(ctx context.Context, categoryID string, difficulty domain.Difficulty) ([]domain.Question, error) {
	questions, err := m.questions.ListActive(ctx, domain.QuestionFilter{
		CategoryID: categoryID,
		Difficulty: difficulty,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	if len(questions) < ChallengeQuestionCount {
		questions, err = m.questions.ListActive(ctx, domain.QuestionFilter{
			CategoryID: categoryID,
			ActiveOnly: true,
		})
		if err != nil {
			return nil, err
		}
	}
	if len(questions) < ChallengeQuestionCount {
		return nil, domain.ErrNoQuestionsAvailable
	}
	m.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return questions[:ChallengeQuestionCount], nil
}

// StartAttempt creates the user's attempt for today's challenge, or resumes
// an incomplete one. A completed attempt cannot be restarted.
func (m *DailyChallengeManager) StartAttempt(ctx context.Context, userID string) (*domain.ChallengeSession, error) {
	challenge, err := m.challenges.GetChallengeByDate(ctx, m.todayKey())
	if err != nil {
		return nil, err
	}

	attempt, err := m.challenges.GetAttemptForUser(ctx, challenge.ID, userID)
	switch {
	case err == nil:
		if attempt.Completed() {
			return nil, domain.ErrAttemptCompleted
		}
	case errors.Is(err, domain.ErrAttemptNotFound):
		attempt = domain.DailyChallengeAttempt{
			ID:          uuid.NewString(),
			ChallengeID: challenge.ID,
			UserID:      userID,
		}
		if err := m.challenges.CreateAttempt(ctx, &attempt); err != nil {
			if !errors.Is(err, domain.ErrAttemptExists) {
				return nil, err
			}
			// Lost a creation race; resume the winner's attempt.
			attempt, err = m.challenges.GetAttemptForUser(ctx, challenge.ID, userID)
			if err != nil {
				return nil, err
			}
			if attempt.Completed() {
				return nil, domain.ErrAttemptCompleted
			}
		}
	default:
		return nil, err
	}

	questions, err := m.orderedViews(ctx, challenge.QuestionIDs)
	if err != nil {
		return nil, err
	}
	return &domain.ChallengeSession{
		Challenge: challenge,
		Attempt:   attempt,
		Questions: questions,
	}, nil
}

// CompleteAttempt grades the submitted answers, counts the day toward the
// user's streak (exactly once, before the bonus is derived) and finalizes
// the attempt one-shot.
func (m *DailyChallengeManager) CompleteAttempt(ctx context.Context, userID, attemptID string, answers []domain.ChallengeAnswer) (*domain.ChallengeResult, error) {
	attempt, err := m.challenges.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, domain.ErrNotAttemptOwner
	}
	if attempt.Completed() {
		return nil, domain.ErrAttemptCompleted
	}

	challenge, err := m.challenges.GetChallenge(ctx, attempt.ChallengeID)
	if err != nil {
		return nil, err
	}
	fetched, err := m.questions.FindByIDs(ctx, challenge.QuestionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}

	basePoints := 0
	correctCount := 0
	graded := make(map[string]bool, len(answers))
	results := make([]domain.ChallengeAnswerResult, 0, len(answers))
	for _, a := range answers {
		question, ok := byID[a.QuestionID]
		if !ok || graded[a.QuestionID] {
			continue
		}
		graded[a.QuestionID] = true

		correct := a.SelectedAnswer == question.CorrectAnswer
		points := 0
		if correct {
			points = question.Points
			basePoints += points
			correctCount++
		}
		results = append(results, domain.ChallengeAnswerResult{
			QuestionID:    question.ID,
			IsCorrect:     correct,
			CorrectAnswer: question.CorrectAnswer,
			PointsEarned:  points,
		})
	}

	update, err := m.streaks.UpdateOnCompletion(ctx, userID)
	if err != nil {
		return nil, err
	}
	multiplier := streakMultiplier(update.CurrentStreak)
	bonus := int(math.Floor(float64(basePoints) * (multiplier - 1)))
	total := basePoints + bonus

	if _, err := m.challenges.FinalizeAttempt(ctx, attemptID, total, correctCount, m.now().UTC()); err != nil {
		return nil, err
	}

	return &domain.ChallengeResult{
		Score:             total,
		CorrectAnswers:    correctCount,
		TotalQuestions:    len(challenge.QuestionIDs),
		BasePoints:        basePoints,
		StreakMultiplier:  multiplier,
		StreakBonusPoints: bonus,
		CurrentStreak:     update.CurrentStreak,
		LongestStreak:     update.LongestStreak,
		Answers:           results,
		IsNewRecord:       update.CurrentStreak > update.LongestBefore,
	}, nil
}

func (m *DailyChallengeManager) orderedViews(ctx context.Context, ids []string) ([]domain.QuestionView, error) {
	fetched, err := m.questions.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}
	views := make([]domain.QuestionView, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			views = append(views, q.View())
		}
	}
	return views, nil
}
