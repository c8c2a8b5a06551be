package domain

import "errors"

var (
	// ErrCategoryNotFound is returned when a category is absent or inactive.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrQuestionNotFound indicates a referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrChallengeNotFound indicates no daily challenge exists for the date.
	ErrChallengeNotFound = errors.New("daily challenge not found")
	// ErrAttemptNotFound indicates a challenge attempt does not exist.
	ErrAttemptNotFound = errors.New("challenge attempt not found")

	// ErrNotSessionOwner is returned when a caller acts on another user's session.
	ErrNotSessionOwner = errors.New("session belongs to another user")
	// ErrNotAttemptOwner is returned when a caller acts on another user's attempt.
	ErrNotAttemptOwner = errors.New("attempt belongs to another user")

	// ErrAnswerAlreadyRecorded guards the one-answer-per-question rule.
	ErrAnswerAlreadyRecorded = errors.New("question already answered")
	// ErrAttemptCompleted indicates a daily challenge attempt was already finalized.
	ErrAttemptCompleted = errors.New("challenge attempt already completed")
	// ErrAttemptExists indicates a duplicate (challenge, user) attempt insert.
	ErrAttemptExists = errors.New("challenge attempt already exists")
	// ErrChallengeExists indicates a duplicate challenge for the same date.
	ErrChallengeExists = errors.New("daily challenge already exists for date")

	// ErrSessionNotActive is returned for operations that require an
	// in-progress session.
	ErrSessionNotActive = errors.New("session is not in progress")
	// ErrQuestionNotInSession indicates the question is outside the
	// session's fixed question set.
	ErrQuestionNotInSession = errors.New("question is not part of this session")

	// ErrNoQuestionsAvailable indicates no questions satisfy the selection filter.
	ErrNoQuestionsAvailable = errors.New("no questions available")
	// ErrNoEligibleCategories indicates no category has enough active questions.
	ErrNoEligibleCategories = errors.New("no eligible categories")
)

// Kind classifies domain errors for boundary layers.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidState
	KindNoEligibleData
)

// KindOf maps an error chain to its taxonomy kind. Unrecognized errors are
// infrastructure failures and classify as KindUnknown.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrChallengeNotFound),
		errors.Is(err, ErrAttemptNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotSessionOwner), errors.Is(err, ErrNotAttemptOwner):
		return KindForbidden
	case errors.Is(err, ErrAnswerAlreadyRecorded),
		errors.Is(err, ErrAttemptCompleted),
		errors.Is(err, ErrAttemptExists),
		errors.Is(err, ErrChallengeExists):
		return KindConflict
	case errors.Is(err, ErrSessionNotActive), errors.Is(err, ErrQuestionNotInSession):
		return KindInvalidState
	case errors.Is(err, ErrNoQuestionsAvailable), errors.Is(err, ErrNoEligibleCategories):
		return KindNoEligibleData
	default:
		return KindUnknown
	}
}
