package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-arena-service/internal/app"
	"quiz-arena-service/internal/domain"
	"quiz-arena-service/internal/infra/memory"
	transport "quiz-arena-service/internal/transport/http"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	categories := []domain.Category{{ID: "cat1", Name: "General", Active: true}}
	questions := make([]domain.Question, 0, 12)
	for i := 0; i < 12; i++ {
		questions = append(questions, domain.Question{
			ID:               fmt.Sprintf("q%02d", i),
			CategoryID:       "cat1",
			Text:             fmt.Sprintf("question %d", i),
			Options:          []string{"a", "b", "c", "d"},
			CorrectAnswer:    "a",
			Points:           10,
			TimeLimitSeconds: 30,
			Difficulty:       domain.DifficultyEasy,
			Active:           true,
		})
	}
	content := memory.NewQuestionStore(categories, questions)
	attempts := memory.NewAttemptStore()
	now := func() time.Time { return time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC) }

	sessions := app.NewSessionManagerWithClock(content, content, attempts, now)
	streaks := app.NewStreakEngineWithClock(attempts, now)
	challenges := app.NewDailyChallengeManagerWithClock(attempts, content, streaks, now)
	ranker := app.NewLeaderboardAggregatorWithClock(attempts, now)

	mux := http.NewServeMux()
	transport.NewHandler(sessions, challenges, streaks, ranker).Register(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec
}

func TestSessionFlowOverHTTP(t *testing.T) {
	mux := newTestMux(t)

	var started domain.StartedSession
	rec := doJSON(t, mux, http.MethodPost, "/v1/sessions", map[string]interface{}{
		"userId": "u1", "categoryId": "cat1", "questionCount": 2,
	}, &started)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(started.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(started.Questions))
	}

	var answer domain.AnswerResult
	rec = doJSON(t, mux, http.MethodPost, "/v1/sessions/"+started.Session.ID+"/answers", map[string]interface{}{
		"userId":           "u1",
		"questionId":       started.Session.QuestionIDs[0],
		"selectedAnswer":   "a",
		"timeSpentSeconds": 10,
	}, &answer)
	if rec.Code != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !answer.IsCorrect || answer.PointsEarned != 13 {
		t.Fatalf("unexpected answer result: %+v", answer)
	}

	var view domain.SessionView
	rec = doJSON(t, mux, http.MethodGet, "/v1/sessions/"+started.Session.ID+"?userId=u1", nil, &view)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(view.AnsweredQuestionIDs) != 1 {
		t.Fatalf("expected 1 answered question, got %v", view.AnsweredQuestionIDs)
	}

	var result domain.SessionResult
	rec = doJSON(t, mux, http.MethodPost, "/v1/sessions/"+started.Session.ID+"/complete", map[string]interface{}{
		"userId": "u1",
	}, &result)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if result.Session.Status != domain.SessionCompleted || len(result.Review) != 2 {
		t.Fatalf("unexpected session result: %+v", result)
	}
}

func TestChallengeFlowOverHTTP(t *testing.T) {
	mux := newTestMux(t)

	var challenge domain.DailyChallenge
	rec := doJSON(t, mux, http.MethodGet, "/v1/daily-challenge", nil, &challenge)
	if rec.Code != http.StatusOK {
		t.Fatalf("challenge: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if challenge.Date != "2025-03-12" {
		t.Fatalf("unexpected challenge date: %s", challenge.Date)
	}

	var session domain.ChallengeSession
	rec = doJSON(t, mux, http.MethodPost, "/v1/daily-challenge/attempts", map[string]interface{}{"userId": "u1"}, &session)
	if rec.Code != http.StatusOK {
		t.Fatalf("attempt: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	answers := make([]map[string]string, 0, len(session.Challenge.QuestionIDs))
	for _, id := range session.Challenge.QuestionIDs {
		answers = append(answers, map[string]string{"questionId": id, "selectedAnswer": "a"})
	}
	var result domain.ChallengeResult
	rec = doJSON(t, mux, http.MethodPost, "/v1/daily-challenge/attempts/"+session.Attempt.ID+"/complete", map[string]interface{}{
		"userId": "u1", "answers": answers,
	}, &result)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if result.CorrectAnswers != len(answers) || result.CurrentStreak != 1 {
		t.Fatalf("unexpected challenge result: %+v", result)
	}

	var streak domain.UserStreak
	rec = doJSON(t, mux, http.MethodGet, "/v1/streaks/u1", nil, &streak)
	if rec.Code != http.StatusOK {
		t.Fatalf("streak: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if streak.CurrentStreak != 1 {
		t.Fatalf("expected streak 1, got %+v", streak)
	}
}

func TestLeaderboardOverHTTP(t *testing.T) {
	mux := newTestMux(t)

	// complete one session so the board is non-empty
	var started domain.StartedSession
	doJSON(t, mux, http.MethodPost, "/v1/sessions", map[string]interface{}{
		"userId": "u1", "categoryId": "cat1", "questionCount": 1,
	}, &started)
	doJSON(t, mux, http.MethodPost, "/v1/sessions/"+started.Session.ID+"/answers", map[string]interface{}{
		"userId": "u1", "questionId": started.Session.QuestionIDs[0], "selectedAnswer": "a", "timeSpentSeconds": 30,
	}, nil)
	doJSON(t, mux, http.MethodPost, "/v1/sessions/"+started.Session.ID+"/complete", map[string]interface{}{"userId": "u1"}, nil)

	var ranking domain.Ranking
	rec := doJSON(t, mux, http.MethodGet, "/v1/leaderboard?period=daily&userId=u1", nil, &ranking)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ranking.Total != 1 || ranking.UserRank == nil || ranking.UserRank.Rank != 1 {
		t.Fatalf("unexpected ranking: %+v", ranking)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/v1/sessions/missing?userId=u1", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing session, got %d", rec.Code)
	}

	var started domain.StartedSession
	doJSON(t, mux, http.MethodPost, "/v1/sessions", map[string]interface{}{
		"userId": "u1", "categoryId": "cat1", "questionCount": 2,
	}, &started)

	rec = doJSON(t, mux, http.MethodGet, "/v1/sessions/"+started.Session.ID+"?userId=intruder", nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign session, got %d", rec.Code)
	}

	answer := map[string]interface{}{
		"userId": "u1", "questionId": started.Session.QuestionIDs[0], "selectedAnswer": "a", "timeSpentSeconds": 5,
	}
	doJSON(t, mux, http.MethodPost, "/v1/sessions/"+started.Session.ID+"/answers", answer, nil)
	rec = doJSON(t, mux, http.MethodPost, "/v1/sessions/"+started.Session.ID+"/answers", answer, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate answer, got %d", rec.Code)
	}

	doJSON(t, mux, http.MethodPost, "/v1/sessions/"+started.Session.ID+"/complete", map[string]interface{}{"userId": "u1"}, nil)
	rec = doJSON(t, mux, http.MethodPost, "/v1/sessions/"+started.Session.ID+"/complete", map[string]interface{}{"userId": "u1"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for double complete, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString("{not json"))
	malformed := httptest.NewRecorder()
	mux.ServeHTTP(malformed, req)
	if malformed.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", malformed.Code)
	}
}
