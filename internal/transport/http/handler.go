package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"quiz-arena-service/internal/app"
	"quiz-arena-service/internal/domain"
)

// Handler exposes the core engines over a thin JSON API. Authentication is
// out of scope: callers identify themselves with a userId field/parameter.
type Handler struct {
	sessions   *app.SessionManager
	challenges *app.DailyChallengeManager
	streaks    *app.StreakEngine
	ranker     app.Ranker
}

func NewHandler(sessions *app.SessionManager, challenges *app.DailyChallengeManager, streaks *app.StreakEngine, ranker app.Ranker) *Handler {
	return &Handler{
		sessions:   sessions,
		challenges: challenges,
		streaks:    streaks,
		ranker:     ranker,
	}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/sessions", h.startSession)
	mux.HandleFunc("GET /v1/sessions/{id}", h.getSession)
	mux.HandleFunc("POST /v1/sessions/{id}/answers", h.submitAnswer)
	mux.HandleFunc("POST /v1/sessions/{id}/complete", h.completeSession)
	mux.HandleFunc("GET /v1/daily-challenge", h.getDailyChallenge)
	mux.HandleFunc("POST /v1/daily-challenge/attempts", h.startChallengeAttempt)
	mux.HandleFunc("POST /v1/daily-challenge/attempts/{id}/complete", h.completeChallengeAttempt)
	mux.HandleFunc("GET /v1/streaks/{userID}", h.getStreak)
	mux.HandleFunc("GET /v1/leaderboard", h.getLeaderboard)
}

type startSessionRequest struct {
	UserID        string            `json:"userId"`
	CategoryID    string            `json:"categoryId"`
	Difficulty    domain.Difficulty `json:"difficulty,omitempty"`
	QuestionCount int               `json:"questionCount,omitempty"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decode(w, r, &req) {
		return
	}
	started, err := h.sessions.Start(r.Context(), req.UserID, req.CategoryID, req.Difficulty, req.QuestionCount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, started)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.GetSession(r.Context(), r.URL.Query().Get("userId"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type submitAnswerRequest struct {
	UserID           string `json:"userId"`
	QuestionID       string `json:"questionId"`
	SelectedAnswer   string `json:"selectedAnswer"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.sessions.SubmitAnswer(r.Context(), req.UserID, r.PathValue("id"), req.QuestionID, req.SelectedAnswer, req.TimeSpentSeconds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type completeSessionRequest struct {
	UserID  string `json:"userId"`
	Abandon bool   `json:"abandon,omitempty"`
}

func (h *Handler) completeSession(w http.ResponseWriter, r *http.Request) {
	var req completeSessionRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.sessions.Complete(r.Context(), req.UserID, r.PathValue("id"), req.Abandon)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getDailyChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.challenges.GetOrCreateToday(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

type startAttemptRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) startChallengeAttempt(w http.ResponseWriter, r *http.Request) {
	var req startAttemptRequest
	if !decode(w, r, &req) {
		return
	}
	session, err := h.challenges.StartAttempt(r.Context(), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type completeAttemptRequest struct {
	UserID  string                   `json:"userId"`
	Answers []domain.ChallengeAnswer `json:"answers"`
}

func (h *Handler) completeChallengeAttempt(w http.ResponseWriter, r *http.Request) {
	var req completeAttemptRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.challenges.CompleteAttempt(r.Context(), req.UserID, r.PathValue("id"), req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := h.streaks.DisplayStreak(r.Context(), r.PathValue("userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.ranker.GetRanking(r.Context(), rankingQueryFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func rankingQueryFromRequest(r *http.Request) domain.RankingQuery {
	params := r.URL.Query()
	limit, _ := strconv.Atoi(params.Get("limit"))
	offset, _ := strconv.Atoi(params.Get("offset"))
	return domain.RankingQuery{
		Period:           domain.ParsePeriod(params.Get("period")),
		CategoryID:       params.Get("categoryId"),
		Limit:            limit,
		Offset:           offset,
		RequestingUserID: params.Get("userId"),
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindInvalidState:
		status = http.StatusBadRequest
	case domain.KindNoEligibleData:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
