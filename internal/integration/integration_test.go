package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-arena-service/internal/app"
	"quiz-arena-service/internal/domain"
	"quiz-arena-service/internal/infra/postgres"
	"quiz-arena-service/internal/infra/postgres/migrations"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	dsn, cleanup := startPostgres(t, ctx)
	defer cleanup()

	db := openBun(dsn)
	defer db.Close()
	migrateAndSeed(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	content := postgres.NewQuestionStore(pool)
	attempts := postgres.NewAttemptStore(db)
	now := func() time.Time { return time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC) }
	sessions := app.NewSessionManagerWithClock(content, content, attempts, now)

	started, err := sessions.Start(ctx, "u1", "cat1", "", 3)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if len(started.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(started.Questions))
	}

	first := started.Session.QuestionIDs[0]
	result, err := sessions.SubmitAnswer(ctx, "u1", started.Session.ID, first, "a", 10)
	if err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	if !result.IsCorrect || result.PointsEarned != 13 {
		t.Fatalf("unexpected answer result: %+v", result)
	}

	// the composite primary key rejects the replay inside the transaction
	if _, err := sessions.SubmitAnswer(ctx, "u1", started.Session.ID, first, "a", 10); !errors.Is(err, domain.ErrAnswerAlreadyRecorded) {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}

	final, err := sessions.Complete(ctx, "u1", started.Session.ID, false)
	if err != nil {
		t.Fatalf("complete session: %v", err)
	}
	if final.Session.Score != 13 || len(final.Review) != 3 {
		t.Fatalf("unexpected final result: %+v", final)
	}

	ranker := app.NewLeaderboardAggregatorWithClock(attempts, now)
	ranking, err := ranker.GetRanking(ctx, domain.RankingQuery{Period: domain.PeriodDaily, Limit: 10, RequestingUserID: "u1"})
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if ranking.UserRank == nil || ranking.UserRank.Rank != 1 || ranking.UserRank.Score != 13 {
		t.Fatalf("unexpected rank: %+v", ranking.UserRank)
	}
}

func TestDailyChallengeEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	dsn, cleanup := startPostgres(t, ctx)
	defer cleanup()

	db := openBun(dsn)
	defer db.Close()
	migrateAndSeed(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	content := postgres.NewQuestionStore(pool)
	attempts := postgres.NewAttemptStore(db)
	now := func() time.Time { return time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC) }
	streaks := app.NewStreakEngineWithClock(attempts, now)
	manager := app.NewDailyChallengeManagerWithClock(attempts, content, streaks, now)

	challenge, err := manager.GetOrCreateToday(ctx)
	if err != nil {
		t.Fatalf("get-or-create: %v", err)
	}
	if challenge.Date != "2025-03-12" {
		t.Fatalf("unexpected date: %s", challenge.Date)
	}

	session, err := manager.StartAttempt(ctx, "u1")
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	answers := make([]domain.ChallengeAnswer, 0, len(session.Challenge.QuestionIDs))
	for _, id := range session.Challenge.QuestionIDs {
		answers = append(answers, domain.ChallengeAnswer{QuestionID: id, SelectedAnswer: "a"})
	}
	result, err := manager.CompleteAttempt(ctx, "u1", session.Attempt.ID, answers)
	if err != nil {
		t.Fatalf("complete attempt: %v", err)
	}
	if result.CorrectAnswers != len(answers) || result.CurrentStreak != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := manager.CompleteAttempt(ctx, "u1", session.Attempt.ID, answers); !errors.Is(err, domain.ErrAttemptCompleted) {
		t.Fatalf("expected terminal attempt, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func migrateAndSeed(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	categories := []domain.Category{{ID: "cat1", Name: "General", Active: true}}
	if _, err := db.NewInsert().Model(&categories).Exec(ctx); err != nil {
		t.Fatalf("seed categories: %v", err)
	}

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
	if _, err := db.NewInsert().Model(&questions).Exec(ctx); err != nil {
		t.Fatalf("seed questions: %v", err)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
