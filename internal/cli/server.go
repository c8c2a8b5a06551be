package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-arena-service/internal/app"
	"quiz-arena-service/internal/config"
	"quiz-arena-service/internal/infra/memory"
	"quiz-arena-service/internal/infra/postgres"
	redisinfra "quiz-arena-service/internal/infra/redis"
	transport "quiz-arena-service/internal/transport/http"
)

// NewServerCmd builds the CLI subcommand to start the server.
func NewServerCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the quiz arena server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var (
		categoryStore app.CategoryStore
		questionStore app.QuestionStore
		sessionStore  app.SessionStore
		challenges    app.ChallengeStore
		streakStore   app.StreakStore
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		questions := postgres.NewQuestionStore(pool)
		categoryStore = questions
		questionStore = questions

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()
		attempts := postgres.NewAttemptStore(db)
		sessionStore = attempts
		challenges = attempts
		streakStore = attempts
	} else {
		log.Printf("postgres not configured, running with in-memory stores and sample content")
		questions := memory.NewQuestionStore(sampleCategories(), sampleQuestions())
		categoryStore = questions
		questionStore = questions
		attempts := memory.NewAttemptStore()
		sessionStore = attempts
		challenges = attempts
		streakStore = attempts
	}

	streaks := app.NewStreakEngine(streakStore)
	sessions := app.NewSessionManager(categoryStore, questionStore, sessionStore)
	sessions.SetDefaultQuestionCount(cfg.Quiz.QuestionCount)
	daily := app.NewDailyChallengeManager(challenges, questionStore, streaks)

	var ranker app.Ranker = app.NewLeaderboardAggregator(sessionStore)
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheTTL := config.Duration(cfg.Leaderboard.CacheTTL, 30*time.Second)
		ranker = redisinfra.NewLeaderboardCache(client, ranker, cacheTTL)
	}

	handler := transport.NewHandler(sessions, daily, streaks, ranker)
	streamInterval := config.Duration(cfg.Leaderboard.StreamInterval, 5*time.Second)
	stream := transport.NewLeaderboardStream(ranker, streamInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws/leaderboard", stream.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz arena service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
