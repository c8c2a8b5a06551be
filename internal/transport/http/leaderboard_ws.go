package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quiz-arena-service/internal/app"
	"quiz-arena-service/internal/domain"
)

// LeaderboardStream pushes ranking snapshots over a websocket. There is no
// message bus behind it: the handler re-reads the aggregator (or its cache)
// on an interval, so every client sees the same read path as GET
// /v1/leaderboard.
type LeaderboardStream struct {
	ranker   app.Ranker
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewLeaderboardStream(ranker app.Ranker, interval time.Duration) *LeaderboardStream {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &LeaderboardStream{
		ranker:   ranker,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the connection and streams snapshots until the client
// disconnects. Query parameters mirror GET /v1/leaderboard.
func (s *LeaderboardStream) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	query := rankingQueryFromRequest(r)
	done := make(chan struct{})

	// Reader goroutine: its only job is to notice the peer going away.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.push(r.Context(), conn, query); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := s.push(r.Context(), conn, query); err != nil {
				return
			}
		}
	}
}

func (s *LeaderboardStream) push(ctx context.Context, conn *websocket.Conn, query domain.RankingQuery) error {
	ranking, err := s.ranker.GetRanking(ctx, query)
	if err != nil {
		log.Printf("leaderboard stream read: %v", err)
		return err
	}
	return conn.WriteJSON(ranking)
}
