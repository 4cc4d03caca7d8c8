package websocket

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"titan-screener/internal/domain"
	"titan-screener/internal/usecase"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is the reverse proxy's problem
	},
}

// Handler streams a live bulk scan over a websocket: one JSON message per
// scan event (start, progress, gem, complete), in completion order. A
// disconnect cancels emission; in-flight symbol tasks finish and their
// results are dropped.
type Handler struct {
	scanner   *usecase.Scanner
	watchlist domain.WatchlistRepository
	repo      domain.ScanRepository
	log       zerolog.Logger
}

func NewHandler(scanner *usecase.Scanner, watchlist domain.WatchlistRepository, repo domain.ScanRepository, log zerolog.Logger) *Handler {
	return &Handler{
		scanner:   scanner,
		watchlist: watchlist,
		repo:      repo,
		log:       log,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("scan stream client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends application data; reads only detect close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	symbols, err := h.watchlist.Symbols()
	if err != nil {
		h.log.Error().Err(err).Msg("watchlist load failed")
		_ = conn.WriteJSON(domain.ScanEvent{Type: domain.EventError, Error: "watchlist unavailable"})
		return
	}

	events := h.scanner.ScanStream(ctx, symbols)
	for ev := range events {
		if ev.Type == domain.EventComplete && ev.Snapshot != nil {
			h.repo.SaveSnapshot(ev.Snapshot)
		}
		if err := conn.WriteJSON(ev); err != nil {
			h.log.Debug().Err(err).Msg("scan stream write error, dropping client")
			cancel()
			// Drain remaining events so the scan goroutine can exit.
			for range events {
			}
			return
		}
	}
}
