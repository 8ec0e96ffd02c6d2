// Package server exposes the core operations and a play-against-bots round
// flow over websockets. Every arrangement a client submits is revalidated
// against the hand the server dealt.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/thirteenlanes/internal/config"
	"github.com/lox/thirteenlanes/internal/engine"
	"github.com/lox/thirteenlanes/internal/table"
)

// Server is the websocket service.
type Server struct {
	addr     string
	engine   *engine.Engine
	bots     []config.BotConfig
	seed     int64
	deals    atomic.Int64
	upgrader websocket.Upgrader
	origins  []string
	logger   *log.Logger

	mu          sync.RWMutex
	connections map[*Connection]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server. Each client is seated against bots.
func NewServer(addr string, eng *engine.Engine, bots []config.BotConfig, seed int64, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:        addr,
		engine:      eng,
		bots:        bots,
		seed:        seed,
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return s
}

// AllowOrigins accepts websocket upgrades from the given browser origins
// in addition to same-host requests. "*" accepts every origin. Call it
// before Start.
func (s *Server) AllowOrigins(origins ...string) {
	s.origins = append(s.origins[:0], origins...)
}

// checkOrigin accepts clients that send no Origin header, same-host
// origins and the configured list.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	s.logger.Warn("Rejected websocket origin", "origin", origin)
	return false
}

// Handler returns the HTTP routes: /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Stop()
		return err
	case <-ctx.Done():
	}

	s.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes every connection.
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s)
	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)

	client.Start()

	go func() {
		<-client.ctx.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		player, _ := client.player()
		s.logger.Info("Client disconnected", "player", player, "total", total)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) newTable(player string) (*table.Table, error) {
	seats := []table.Seat{{ID: player}}
	for _, bot := range s.bots {
		if bot.Name == player {
			return nil, fmt.Errorf("name %q is taken by a bot", player)
		}
		seats = append(seats, table.Seat{ID: bot.Name, Bot: true, Objective: bot.Objective})
	}
	return table.New(uuid.NewString(), seats, s.engine, s.logger)
}

func (s *Server) nextDeal() int {
	return int(s.deals.Add(1) - 1)
}
