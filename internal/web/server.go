package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/peterkuimelis/kingpin/internal/game"
	kingpinnet "github.com/peterkuimelis/kingpin/internal/net"
	"github.com/peterkuimelis/kingpin/internal/session"
	"go.uber.org/zap"
)

// MatchInfo is the JSON representation of a match for the /api/matches endpoints.
type MatchInfo struct {
	ID           string    `json:"id"`
	Seed         int64     `json:"seed"`
	Created      time.Time `json:"created"`
	Turn         int       `json:"turn"`
	ActivePlayer string    `json:"active_player"`
	Over         bool      `json:"over"`
	Winner       string    `json:"winner,omitempty"`
	WinReason    string    `json:"win_reason,omitempty"`
}

// CreateMatchRequest is the body of POST /api/matches.
type CreateMatchRequest struct {
	Seed int64 `json:"seed"`
}

// ActionRequest is the body of POST /api/matches/{id}/actions.
type ActionRequest struct {
	Player string                    `json:"player"`
	Action *kingpinnet.ActionMessage `json:"action"`
}

// Server is the kingpin HTTP and WebSocket front end.
type Server struct {
	matches *session.Manager
	logger  *zap.Logger
	mux     *http.ServeMux
}

// NewServer creates a new web server.
func NewServer(matches *session.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		matches: matches,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// API endpoints
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/matches", s.handleListMatches)
	s.mux.HandleFunc("POST /api/matches", s.handleCreateMatch)
	s.mux.HandleFunc("GET /api/matches/{id}", s.handleGetMatch)
	s.mux.HandleFunc("POST /api/matches/{id}/actions", s.handleAction)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// ServeHTTP lets the server be mounted or tested with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"matches": s.matches.ActiveMatchCount(),
	})
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	catalog := s.matches.Rules().Catalog()
	cards := make([]kingpinnet.CardView, 0, len(catalog))
	for _, c := range catalog {
		cards = append(cards, kingpinnet.NewCardView(c))
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches := s.matches.ListMatches()
	infos := make([]MatchInfo, 0, len(matches))
	for _, m := range matches {
		infos = append(infos, matchInfo(m))
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	match, err := s.matches.CreateMatch(req.Seed)
	if err != nil {
		s.logger.Error("create match", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create match")
		return
	}
	writeJSON(w, http.StatusCreated, matchInfo(match))
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	match, seat, ok := s.lookup(w, r.PathValue("id"), r.URL.Query().Get("player"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateView(match, seat))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	match, seat, ok := s.lookup(w, r.PathValue("id"), req.Player)
	if !ok {
		return
	}
	action, code := kingpinnet.DecodeAction(req.Action)
	if code != game.ErrNone {
		writeJSON(w, http.StatusUnprocessableEntity, kingpinnet.ServerMessage{Type: kingpinnet.MsgError, Error: string(code)})
		return
	}
	upd := match.Apply(seat, action)
	writeJSON(w, http.StatusOK, resultMessage(upd, seat))
}

// lookup resolves a match id and seat, writing the error response itself.
func (s *Server) lookup(w http.ResponseWriter, id, player string) (*session.Match, game.PlayerID, bool) {
	match, ok := s.matches.GetMatch(id)
	if !ok {
		writeError(w, http.StatusNotFound, "match not found")
		return nil, "", false
	}
	seat := game.PlayerID(player)
	if !seat.Valid() {
		writeError(w, http.StatusBadRequest, "player must be P1 or P2")
		return nil, "", false
	}
	return match, seat, true
}

// handleWebSocket seats one browser connection. The client sends action
// messages; the server pushes results and fresh views after every update.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	match, seat, ok := s.lookup(w, r.URL.Query().Get("match"), r.URL.Query().Get("player"))
	if !ok {
		return
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	logger := s.logger.With(zap.String("match_id", match.ID), zap.String("seat", string(seat)))
	logger.Info("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := match.Subscribe(32)
	defer unsubscribe()

	if err := wsjson.Write(ctx, wsConn, stateMessage(match, seat)); err != nil {
		logger.Warn("websocket write", zap.Error(err))
		return
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- s.readActions(ctx, wsConn, match, seat)
	}()

	for {
		select {
		case err := <-readErr:
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				logger.Info("websocket closed")
			} else {
				logger.Warn("websocket read", zap.Error(err))
			}
			return
		case upd, ok := <-updates:
			if !ok {
				wsConn.Close(websocket.StatusGoingAway, "match closed")
				return
			}
			if !upd.Result.OK() && upd.Seat != seat {
				continue
			}
			if err := wsjson.Write(ctx, wsConn, resultMessage(upd, seat)); err != nil {
				logger.Warn("websocket write", zap.Error(err))
				return
			}
			state := stateMessage(match, seat)
			over := upd.Result.OK() && upd.Result.Winner != ""
			if over {
				state.Type = kingpinnet.MsgGameOver
				state.Winner = string(upd.Result.Winner)
				state.Reason = string(upd.Result.WinReason)
			}
			if err := wsjson.Write(ctx, wsConn, state); err != nil {
				logger.Warn("websocket write", zap.Error(err))
				return
			}
			if over {
				wsConn.Close(websocket.StatusNormalClosure, "game over")
				return
			}
		}
	}
}

func (s *Server) readActions(ctx context.Context, wsConn *websocket.Conn, match *session.Match, seat game.PlayerID) error {
	for {
		var msg kingpinnet.ClientMessage
		if err := wsjson.Read(ctx, wsConn, &msg); err != nil {
			return err
		}
		if msg.Type != kingpinnet.MsgAction {
			errMsg := kingpinnet.ServerMessage{Type: kingpinnet.MsgError, Error: fmt.Sprintf("unexpected message type %q", msg.Type)}
			if err := wsjson.Write(ctx, wsConn, errMsg); err != nil {
				return err
			}
			continue
		}
		action, code := kingpinnet.DecodeAction(msg.Action)
		if code != game.ErrNone {
			if err := wsjson.Write(ctx, wsConn, kingpinnet.ServerMessage{Type: kingpinnet.MsgError, Error: string(code)}); err != nil {
				return err
			}
			continue
		}
		match.Apply(seat, action)
	}
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("web server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.matches.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}

// --- helpers ---

func matchInfo(m *session.Match) MatchInfo {
	info := MatchInfo{ID: m.ID, Created: m.Created}
	m.View(func(gs *game.GameState) {
		info.Seed = gs.Seed
		info.Turn = gs.TurnNumber
		info.ActivePlayer = string(gs.ActivePlayer)
		info.Over = gs.Over
		info.Winner = string(gs.Winner)
		info.WinReason = string(gs.WinReason)
	})
	return info
}

func stateView(m *session.Match, seat game.PlayerID) *kingpinnet.StateView {
	var sv *kingpinnet.StateView
	m.View(func(gs *game.GameState) {
		sv = kingpinnet.BuildStateView(gs, seat)
	})
	return sv
}

func stateMessage(m *session.Match, seat game.PlayerID) kingpinnet.ServerMessage {
	return kingpinnet.ServerMessage{Type: kingpinnet.MsgState, State: stateView(m, seat)}
}

func resultMessage(upd session.Update, viewer game.PlayerID) kingpinnet.ServerMessage {
	return kingpinnet.ServerMessage{
		Type:   kingpinnet.MsgResult,
		Seat:   string(upd.Seat),
		Action: upd.Action,
		Result: kingpinnet.NewResultView(upd.Result),
		Events: kingpinnet.VisibleEvents(upd.Events, viewer),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
