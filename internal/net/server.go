package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/peterkuimelis/kingpin/internal/session"
	"go.uber.org/zap"
)

// Server hosts a match between the local terminal (P1) and one TCP client (P2).
type Server struct {
	Rules  *game.Rules
	Port   string
	Seed   int64
	Logger *zap.Logger
}

// Run starts the server, waits for a client to join, then runs the match.
func (s *Server) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	fmt.Printf("Waiting for opponent on port %s...\n", s.Port)

	// Accept exactly one connection (the joiner)
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Opponent connected from %s\n", conn.RemoteAddr())

	var joinMsg ClientMessage
	if err := json.NewDecoder(conn).Decode(&joinMsg); err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	if joinMsg.Type != MsgJoin {
		return fmt.Errorf("expected join message, got %q", joinMsg.Type)
	}

	mgr := session.NewManager(s.Rules, logger)
	match, err := mgr.CreateMatch(s.Seed)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	defer mgr.RemoveMatch(match.ID)

	fmt.Printf("Match %s started (seed %d)\n", match.ID, s.Seed)

	// Create a pipe for the host's local connection
	hostConn, hostServerConn := net.Pipe()
	defer hostConn.Close()

	host := NewHost(match, logger)
	host.Attach(game.P1, hostServerConn)
	host.Attach(game.P2, conn)

	errCh := make(chan error, 2)
	go func() {
		client := NewClient(hostConn, string(game.P1), os.Stdin, os.Stdout)
		errCh <- client.RunREPL(ctx)
	}()
	go func() {
		errCh <- host.Run(ctx)
	}()

	return <-errCh
}

// Host relays wire messages between seated connections and one match.
type Host struct {
	match  *session.Match
	logger *zap.Logger

	mu    sync.Mutex
	seats map[game.PlayerID]*seatConn
	errCh chan error
}

type seatConn struct {
	id   game.PlayerID
	conn net.Conn
	enc  *json.Encoder
	mu   sync.Mutex
}

func (sc *seatConn) send(msg ServerMessage) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.enc.Encode(msg)
}

// NewHost creates a relay for match.
func NewHost(match *session.Match, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{
		match:  match,
		logger: logger.With(zap.String("match_id", match.ID)),
		seats:  make(map[game.PlayerID]*seatConn),
		errCh:  make(chan error, 2),
	}
}

// Attach seats a connection and starts reading its action messages.
func (h *Host) Attach(seat game.PlayerID, conn net.Conn) {
	sc := &seatConn{id: seat, conn: conn, enc: json.NewEncoder(conn)}
	h.mu.Lock()
	h.seats[seat] = sc
	h.mu.Unlock()
	go h.readLoop(sc)
}

// Run sends every seat its opening view, then relays match updates until the
// match ends, a connection fails or ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	updates, cancel := h.match.Subscribe(64)
	defer cancel()

	for _, sc := range h.seatList() {
		if err := sc.send(h.stateMessage(sc.id)); err != nil {
			return fmt.Errorf("send opening state to %s: %w", sc.id, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-h.errCh:
			return err
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			done, err := h.relay(upd)
			if err != nil || done {
				return err
			}
		}
	}
}

// relay fans one update out. Rejections only reach the seat that acted.
func (h *Host) relay(upd session.Update) (bool, error) {
	over := upd.Result.OK() && upd.Result.Winner != ""
	for _, sc := range h.seatList() {
		if !upd.Result.OK() && sc.id != upd.Seat {
			continue
		}
		msg := ServerMessage{
			Type:   MsgResult,
			Seat:   string(upd.Seat),
			Action: upd.Action,
			Result: NewResultView(upd.Result),
			Events: VisibleEvents(upd.Events, sc.id),
		}
		if err := sc.send(msg); err != nil {
			return false, fmt.Errorf("send result to %s: %w", sc.id, err)
		}
		state := h.stateMessage(sc.id)
		if over {
			state.Type = MsgGameOver
			state.Winner = string(upd.Result.Winner)
			state.Reason = string(upd.Result.WinReason)
		}
		if err := sc.send(state); err != nil {
			return false, fmt.Errorf("send state to %s: %w", sc.id, err)
		}
	}
	return over, nil
}

func (h *Host) stateMessage(seat game.PlayerID) ServerMessage {
	var sv *StateView
	h.match.View(func(gs *game.GameState) {
		sv = BuildStateView(gs, seat)
	})
	return ServerMessage{Type: MsgState, State: sv}
}

func (h *Host) seatList() []*seatConn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*seatConn, 0, len(h.seats))
	for _, id := range []game.PlayerID{game.P1, game.P2} {
		if sc, ok := h.seats[id]; ok {
			out = append(out, sc)
		}
	}
	return out
}

func (h *Host) readLoop(sc *seatConn) {
	dec := json.NewDecoder(sc.conn)
	for {
		var msg ClientMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				h.logger.Info("seat disconnected", zap.String("seat", string(sc.id)))
				err = fmt.Errorf("%s disconnected", sc.id)
			} else {
				h.logger.Warn("read client message", zap.String("seat", string(sc.id)), zap.Error(err))
				err = fmt.Errorf("read from %s: %w", sc.id, err)
			}
			h.fail(err)
			return
		}
		if msg.Type != MsgAction {
			if !h.reply(sc, ServerMessage{Type: MsgError, Error: fmt.Sprintf("unexpected message type %q", msg.Type)}) {
				return
			}
			continue
		}
		action, code := DecodeAction(msg.Action)
		if code != game.ErrNone {
			if !h.reply(sc, ServerMessage{Type: MsgError, Error: string(code)}, h.stateMessage(sc.id)) {
				return
			}
			continue
		}
		h.match.Apply(sc.id, action)
	}
}

// reply writes directly to one seat. A failed write ends the host.
func (h *Host) reply(sc *seatConn, msgs ...ServerMessage) bool {
	for _, msg := range msgs {
		if err := sc.send(msg); err != nil {
			h.logger.Warn("send to seat", zap.String("seat", string(sc.id)), zap.Error(err))
			h.fail(fmt.Errorf("send to %s: %w", sc.id, err))
			return false
		}
	}
	return true
}

func (h *Host) fail(err error) {
	select {
	case h.errCh <- err:
	default:
	}
}
