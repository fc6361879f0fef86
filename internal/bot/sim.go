package bot

import (
	"fmt"

	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/peterkuimelis/kingpin/internal/log"
)

// DefaultTurnLimit stops runaway self-play games.
const DefaultTurnLimit = 400

// Outcome summarizes one finished self-play game.
type Outcome struct {
	Seed      int64
	Turns     int
	Winner    game.PlayerID // empty for a draw
	WinReason game.WinReason
	Rejected  int
}

// Draw reports whether the game hit the turn limit.
func (o Outcome) Draw() bool {
	return o.Winner == ""
}

func (o Outcome) String() string {
	if o.Draw() {
		return fmt.Sprintf("seed %d: draw after %d turns", o.Seed, o.Turns)
	}
	return fmt.Sprintf("seed %d: %s wins by %s on turn %d", o.Seed, o.Winner, o.WinReason, o.Turns)
}

// PlayMatch plays one game between two random bots. Rejected choices fall
// back to a pass so every turn makes progress.
func PlayMatch(rules *game.Rules, seed int64, turnLimit int, logger log.EventLogger) (Outcome, error) {
	gs, err := rules.NewGameState(seed)
	if err != nil {
		return Outcome{}, fmt.Errorf("new game state: %w", err)
	}
	if turnLimit <= 0 {
		turnLimit = DefaultTurnLimit
	}
	e := game.NewEngine(gs, logger)
	e.Initialize()

	bots := map[game.PlayerID]*RandomBot{
		game.P1: NewRandomBot("P1", gs.Seed),
		game.P2: NewRandomBot("P2", gs.Seed+1),
	}

	out := Outcome{Seed: gs.Seed}
	for !gs.Over && gs.TurnNumber <= turnLimit {
		seat := gs.ActivePlayer
		res := e.Apply(bots[seat].Choose(gs, seat))
		if !res.OK() {
			out.Rejected++
			if res = e.Apply(Pass()); !res.OK() {
				return out, fmt.Errorf("turn %d: pass rejected: %w", gs.TurnNumber, res.Err())
			}
		}
	}

	out.Turns = gs.TurnNumber
	out.Winner = gs.Winner
	out.WinReason = gs.WinReason
	return out, nil
}

// Summary tallies outcomes.
type Summary struct {
	Games   int
	Wins    map[game.PlayerID]int
	Reasons map[game.WinReason]int
	Draws   int
}

// Summarize counts wins per seat and per reason.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		Games:   len(outcomes),
		Wins:    make(map[game.PlayerID]int),
		Reasons: make(map[game.WinReason]int),
	}
	for _, o := range outcomes {
		if o.Draw() {
			s.Draws++
			continue
		}
		s.Wins[o.Winner]++
		s.Reasons[o.WinReason]++
	}
	return s
}
