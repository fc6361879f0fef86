package game

import "github.com/peterkuimelis/kingpin/internal/log"

// finishResolution closes an accepted action: the phase moves to end, win
// conditions are checked (economic collapse first), and if the match goes on
// the turn passes.
func (e *Engine) finishResolution(kind ActionKind) Result {
	gs := e.State
	e.setPhase(PhaseResolution)
	e.setPhase(PhaseEnd)

	ap := gs.Active()
	op := gs.Opponent()
	switch {
	case EconomicCollapse(ap):
		e.declareWinner(op.ID, WinEconomicCollapse)
	case BossKilled(op):
		e.declareWinner(ap.ID, WinBossKilled)
	default:
		e.AdvanceTurn()
	}
	return Result{Phase: gs.Phase, Winner: gs.Winner, WinReason: gs.WinReason, kind: kind}
}

// EconomicCollapse reports whether the player has no money and no muscles.
func EconomicCollapse(p *PlayerState) bool {
	return p.Tokens.ReserveMoney == 0 && p.TotalMuscles() == 0
}

// BossKilled reports whether any boss on the player's board is at 0 HP or less.
func BossKilled(p *PlayerState) bool {
	for _, s := range p.Slots {
		if s.Card.IsBoss() && s.Card.HP <= 0 {
			return true
		}
	}
	return false
}

func (e *Engine) declareWinner(winner PlayerID, reason WinReason) {
	gs := e.State
	gs.Over = true
	gs.Winner = winner
	gs.WinReason = reason
	e.log(log.NewWinEvent(gs.TurnNumber, gs.Phase.String(), string(winner), string(reason)))
}

// AdvanceTurn hands the turn to the other player: per-turn flags clear, the
// new active player's cascade counters reset and their face-down cards flip up.
func (e *Engine) AdvanceTurn() {
	gs := e.State
	gs.ActivePlayer = gs.ActivePlayer.Opponent()
	gs.TurnNumber++
	gs.Phase = PhaseUpkeep
	if gs.Flags == nil {
		gs.Flags = make(map[string]bool)
	}
	gs.Flags[FlagMicroBribeUsed] = false

	ap := gs.Active()
	ap.CascadeUsed = false
	ap.CascadeTriggers = 0
	e.log(log.NewTurnEvent(gs.TurnNumber, string(ap.ID)))

	for i := range ap.Slots {
		s := &ap.Slots[i]
		if s.Card != nil && !s.FaceUp {
			s.FaceUp = true
			e.log(log.NewRevealEvent(gs.TurnNumber, gs.Phase.String(), string(ap.ID), s.Card.ID, i))
		}
	}
}
