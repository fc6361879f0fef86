package game

import (
	"fmt"

	"github.com/peterkuimelis/kingpin/internal/log"
)

// EventResolver applies a drawn event card for the player who drew it.
// It returns the amount applied and a log line.
type EventResolver func(gs *GameState, drawer *PlayerState) (int, string)

// EventRegistry maps event card ids to their resolvers.
type EventRegistry map[string]EventResolver

// DefaultEventRegistry returns the built-in event cards.
func DefaultEventRegistry() EventRegistry {
	return EventRegistry{
		"event_plus_cash":  plusCash,
		"event_minus_raid": minusRaid,
	}
}

// plusCash returns up to two of the drawer's otboy tokens to their reserve.
func plusCash(gs *GameState, drawer *PlayerState) (int, string) {
	take := min(2, drawer.Tokens.Otboy)
	drawer.Tokens.Otboy -= take
	drawer.Tokens.ReserveMoney += take
	return take, fmt.Sprintf("event_plus_cash: %s recovers %d from otboy", drawer.ID, take)
}

// minusRaid strips one muscle from the opponent's first guarded slot.
func minusRaid(gs *GameState, drawer *PlayerState) (int, string) {
	op := gs.Player(drawer.ID.Opponent())
	for i := range op.Slots {
		s := &op.Slots[i]
		if s.Muscles > 0 {
			s.Muscles--
			op.Tokens.Otboy++
			return 1, fmt.Sprintf("event_minus_raid: %s loses a muscle on slot %d", op.ID, i+1)
		}
	}
	return 0, fmt.Sprintf("event_minus_raid: %s has no muscles to raid", op.ID)
}

// resolveEvent handles a drawn event card. Event cards never occupy a slot,
// hand or shelf: once resolved they leave the game.
func (e *Engine) resolveEvent(drawer *PlayerState, card *Card) {
	gs := e.State
	turn, phase := e.tp()
	e.log(log.NewDrawEventCardEvent(turn, phase, string(drawer.ID), card.ID))
	gs.Discard = append(gs.Discard, card)

	if !gs.Config.EventsEnabled {
		e.log(log.NewEventEffectEvent(turn, phase, string(drawer.ID), card.ID, 0,
			fmt.Sprintf("event_suppressed: %s", card.ID)))
		return
	}
	resolve, ok := e.Events[card.ID]
	if !ok {
		e.log(log.NewEventEffectEvent(turn, phase, string(drawer.ID), card.ID, 0,
			fmt.Sprintf("event_unknown: %s", card.ID)))
		return
	}
	amount, details := resolve(gs, drawer)
	e.log(log.NewEventEffectEvent(turn, phase, string(drawer.ID), card.ID, amount, details))
}
