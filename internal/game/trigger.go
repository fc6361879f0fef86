package game

import (
	"fmt"

	"github.com/peterkuimelis/kingpin/internal/log"
)

// --- Damage ---

// applyDamage burns muscles first, one per point, crediting the slot owner's
// otboy. The rest comes off the card's HP, which may go negative.
func (e *Engine) applyDamage(owner *PlayerState, slot, dmg int) {
	s := &owner.Slots[slot]
	if dmg <= 0 || s.Card == nil {
		return
	}
	turn, phase := e.tp()
	burn := min(s.Muscles, dmg)
	if burn > 0 {
		s.Muscles -= burn
		owner.Tokens.Otboy += burn
		e.log(log.NewAbsorbEvent(turn, phase, string(owner.ID), slot, burn))
	}
	if rest := dmg - burn; rest > 0 {
		s.Card.HP -= rest
		e.log(log.NewDamageEvent(turn, phase, string(owner.ID), s.Card.ID, slot, rest, s.Card.HP))
	}
}

// --- On-enter effects ---

type onEnterEffect struct {
	kind   string
	amount int
}

// evaluateOnEnter reads a card's on_enter traits in application order
// (gain, steal, bribe). A malformed payload yields an error and no effects.
func evaluateOnEnter(c *Card) ([]onEnterEffect, error) {
	traits, ok := c.Abl.OnEnter()
	if !ok {
		if c.Abl.Has(TraitOnEnter) {
			return nil, fmt.Errorf("%s is not a trait map", TraitOnEnter)
		}
		return nil, nil
	}
	var effects []onEnterEffect
	for _, kind := range []string{OnEnterGain, OnEnterSteal, OnEnterBribe} {
		v, ok := traits[kind]
		if !ok {
			continue
		}
		n, ok := v.AsInt()
		if !ok {
			return nil, fmt.Errorf("%s: %w", kind, ErrNotNumeric)
		}
		effects = append(effects, onEnterEffect{kind: kind, amount: n})
	}
	return effects, nil
}

// onEnterSlot runs when a card lands face-up in a slot. Broken effect data is
// logged and skipped; the placement itself always stands. The cascade check
// runs either way.
func (e *Engine) onEnterSlot(owner *PlayerState, slot int) {
	card := owner.Slots[slot].Card
	if card == nil {
		return
	}
	turn, phase := e.tp()

	effects, err := evaluateOnEnter(card)
	if err != nil {
		e.log(log.NewOnEnterErrorEvent(turn, phase, string(owner.ID), card.ID, slot, err))
	}
	for _, eff := range effects {
		applied := e.applyOnEnter(owner, slot, eff)
		e.log(log.NewOnEnterEvent(turn, phase, string(owner.ID), card.ID, slot, eff.kind, applied))
	}

	e.checkCascade(owner)
}

// applyOnEnter carries out one effect and returns the amount actually applied.
func (e *Engine) applyOnEnter(owner *PlayerState, slot int, eff onEnterEffect) int {
	if eff.amount <= 0 {
		return 0
	}
	switch eff.kind {
	case OnEnterGain:
		owner.Tokens.ReserveMoney += eff.amount
		return eff.amount
	case OnEnterSteal:
		opp := e.State.Player(owner.ID.Opponent())
		take := min(eff.amount, max(0, opp.Tokens.ReserveMoney))
		opp.Tokens.ReserveMoney -= take
		owner.Tokens.ReserveMoney += take
		return take
	case OnEnterBribe:
		placed := min(eff.amount, RemainingQuota(owner, slot))
		owner.Slots[slot].Muscles += placed
		return placed
	}
	return 0
}

// --- Cascade ---

// FactionCounts tallies the player's non-event board cards per main faction.
func FactionCounts(p *PlayerState) map[string]int {
	counts := make(map[string]int, len(MainFactions))
	for _, f := range MainFactions {
		counts[f] = 0
	}
	for _, s := range p.Slots {
		if s.Card == nil || s.Card.Type == CardTypeEvent {
			continue
		}
		if _, ok := counts[s.Card.Faction]; ok {
			counts[s.Card.Faction]++
		}
	}
	return counts
}

// HasCascade reports whether the board holds at least two cards of every
// main faction.
func HasCascade(p *PlayerState) bool {
	counts := FactionCounts(p)
	for _, f := range MainFactions {
		if counts[f] < 2 {
			return false
		}
	}
	return true
}

// checkCascade pays the 2-2-2 reward. It fires on every placement that finds
// the pattern complete, until the per-turn trigger cap is reached.
func (e *Engine) checkCascade(owner *PlayerState) {
	cfg := e.State.Config
	if !cfg.CascadeEnabled || owner.CascadeTriggers >= cfg.CascadeMaxTriggers {
		return
	}
	if !HasCascade(owner) {
		return
	}
	reward := max(0, cfg.CascadeReward)
	owner.Tokens.ReserveMoney += reward
	owner.CascadeTriggers++
	owner.CascadeUsed = true
	turn, phase := e.tp()
	e.log(log.NewCascadeEvent(turn, phase, string(owner.ID), reward, owner.CascadeTriggers))
}
