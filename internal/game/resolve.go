package game

import "github.com/peterkuimelis/kingpin/internal/log"

// Each handler validates everything it needs before touching the state and
// returns ErrNone once the action has been carried out.

// --- Attack ---

func (e *Engine) attack(a Attack) ErrorCode {
	gs := e.State
	ap := gs.Active()
	target := a.TargetPlayer
	if target == "" {
		target = ap.ID.Opponent()
	}
	if !target.Valid() || target == ap.ID {
		return ErrBadPlayer
	}
	op := gs.Player(target)
	if a.AttackerSlot != nil && !ap.ValidSlot(*a.AttackerSlot) {
		return ErrBadIndex
	}
	if a.TargetSlot != nil {
		if !op.ValidSlot(*a.TargetSlot) {
			return ErrBadIndex
		}
		if op.Slots[*a.TargetSlot].Empty() {
			return ErrSlotEmpty
		}
	} else if op.HasBoard() {
		// The hand is only reachable through an empty board.
		return ErrTargetRequired
	}

	e.setPhase(PhaseResolution)
	turn, phase := e.tp()

	ammo := max(0, min(gs.Config.AmmoMaxBonus, a.AmmoSpend, ap.Tokens.ReserveMoney))
	ap.Tokens.ReserveMoney -= ammo
	ap.Tokens.Otboy += ammo

	dmg := max(a.BaseDamage, 0)
	if a.AttackerSlot != nil {
		if c := ap.Slots[*a.AttackerSlot].Card; c != nil {
			dmg += c.ATK
		}
	}
	dmg += ammo

	if a.TargetSlot != nil {
		e.log(log.NewAttackEvent(turn, phase, string(ap.ID), string(op.ID), *a.TargetSlot, dmg, ammo))
		e.applyDamage(op, *a.TargetSlot, dmg)
		return ErrNone
	}
	e.attackHand(ap, op, dmg, ammo)
	return ErrNone
}

// attackHand strikes the first card in the defender's hand. With a free slot
// the card is forced onto the board and defended before damage lands;
// otherwise the card takes the hit in hand.
func (e *Engine) attackHand(ap, op *PlayerState, dmg, ammo int) {
	gs := e.State
	turn, phase := e.tp()
	if !gs.Config.HandEnabled || len(op.Hand) == 0 {
		e.log(log.NewAttackSkippedEvent(turn, phase, string(ap.ID), "no_target"))
		return
	}

	card := op.Hand[0]
	idx := op.FreeSlot()
	if idx < 0 {
		card.HP -= dmg
		killed := card.HP <= 0
		if killed {
			op.Hand = op.Hand[1:]
			gs.Discard = append(gs.Discard, card)
		}
		e.log(log.NewAttackHandEvent(turn, phase, string(op.ID), card.ID, dmg, killed))
		return
	}

	op.Hand = op.Hand[1:]
	op.PlaceCard(card, idx, true)
	e.log(log.NewHandDeployedEvent(turn, phase, string(op.ID), card.ID, idx))
	e.onEnterSlot(op, idx)
	e.emergencyDefense(op, idx, dmg)
	e.log(log.NewAttackEvent(turn, phase, string(ap.ID), string(op.ID), idx, dmg, ammo))
	e.applyDamage(op, idx, dmg)
}

// emergencyDefense hires muscles for a freshly deployed slot up to its quota,
// then pulls muscles over from the owner's other slots if the incoming damage
// still exceeds the slot's shields.
func (e *Engine) emergencyDefense(owner *PlayerState, idx, dmg int) {
	turn, phase := e.tp()
	s := &owner.Slots[idx]
	remaining := RemainingQuota(owner, idx)

	if hire := min(owner.Tokens.ReserveMoney, remaining); hire > 0 {
		owner.Tokens.ReserveMoney -= hire
		s.Muscles += hire
		remaining -= hire
		e.log(log.NewDefendEvent(turn, phase, string(owner.ID), idx, hire))
	}

	need := max(0, dmg-s.Muscles)
	for i := range owner.Slots {
		if need == 0 || remaining == 0 {
			break
		}
		if i == idx {
			continue
		}
		from := &owner.Slots[i]
		move := min(from.Muscles, need, remaining)
		if move <= 0 {
			continue
		}
		from.Muscles -= move
		s.Muscles += move
		need -= move
		remaining -= move
		e.log(log.NewReassignMusclesEvent(turn, phase, string(owner.ID), i, idx, move))
	}
}

// --- Defend ---

func (e *Engine) defend(a Defend) ErrorCode {
	ap := e.State.Active()
	if !ap.ValidSlot(a.TargetSlot) {
		return ErrBadIndex
	}
	s := &ap.Slots[a.TargetSlot]
	if s.Empty() {
		return ErrSlotEmpty
	}

	e.setPhase(PhaseResolution)
	turn, phase := e.tp()
	hire := max(0, min(a.HireCount, RemainingQuota(ap, a.TargetSlot), ap.Tokens.ReserveMoney))
	ap.Tokens.ReserveMoney -= hire
	s.Muscles += hire
	e.log(log.NewDefendEvent(turn, phase, string(ap.ID), a.TargetSlot, hire))
	return ErrNone
}

// --- Influence (micro-bribe) ---

func (e *Engine) influence(a Influence) ErrorCode {
	gs := e.State
	ap := gs.Active()
	if a.TargetSlot == nil {
		e.setPhase(PhaseResolution)
		return ErrNone
	}
	target := a.TargetPlayer
	if target == "" {
		target = ap.ID.Opponent()
	}
	if !target.Valid() {
		return ErrBadPlayer
	}
	tp := gs.Player(target)
	if !tp.ValidSlot(*a.TargetSlot) {
		return ErrBadIndex
	}
	if gs.Config.MicroBribeOncePerTurn && gs.Flags[FlagMicroBribeUsed] {
		return ErrMicroBribeUsed
	}

	e.setPhase(PhaseResolution)
	turn, phase := e.tp()
	cost := gs.Config.MicroBribeCost
	if ap.Tokens.ReserveMoney < cost {
		return ErrNone
	}
	ap.Tokens.ReserveMoney -= cost
	ap.Tokens.Otboy += cost

	removed := 0
	ts := &tp.Slots[*a.TargetSlot]
	if ts.Muscles > 0 {
		ts.Muscles--
		tp.Tokens.Otboy++
		removed = 1
	}
	gs.Flags[FlagMicroBribeUsed] = true
	e.log(log.NewMicroBribeEvent(turn, phase, string(ap.ID), string(target), *a.TargetSlot, removed))
	return ErrNone
}

// --- Discard ---

func (e *Engine) discard(a Discard) ErrorCode {
	gs := e.State
	ap := gs.Active()
	if !ap.ValidSlot(a.OwnSlot) {
		return ErrBadIndex
	}

	e.setPhase(PhaseResolution)
	s := &ap.Slots[a.OwnSlot]
	if s.Card == nil {
		return ErrNone
	}
	turn, phase := e.tp()
	gs.Discard = append(gs.Discard, s.Card)
	e.log(log.NewDiscardEvent(turn, phase, string(ap.ID), s.Card.ID, a.OwnSlot))
	s.Clear()
	return ErrNone
}

// --- Draw ---

func (e *Engine) draw(a Draw) ErrorCode {
	gs := e.State
	ap := gs.Active()
	if gs.Config.HandEnabled && len(ap.Hand)+len(ap.ActiveCards()) >= ap.HandLimit {
		return ErrDrawLimitReached
	}
	if len(gs.Deck) == 0 && len(gs.Shelf) == 0 {
		return ErrDeckEmpty
	}
	switch a.Place {
	case PlaceHand:
		if !gs.Config.HandEnabled {
			return ErrHandDisabled
		}
	case PlaceSlot:
		if a.SlotIndex == nil || !ap.ValidSlot(*a.SlotIndex) {
			return ErrBadIndex
		}
		if !ap.Slots[*a.SlotIndex].Empty() {
			return ErrSlotOccupied
		}
	case PlaceShelf:
	default:
		return ErrBadPlacement
	}

	e.setPhase(PhaseResolution)
	turn, phase := e.tp()
	if len(gs.Deck) == 0 {
		n := gs.RecycleShelf(e.rng)
		e.log(log.NewShelfRecycledEvent(turn, phase, string(ap.ID), n))
	}
	card := gs.PopDeck()

	if card.Type == CardTypeEvent {
		e.resolveEvent(ap, card)
		return ErrNone
	}

	switch a.Place {
	case PlaceHand:
		ap.Hand = append(ap.Hand, card)
		e.log(log.NewDrawEvent(turn, phase, string(ap.ID), card.ID, string(PlaceHand), -1))
	case PlaceSlot:
		ap.PlaceCard(card, *a.SlotIndex, true)
		e.log(log.NewDrawEvent(turn, phase, string(ap.ID), card.ID, string(PlaceSlot), *a.SlotIndex))
		e.onEnterSlot(ap, *a.SlotIndex)
	case PlaceShelf:
		gs.Shelf = append(gs.Shelf, card)
		e.log(log.NewDrawEvent(turn, phase, string(ap.ID), card.ID, string(PlaceShelf), -1))
	}
	return ErrNone
}
