package game

// AuthorityBonus is the strongest authority trait among the player's boss
// cards on the board. Bosses do not stack.
func AuthorityBonus(p *PlayerState) int {
	bonus := 0
	for _, s := range p.Slots {
		if !s.Card.IsBoss() {
			continue
		}
		bonus = max(bonus, s.Card.Abl.Trait(TraitAuthority, 0))
	}
	return bonus
}

// DefenseQuota is the most muscles the slot may hold: base defense plus the
// card's extra_defense trait plus the owner's authority bonus. Empty slots
// have no quota.
func DefenseQuota(p *PlayerState, slot int) int {
	s := p.Slots[slot]
	if s.Card == nil {
		return 0
	}
	base := max(0, s.Card.D)
	extra := s.Card.Abl.Trait(TraitExtraDefense, 0)
	return max(0, base+extra+AuthorityBonus(p))
}

// RemainingQuota is how many more muscles the slot can take.
func RemainingQuota(p *PlayerState, slot int) int {
	return max(0, DefenseQuota(p, slot)-p.Slots[slot].Muscles)
}
