package bot

import (
	"math/rand"

	"github.com/peterkuimelis/kingpin/internal/game"
)

// RandomBot picks uniformly among the plausible actions for a seat. It never
// spends its last coin, so it only collapses when it starts a turn broke.
type RandomBot struct {
	BotName string
	rng     *rand.Rand
}

// NewRandomBot creates a bot with its own seeded source.
func NewRandomBot(name string, seed int64) *RandomBot {
	return &RandomBot{BotName: name, rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBot) Name() string {
	return b.BotName
}

// Choose returns one action for seat. It falls back to a pass.
func (b *RandomBot) Choose(gs *game.GameState, seat game.PlayerID) game.Action {
	candidates := Candidates(gs, seat)
	if len(candidates) == 0 {
		return Pass()
	}
	return candidates[b.rng.Intn(len(candidates))]
}

// Pass is the no-op micro-bribe that simply ends the turn.
func Pass() game.Action {
	return game.Influence{}
}

// Candidates lists actions for seat that should pass validation. It is a
// heuristic: the engine still has the final word.
func Candidates(gs *game.GameState, seat game.PlayerID) []game.Action {
	if gs.Over || gs.ActivePlayer != seat {
		return nil
	}
	me := gs.Player(seat)
	opp := gs.Player(seat.Opponent())
	cfg := gs.Config
	spare := me.Tokens.ReserveMoney - 1 // keep one coin back

	var out []game.Action

	// Draws
	if len(gs.Deck)+len(gs.Shelf) > 0 {
		limited := cfg.HandEnabled && len(me.Hand)+len(me.ActiveCards()) >= me.HandLimit
		if !limited {
			for i := range me.Slots {
				if me.Slots[i].Empty() {
					out = append(out, game.Draw{Place: game.PlaceSlot, SlotIndex: game.At(i)})
				}
			}
			out = append(out, game.Draw{Place: game.PlaceShelf})
			if cfg.HandEnabled {
				out = append(out, game.Draw{Place: game.PlaceHand})
			}
		}
	}

	// Attacks
	var attackers []*int
	for i := range me.Slots {
		if !me.Slots[i].Empty() {
			attackers = append(attackers, game.At(i))
		}
	}
	ammo := min(cfg.AmmoMaxBonus, max(spare, 0))
	if opp.HasBoard() {
		for i := range opp.Slots {
			if opp.Slots[i].Empty() {
				continue
			}
			for _, from := range attackers {
				out = append(out, game.Attack{TargetSlot: game.At(i), AttackerSlot: from, AmmoSpend: ammo})
			}
			if len(attackers) == 0 && ammo > 0 {
				out = append(out, game.Attack{TargetSlot: game.At(i), AmmoSpend: ammo})
			}
		}
	} else if cfg.HandEnabled && len(opp.Hand) > 0 {
		for _, from := range attackers {
			out = append(out, game.Attack{AttackerSlot: from, AmmoSpend: ammo})
		}
	}

	// Defends
	if spare > 0 {
		for i := range me.Slots {
			if rem := game.RemainingQuota(me, i); rem > 0 {
				out = append(out, game.Defend{TargetSlot: i, HireCount: min(rem, spare)})
			}
		}
	}

	// Micro-bribes
	bribeUsed := cfg.MicroBribeOncePerTurn && gs.Flags[game.FlagMicroBribeUsed]
	if !bribeUsed && me.Tokens.ReserveMoney-cfg.MicroBribeCost > 0 {
		for i := range opp.Slots {
			if opp.Slots[i].Muscles > 0 {
				out = append(out, game.Influence{TargetSlot: game.At(i)})
			}
		}
	}

	return out
}
