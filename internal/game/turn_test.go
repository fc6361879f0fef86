package game

import (
	"testing"

	"github.com/peterkuimelis/kingpin/internal/log"
)

func TestInitialize(t *testing.T) {
	gs := NewGameState(DefaultConfig())
	gs.Phase = PhaseEnd
	gs.TurnNumber = 9
	gs.Flags[FlagMicroBribeUsed] = true
	logger := log.NewMemoryLogger()
	e := NewEngine(gs, logger)

	e.Initialize()

	if gs.Phase != PhaseUpkeep || gs.TurnNumber != 1 || gs.Flags[FlagMicroBribeUsed] {
		t.Errorf("Expected upkeep on turn 1 with a clear bribe flag, got %s / %d / %v",
			gs.Phase, gs.TurnNumber, gs.Flags[FlagMicroBribeUsed])
	}
	if logger.LastEvent().Type != log.EventNewTurn {
		t.Error("Expected a new turn event")
	}
}

func TestAdvanceTurn(t *testing.T) {
	e, logger := newTestEngine(t, DefaultConfig())
	gs := e.State
	p2 := gs.Player(P2)
	p2.CascadeUsed = true
	p2.CascadeTriggers = 3
	hidden := plainCard("hidden", FactionNeutral, 2, 0, 0)
	p2.PlaceCard(hidden, 2, false)
	gs.Flags[FlagMicroBribeUsed] = true

	e.AdvanceTurn()

	if gs.ActivePlayer != P2 || gs.TurnNumber != 2 || gs.Phase != PhaseUpkeep {
		t.Errorf("Expected P2 upkeep on turn 2, got %s %s %d", gs.ActivePlayer, gs.Phase, gs.TurnNumber)
	}
	if gs.Flags[FlagMicroBribeUsed] {
		t.Error("Expected the bribe flag to clear")
	}
	if p2.CascadeUsed || p2.CascadeTriggers != 0 {
		t.Error("Expected P2's cascade counters to reset")
	}
	if !p2.Slots[2].FaceUp {
		t.Error("Expected the face-down card to be revealed")
	}
	reveals := logger.EventsOfType(log.EventReveal)
	if len(reveals) != 1 || reveals[0].Card != "hidden" {
		t.Errorf("Expected one reveal of hidden, got %+v", reveals)
	}
}

func TestAdvanceTurnKeepsOtherCascadeCounters(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	p1 := e.State.Player(P1)
	p1.CascadeTriggers = 2

	e.AdvanceTurn()

	if p1.CascadeTriggers != 2 {
		t.Errorf("Expected P1's counters to survive P2's turn start, got %d", p1.CascadeTriggers)
	}
}

func TestEconomicCollapse(t *testing.T) {
	e, logger := newTestEngine(t, DefaultConfig())
	gs := e.State
	gs.Player(P1).Tokens.ReserveMoney = 0

	res := mustApply(t, e, Discard{OwnSlot: 0})

	if res.Winner != P2 || res.WinReason != WinEconomicCollapse {
		t.Fatalf("Expected P2 to win by economic collapse, got %q %q", res.Winner, res.WinReason)
	}
	if res.Phase != PhaseEnd || !gs.Over {
		t.Errorf("Expected the match to end in phase end, got %s over=%v", res.Phase, gs.Over)
	}
	if wins := logger.EventsOfType(log.EventWin); len(wins) != 1 || wins[0].Player != "P2" {
		t.Errorf("Expected one win event for P2, got %+v", wins)
	}
}

func TestMusclesPreventCollapse(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	gs := e.State
	p1 := gs.Player(P1)
	p1.Tokens.ReserveMoney = 2
	place(gs, P1, 0, plainCard("guard", FactionNeutral, 3, 0, 5), 0)

	res := mustApply(t, e, Defend{TargetSlot: 0, HireCount: 2})

	if res.Winner != "" || gs.Over {
		t.Errorf("Expected no winner while muscles remain, got %q", res.Winner)
	}
}

func TestBossKilled(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	gs := e.State
	place(gs, P2, 0, bossCard("don", 3, 0), 0)

	res := mustApply(t, e, Attack{TargetSlot: At(0), BaseDamage: 3})

	if res.Winner != P1 || res.WinReason != WinBossKilled {
		t.Fatalf("Expected P1 to win by killing the boss, got %q %q", res.Winner, res.WinReason)
	}

	// The finished match refuses further actions.
	expectRejected(t, e, Discard{OwnSlot: 0}, ErrMatchOver)
}

func TestCollapseReportedBeforeBossKill(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	gs := e.State
	p1 := gs.Player(P1)
	p1.Tokens.ReserveMoney = 1
	place(gs, P2, 0, bossCard("don", 1, 0), 0)

	// The last coin goes into ammo and kills the boss.
	res := mustApply(t, e, Attack{TargetSlot: At(0), AmmoSpend: 1})

	if res.WinReason != WinEconomicCollapse || res.Winner != P2 {
		t.Errorf("Expected economic collapse to win over boss kill, got %q %q", res.Winner, res.WinReason)
	}
	if gs.Player(P2).Slots[0].Card.HP > 0 {
		t.Error("Expected the boss to be dead as well")
	}
}

// TestFullExchange plays a short match through several turns.
func TestFullExchange(t *testing.T) {
	e, logger := newTestEngine(t, DefaultConfig())
	gs := e.State
	gs.Deck = []*Card{
		bossCard("p1_boss", 6, 1),
		bossCard("p2_boss", 6, 2),
		plainCard("hitter", FactionGangsters, 3, 3, 1),
	}

	// P1 and P2 bring out their bosses, P1 adds a hitter.
	mustApply(t, e, Draw{Place: PlaceSlot, SlotIndex: At(0)})
	mustApply(t, e, Draw{Place: PlaceSlot, SlotIndex: At(0)})
	mustApply(t, e, Draw{Place: PlaceSlot, SlotIndex: At(1)})
	// P2 guards the boss up to its authority quota of 2.
	mustApply(t, e, Defend{TargetSlot: 0, HireCount: 5})
	mustApply(t, e, Attack{TargetSlot: At(0), AttackerSlot: At(1), AmmoSpend: 2})
	if gs.Over {
		t.Fatal("Expected the boss to survive behind its muscles")
	}
	boss := gs.Player(P2).Slots[0]
	if boss.Card.HP != 3 {
		t.Errorf("Expected boss HP 3, got %d", boss.Card.HP)
	}

	mustApply(t, e, Discard{OwnSlot: 5}) // P2 passes
	res := mustApply(t, e, Attack{TargetSlot: At(0), AttackerSlot: At(1)})
	if res.Winner != P1 || res.WinReason != WinBossKilled {
		t.Fatalf("Expected P1 to win, got %q %q", res.Winner, res.WinReason)
	}
	if gs.TurnNumber != 7 {
		t.Errorf("Expected the match to end on turn 7, got %d", gs.TurnNumber)
	}
	if len(logger.EventsOfType(log.EventNewTurn)) != 7 {
		t.Errorf("Expected 7 turn starts, got %d", len(logger.EventsOfType(log.EventNewTurn)))
	}
}
