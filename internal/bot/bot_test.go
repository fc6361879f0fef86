package bot

import (
	"testing"

	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botRules = `
seed: 21
rules:
  starting_money: 6
cards:
  - id: don
    name: Don
    type: boss
    hp: 6
    d: 1
    count: 2
    abl:
      authority: 1
  - id: gunman
    name: Gunman
    faction: gangsters
    hp: 3
    atk: 2
    d: 1
    count: 6
  - id: cop
    name: Cop
    faction: government
    hp: 4
    atk: 1
    d: 2
    count: 6
  - id: merc
    name: Merc
    faction: mercenaries
    hp: 2
    atk: 3
    count: 6
  - id: event_plus_cash
    name: Plus Cash
    type: event
    count: 2
`

func loadRules(t *testing.T) *game.Rules {
	t.Helper()
	r, err := game.ParseRules([]byte(botRules))
	require.NoError(t, err)
	return r
}

func TestCandidatesAreAccepted(t *testing.T) {
	rules := loadRules(t)

	// Play a few turns to get a board, then check every candidate against a
	// fresh copy of the same position.
	setup := func() *game.Engine {
		gs, err := rules.NewGameState(0)
		require.NoError(t, err)
		e := game.NewEngine(gs, nil)
		e.Initialize()
		for i := 0; i < 4; i++ {
			res := e.Apply(game.Draw{Place: game.PlaceSlot, SlotIndex: game.At(i / 2)})
			require.True(t, res.OK(), "setup draw %d: %s", i, res.Error)
		}
		return e
	}

	base := setup()
	candidates := Candidates(base.State, base.State.ActivePlayer)
	require.NotEmpty(t, candidates)

	for i := range candidates {
		e := setup()
		a := Candidates(e.State, e.State.ActivePlayer)[i]
		res := e.Apply(a)
		assert.True(t, res.OK(), "candidate %s rejected: %s", a, res.Error)
	}
}

func TestCandidatesOffTurn(t *testing.T) {
	rules := loadRules(t)
	gs, err := rules.NewGameState(0)
	require.NoError(t, err)

	assert.Empty(t, Candidates(gs, game.P2))
	gs.Over = true
	assert.Empty(t, Candidates(gs, game.P1))
}

func TestCandidatesKeepLastCoin(t *testing.T) {
	gs := game.NewGameState(game.DefaultConfig())
	me := gs.Player(game.P1)
	me.Tokens.ReserveMoney = 1
	me.PlaceCard(&game.Card{ID: "guard", Type: game.CardTypeCommon, HP: 2, D: 3}, 0, true)
	gs.Player(game.P2).PlaceCard(&game.Card{ID: "target", Type: game.CardTypeCommon, HP: 2}, 0, true)

	for _, a := range Candidates(gs, game.P1) {
		switch act := a.(type) {
		case game.Defend:
			t.Errorf("unexpected defend with one coin: %s", act)
		case game.Attack:
			assert.Zero(t, act.AmmoSpend, "ammo must not spend the last coin")
		}
	}
}

func TestRandomBotChoose(t *testing.T) {
	gs := game.NewGameState(game.DefaultConfig())
	b := NewRandomBot("solo", 1)
	assert.Equal(t, "solo", b.Name())

	// No deck, no board: only a pass is left.
	assert.Equal(t, Pass(), b.Choose(gs, game.P1))
}

func TestPlayMatchIsDeterministic(t *testing.T) {
	rules := loadRules(t)

	first, err := PlayMatch(rules, 5, 200, nil)
	require.NoError(t, err)
	second, err := PlayMatch(rules, 5, 200, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(5), first.Seed)
	if !first.Draw() {
		assert.Contains(t, []game.WinReason{game.WinBossKilled, game.WinEconomicCollapse}, first.WinReason)
	}
}

func TestPlayMatchTurnLimit(t *testing.T) {
	rules := loadRules(t)
	out, err := PlayMatch(rules, 3, 1, nil)
	require.NoError(t, err)
	if out.Draw() {
		assert.Equal(t, 2, out.Turns)
		assert.Contains(t, out.String(), "draw")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Outcome{
		{Winner: game.P1, WinReason: game.WinBossKilled},
		{Winner: game.P1, WinReason: game.WinEconomicCollapse},
		{Winner: game.P2, WinReason: game.WinBossKilled},
		{},
	})
	assert.Equal(t, 4, s.Games)
	assert.Equal(t, 2, s.Wins[game.P1])
	assert.Equal(t, 1, s.Wins[game.P2])
	assert.Equal(t, 2, s.Reasons[game.WinBossKilled])
	assert.Equal(t, 1, s.Draws)
}
