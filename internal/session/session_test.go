package session

import (
	"sync"
	"testing"

	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/peterkuimelis/kingpin/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const testRules = `
seed: 11
shuffle: false
cards:
  - id: don
    name: Don
    type: boss
    hp: 10
    count: 2
  - id: thug
    name: Thug
    faction: gangsters
    hp: 3
    atk: 1
    d: 1
    count: 6
`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	rules, err := game.ParseRules([]byte(testRules))
	require.NoError(t, err)
	return NewManager(rules, zaptest.NewLogger(t))
}

func TestCreateMatch(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rules, err := game.ParseRules([]byte(testRules))
	require.NoError(t, err)
	mgr := NewManager(rules, zap.New(core))

	match, err := mgr.CreateMatch(0)
	require.NoError(t, err)

	assert.NotEmpty(t, match.ID)
	assert.Equal(t, game.P1, match.ActivePlayer())
	match.View(func(gs *game.GameState) {
		assert.Equal(t, 1, gs.TurnNumber)
		assert.Equal(t, game.PhaseUpkeep, gs.Phase)
		assert.Equal(t, int64(11), gs.Seed)
	})

	got, ok := mgr.GetMatch(match.ID)
	require.True(t, ok)
	assert.Same(t, match, got)

	created := logs.FilterMessage("match created").All()
	require.Len(t, created, 1)
	assert.Equal(t, match.ID, created[0].ContextMap()["match_id"])
}

func TestApplyRejectsInactiveSeat(t *testing.T) {
	mgr := newTestManager(t)
	match, err := mgr.CreateMatch(0)
	require.NoError(t, err)

	upd := match.Apply(game.P2, game.Discard{OwnSlot: 0})

	assert.Equal(t, ErrNotYourTurn, upd.Result.Error)
	assert.Empty(t, upd.Events)
	match.View(func(gs *game.GameState) {
		assert.Equal(t, 1, gs.TurnNumber)
		assert.Equal(t, game.P1, gs.ActivePlayer)
	})
}

func TestApplyRejectsUnknownSeat(t *testing.T) {
	mgr := newTestManager(t)
	match, err := mgr.CreateMatch(0)
	require.NoError(t, err)

	upd := match.Apply(game.PlayerID("P3"), game.Discard{OwnSlot: 0})
	assert.Equal(t, game.ErrBadPlayer, upd.Result.Error)
}

func TestApplyRejectsNilPointerAction(t *testing.T) {
	mgr := newTestManager(t)
	match, err := mgr.CreateMatch(0)
	require.NoError(t, err)

	var a *game.Attack
	upd := match.Apply(game.P1, a)

	assert.Equal(t, game.ErrUnknownAction, upd.Result.Error)
	assert.Equal(t, "unknown", upd.Action)
	match.View(func(gs *game.GameState) {
		assert.Equal(t, 1, gs.TurnNumber)
		assert.Equal(t, game.P1, gs.ActivePlayer)
	})

	ok := match.Apply(game.P1, &game.Draw{Place: game.PlaceSlot, SlotIndex: game.At(0)})
	assert.True(t, ok.Result.OK(), "pointer draw rejected: %s", ok.Result.Error)
	assert.Equal(t, "draw", ok.Action)
}

func TestApplyReturnsOnlyNewEvents(t *testing.T) {
	mgr := newTestManager(t)
	match, err := mgr.CreateMatch(0)
	require.NoError(t, err)

	first := match.Apply(game.P1, game.Draw{Place: game.PlaceSlot, SlotIndex: game.At(0)})
	require.True(t, first.Result.OK(), "draw rejected: %s", first.Result.Error)
	require.NotEmpty(t, first.Events)
	assert.Equal(t, log.EventNewTurn, first.Events[len(first.Events)-1].Type)

	second := match.Apply(game.P2, game.Discard{OwnSlot: 3})
	require.True(t, second.Result.OK())
	assert.Greater(t, second.Events[0].Seq, first.Events[len(first.Events)-1].Seq)
	assert.Len(t, match.Events(), 1+len(first.Events)+len(second.Events))
}

func TestSubscribe(t *testing.T) {
	mgr := newTestManager(t)
	match, err := mgr.CreateMatch(0)
	require.NoError(t, err)

	updates, cancel := match.Subscribe(4)
	match.Apply(game.P1, game.Discard{OwnSlot: 0})

	upd := <-updates
	assert.Equal(t, match.ID, upd.MatchID)
	assert.Equal(t, game.P1, upd.Seat)
	assert.Equal(t, "discard", upd.Action)
	assert.True(t, upd.Result.OK())

	cancel()
	cancel()
	_, open := <-updates
	assert.False(t, open, "expected the channel to close on cancel")
}

func TestSubscribeDropsWhenFull(t *testing.T) {
	mgr := newTestManager(t)
	match, err := mgr.CreateMatch(0)
	require.NoError(t, err)

	updates, cancel := match.Subscribe(1)
	defer cancel()
	match.Apply(game.P1, game.Discard{OwnSlot: 0})
	match.Apply(game.P2, game.Discard{OwnSlot: 0})

	upd := <-updates
	assert.Equal(t, game.P1, upd.Seat)
	assert.Len(t, updates, 0)
}

func TestConcurrentApplySerializes(t *testing.T) {
	mgr := newTestManager(t)
	match, err := mgr.CreateMatch(0)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			upd := match.Apply(match.ActivePlayer(), game.Discard{OwnSlot: 0})
			if upd.Result.OK() {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Greater(t, accepted, 0)
	match.View(func(gs *game.GameState) {
		assert.Equal(t, 1+accepted, gs.TurnNumber)
	})
}

func TestManagerApplyUnknownMatch(t *testing.T) {
	mgr := newTestManager(t)
	_, err := mgr.Apply("nope", game.P1, game.Discard{})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestRemoveAndList(t *testing.T) {
	mgr := newTestManager(t)
	a, err := mgr.CreateMatch(1)
	require.NoError(t, err)
	b, err := mgr.CreateMatch(2)
	require.NoError(t, err)

	assert.Len(t, mgr.ListMatches(), 2)
	assert.Equal(t, 2, mgr.ActiveMatchCount())

	updates, _ := a.Subscribe(1)
	mgr.RemoveMatch(a.ID)
	_, open := <-updates
	assert.False(t, open)

	_, ok := mgr.GetMatch(a.ID)
	assert.False(t, ok)
	list := mgr.ListMatches()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	mgr.CloseAll()
	assert.Empty(t, mgr.ListMatches())
}
