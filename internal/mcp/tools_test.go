package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/peterkuimelis/kingpin/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const toolRules = `
seed: 4
shuffle: false
cards:
  - id: don
    name: Don
    type: boss
    hp: 8
    count: 2
  - id: thug
    name: Thug
    faction: gangsters
    hp: 3
    atk: 1
    d: 1
    count: 6
`

func newTestTools(t *testing.T) *Tools {
	t.Helper()
	rules, err := game.ParseRules([]byte(toolRules))
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	return NewTools(session.NewManager(rules, logger), logger)
}

func call(t *testing.T, handler server.ToolHandlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func decode(t *testing.T, res *mcp.CallToolResult) ToolResponse {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var resp ToolResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &resp))
	return resp
}

func newMatch(t *testing.T, tools *Tools) ToolResponse {
	t.Helper()
	return decode(t, call(t, tools.handleNewMatch, map[string]any{}))
}

func TestNewMatch(t *testing.T) {
	tools := newTestTools(t)
	resp := newMatch(t, tools)

	assert.NotEmpty(t, resp.MatchID)
	require.NotNil(t, resp.State)
	assert.Equal(t, "P1", resp.State.Seat)
	assert.Equal(t, 1, resp.State.Turn)
	assert.True(t, resp.State.IsYourTurn)
	assert.False(t, resp.GameOver)
	assert.NotEmpty(t, resp.Actions, "P1 should get suggestions on turn 1")
	assert.NotNil(t, resp.Events)
}

func TestApplyActionDraw(t *testing.T) {
	tools := newTestTools(t)
	matchID := newMatch(t, tools).MatchID

	resp := decode(t, call(t, tools.handleApplyAction, map[string]any{
		"match_id":   matchID,
		"player":     "P1",
		"kind":       "draw",
		"place":      "slot",
		"slot_index": float64(0),
	}))

	require.NotNil(t, resp.Result)
	assert.Empty(t, resp.Result.Error)
	assert.Equal(t, 2, resp.State.Turn)
	assert.False(t, resp.State.IsYourTurn)
	assert.Empty(t, resp.Actions, "no suggestions off turn")
	assert.False(t, resp.State.You.Slots[0].Empty)
	assert.NotEmpty(t, resp.Events)
}

func TestApplyActionOutOfTurn(t *testing.T) {
	tools := newTestTools(t)
	matchID := newMatch(t, tools).MatchID

	resp := decode(t, call(t, tools.handleApplyAction, map[string]any{
		"match_id": matchID,
		"player":   "P2",
		"kind":     "influence",
	}))

	require.NotNil(t, resp.Result)
	assert.Equal(t, string(session.ErrNotYourTurn), resp.Result.Error)
	assert.Equal(t, 1, resp.State.Turn)
}

func TestApplyActionEngineRejection(t *testing.T) {
	tools := newTestTools(t)
	matchID := newMatch(t, tools).MatchID

	// Slot 0 is empty on turn 1.
	resp := decode(t, call(t, tools.handleApplyAction, map[string]any{
		"match_id":    matchID,
		"player":      "P1",
		"kind":        "defend",
		"target_slot": float64(0),
		"hire_count":  float64(2),
	}))

	require.NotNil(t, resp.Result)
	assert.Equal(t, string(game.ErrSlotEmpty), resp.Result.Error)
	assert.Equal(t, 1, resp.State.Turn)
	assert.True(t, resp.State.IsYourTurn)
}

func TestApplyActionErrors(t *testing.T) {
	tools := newTestTools(t)
	matchID := newMatch(t, tools).MatchID

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"unknown match", map[string]any{"match_id": "nope", "player": "P1", "kind": "draw"}, "No match"},
		{"bad player", map[string]any{"match_id": matchID, "player": "P3", "kind": "draw"}, "P1 or P2"},
		{"unknown kind", map[string]any{"match_id": matchID, "player": "P1", "kind": "shuffle"}, "unknown_action"},
		{"defend needs slot", map[string]any{"match_id": matchID, "player": "P1", "kind": "defend"}, "bad_index"},
		{"bad place", map[string]any{"match_id": matchID, "player": "P1", "kind": "draw", "place": "pocket"}, "bad_placement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, tools.handleApplyAction, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
		})
	}
}

func TestSuggestedActionsApply(t *testing.T) {
	tools := newTestTools(t)
	first := newMatch(t, tools)
	require.NotEmpty(t, first.Actions)

	a := first.Actions[0]
	args := map[string]any{
		"match_id":      first.MatchID,
		"player":        "P1",
		"kind":          a.Kind,
		"target_player": a.TargetPlayer,
		"ammo_spend":    float64(a.AmmoSpend),
		"base_damage":   float64(a.BaseDamage),
		"hire_count":    float64(a.HireCount),
		"place":         a.Place,
	}
	for key, v := range map[string]*int{
		"target_slot":   a.TargetSlot,
		"attacker_slot": a.AttackerSlot,
		"own_slot":      a.OwnSlot,
		"slot_index":    a.SlotIndex,
	} {
		if v != nil {
			args[key] = float64(*v)
		}
	}

	resp := decode(t, call(t, tools.handleApplyAction, args))
	require.NotNil(t, resp.Result)
	assert.Empty(t, resp.Result.Error)
}

func TestGetStateHidesOpponentHand(t *testing.T) {
	tools := newTestTools(t)
	matchID := newMatch(t, tools).MatchID

	resp := decode(t, call(t, tools.handleGetState, map[string]any{
		"match_id": matchID,
		"player":   "P2",
	}))

	require.NotNil(t, resp.State)
	assert.Equal(t, "P2", resp.State.Seat)
	assert.False(t, resp.State.IsYourTurn)
	assert.Empty(t, resp.State.Opponent.Hand)
	assert.Equal(t, 1, resp.State.Opponent.HandCount, "P1 holds its boss")
	assert.Nil(t, resp.Result)
}

func TestListMatches(t *testing.T) {
	tools := newTestTools(t)

	empty := decode(t, call(t, tools.handleListMatches, nil))
	assert.Empty(t, empty.Matches)

	a := newMatch(t, tools).MatchID
	b := newMatch(t, tools).MatchID

	resp := decode(t, call(t, tools.handleListMatches, nil))
	require.Len(t, resp.Matches, 2)
	ids := []string{resp.Matches[0].ID, resp.Matches[1].ID}
	assert.ElementsMatch(t, []string{a, b}, ids)
	for _, m := range resp.Matches {
		assert.Equal(t, 1, m.Turn)
		assert.Equal(t, "P1", m.ActivePlayer)
		assert.False(t, m.Over)
	}
}

func TestRegisterTools(t *testing.T) {
	s := server.NewMCPServer("kingpin-test", "0.0.1", server.WithToolCapabilities(false))
	newTestTools(t).RegisterTools(s)

	msg := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, name := range []string{"new_match", "apply_action", "get_state", "list_matches"} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}
