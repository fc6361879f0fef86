package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want *ActionMessage
	}{
		{"attack 2 1 2", &ActionMessage{Kind: "attack", TargetSlot: intp(1), AttackerSlot: intp(0), AmmoSpend: 2}},
		{"attack", &ActionMessage{Kind: "attack"}},
		{"a - 3", &ActionMessage{Kind: "attack", AttackerSlot: intp(2)}},
		{"attack 1 - 0 4", &ActionMessage{Kind: "attack", TargetSlot: intp(0), BaseDamage: 4}},
		{"defend 3 2", &ActionMessage{Kind: "defend", TargetSlot: intp(2), HireCount: 2}},
		{"bribe 6", &ActionMessage{Kind: "influence", TargetSlot: intp(5)}},
		{"pass", &ActionMessage{Kind: "influence"}},
		{"discard 1", &ActionMessage{Kind: "discard", OwnSlot: intp(0)}},
		{"draw hand", &ActionMessage{Kind: "draw", Place: "hand"}},
		{"DRAW Shelf", &ActionMessage{Kind: "draw", Place: "shelf"}},
		{"draw 4", &ActionMessage{Kind: "draw", Place: "slot", SlotIndex: intp(3)}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"dance",
		"defend 1",
		"defend - 2",
		"defend 0 1",
		"discard",
		"discard x",
		"draw",
		"draw pocket",
		"attack 1 1 lots",
		"bribe",
	} {
		_, err := ParseCommand(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestRunREPL(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()

	var out bytes.Buffer
	in := strings.NewReader("dance\ndiscard 2\n")
	client := NewClient(clientSide, "P1", in, &out)

	done := make(chan error, 1)
	go func() { done <- client.RunREPL(context.Background()) }()

	enc := json.NewEncoder(serverSide)
	dec := json.NewDecoder(serverSide)

	require.NoError(t, enc.Encode(ServerMessage{Type: MsgState, State: &StateView{Seat: "P1", Turn: 1, Phase: "upkeep", IsYourTurn: true}}))

	var got ClientMessage
	require.NoError(t, dec.Decode(&got))
	assert.Equal(t, MsgAction, got.Type)
	require.NotNil(t, got.Action)
	assert.Equal(t, "discard", got.Action.Kind)
	assert.Equal(t, 1, *got.Action.OwnSlot)

	require.NoError(t, enc.Encode(ServerMessage{
		Type:   MsgResult,
		Seat:   "P1",
		Action: "discard",
		Result: &ResultView{Phase: "upkeep"},
		Events: []EventView{{Turn: 1, Phase: "end", Details: "P1 discards nothing"}},
	}))
	require.NoError(t, enc.Encode(ServerMessage{Type: MsgGameOver, Winner: "P2", Reason: "economic_collapse"}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("REPL did not return after game over")
	}
	assert.Contains(t, out.String(), "unknown command")
	assert.Contains(t, out.String(), "P1 discards nothing")
	assert.Contains(t, out.String(), "Winner: P2 (economic_collapse)")
}

func intp(i int) *int {
	return &i
}
