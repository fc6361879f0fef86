package net

import (
	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/peterkuimelis/kingpin/internal/log"
)

// Message types for the JSON protocol over TCP and WebSocket.

const (
	MsgJoin     = "join"
	MsgAction   = "action"
	MsgState    = "state"
	MsgResult   = "result"
	MsgGameOver = "game_over"
	MsgError    = "error"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "state" and "game_over"
	State *StateView `json:"state,omitempty"`

	// For "result"
	Seat   string      `json:"seat,omitempty"`
	Action string      `json:"action,omitempty"`
	Result *ResultView `json:"result,omitempty"`
	Events []EventView `json:"events,omitempty"`

	// For "game_over"
	Winner string `json:"winner,omitempty"`
	Reason string `json:"reason,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// ResultView mirrors game.Result on the wire.
type ResultView struct {
	Phase     string `json:"phase"`
	Error     string `json:"error,omitempty"`
	Winner    string `json:"winner,omitempty"`
	WinReason string `json:"win_reason,omitempty"`
}

// EventView is a simplified match event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  string `json:"player,omitempty"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Slot    int    `json:"slot"`
	Amount  int    `json:"amount,omitempty"`
	Details string `json:"details"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join"
	Player string `json:"player,omitempty"`

	// For "action"
	Action *ActionMessage `json:"action,omitempty"`
}

// ActionMessage is the wire form of a game.Action. Slot indices are 0-based.
type ActionMessage struct {
	Kind         string `json:"kind"`
	TargetPlayer string `json:"target_player,omitempty"`
	TargetSlot   *int   `json:"target_slot,omitempty"`
	AttackerSlot *int   `json:"attacker_slot,omitempty"`
	AmmoSpend    int    `json:"ammo_spend,omitempty"`
	BaseDamage   int    `json:"base_damage,omitempty"`
	HireCount    int    `json:"hire_count,omitempty"`
	OwnSlot      *int   `json:"own_slot,omitempty"`
	Place        string `json:"place,omitempty"`
	SlotIndex    *int   `json:"slot_index,omitempty"`
}

// DecodeAction turns a wire message into an engine action. Unknown kinds
// yield unknown_action, missing required slots bad_index and unknown draw
// places bad_placement.
func DecodeAction(m *ActionMessage) (game.Action, game.ErrorCode) {
	if m == nil {
		return nil, game.ErrUnknownAction
	}
	switch game.ParseActionKind(m.Kind) {
	case game.ActionAttack:
		return game.Attack{
			TargetPlayer: game.PlayerID(m.TargetPlayer),
			TargetSlot:   m.TargetSlot,
			AttackerSlot: m.AttackerSlot,
			AmmoSpend:    m.AmmoSpend,
			BaseDamage:   m.BaseDamage,
		}, game.ErrNone
	case game.ActionDefend:
		if m.TargetSlot == nil {
			return nil, game.ErrBadIndex
		}
		return game.Defend{TargetSlot: *m.TargetSlot, HireCount: m.HireCount}, game.ErrNone
	case game.ActionInfluence:
		return game.Influence{
			TargetPlayer: game.PlayerID(m.TargetPlayer),
			TargetSlot:   m.TargetSlot,
		}, game.ErrNone
	case game.ActionDiscard:
		slot := m.OwnSlot
		if slot == nil {
			slot = m.TargetSlot
		}
		if slot == nil {
			return nil, game.ErrBadIndex
		}
		return game.Discard{OwnSlot: *slot}, game.ErrNone
	case game.ActionDraw:
		place := game.Placement(m.Place)
		switch place {
		case game.PlaceHand, game.PlaceShelf:
		case game.PlaceSlot:
			if m.SlotIndex == nil {
				return nil, game.ErrBadIndex
			}
		default:
			return nil, game.ErrBadPlacement
		}
		return game.Draw{Place: place, SlotIndex: m.SlotIndex}, game.ErrNone
	}
	return nil, game.ErrUnknownAction
}

// EncodeAction is the inverse of DecodeAction.
func EncodeAction(a game.Action) *ActionMessage {
	switch act := a.(type) {
	case game.Attack:
		return &ActionMessage{
			Kind:         act.Kind().String(),
			TargetPlayer: string(act.TargetPlayer),
			TargetSlot:   act.TargetSlot,
			AttackerSlot: act.AttackerSlot,
			AmmoSpend:    act.AmmoSpend,
			BaseDamage:   act.BaseDamage,
		}
	case game.Defend:
		return &ActionMessage{Kind: act.Kind().String(), TargetSlot: game.At(act.TargetSlot), HireCount: act.HireCount}
	case game.Influence:
		return &ActionMessage{Kind: act.Kind().String(), TargetPlayer: string(act.TargetPlayer), TargetSlot: act.TargetSlot}
	case game.Discard:
		return &ActionMessage{Kind: act.Kind().String(), OwnSlot: game.At(act.OwnSlot)}
	case game.Draw:
		return &ActionMessage{Kind: act.Kind().String(), Place: string(act.Place), SlotIndex: act.SlotIndex}
	}
	return &ActionMessage{Kind: "unknown"}
}

// NewResultView converts an engine result.
func NewResultView(r game.Result) *ResultView {
	return &ResultView{
		Phase:     r.Phase.String(),
		Error:     string(r.Error),
		Winner:    string(r.Winner),
		WinReason: string(r.WinReason),
	}
}

// NewEventViews converts logged events. Rejection events are kept so the
// acting client sees why nothing changed.
func NewEventViews(events []log.GameEvent) []EventView {
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, EventView{
			Seq:     e.Seq,
			Turn:    e.Turn,
			Phase:   e.Phase,
			Player:  e.Player,
			Type:    e.Type.String(),
			Card:    e.Card,
			Slot:    e.Slot,
			Amount:  e.Amount,
			Details: e.Details,
		})
	}
	return out
}
