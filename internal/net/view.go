package net

import (
	"strings"

	"github.com/peterkuimelis/kingpin/internal/game"
	"github.com/peterkuimelis/kingpin/internal/log"
)

// StateView is the match state from one seat's perspective.
type StateView struct {
	Seat         string     `json:"seat"`
	You          PlayerView `json:"you"`
	Opponent     PlayerView `json:"opponent"`
	Turn         int        `json:"turn"`
	Phase        string     `json:"phase"`
	ActivePlayer string     `json:"active_player"`
	IsYourTurn   bool       `json:"is_your_turn"`
	DeckCount    int        `json:"deck_count"`
	Shelf        []CardView `json:"shelf"`
	DiscardCount int        `json:"discard_count"`
	Over         bool       `json:"over,omitempty"`
	Winner       string     `json:"winner,omitempty"`
	WinReason    string     `json:"win_reason,omitempty"`
}

// PlayerView shows one side of the board.
type PlayerView struct {
	ID              string     `json:"id"`
	ReserveMoney    int        `json:"reserve_money"`
	Otboy           int        `json:"otboy"`
	HandCount       int        `json:"hand_count"`
	Hand            []CardView `json:"hand,omitempty"` // only for "you"
	Slots           []SlotView `json:"slots"`
	CascadeTriggers int        `json:"cascade_triggers"`
}

// SlotView describes a single board slot.
type SlotView struct {
	Index    int       `json:"index"`
	Empty    bool      `json:"empty,omitempty"`
	FaceDown bool      `json:"face_down,omitempty"`
	Card     *CardView `json:"card,omitempty"`
	Muscles  int       `json:"muscles"`
	Quota    int       `json:"quota"`
}

// CardView is the public face of a card.
type CardView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Faction   string `json:"faction"`
	HP        int    `json:"hp"`
	ATK       int    `json:"atk"`
	D         int    `json:"d"`
	Authority int    `json:"authority,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// NewCardView describes c.
func NewCardView(c *game.Card) CardView {
	cv := CardView{
		ID:      c.ID,
		Name:    c.Name,
		Type:    string(c.Type),
		Faction: c.Faction,
		HP:      c.HP,
		ATK:     c.ATK,
		D:       c.D,
		Notes:   c.Notes,
	}
	if c.IsBoss() {
		cv.Authority = c.Abl.Trait(game.TraitAuthority, 0)
	}
	return cv
}

// BuildStateView creates a StateView from the perspective of viewer. The
// opponent's hand is reduced to a count and their face-down cards show as
// empty slots without shields.
func BuildStateView(gs *game.GameState, viewer game.PlayerID) *StateView {
	sv := &StateView{
		Seat:         string(viewer),
		Turn:         gs.TurnNumber,
		Phase:        gs.Phase.String(),
		ActivePlayer: string(gs.ActivePlayer),
		IsYourTurn:   gs.ActivePlayer == viewer && !gs.Over,
		DeckCount:    len(gs.Deck),
		Shelf:        make([]CardView, 0, len(gs.Shelf)),
		DiscardCount: len(gs.Discard),
		Over:         gs.Over,
		Winner:       string(gs.Winner),
		WinReason:    string(gs.WinReason),
	}
	for _, c := range gs.Shelf {
		sv.Shelf = append(sv.Shelf, NewCardView(c))
	}
	if me := gs.Player(viewer); me != nil {
		sv.You = buildPlayerView(me, true)
	}
	if opp := gs.Player(viewer.Opponent()); opp != nil {
		sv.Opponent = buildPlayerView(opp, false)
	}
	return sv
}

func buildPlayerView(p *game.PlayerState, isOwner bool) PlayerView {
	pv := PlayerView{
		ID:              string(p.ID),
		ReserveMoney:    p.Tokens.ReserveMoney,
		Otboy:           p.Tokens.Otboy,
		HandCount:       len(p.Hand),
		Slots:           make([]SlotView, len(p.Slots)),
		CascadeTriggers: p.CascadeTriggers,
	}
	if isOwner {
		for _, c := range p.Hand {
			pv.Hand = append(pv.Hand, NewCardView(c))
		}
	}
	for i := range p.Slots {
		pv.Slots[i] = buildSlotView(p, i, isOwner)
	}
	return pv
}

func buildSlotView(p *game.PlayerState, i int, isOwner bool) SlotView {
	s := p.Slots[i]
	zv := SlotView{Index: i}
	if s.Card == nil || (!s.FaceUp && !isOwner) {
		zv.Empty = true
		return zv
	}
	cv := NewCardView(s.Card)
	zv.Card = &cv
	zv.FaceDown = !s.FaceUp
	zv.Muscles = s.Muscles
	zv.Quota = game.DefenseQuota(p, i)
	return zv
}

// VisibleEvents converts events for viewer, hiding which card the opponent
// drew into their hand.
func VisibleEvents(events []log.GameEvent, viewer game.PlayerID) []EventView {
	out := NewEventViews(events)
	for i := range out {
		ev := &out[i]
		if ev.Type != log.EventDraw.String() || ev.Player == string(viewer) || ev.Slot >= 0 {
			continue
		}
		if strings.HasSuffix(events[i].Details, " to "+string(game.PlaceHand)) {
			ev.Card = ""
			ev.Details = ev.Player + " draws a card to hand"
		}
	}
	return out
}
