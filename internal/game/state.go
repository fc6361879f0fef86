package game

import "math/rand"

const (
	DefaultSlotCount     = 6
	DefaultHandLimit     = 6
	DefaultStartingMoney = 12
	DefaultBribeCost     = 2
)

// FlagMicroBribeUsed marks that the once-per-turn micro-bribe was spent.
const FlagMicroBribeUsed = "micro_bribe_used"

// Config holds the rule toggles of a match.
type Config struct {
	HandEnabled           bool `yaml:"hand_enabled" json:"hand_enabled"`
	EventsEnabled         bool `yaml:"events_enabled" json:"events_enabled"`
	MicroBribeOncePerTurn bool `yaml:"micro_bribe_once_per_turn" json:"micro_bribe_once_per_turn"`
	AmmoMaxBonus          int  `yaml:"ammo_max_bonus" json:"ammo_max_bonus"`
	CascadeEnabled        bool `yaml:"cascade_enabled" json:"cascade_enabled"`
	CascadeReward         int  `yaml:"cascade_reward" json:"cascade_reward"`
	CascadeMaxTriggers    int  `yaml:"cascade_max_triggers" json:"cascade_max_triggers"`
	StartingMoney         int  `yaml:"starting_money" json:"starting_money"`
	SlotCount             int  `yaml:"slot_count" json:"slot_count"`
	HandLimit             int  `yaml:"hand_limit" json:"hand_limit"`
	MicroBribeCost        int  `yaml:"micro_bribe_cost" json:"micro_bribe_cost"`
}

// DefaultConfig returns the standard rule set.
func DefaultConfig() Config {
	return Config{
		HandEnabled:           false,
		EventsEnabled:         true,
		MicroBribeOncePerTurn: true,
		AmmoMaxBonus:          2,
		CascadeEnabled:        true,
		CascadeReward:         2,
		CascadeMaxTriggers:    3,
		StartingMoney:         DefaultStartingMoney,
		SlotCount:             DefaultSlotCount,
		HandLimit:             DefaultHandLimit,
		MicroBribeCost:        DefaultBribeCost,
	}
}

// --- Board ---

// Slot is one board position. Muscles are shields stacked on the card,
// independent of its HP.
type Slot struct {
	Card    *Card `json:"card"`
	FaceUp  bool  `json:"face_up"`
	Muscles int   `json:"muscles"`
}

// Empty reports whether no card occupies the slot.
func (s *Slot) Empty() bool {
	return s.Card == nil
}

// Clear removes the card and its shields.
func (s *Slot) Clear() {
	s.Card = nil
	s.FaceUp = true
	s.Muscles = 0
}

// TokenPools are a player's two money piles. ReserveMoney is spendable;
// Otboy only ever grows.
type TokenPools struct {
	ReserveMoney int `json:"reserve_money"`
	Otboy        int `json:"otboy"`
}

// PlayerState represents one player's side of the table.
type PlayerState struct {
	ID              PlayerID   `json:"id"`
	HandLimit       int        `json:"hand_limit"`
	Hand            []*Card    `json:"hand"`
	Slots           []Slot     `json:"slots"`
	Tokens          TokenPools `json:"tokens"`
	CascadeUsed     bool       `json:"cascade_used"`
	CascadeTriggers int        `json:"cascade_triggers"`
}

// NewPlayerState creates a player with empty slots and starting money.
func NewPlayerState(id PlayerID, cfg Config) *PlayerState {
	slots := make([]Slot, cfg.SlotCount)
	for i := range slots {
		slots[i].FaceUp = true
	}
	return &PlayerState{
		ID:        id,
		HandLimit: cfg.HandLimit,
		Slots:     slots,
		Tokens:    TokenPools{ReserveMoney: cfg.StartingMoney},
	}
}

// ValidSlot reports whether i indexes one of the player's slots.
func (p *PlayerState) ValidSlot(i int) bool {
	return i >= 0 && i < len(p.Slots)
}

// ActiveCards returns all cards on the board, in slot order.
func (p *PlayerState) ActiveCards() []*Card {
	var result []*Card
	for _, s := range p.Slots {
		if s.Card != nil {
			result = append(result, s.Card)
		}
	}
	return result
}

// HasBoard reports whether any slot is occupied.
func (p *PlayerState) HasBoard() bool {
	for _, s := range p.Slots {
		if s.Card != nil {
			return true
		}
	}
	return false
}

// FreeSlot returns the index of the first empty slot, or -1.
func (p *PlayerState) FreeSlot() int {
	for i, s := range p.Slots {
		if s.Card == nil {
			return i
		}
	}
	return -1
}

// TotalMuscles sums shields across the board.
func (p *PlayerState) TotalMuscles() int {
	total := 0
	for _, s := range p.Slots {
		total += s.Muscles
	}
	return total
}

// ExtendSlots appends n empty slots.
func (p *PlayerState) ExtendSlots(n int) {
	for range n {
		p.Slots = append(p.Slots, Slot{FaceUp: true})
	}
}

// PlaceCard puts a card into an empty slot.
func (p *PlayerState) PlaceCard(c *Card, slot int, faceUp bool) {
	p.Slots[slot].Card = c
	p.Slots[slot].FaceUp = faceUp
}

// --- Game ---

// GameState is the complete state of a match. One engine owns it for the
// lifetime of the match.
type GameState struct {
	Seed         int64                     `json:"seed"`
	Config       Config                    `json:"config"`
	Deck         []*Card                   `json:"deck"`  // closed draw pile, top is index 0
	Shelf        []*Card                   `json:"shelf"` // open reserve pile
	Discard      []*Card                   `json:"discard_out_of_game"`
	Players      map[PlayerID]*PlayerState `json:"players"`
	ActivePlayer PlayerID                  `json:"active_player"`
	Phase        Phase                     `json:"phase"`
	TurnNumber   int                       `json:"turn_number"`
	Flags        map[string]bool           `json:"flags"`
	Over         bool                      `json:"over"`
	Winner       PlayerID                  `json:"winner,omitempty"`
	WinReason    WinReason                 `json:"win_reason,omitempty"`
}

// NewGameState creates an empty match for both seats.
func NewGameState(cfg Config) *GameState {
	return &GameState{
		Config: cfg,
		Players: map[PlayerID]*PlayerState{
			P1: NewPlayerState(P1, cfg),
			P2: NewPlayerState(P2, cfg),
		},
		ActivePlayer: P1,
		Phase:        PhaseUpkeep,
		TurnNumber:   1,
		Flags:        make(map[string]bool),
	}
}

// Player returns the state for a seat.
func (gs *GameState) Player(id PlayerID) *PlayerState {
	return gs.Players[id]
}

// Active returns the player whose turn it is.
func (gs *GameState) Active() *PlayerState {
	return gs.Players[gs.ActivePlayer]
}

// Opponent returns the player waiting for their turn.
func (gs *GameState) Opponent() *PlayerState {
	return gs.Players[gs.ActivePlayer.Opponent()]
}

// ShuffleDeck shuffles the closed pile in place.
func (gs *GameState) ShuffleDeck(rng *rand.Rand) {
	rng.Shuffle(len(gs.Deck), func(i, j int) {
		gs.Deck[i], gs.Deck[j] = gs.Deck[j], gs.Deck[i]
	})
}

// RecycleShelf shuffles the open pile onto the bottom of the closed pile and
// returns how many cards moved.
func (gs *GameState) RecycleShelf(rng *rand.Rand) int {
	n := len(gs.Shelf)
	if n == 0 {
		return 0
	}
	rng.Shuffle(n, func(i, j int) {
		gs.Shelf[i], gs.Shelf[j] = gs.Shelf[j], gs.Shelf[i]
	})
	gs.Deck = append(gs.Deck, gs.Shelf...)
	gs.Shelf = nil
	return n
}

// PopDeck removes and returns the top card of the closed pile, or nil.
func (gs *GameState) PopDeck() *Card {
	if len(gs.Deck) == 0 {
		return nil
	}
	c := gs.Deck[0]
	gs.Deck = gs.Deck[1:]
	return c
}
