package game

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rules is a parsed rules file: rule toggles, the card catalog and the
// starting cards of each player.
type Rules struct {
	Seed     int64                       `yaml:"seed"`
	Config   Config                      `yaml:"rules"`
	Shuffle  *bool                       `yaml:"shuffle"`
	Cards    []CardEntry                 `yaml:"cards"`
	Starters map[PlayerID][]StarterEntry `yaml:"starters"`
}

// CardEntry is one catalog card. InDeck defaults to true; Count defaults
// to one copy.
type CardEntry struct {
	Card   `yaml:",inline"`
	InDeck *bool `yaml:"in_deck"`
	Count  int   `yaml:"count"`
}

func (ce *CardEntry) UnmarshalYAML(node *yaml.Node) error {
	type plain CardEntry
	p := plain{Card: Card{HP: 1}}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*ce = CardEntry(p)
	return nil
}

// InDeckCopies returns how many copies of the card go into the draw pile.
func (ce *CardEntry) InDeckCopies() int {
	if ce.InDeck != nil && !*ce.InDeck {
		return 0
	}
	if ce.Count <= 0 {
		return 1
	}
	return ce.Count
}

// Starting zones for starter cards.
const (
	ZoneHand = "hand"
	ZoneSlot = "slot"
)

// StarterEntry names a card a player starts with. In YAML it is either a
// bare card id or a map with id, an optional zone and any card field to
// override.
type StarterEntry struct {
	ID   string
	Zone string

	overrides *yaml.Node
}

func (se *StarterEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		se.ID = node.Value
		return nil
	case yaml.MappingNode:
		var head struct {
			ID   string `yaml:"id"`
			Zone string `yaml:"zone"`
		}
		if err := node.Decode(&head); err != nil {
			return err
		}
		se.ID = head.ID
		se.Zone = head.Zone
		se.overrides = node
		return nil
	default:
		return fmt.Errorf("line %d: starter must be a card id or a map", node.Line)
	}
}

// ParseRulesFile reads and validates a YAML rules file.
func ParseRulesFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRules(data)
}

// ParseRules parses and validates YAML rules. Missing rule toggles keep their
// defaults; every card is migrated.
func ParseRules(data []byte) (*Rules, error) {
	r := Rules{Config: DefaultConfig()}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rules YAML: %w", err)
	}
	for i := range r.Cards {
		r.Cards[i].Migrate()
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rules) validate() error {
	var errs []error
	c := r.Config
	if c.SlotCount <= 0 {
		errs = append(errs, fmt.Errorf("rules.slot_count must be positive, got %d", c.SlotCount))
	}
	for name, v := range map[string]int{
		"ammo_max_bonus":       c.AmmoMaxBonus,
		"cascade_reward":       c.CascadeReward,
		"cascade_max_triggers": c.CascadeMaxTriggers,
		"starting_money":       c.StartingMoney,
		"hand_limit":           c.HandLimit,
		"micro_bribe_cost":     c.MicroBribeCost,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("rules.%s must not be negative, got %d", name, v))
		}
	}

	seen := make(map[string]bool, len(r.Cards))
	for i, ce := range r.Cards {
		switch {
		case ce.ID == "":
			errs = append(errs, fmt.Errorf("cards[%d]: missing id", i))
			continue
		case seen[ce.ID]:
			errs = append(errs, fmt.Errorf("cards[%d]: duplicate id %q", i, ce.ID))
		case !ce.Type.Valid():
			errs = append(errs, fmt.Errorf("card %q: unknown type %q", ce.ID, ce.Type))
		}
		if ce.Count < 0 {
			errs = append(errs, fmt.Errorf("card %q: negative count", ce.ID))
		}
		seen[ce.ID] = true
	}

	for pid, entries := range r.Starters {
		if !pid.Valid() {
			errs = append(errs, fmt.Errorf("starters: unknown player %q", pid))
			continue
		}
		for _, se := range entries {
			if se.ID == "" {
				errs = append(errs, fmt.Errorf("starters.%s: entry without id", pid))
			}
			if se.Zone != "" && se.Zone != ZoneHand && se.Zone != ZoneSlot {
				errs = append(errs, fmt.Errorf("starters.%s: card %q has unknown zone %q", pid, se.ID, se.Zone))
			}
		}
	}
	return errors.Join(errs...)
}

// Lookup returns a fresh copy of the catalog card with the given id.
func (r *Rules) Lookup(id string) (*Card, bool) {
	for i := range r.Cards {
		if r.Cards[i].ID == id {
			return r.Cards[i].Card.Clone(), true
		}
	}
	return nil, false
}

// Catalog returns a copy of every card definition.
func (r *Rules) Catalog() []*Card {
	out := make([]*Card, 0, len(r.Cards))
	for i := range r.Cards {
		out = append(out, r.Cards[i].Card.Clone())
	}
	return out
}

func (r *Rules) starterCard(se StarterEntry) (*Card, error) {
	card, ok := r.Lookup(se.ID)
	if !ok {
		if se.overrides == nil {
			return nil, fmt.Errorf("starter %q is not in the card catalog", se.ID)
		}
		card = &Card{HP: 1}
	}
	if se.overrides != nil {
		if err := se.overrides.Decode(card); err != nil {
			return nil, fmt.Errorf("starter %q: %w", se.ID, err)
		}
	}
	card.Migrate()
	return card, nil
}

// NewGameState builds the opening position: every deck copy is its own card,
// starters go to their zones, the deck is shuffled and each player without a
// boss takes the first boss from the deck into hand. A zero seed falls back
// to the file's seed, then to the clock.
func (r *Rules) NewGameState(seed int64) (*GameState, error) {
	if seed == 0 {
		seed = r.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gs := NewGameState(r.Config)
	gs.Seed = seed
	rng := rand.New(rand.NewSource(seed))

	for i := range r.Cards {
		ce := &r.Cards[i]
		for range ce.InDeckCopies() {
			gs.Deck = append(gs.Deck, ce.Card.Clone())
		}
	}

	for _, pid := range []PlayerID{P1, P2} {
		p := gs.Player(pid)
		for _, se := range r.Starters[pid] {
			card, err := r.starterCard(se)
			if err != nil {
				return nil, err
			}
			switch se.Zone {
			case ZoneSlot:
				idx := p.FreeSlot()
				if idx < 0 {
					return nil, fmt.Errorf("starters.%s: no free slot for %q", pid, se.ID)
				}
				p.PlaceCard(card, idx, true)
			default:
				p.Hand = append(p.Hand, card)
			}
		}
	}

	if r.Shuffle == nil || *r.Shuffle {
		gs.ShuffleDeck(rng)
	}
	for _, pid := range []PlayerID{P1, P2} {
		ensureBoss(gs, gs.Player(pid))
	}
	return gs, nil
}

func ensureBoss(gs *GameState, p *PlayerState) {
	for _, c := range p.Hand {
		if c.IsBoss() {
			return
		}
	}
	for _, c := range p.ActiveCards() {
		if c.IsBoss() {
			return
		}
	}
	for i, c := range gs.Deck {
		if c.IsBoss() {
			gs.Deck = append(gs.Deck[:i], gs.Deck[i+1:]...)
			p.Hand = append(p.Hand, c)
			return
		}
	}
}
