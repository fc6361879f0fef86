package game

// --- Card definition (from the rules file) ---

// Card is a playable unit. Every copy in play is its own instance: exactly one
// slot, hand, or pile holds a given *Card at a time.
type Card struct {
	ID         string   `yaml:"id" json:"id"`
	Name       string   `yaml:"name" json:"name"`
	Type       CardType `yaml:"type" json:"type"`
	Faction    string   `yaml:"faction" json:"faction"`
	Clan       string   `yaml:"clan" json:"clan,omitempty"`
	HP         int      `yaml:"hp" json:"hp"`
	ATK        int      `yaml:"atk" json:"atk"`
	D          int      `yaml:"d" json:"d"` // base defense: shield limit before modifiers
	Price      int      `yaml:"price" json:"price"`
	Corruption int      `yaml:"corruption" json:"corruption"`
	Rage       int      `yaml:"rage" json:"rage"`
	Abl        Ability  `yaml:"abl" json:"abl"`
	Notes      string   `yaml:"notes" json:"notes,omitempty"`

	// Pair synergy bonuses. Applied by whoever evaluates the pairing
	// condition; the engine never reads them.
	PairHP   int `yaml:"pair_hp" json:"pair_hp,omitempty"`
	PairD    int `yaml:"pair_d" json:"pair_d,omitempty"`
	PairRage int `yaml:"pair_rage" json:"pair_rage,omitempty"`

	// Legacy fields, folded into the fields above by Migrate.
	Caste string  `yaml:"caste" json:"-"`
	Inf   Ability `yaml:"inf" json:"-"`
	Meta  Ability `yaml:"meta" json:"-"`
	PairR int     `yaml:"pair_r" json:"-"`
}

func (c *Card) String() string {
	if c == nil {
		return "(empty)"
	}
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// IsBoss reports whether the card is a boss.
func (c *Card) IsBoss() bool {
	return c != nil && c.Type == CardTypeBoss
}

// Migrate normalizes legacy data once, at load time:
//   - a missing abl is taken from inf
//   - a flat abl gives way to the trait form once legacy traits are folded in
//   - trait keys absent from abl are filled from inf, then from meta (first match wins)
//   - "goverment" is corrected to "government"
//   - clan and caste mirror each other
//   - pair_r feeds pair_rage
func (c *Card) Migrate() {
	if c.Abl.IsZero() && !c.Inf.IsZero() {
		c.Abl = c.Inf.Clone()
	}
	c.Abl.fillMissing(c.Inf)
	c.Abl.fillMissing(c.Meta)
	if len(c.Abl.Traits) > 0 {
		c.Abl.Flat = 0
	}
	c.Inf = Ability{}
	c.Meta = Ability{}

	if c.Faction == "goverment" {
		c.Faction = FactionGovernment
	}
	if c.Faction == "" {
		c.Faction = FactionNeutral
	}
	if c.Type == "" {
		c.Type = CardTypeCommon
	}
	if c.Clan == "" && c.Caste != "" {
		c.Clan = c.Caste
	}
	c.Caste = c.Clan
	if c.PairRage == 0 && c.PairR != 0 {
		c.PairRage = c.PairR
	}
	c.PairR = 0
}

// Clone returns an independent copy of the card.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	out := *c
	out.Abl = c.Abl.Clone()
	out.Inf = c.Inf.Clone()
	out.Meta = c.Meta.Clone()
	return &out
}
