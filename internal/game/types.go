package game

import "fmt"

// --- Enums ---

type Phase int

const (
	PhaseUpkeep Phase = iota
	PhaseMain
	PhaseResolution
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseUpkeep:
		return "upkeep"
	case PhaseMain:
		return "main"
	case PhaseResolution:
		return "resolution"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name so views and results stay readable.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "upkeep":
		*p = PhaseUpkeep
	case "main":
		*p = PhaseMain
	case "resolution":
		*p = PhaseResolution
	case "end":
		*p = PhaseEnd
	default:
		return fmt.Errorf("unknown phase %q", string(text))
	}
	return nil
}

// PlayerID identifies one of the two seats.
type PlayerID string

const (
	P1 PlayerID = "P1"
	P2 PlayerID = "P2"
)

// Valid reports whether id names one of the two seats.
func (id PlayerID) Valid() bool {
	return id == P1 || id == P2
}

// Opponent returns the other seat.
func (id PlayerID) Opponent() PlayerID {
	if id == P1 {
		return P2
	}
	return P1
}

type CardType string

const (
	CardTypeBoss   CardType = "boss"
	CardTypeUnique CardType = "unique"
	CardTypeCommon CardType = "common"
	CardTypeEvent  CardType = "event"
	CardTypeAction CardType = "action"
	CardTypeToken  CardType = "token"
)

func (ct CardType) Valid() bool {
	switch ct {
	case CardTypeBoss, CardTypeUnique, CardTypeCommon, CardTypeEvent, CardTypeAction, CardTypeToken:
		return true
	}
	return false
}

// Main factions counted by the cascade check.
const (
	FactionGangsters   = "gangsters"
	FactionGovernment  = "government"
	FactionMercenaries = "mercenaries"
	FactionNeutral     = "neutral"
)

// MainFactions lists the three factions that make up a 2-2-2 cascade.
var MainFactions = [3]string{FactionGangsters, FactionGovernment, FactionMercenaries}

// Placement is where a drawn card goes.
type Placement string

const (
	PlaceHand  Placement = "hand"
	PlaceSlot  Placement = "slot"
	PlaceShelf Placement = "shelf"
)

// WinReason explains why a match ended.
type WinReason string

const (
	WinNone             WinReason = ""
	WinEconomicCollapse WinReason = "economic_collapse"
	WinBossKilled       WinReason = "boss_killed"
)

// --- Errors ---

// ErrorCode is a recoverable rejection returned in a Result. Rejections never
// mutate the state.
type ErrorCode string

const (
	ErrNone             ErrorCode = ""
	ErrSlotEmpty        ErrorCode = "slot_empty"
	ErrSlotOccupied     ErrorCode = "slot_occupied"
	ErrHandDisabled     ErrorCode = "hand_disabled"
	ErrDrawLimitReached ErrorCode = "draw_limit_reached"
	ErrDeckEmpty        ErrorCode = "deck_empty"
	ErrMicroBribeUsed   ErrorCode = "micro_bribe_already_used"
	ErrBadIndex         ErrorCode = "bad_index"
	ErrBadPlacement     ErrorCode = "bad_placement"
	ErrBadPlayer        ErrorCode = "bad_player"
	ErrTargetRequired   ErrorCode = "target_required"
	ErrUnknownAction    ErrorCode = "unknown_action"
	ErrMatchOver        ErrorCode = "match_over"
)

// ActionError adapts a rejected Result to the error interface.
type ActionError struct {
	Code ErrorCode
	Kind ActionKind
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Kind, e.Code)
}

// Result is the outcome of applying one action.
type Result struct {
	Phase     Phase     `json:"phase"`
	Error     ErrorCode `json:"error,omitempty"`
	Winner    PlayerID  `json:"winner,omitempty"`
	WinReason WinReason `json:"win_reason,omitempty"`

	kind ActionKind
}

// OK reports whether the action was accepted.
func (r Result) OK() bool {
	return r.Error == ErrNone
}

// Err returns an *ActionError for a rejected action, nil otherwise.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &ActionError{Code: r.Error, Kind: r.kind}
}
