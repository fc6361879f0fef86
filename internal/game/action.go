package game

import "fmt"

// --- Action kinds ---

type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionAttack
	ActionDefend
	ActionInfluence
	ActionDiscard
	ActionDraw
)

func (k ActionKind) String() string {
	switch k {
	case ActionAttack:
		return "attack"
	case ActionDefend:
		return "defend"
	case ActionInfluence:
		return "influence"
	case ActionDiscard:
		return "discard"
	case ActionDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// ParseActionKind maps a wire name to its kind. Unknown names yield
// ActionUnknown.
func ParseActionKind(s string) ActionKind {
	switch s {
	case "attack":
		return ActionAttack
	case "defend":
		return ActionDefend
	case "influence", "micro_bribe":
		return ActionInfluence
	case "discard":
		return ActionDiscard
	case "draw":
		return ActionDraw
	default:
		return ActionUnknown
	}
}

// --- Actions ---

// Action is one declared player intent. The set of implementations is closed:
// Attack, Defend, Influence, Discard and Draw.
type Action interface {
	Kind() ActionKind
	String() string
	isAction()
}

// At returns a pointer to i, for the optional slot fields of actions.
func At(i int) *int {
	return &i
}

// Attack deals damage to an opposing slot. Without a target slot it can only
// reach the opponent's hand, and only when their board is empty.
type Attack struct {
	TargetPlayer PlayerID // defaults to the opponent
	TargetSlot   *int
	AttackerSlot *int
	AmmoSpend    int
	BaseDamage   int
}

// Defend hires muscles onto one of the actor's own slots.
type Defend struct {
	TargetSlot int
	HireCount  int
}

// Influence is the micro-bribe: pay to strip one muscle from a slot.
// A nil TargetSlot makes it a no-op that still ends the turn.
type Influence struct {
	TargetPlayer PlayerID
	TargetSlot   *int
}

// Discard removes a card from one of the actor's own slots for good.
type Discard struct {
	OwnSlot int
}

// Draw takes the top card of the closed pile and puts it in the hand, a slot
// or the open pile. SlotIndex is required for PlaceSlot.
type Draw struct {
	Place     Placement
	SlotIndex *int
}

func (Attack) Kind() ActionKind    { return ActionAttack }
func (Defend) Kind() ActionKind    { return ActionDefend }
func (Influence) Kind() ActionKind { return ActionInfluence }
func (Discard) Kind() ActionKind   { return ActionDiscard }
func (Draw) Kind() ActionKind      { return ActionDraw }

func (Attack) isAction()    {}
func (Defend) isAction()    {}
func (Influence) isAction() {}
func (Discard) isAction()   {}
func (Draw) isAction()      {}

func optSlot(i *int) string {
	if i == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *i+1)
}

func (a Attack) String() string {
	return fmt.Sprintf("attack %s slot %s with slot %s (ammo %d, base %d)",
		a.TargetPlayer, optSlot(a.TargetSlot), optSlot(a.AttackerSlot), a.AmmoSpend, a.BaseDamage)
}

func (a Defend) String() string {
	return fmt.Sprintf("defend slot %d hiring %d", a.TargetSlot+1, a.HireCount)
}

func (a Influence) String() string {
	return fmt.Sprintf("micro-bribe %s slot %s", a.TargetPlayer, optSlot(a.TargetSlot))
}

func (a Discard) String() string {
	return fmt.Sprintf("discard slot %d", a.OwnSlot+1)
}

func (a Draw) String() string {
	if a.Place == PlaceSlot {
		return fmt.Sprintf("draw to slot %s", optSlot(a.SlotIndex))
	}
	return fmt.Sprintf("draw to %s", a.Place)
}
