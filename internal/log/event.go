package log

// EventType enumerates all observable match events.
type EventType int

const (
	EventNewTurn EventType = iota
	EventPhaseChange
	EventAttack
	EventAttackSkipped
	EventAttackHand
	EventHandDeployed
	EventReassignMuscles
	EventAbsorb
	EventDamage
	EventDefend
	EventMicroBribe
	EventDiscard
	EventDraw
	EventShelfRecycled
	EventDrawEvent
	EventEventEffect
	EventOnEnter
	EventOnEnterError
	EventCascade
	EventReveal
	EventWin
	EventRejected
)

func (e EventType) String() string {
	switch e {
	case EventNewTurn:
		return "NewTurn"
	case EventPhaseChange:
		return "PhaseChange"
	case EventAttack:
		return "Attack"
	case EventAttackSkipped:
		return "AttackSkipped"
	case EventAttackHand:
		return "AttackHand"
	case EventHandDeployed:
		return "HandDeployed"
	case EventReassignMuscles:
		return "ReassignMuscles"
	case EventAbsorb:
		return "Absorb"
	case EventDamage:
		return "Damage"
	case EventDefend:
		return "Defend"
	case EventMicroBribe:
		return "MicroBribe"
	case EventDiscard:
		return "Discard"
	case EventDraw:
		return "Draw"
	case EventShelfRecycled:
		return "ShelfRecycled"
	case EventDrawEvent:
		return "DrawEvent"
	case EventEventEffect:
		return "EventEffect"
	case EventOnEnter:
		return "OnEnter"
	case EventOnEnterError:
		return "OnEnterError"
	case EventCascade:
		return "Cascade"
	case EventReveal:
		return "Reveal"
	case EventWin:
		return "Win"
	case EventRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // phase name at the time of the event
	Player  string    // acting or affected player ("P1"/"P2")
	Type    EventType // event type
	Card    string    // card id (if applicable)
	Slot    int       // 0-based slot index, -1 when not applicable
	Amount  int       // applied amount (damage, shields, money)
	Details string    // human-readable detail string
}
