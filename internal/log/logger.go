package log

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// EventLogger is the interface for logging match events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

// Events returns a copy of every event logged so far.
func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Since returns the events with a sequence number greater than seq.
func (l *MemoryLogger) Since(seq int) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Seq > seq {
			result = append(result, e)
		}
	}
	return result
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- ZapLogger: forwards every event to a structured zap logger ---

// ZapLogger keeps events in memory and mirrors each one as a zap entry.
type ZapLogger struct {
	MemoryLogger
	z *zap.Logger
}

func NewZapLogger(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z}
}

func (l *ZapLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fields := []zap.Field{
		zap.String("event", event.Type.String()),
		zap.Int("turn", event.Turn),
		zap.String("phase", event.Phase),
		zap.String("player", event.Player),
	}
	if event.Card != "" {
		fields = append(fields, zap.String("card", event.Card))
	}
	if event.Slot >= 0 {
		fields = append(fields, zap.Int("slot", event.Slot))
	}
	if event.Amount != 0 {
		fields = append(fields, zap.Int("amount", event.Amount))
	}
	switch event.Type {
	case EventOnEnterError:
		l.z.Warn(event.Details, fields...)
	case EventRejected:
		l.z.Debug(event.Details, fields...)
	default:
		l.z.Info(event.Details, fields...)
	}
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 12 chars for alignment
	for len(phase) < 12 {
		phase += " "
	}

	return fmt.Sprintf("T%-2d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func slotLabel(slot int) string {
	return fmt.Sprintf("slot %d", slot+1)
}

func NewTurnEvent(turn int, player string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "upkeep",
		Player:  player,
		Type:    EventNewTurn,
		Slot:    -1,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, player),
	}
}

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPhaseChange,
		Slot:    -1,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewAttackEvent(turn int, phase string, player string, target string, slot int, dmg, ammo int) GameEvent {
	where := "hand"
	if slot >= 0 {
		where = slotLabel(slot)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAttack,
		Slot:    slot,
		Amount:  dmg,
		Details: fmt.Sprintf("%s attacks %s %s for %d (ammo %d)", player, target, where, dmg, ammo),
	}
}

func NewAttackSkippedEvent(turn int, phase string, player string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAttackSkipped,
		Slot:    -1,
		Details: fmt.Sprintf("%s attack finds no target (%s)", player, reason),
	}
}

func NewAttackHandEvent(turn int, phase string, player string, cardID string, dmg int, killed bool) GameEvent {
	outcome := "survives"
	if killed {
		outcome = "is discarded"
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAttackHand,
		Card:    cardID,
		Slot:    -1,
		Amount:  dmg,
		Details: fmt.Sprintf("%s in %s's hand takes %d and %s", cardID, player, dmg, outcome),
	}
}

func NewHandDeployedEvent(turn int, phase string, player string, cardID string, slot int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventHandDeployed,
		Card:    cardID,
		Slot:    slot,
		Details: fmt.Sprintf("%s is forced from %s's hand to %s", cardID, player, slotLabel(slot)),
	}
}

func NewReassignMusclesEvent(turn int, phase string, player string, from, to, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventReassignMuscles,
		Slot:    to,
		Amount:  count,
		Details: fmt.Sprintf("%s moves %d muscles from %s to %s", player, count, slotLabel(from), slotLabel(to)),
	}
}

func NewAbsorbEvent(turn int, phase string, player string, slot int, burned int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAbsorb,
		Slot:    slot,
		Amount:  burned,
		Details: fmt.Sprintf("%d muscles on %s's %s absorb damage", burned, player, slotLabel(slot)),
	}
}

func NewDamageEvent(turn int, phase string, player string, cardID string, slot int, dmg, hp int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDamage,
		Card:    cardID,
		Slot:    slot,
		Amount:  dmg,
		Details: fmt.Sprintf("%s takes %d damage (HP %d)", cardID, dmg, hp),
	}
}

func NewDefendEvent(turn int, phase string, player string, slot int, hired int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDefend,
		Slot:    slot,
		Amount:  hired,
		Details: fmt.Sprintf("%s hires %d muscles on %s", player, hired, slotLabel(slot)),
	}
}

func NewMicroBribeEvent(turn int, phase string, player string, target string, slot int, removed int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventMicroBribe,
		Slot:    slot,
		Amount:  removed,
		Details: fmt.Sprintf("%s bribes away %d muscle from %s's %s", player, removed, target, slotLabel(slot)),
	}
}

func NewDiscardEvent(turn int, phase string, player string, cardID string, slot int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDiscard,
		Card:    cardID,
		Slot:    slot,
		Details: fmt.Sprintf("%s discards %s from %s", player, cardID, slotLabel(slot)),
	}
}

func NewDrawEvent(turn int, phase string, player string, cardID string, place string, slot int) GameEvent {
	where := place
	if slot >= 0 {
		where = slotLabel(slot)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Card:    cardID,
		Slot:    slot,
		Details: fmt.Sprintf("%s draws %s to %s", player, cardID, where),
	}
}

func NewShelfRecycledEvent(turn int, phase string, player string, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventShelfRecycled,
		Slot:    -1,
		Amount:  count,
		Details: fmt.Sprintf("Reserve pile (%d cards) reshuffled into the draw pile", count),
	}
}

func NewDrawEventCardEvent(turn int, phase string, player string, cardID string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDrawEvent,
		Card:    cardID,
		Slot:    -1,
		Details: fmt.Sprintf("%s draws event %s", player, cardID),
	}
}

func NewEventEffectEvent(turn int, phase string, player string, cardID string, amount int, details string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventEventEffect,
		Card:    cardID,
		Slot:    -1,
		Amount:  amount,
		Details: details,
	}
}

func NewOnEnterEvent(turn int, phase string, player string, cardID string, slot int, effect string, amount int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventOnEnter,
		Card:    cardID,
		Slot:    slot,
		Amount:  amount,
		Details: fmt.Sprintf("%s on enter: %s %d", cardID, effect, amount),
	}
}

func NewOnEnterErrorEvent(turn int, phase string, player string, cardID string, slot int, err error) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventOnEnterError,
		Card:    cardID,
		Slot:    slot,
		Details: fmt.Sprintf("%s on enter effects ignored: %v", cardID, err),
	}
}

func NewCascadeEvent(turn int, phase string, player string, reward, triggers int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventCascade,
		Slot:    -1,
		Amount:  reward,
		Details: fmt.Sprintf("%s completes a 2-2-2 cascade: +%d (trigger %d)", player, reward, triggers),
	}
}

func NewRevealEvent(turn int, phase string, player string, cardID string, slot int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventReveal,
		Card:    cardID,
		Slot:    slot,
		Details: fmt.Sprintf("%s is revealed in %s's %s", cardID, player, slotLabel(slot)),
	}
}

func NewWinEvent(turn int, phase string, winner string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  winner,
		Type:    EventWin,
		Slot:    -1,
		Details: fmt.Sprintf("%s wins! (%s)", winner, reason),
	}
}

func NewRejectedEvent(turn int, phase string, player string, action string, code string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventRejected,
		Slot:    -1,
		Details: fmt.Sprintf("%s %s rejected: %s", player, action, code),
	}
}
