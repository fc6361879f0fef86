package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn       net.Conn
	playerName string // "P1" or "P2"
	in         *bufio.Reader
	out        io.Writer
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, playerName string, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, playerName: playerName, in: bufio.NewReader(in), out: out}
}

// Connect connects to a server, sends the join message, and runs the REPL.
func Connect(ctx context.Context, addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ClientMessage{Type: MsgJoin, Player: "P2"}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Println("Connected! Waiting for game to start...")

	return NewClient(conn, "P2", os.Stdin, os.Stdout).RunREPL(ctx)
}

// RunREPL reads server messages and prompts for a command whenever it is
// this player's turn.
func (c *Client) RunREPL(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case MsgResult:
			c.renderResult(&msg)

		case MsgError:
			fmt.Fprintf(c.out, "! %s\n", msg.Error)

		case MsgState:
			c.renderState(msg.State)
			if msg.State == nil || !msg.State.IsYourTurn {
				continue
			}
			action, err := c.readCommand()
			if err != nil {
				return err
			}
			if err := enc.Encode(ClientMessage{Type: MsgAction, Action: action}); err != nil {
				return fmt.Errorf("send action: %w", err)
			}

		case MsgGameOver:
			c.renderState(msg.State)
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintf(c.out, "Winner: %s (%s)\n", msg.Winner, msg.Reason)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			return nil
		}
	}
}

func (c *Client) renderResult(msg *ServerMessage) {
	for _, ev := range msg.Events {
		phase := ev.Phase
		for len(phase) < 12 {
			phase += " "
		}
		fmt.Fprintf(c.out, "T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
	}
	if msg.Result != nil && msg.Result.Error != "" && msg.Seat == c.playerName {
		fmt.Fprintf(c.out, "! %s rejected: %s\n", msg.Action, msg.Result.Error)
	}
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "╔══════════════════════════════════════════════════════╗")

	opp := sv.Opponent
	fmt.Fprintf(c.out, "║  OPPONENT %s  Money: %d  Otboy: %d  Hand: %d\n",
		opp.ID, opp.ReserveMoney, opp.Otboy, opp.HandCount)
	fmt.Fprintf(c.out, "║  ")
	for _, s := range opp.Slots {
		fmt.Fprintf(c.out, "%s ", formatSlot(s))
	}
	fmt.Fprintln(c.out)

	fmt.Fprintf(c.out, "║──── Deck: %d  Shelf: %d  Out: %d ────\n", sv.DeckCount, len(sv.Shelf), sv.DiscardCount)

	you := sv.You
	fmt.Fprintf(c.out, "║  ")
	for _, s := range you.Slots {
		fmt.Fprintf(c.out, "%s ", formatSlot(s))
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "║  YOU %s  Money: %d  Otboy: %d  Hand: %d\n",
		you.ID, you.ReserveMoney, you.Otboy, you.HandCount)
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	fmt.Fprintln(c.out, turnInfo)

	if len(you.Hand) > 0 {
		fmt.Fprintf(c.out, "\nHand: ")
		for i, cv := range you.Hand {
			fmt.Fprintf(c.out, "[%d] %s  ", i+1, cv.Name)
		}
		fmt.Fprintln(c.out)
	}
}

func formatSlot(sv SlotView) string {
	if sv.Empty || sv.Card == nil {
		return "[ ]"
	}
	label := fmt.Sprintf("%s %d/%d", sv.Card.Name, sv.Card.HP, sv.Card.ATK)
	if sv.FaceDown {
		label = "SET:" + label
	}
	if sv.Muscles > 0 {
		label += fmt.Sprintf(" +%d", sv.Muscles)
	}
	return "[" + label + "]"
}

const commandHelp = `Commands (slots are 1-based, "-" for none):
  attack <target|-> [attacker|-] [ammo] [base]
  defend <slot> <count>
  bribe <slot>          pay to strip one muscle from an opposing slot
  pass                  end the turn without acting
  discard <slot>
  draw hand|shelf|<slot>`

func (c *Client) readCommand() (*ActionMessage, error) {
	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.in.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return nil, fmt.Errorf("read command: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" || line == "help" {
			fmt.Fprintln(c.out, commandHelp)
			continue
		}
		msg, perr := ParseCommand(line)
		if perr != nil {
			fmt.Fprintf(c.out, "%v\n", perr)
			continue
		}
		return msg, nil
	}
}

// ParseCommand parses one REPL line into an action message. Slot numbers on
// the command line are 1-based.
func ParseCommand(line string) (*ActionMessage, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	args := fields[1:]

	switch fields[0] {
	case "attack", "a":
		msg := &ActionMessage{Kind: "attack"}
		var err error
		if len(args) > 0 {
			if msg.TargetSlot, err = parseSlot(args[0]); err != nil {
				return nil, err
			}
		}
		if len(args) > 1 {
			if msg.AttackerSlot, err = parseSlot(args[1]); err != nil {
				return nil, err
			}
		}
		if len(args) > 2 {
			if msg.AmmoSpend, err = parseCount(args[2]); err != nil {
				return nil, err
			}
		}
		if len(args) > 3 {
			if msg.BaseDamage, err = parseCount(args[3]); err != nil {
				return nil, err
			}
		}
		return msg, nil

	case "defend", "d":
		if len(args) != 2 {
			return nil, errors.New("usage: defend <slot> <count>")
		}
		slot, err := parseSlot(args[0])
		if err != nil || slot == nil {
			return nil, errors.New("defend needs a slot")
		}
		n, err := parseCount(args[1])
		if err != nil {
			return nil, err
		}
		return &ActionMessage{Kind: "defend", TargetSlot: slot, HireCount: n}, nil

	case "bribe", "influence", "b":
		if len(args) != 1 {
			return nil, errors.New("usage: bribe <slot>")
		}
		slot, err := parseSlot(args[0])
		if err != nil {
			return nil, err
		}
		return &ActionMessage{Kind: "influence", TargetSlot: slot}, nil

	case "pass", "p":
		return &ActionMessage{Kind: "influence"}, nil

	case "discard", "x":
		if len(args) != 1 {
			return nil, errors.New("usage: discard <slot>")
		}
		slot, err := parseSlot(args[0])
		if err != nil || slot == nil {
			return nil, errors.New("discard needs a slot")
		}
		return &ActionMessage{Kind: "discard", OwnSlot: slot}, nil

	case "draw", "dr":
		if len(args) != 1 {
			return nil, errors.New("usage: draw hand|shelf|<slot>")
		}
		switch args[0] {
		case "hand", "shelf":
			return &ActionMessage{Kind: "draw", Place: args[0]}, nil
		}
		slot, err := parseSlot(args[0])
		if err != nil || slot == nil {
			return nil, errors.New("draw needs hand, shelf or a slot number")
		}
		return &ActionMessage{Kind: "draw", Place: "slot", SlotIndex: slot}, nil
	}
	return nil, fmt.Errorf("unknown command %q (try help)", fields[0])
}

// parseSlot reads a 1-based slot number; "-" means no slot.
func parseSlot(s string) (*int, error) {
	if s == "-" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("bad slot %q", s)
	}
	n--
	return &n, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return n, nil
}
