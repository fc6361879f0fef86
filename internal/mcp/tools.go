package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/kingpin/internal/bot"
	"github.com/peterkuimelis/kingpin/internal/game"
	kingpinnet "github.com/peterkuimelis/kingpin/internal/net"
	"github.com/peterkuimelis/kingpin/internal/session"
	"go.uber.org/zap"
)

// Tools exposes a session manager as MCP tools.
type Tools struct {
	matches *session.Manager
	logger  *zap.Logger
}

// NewTools creates the tool set over matches.
func NewTools(matches *session.Manager, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{matches: matches, logger: logger}
}

// RegisterTools adds all game tools to the MCP server.
func (t *Tools) RegisterTools(s *server.MCPServer) {
	s.AddTool(newMatchTool(), t.handleNewMatch)
	s.AddTool(applyActionTool(), t.handleApplyAction)
	s.AddTool(getStateTool(), t.handleGetState)
	s.AddTool(listMatchesTool(), t.handleListMatches)
}

// --- Tool definitions ---

func newMatchTool() mcp.Tool {
	return mcp.NewTool("new_match",
		mcp.WithDescription("Deal a new Kingpin match. Returns the match id and P1's view of the opening position. "+
			"P1 acts first; both seats are played through apply_action."),
		mcp.WithNumber("seed", mcp.Description("Shuffle seed; 0 or omitted uses the rules file seed")),
	)
}

func applyActionTool() mcp.Tool {
	return mcp.NewTool("apply_action",
		mcp.WithDescription("Resolve one action for a seat. Slots are 0-based. Every accepted action ends the turn. "+
			"kind is one of attack, defend, influence (micro-bribe; omit target_slot to pass), discard, draw."),
		mcp.WithString("match_id", mcp.Required(), mcp.Description("Match id from new_match")),
		mcp.WithString("player", mcp.Required(), mcp.Description("Acting seat: P1 or P2")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("attack | defend | influence | discard | draw")),
		mcp.WithString("target_player", mcp.Description("Attack/influence target seat, defaults to the opponent")),
		mcp.WithNumber("target_slot", mcp.Description("Target slot for attack, defend and influence")),
		mcp.WithNumber("attacker_slot", mcp.Description("Own slot whose ATK adds to the attack")),
		mcp.WithNumber("ammo_spend", mcp.Description("Money spent on ammo, capped by the rules")),
		mcp.WithNumber("base_damage", mcp.Description("Extra flat damage")),
		mcp.WithNumber("hire_count", mcp.Description("Muscles to hire when defending")),
		mcp.WithNumber("own_slot", mcp.Description("Slot to discard")),
		mcp.WithString("place", mcp.Description("Draw destination: hand | slot | shelf")),
		mcp.WithNumber("slot_index", mcp.Description("Slot for a draw to slot")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Read a seat's view of a match without acting. Read-only."),
		mcp.WithString("match_id", mcp.Required(), mcp.Description("Match id from new_match")),
		mcp.WithString("player", mcp.Required(), mcp.Description("Viewing seat: P1 or P2")),
	)
}

func listMatchesTool() mcp.Tool {
	return mcp.NewTool("list_matches",
		mcp.WithDescription("List live matches. Read-only."),
	)
}

// --- Tool handlers ---

func (t *Tools) handleNewMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seed := int64(request.GetInt("seed", 0))
	match, err := t.matches.CreateMatch(seed)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start match: %v", err), nil
	}
	resp := t.stateResponse(match, game.P1)
	resp.Events = kingpinnet.VisibleEvents(match.Events(), game.P1)
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleApplyAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	match, seat, errResult := t.lookup(request)
	if errResult != nil {
		return errResult, nil
	}

	args := request.GetArguments()
	msg := &kingpinnet.ActionMessage{
		Kind:         request.GetString("kind", ""),
		TargetPlayer: request.GetString("target_player", ""),
		TargetSlot:   optInt(args, "target_slot"),
		AttackerSlot: optInt(args, "attacker_slot"),
		AmmoSpend:    request.GetInt("ammo_spend", 0),
		BaseDamage:   request.GetInt("base_damage", 0),
		HireCount:    request.GetInt("hire_count", 0),
		OwnSlot:      optInt(args, "own_slot"),
		Place:        request.GetString("place", ""),
		SlotIndex:    optInt(args, "slot_index"),
	}
	action, code := kingpinnet.DecodeAction(msg)
	if code != game.ErrNone {
		return mcp.NewToolResultErrorf("Invalid action: %s", code), nil
	}

	upd := match.Apply(seat, action)
	resp := t.stateResponse(match, seat)
	resp.Result = kingpinnet.NewResultView(upd.Result)
	resp.Events = kingpinnet.VisibleEvents(upd.Events, seat)
	t.logger.Debug("mcp action",
		zap.String("match_id", match.ID),
		zap.String("seat", string(seat)),
		zap.String("action", action.String()),
		zap.String("error", string(upd.Result.Error)),
	)
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	match, seat, errResult := t.lookup(request)
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(respondJSON(t.stateResponse(match, seat))), nil
}

func (t *Tools) handleListMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := &ToolResponse{Matches: []MatchSummary{}}
	for _, m := range t.matches.ListMatches() {
		m.View(func(gs *game.GameState) {
			resp.Matches = append(resp.Matches, MatchSummary{
				ID:           m.ID,
				Turn:         gs.TurnNumber,
				ActivePlayer: string(gs.ActivePlayer),
				Over:         gs.Over,
				Winner:       string(gs.Winner),
			})
		})
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// --- helpers ---

func (t *Tools) lookup(request mcp.CallToolRequest) (*session.Match, game.PlayerID, *mcp.CallToolResult) {
	id := request.GetString("match_id", "")
	match, ok := t.matches.GetMatch(id)
	if !ok {
		return nil, "", mcp.NewToolResultErrorf("No match with id %q. Use new_match or list_matches.", id)
	}
	seat := game.PlayerID(request.GetString("player", ""))
	if !seat.Valid() {
		return nil, "", mcp.NewToolResultError("player must be P1 or P2")
	}
	return match, seat, nil
}

// stateResponse builds the seat's view. On the seat's turn it also lists
// candidate actions in apply_action argument form.
func (t *Tools) stateResponse(match *session.Match, seat game.PlayerID) *ToolResponse {
	resp := &ToolResponse{MatchID: match.ID}
	match.View(func(gs *game.GameState) {
		resp.State = kingpinnet.BuildStateView(gs, seat)
		resp.GameOver = gs.Over
		resp.Winner = string(gs.Winner)
		for _, a := range bot.Candidates(gs, seat) {
			resp.Actions = append(resp.Actions, kingpinnet.EncodeAction(a))
		}
	})
	return resp
}

// optInt reads an optional numeric argument; JSON numbers arrive as float64.
func optInt(args map[string]any, key string) *int {
	switch v := args[key].(type) {
	case float64:
		return game.At(int(v))
	case int:
		return game.At(v)
	}
	return nil
}
