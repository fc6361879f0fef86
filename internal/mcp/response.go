package mcp

import (
	"encoding/json"
	"fmt"

	kingpinnet "github.com/peterkuimelis/kingpin/internal/net"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	MatchID  string                      `json:"match_id,omitempty"`
	Events   []kingpinnet.EventView      `json:"events"`
	State    *kingpinnet.StateView       `json:"state,omitempty"`
	Result   *kingpinnet.ResultView      `json:"result,omitempty"`
	Matches  []MatchSummary              `json:"matches,omitempty"`
	Actions  []*kingpinnet.ActionMessage `json:"suggested_actions,omitempty"`
	GameOver bool                        `json:"game_over"`
	Winner   string                      `json:"winner,omitempty"`
}

// MatchSummary is one row of list_matches.
type MatchSummary struct {
	ID           string `json:"id"`
	Turn         int    `json:"turn"`
	ActivePlayer string `json:"active_player"`
	Over         bool   `json:"over"`
	Winner       string `json:"winner,omitempty"`
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	if resp.Events == nil {
		resp.Events = []kingpinnet.EventView{}
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
