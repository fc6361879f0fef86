package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/peterkuimelis/kingpin/internal/game"
	"go.uber.org/zap"
)

// Manager manages live matches built from one rules file.
type Manager struct {
	rules   *game.Rules
	matches map[string]*Match
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewManager creates a new match manager
func NewManager(rules *game.Rules, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		rules:   rules,
		matches: make(map[string]*Match),
		logger:  logger,
	}
}

// Rules returns the rules every match is built from.
func (m *Manager) Rules() *game.Rules {
	return m.rules
}

// CreateMatch deals a fresh match. A zero seed falls back to the rules seed.
func (m *Manager) CreateMatch(seed int64) (*Match, error) {
	gs, err := m.rules.NewGameState(seed)
	if err != nil {
		return nil, fmt.Errorf("new game state: %w", err)
	}
	id := uuid.NewString()
	match := NewMatch(id, gs, m.logger)

	m.mu.Lock()
	m.matches[id] = match
	m.mu.Unlock()

	m.logger.Info("match created",
		zap.String("match_id", id),
		zap.Int64("seed", gs.Seed),
		zap.Int("deck", len(gs.Deck)),
	)
	return match, nil
}

// GetMatch retrieves a match by ID
func (m *Manager) GetMatch(matchID string) (*Match, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	match, ok := m.matches[matchID]
	return match, ok
}

// Apply routes an action to the named match.
func (m *Manager) Apply(matchID string, seat game.PlayerID, a game.Action) (Update, error) {
	match, ok := m.GetMatch(matchID)
	if !ok {
		return Update{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return match.Apply(seat, a), nil
}

// RemoveMatch closes and forgets a match.
func (m *Manager) RemoveMatch(matchID string) {
	m.mu.Lock()
	match, ok := m.matches[matchID]
	delete(m.matches, matchID)
	m.mu.Unlock()

	if ok {
		match.Close()
	}
	m.logger.Info("match removed", zap.String("match_id", matchID))
}

// ListMatches returns all matches, oldest first.
func (m *Manager) ListMatches() []*Match {
	m.mu.RLock()
	matches := make([]*Match, 0, len(m.matches))
	for _, match := range m.matches {
		matches = append(matches, match)
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Created.Equal(matches[j].Created) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Created.Before(matches[j].Created)
	})
	return matches
}

// ActiveMatchCount returns the count of matches without a winner.
func (m *Manager) ActiveMatchCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, match := range m.matches {
		if !match.Over() {
			count++
		}
	}
	return count
}

// CloseAll closes every match.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, match := range m.matches {
		match.Close()
		delete(m.matches, id)
	}
	m.logger.Info("all matches closed")
}
