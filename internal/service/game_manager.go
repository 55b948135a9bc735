package service

import (
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/model"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// GameManager is the registry of live games keyed by id.
type GameManager struct {
	games map[string]*model.Game
	mu    sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{
		games: make(map[string]*model.Game),
	}
}

func (gm *GameManager) Add(game *model.Game) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[game.ID]; exists {
		return ErrGameExists
	}
	gm.games[game.ID] = game
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// Prune drops games nobody is watching that have been idle since before cutoff.
// It returns the ids it removed.
func (gm *GameManager) Prune(cutoff time.Time) []string {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	var removed []string
	for id, game := range gm.games {
		if game.Watchers() > 0 || !game.LastActive().Before(cutoff) {
			continue
		}
		delete(gm.games, id)
		removed = append(removed, id)
	}
	return removed
}

func (gm *GameManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}
