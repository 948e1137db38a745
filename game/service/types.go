package service

import (
	"time"

	"github.com/mazeveil/echomaze/game/engine"
)

// SessionInfo is the session view returned to API consumers.
type SessionInfo struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// OperationResult reports the outcome of a single game operation. Accepted
// mirrors the engine's guard decision: a false value means the operation was
// invalid for the current state and changed nothing.
type OperationResult struct {
	Accepted  bool              `json:"accepted"`
	GameState *engine.GameState `json:"game_state"`
}

// ConfigInfo describes an available game configuration.
type ConfigInfo struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	GridWidth   int    `json:"grid_width"`
	GridHeight  int    `json:"grid_height"`
	DiceSides   int    `json:"dice_sides"`
}
