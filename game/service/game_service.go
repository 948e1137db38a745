package service

import (
	"context"
	"time"

	"github.com/mazeveil/echomaze/game/engine"
)

// GameService defines all game-related operations.
type GameService interface {
	// Session management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game operations
	StartGame(ctx context.Context, sessionID string) (*OperationResult, error)
	RestartGame(ctx context.Context, sessionID string) (*OperationResult, error)
	RollDice(ctx context.Context, sessionID string) (*OperationResult, error)
	Move(ctx context.Context, sessionID string, to engine.Position) (*OperationResult, error)
	Pass(ctx context.Context, sessionID string) (*OperationResult, error)
	ActivateEcho(ctx context.Context, sessionID string) (*OperationResult, error)

	// Game state
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations.
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading.
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Notifier receives state snapshots for connected consumers. The WebSocket
// hub implements it.
type Notifier interface {
	BroadcastState(sessionID string, state *engine.GameState)
}

// Session represents an active game session.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
