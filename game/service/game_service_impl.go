package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mazeveil/echomaze/game/engine"
)

// gameServiceImpl implements the GameService interface.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	log      *logrus.Entry
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. The notifier may be
// nil when no push transport is attached.
func NewGameService(sessions SessionManager, configs ConfigManager, notifier Notifier) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		notifier: notifier,
		log:      logrus.WithField("component", "service"),
	}
}

// CreateSession creates a new game session and wires its engine to the
// notifier so deferred updates (the warden's staged turn, timed echo expiry)
// reach subscribed clients.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if strings.Contains(err.Error(), "configuration not found") {
				available, listErr := s.configs.ListConfigs()
				if listErr == nil && len(available) > 0 {
					ids := make([]string, 0, len(available))
					for _, cfg := range available {
						ids = append(ids, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config %q not found, available configs: %v", configName, ids)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.notifier != nil {
		sessionID := session.ID
		session.Engine.Subscribe(func(state *engine.GameState) {
			s.notifier.BroadcastState(sessionID, state)
		})
	}

	s.log.WithFields(logrus.Fields{"session": session.ID, "config": config.Name}).Info("session created")

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions.
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session.
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.log.WithField("session", sessionID).Info("session deleted")
	return nil
}

// StartGame moves a session from the lore screen into play.
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID string) (*OperationResult, error) {
	return s.operate(sessionID, func(e *engine.GameEngine) (bool, error) {
		return e.Start(), nil
	})
}

// RestartGame re-initializes a session's game wholesale.
func (s *gameServiceImpl) RestartGame(ctx context.Context, sessionID string) (*OperationResult, error) {
	return s.operate(sessionID, func(e *engine.GameEngine) (bool, error) {
		e.Restart()
		return true, nil
	})
}

// RollDice rolls the die for a session.
func (s *gameServiceImpl) RollDice(ctx context.Context, sessionID string) (*OperationResult, error) {
	return s.operate(sessionID, func(e *engine.GameEngine) (bool, error) {
		return e.RollDice(), nil
	})
}

// Move moves the player. Out-of-grid coordinates surface the engine's
// ErrInvalidPosition; in-state rejections come back as Accepted == false.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, to engine.Position) (*OperationResult, error) {
	return s.operate(sessionID, func(e *engine.GameEngine) (bool, error) {
		return e.MovePlayer(to)
	})
}

// Pass ends the player's turn without moving.
func (s *gameServiceImpl) Pass(ctx context.Context, sessionID string) (*OperationResult, error) {
	return s.operate(sessionID, func(e *engine.GameEngine) (bool, error) {
		return e.PassTurn(), nil
	})
}

// ActivateEcho spends a full charge to reveal the warden and the exit.
func (s *gameServiceImpl) ActivateEcho(ctx context.Context, sessionID string) (*OperationResult, error) {
	return s.operate(sessionID, func(e *engine.GameEngine) (bool, error) {
		return e.ActivateEcho(), nil
	})
}

// GetGameState retrieves the current game state snapshot.
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return session.Engine.Snapshot(), nil
}

// ListConfigs returns available game configurations.
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration.
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk.
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// operate runs one engine operation against a session and packages the
// outcome.
func (s *gameServiceImpl) operate(sessionID string, op func(*engine.GameEngine) (bool, error)) (*OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	accepted, err := op(session.Engine)
	if err != nil {
		return nil, err
	}

	return &OperationResult{
		Accepted:  accepted,
		GameState: session.Engine.Snapshot(),
	}, nil
}

// sessionInfo builds the consumer view of a session.
func (s *gameServiceImpl) sessionInfo(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     session.Config.Name,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.Snapshot(),
	}
}
