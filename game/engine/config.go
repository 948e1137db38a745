package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// GameConfig describes one Echo Maze variant. Configs are loaded from JSON
// files; DefaultConfig returns the shipped 21x21 game.
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	GridWidth  int `json:"grid_width"`
	GridHeight int `json:"grid_height"`

	DiceSides     int `json:"dice_sides"`
	MaxEchoCharge int `json:"max_echo_charge"`

	// Minimum Manhattan separations applied when placing the exit and the
	// warden at initialization.
	MinExitDistance  int `json:"min_exit_distance"`
	MinEnemyDistance int `json:"min_enemy_distance"`

	// Loop augmentation parameters for the maze post-process.
	LoopPasses int     `json:"loop_passes"`
	LoopChance float64 `json:"loop_chance"`

	// EchoExpiry selects the ability duration policy: EchoExpiryOnMove or
	// EchoExpiryTimed. EchoDurationMS only applies to the timed policy.
	EchoExpiry     string `json:"echo_expiry"`
	EchoDurationMS int    `json:"echo_duration_ms"`

	// EnemyDelayMS staggers the warden's automated turn behind the end of
	// the player's turn.
	EnemyDelayMS int `json:"enemy_delay_ms"`

	Messages struct {
		Welcome      string `json:"welcome"`
		Win          string `json:"win"`
		LoseCaught   string `json:"lose_caught"`
		LoseDetected string `json:"lose_detected"`
	} `json:"messages"`
}

// EchoDuration returns the timed-echo lifetime.
func (c *GameConfig) EchoDuration() time.Duration {
	return time.Duration(c.EchoDurationMS) * time.Millisecond
}

// EnemyDelay returns the pause before the warden's turn executes.
func (c *GameConfig) EnemyDelay() time.Duration {
	return time.Duration(c.EnemyDelayMS) * time.Millisecond
}

// DefaultConfig returns the built-in game configuration.
func DefaultConfig() *GameConfig {
	cfg := &GameConfig{
		Name:             "Echo Maze",
		Description:      "Escape the maze before the warden finds you",
		GridWidth:        21,
		GridHeight:       21,
		DiceSides:        DefaultDiceSides,
		MaxEchoCharge:    DefaultMaxEchoCharge,
		MinExitDistance:  20,
		MinEnemyDistance: 12,
		LoopPasses:       2,
		LoopChance:       0.15,
		EchoExpiry:       EchoExpiryOnMove,
		EchoDurationMS:   5000,
		EnemyDelayMS:     600,
	}
	cfg.Messages.Welcome = "The maze is dark. Roll the die and find the way out."
	cfg.Messages.Win = "You slipped through the exit. The maze lets you go."
	cfg.Messages.LoseCaught = "The warden caught you."
	cfg.Messages.LoseDetected = "The warden sensed you in the dark."
	return cfg
}

// ValidateGameConfig validates a game configuration for correctness and
// playability.
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.GridWidth < MinGridSize || config.GridWidth > MaxGridSize {
		return fmt.Errorf("config validation: grid_width must be between %d and %d, got %d",
			MinGridSize, MaxGridSize, config.GridWidth)
	}
	if config.GridHeight < MinGridSize || config.GridHeight > MaxGridSize {
		return fmt.Errorf("config validation: grid_height must be between %d and %d, got %d",
			MinGridSize, MaxGridSize, config.GridHeight)
	}

	if config.DiceSides < MinDiceSides || config.DiceSides > MaxDiceSides {
		return fmt.Errorf("config validation: dice_sides must be between %d and %d, got %d",
			MinDiceSides, MaxDiceSides, config.DiceSides)
	}
	if config.MaxEchoCharge < 1 {
		return fmt.Errorf("config validation: max_echo_charge must be at least 1, got %d", config.MaxEchoCharge)
	}

	if config.MinExitDistance < 0 || config.MinEnemyDistance < 0 {
		return fmt.Errorf("config validation: placement distances must not be negative")
	}

	if config.LoopPasses < 0 {
		return fmt.Errorf("config validation: loop_passes must not be negative, got %d", config.LoopPasses)
	}
	if config.LoopChance < 0 || config.LoopChance > 1 {
		return fmt.Errorf("config validation: loop_chance must be in [0, 1], got %g", config.LoopChance)
	}

	switch config.EchoExpiry {
	case EchoExpiryOnMove:
	case EchoExpiryTimed:
		if config.EchoDurationMS <= 0 {
			return fmt.Errorf("config validation: echo_duration_ms must be positive for the timed policy, got %d",
				config.EchoDurationMS)
		}
	default:
		return fmt.Errorf("config validation: echo_expiry must be %q or %q, got %q",
			EchoExpiryOnMove, EchoExpiryTimed, config.EchoExpiry)
	}

	if config.EnemyDelayMS < 0 {
		return fmt.Errorf("config validation: enemy_delay_ms must not be negative, got %d", config.EnemyDelayMS)
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Win == "" {
		return fmt.Errorf("config validation: messages.win is required")
	}
	if config.Messages.LoseCaught == "" {
		return fmt.Errorf("config validation: messages.lose_caught is required")
	}
	if config.Messages.LoseDetected == "" {
		return fmt.Errorf("config validation: messages.lose_detected is required")
	}

	return nil
}

// LoadGameConfig loads and validates a game configuration from a JSON file.
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
