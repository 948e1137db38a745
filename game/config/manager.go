// Package config loads and caches game configurations from a directory of
// JSON files. The built-in default is always available even when the
// directory has no default.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mazeveil/echomaze/game/engine"
	"github.com/mazeveil/echomaze/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Manager handles game configuration loading and caching.
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager rooted at configDir.
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	m.loadDefaultConfig()
	return m, nil
}

// loadDefaultConfig prefers default.json in the config directory and falls
// back to the built-in configuration.
func (m *Manager) loadDefaultConfig() {
	path := filepath.Join(m.configDir, "default.json")
	if cfg, err := engine.LoadGameConfig(path); err == nil {
		m.defaultConfig = cfg
		m.configs["default"] = cfg
		return
	}
	m.defaultConfig = engine.DefaultConfig()
}

// LoadConfig loads a configuration by name, consulting the cache first.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	path := filepath.Join(m.configDir, name+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if name == "default" {
			return m.GetDefault(), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
	}

	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return config, nil
}

// ListConfigs enumerates the JSON configurations in the directory. The
// built-in default is listed even when no default.json exists.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var infos []*service.ConfigInfo
	seenDefault := false

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		cfg, err := m.LoadConfig(id)
		if err != nil {
			// Skip unparseable files; the validate command reports them.
			continue
		}
		if id == "default" {
			seenDefault = true
		}
		infos = append(infos, configInfo(id, cfg))
	}

	if !seenDefault {
		infos = append(infos, configInfo("default", m.GetDefault()))
	}

	return infos, nil
}

// GetDefault returns the default game configuration.
func (m *Manager) GetDefault() *engine.GameConfig {
	return m.defaultConfig
}

// SaveConfig validates and writes a configuration to the directory.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	name = strings.TrimSuffix(name, ".json")
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

func configInfo(id string, cfg *engine.GameConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		ConfigID:    id,
		Name:        cfg.Name,
		Description: cfg.Description,
		GridWidth:   cfg.GridWidth,
		GridHeight:  cfg.GridHeight,
		DiceSides:   cfg.DiceSides,
	}
}
