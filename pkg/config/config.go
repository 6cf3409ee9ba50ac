/*
Package config manages the TOML config shared by the strgrp CLI and IPC server.
*/
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/strgrp/internal/utils"
	"github.com/bastiangx/strgrp/pkg/strgrp"
)

const appName = "strgrp"

// Config holds the entire config structure.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// EngineConfig holds grouping options.
type EngineConfig struct {
	Threshold   float64 `toml:"threshold"`
	DynamicSize int     `toml:"dynamic_size"`
	Parallel    bool    `toml:"parallel"`
	Workers     int     `toml:"workers"`
	MaxGroups   int     `toml:"max_groups"`
	MaxItems    int     `toml:"max_items"`
	MaxKeyLen   int     `toml:"max_key_len"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxKeyLen   int `toml:"max_key_len"`
	RankedLimit int `toml:"ranked_limit"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	RankedLimit   int  `toml:"ranked_limit"`
	Interactive   bool `toml:"interactive"`
	UnicodeNFC    bool `toml:"unicode_nfc"`
	FoldCase      bool `toml:"fold_case"`
	CollapseSpace bool `toml:"collapse_space"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Threshold:   0.85,
			DynamicSize: 0,
			Parallel:    false,
			Workers:     0,
			MaxKeyLen:   4096,
		},
		Server: ServerConfig{
			MaxKeyLen:   1024,
			RankedLimit: 16,
		},
		CLI: CliConfig{
			RankedLimit: 5,
		},
	}
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	var errs []error
	e := c.Engine
	if math.IsNaN(e.Threshold) || e.Threshold < 0 || e.Threshold > 1 {
		errs = append(errs, fmt.Errorf("engine.threshold must be in [0, 1], got %v", e.Threshold))
	}
	for _, f := range []struct {
		name string
		v    int
	}{
		{"engine.dynamic_size", e.DynamicSize},
		{"engine.workers", e.Workers},
		{"engine.max_groups", e.MaxGroups},
		{"engine.max_items", e.MaxItems},
		{"engine.max_key_len", e.MaxKeyLen},
		{"server.max_key_len", c.Server.MaxKeyLen},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", f.name, f.v))
		}
	}
	if c.Server.RankedLimit < 1 {
		errs = append(errs, fmt.Errorf("server.ranked_limit must be positive, got %d", c.Server.RankedLimit))
	}
	if c.CLI.RankedLimit < 1 {
		errs = append(errs, fmt.Errorf("cli.ranked_limit must be positive, got %d", c.CLI.RankedLimit))
	}
	return errors.Join(errs...)
}

// EngineOptions translates the engine section into strgrp options.
func (c *Config) EngineOptions() []strgrp.Option {
	e := c.Engine
	opts := []strgrp.Option{
		strgrp.WithWorkers(e.Workers),
		strgrp.WithMaxGroups(e.MaxGroups),
		strgrp.WithMaxItems(e.MaxItems),
		strgrp.WithMaxKeyLen(e.MaxKeyLen),
	}
	if e.Parallel {
		opts = append(opts, strgrp.WithStrategy(strgrp.Parallel))
	}
	return opts
}

// KeyNormalization returns the cli input clean-ups.
func (c *Config) KeyNormalization() utils.KeyNormalization {
	return utils.KeyNormalization{
		NFC:           c.CLI.UnicodeNFC,
		FoldCase:      c.CLI.FoldCase,
		CollapseSpace: c.CLI.CollapseSpace,
	}
}

// GetConfigDir returns the first writable per-user config directory, falling
// back to the executable's directory.
func GetConfigDir() (string, error) {
	dir, err := utils.ResolveConfigDir(appName)
	if err != nil {
		log.Errorf("Failed to resolve config directory: %v", err)
		return "", err
	}
	return dir, nil
}

// GetDefaultConfigPath returns the default path for config.toml.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/strgrp/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file, falling back to a per-section partial
// parse when the typed decode fails. The result is validated.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config = tryPartialParse(configPath)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

func tryPartialParse(configPath string) *Config {
	config := DefaultConfig()

	raw, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config
	}
	if section, ok := utils.ExtractSection(raw, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(raw, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(raw, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractFloat64(data, "threshold"); ok {
		engine.Threshold = val
	}
	if val, ok := utils.ExtractInt64(data, "dynamic_size"); ok {
		engine.DynamicSize = val
	}
	if val, ok := utils.ExtractBool(data, "parallel"); ok {
		engine.Parallel = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		engine.Workers = val
	}
	if val, ok := utils.ExtractInt64(data, "max_groups"); ok {
		engine.MaxGroups = val
	}
	if val, ok := utils.ExtractInt64(data, "max_items"); ok {
		engine.MaxItems = val
	}
	if val, ok := utils.ExtractInt64(data, "max_key_len"); ok {
		engine.MaxKeyLen = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_key_len"); ok {
		server.MaxKeyLen = val
	}
	if val, ok := utils.ExtractInt64(data, "ranked_limit"); ok {
		server.RankedLimit = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "ranked_limit"); ok {
		cli.RankedLimit = val
	}
	if val, ok := utils.ExtractBool(data, "interactive"); ok {
		cli.Interactive = val
	}
	if val, ok := utils.ExtractBool(data, "unicode_nfc"); ok {
		cli.UnicodeNFC = val
	}
	if val, ok := utils.ExtractBool(data, "fold_case"); ok {
		cli.FoldCase = val
	}
	if val, ok := utils.ExtractBool(data, "collapse_space"); ok {
		cli.CollapseSpace = val
	}
}

// RebuildConfigFile force creates a new config.toml at the default path.
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of the loaded config file.
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file.
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
