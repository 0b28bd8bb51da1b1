// Package config provides configuration loading and management for scalespace.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Scale-space parameters
	Detector struct {
		// NumOctaves is the number of octaves to build
		NumOctaves int `yaml:"numOctaves"`

		// LevelsPerOctave is the number of levels per doubling of sigma (S)
		LevelsPerOctave int `yaml:"levelsPerOctave"`

		// MinOctave is the index of the first octave; only 0 is supported
		MinOctave int `yaml:"minOctave"`

		// Sigma0 is the absolute blur of the first level
		Sigma0 float64 `yaml:"sigma0"`

		// SigmaNominal is the blur the input image is assumed to carry
		SigmaNominal float64 `yaml:"sigmaNominal"`
	} `yaml:"detector"`

	// Blur parameters
	Blur struct {
		// Workers is the number of goroutines each blur pass is split across
		Workers int `yaml:"workers"`
	} `yaml:"blur"`

	// Output parameters
	Output struct {
		// SaveLevels determines whether every level is written as a PNG image
		SaveLevels bool `yaml:"saveLevels"`

		// LevelsDir is the directory level images are written to
		LevelsDir string `yaml:"levelsDir"`

		// ReportFile is the path of the YAML level report; empty disables it
		ReportFile string `yaml:"reportFile"`

		// Verbose enables per-level logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Logging parameters
	Logging struct {
		// Level is the minimum log level (debug, info, warn, error)
		Level string `yaml:"level"`

		// JSON switches from console output to JSON lines
		JSON bool `yaml:"json"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default detector parameters
	cfg.Detector.NumOctaves = 4
	cfg.Detector.LevelsPerOctave = 3
	cfg.Detector.MinOctave = 0
	cfg.Detector.Sigma0 = 1.6
	cfg.Detector.SigmaNominal = 0.5

	cfg.Blur.Workers = 1

	// Set default output parameters
	cfg.Output.SaveLevels = false
	cfg.Output.LevelsDir = "levels"
	cfg.Output.ReportFile = ""
	cfg.Output.Verbose = false

	cfg.Logging.Level = "info"
	cfg.Logging.JSON = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML over the defaults so omitted keys keep their default
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
