// Package config loads CLI configuration from file, environment variables,
// and flags.
package config

import (
	"fmt"
	"os"

	"github.com/pbnj-labs/pbnj/internal/analysis"
)

// Config holds all CLI configuration options.
type Config struct {
	// Project names the documentation project. Defaults to the working
	// directory's base name.
	Project string `koanf:"project"`

	// Input is the path to the extraction JSON file.
	Input string `koanf:"input"`

	// OutputDir is where rendered markdown documents are written.
	OutputDir string `koanf:"output_dir"`

	// TemplateDir optionally overrides the built-in document templates.
	TemplateDir string `koanf:"template_dir"`

	// StatePath is the path to the SQLite state database.
	StatePath string `koanf:"state_path"`

	// Port is the API server port.
	Port int `koanf:"port"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// Analysis holds classification thresholds and rule overrides.
	Analysis analysis.Config `koanf:"analysis"`
}

// Default configuration values.
const (
	DefaultInput     = "extraction.json"
	DefaultOutputDir = "docs"
	DefaultStateFile = ".pbnj/state.db"
	DefaultPort      = 8080
	DefaultOutput    = "text"
)

// defaultProject derives a project name from the working directory.
func defaultProject() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "default"
	}
	return baseName(cwd)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("project is required")
	}
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}
