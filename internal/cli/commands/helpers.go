// Package commands implements the pbnj subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/pbnj-labs/pbnj/internal/cli/config"
	"github.com/pbnj-labs/pbnj/internal/cli/output"
	"github.com/pbnj-labs/pbnj/internal/engine"
)

// getConfig returns the loaded configuration, falling back to defaults when
// the root command has not loaded one (help paths, tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Project:      "default",
		Input:        config.DefaultInput,
		OutputDir:    config.DefaultOutputDir,
		StatePath:    config.DefaultStateFile,
		Port:         config.DefaultPort,
		OutputFormat: config.DefaultOutput,
	}
}

// newRenderer builds an output renderer for a command using the configured
// output format.
func newRenderer(cmd *cobra.Command) *output.Renderer {
	cfg := getConfig()
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(cfg.OutputFormat))
}

// newEngine constructs the pipeline engine from the loaded configuration.
// Callers own the returned engine and must Close it.
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	cfg := getConfig()
	return engine.New(engine.Config{
		Project:     cfg.Project,
		InputPath:   cfg.Input,
		OutputDir:   cfg.OutputDir,
		TemplateDir: cfg.TemplateDir,
		StatePath:   cfg.StatePath,
		Analysis:    cfg.Analysis,
		Logger:      config.GetLogger(cmd.Context()),
	})
}
