// Package commands defines the pressbuild CLI surface.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/quillworks/pressbuild/internal/config"
)

// Global context passed to subcommands if we need to share state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"pressbuild.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Run one build pass over the content tree"`
	Validate ValidateCmd `cmd:"" help:"Validate the content tree without building"`
	Serve    ServeCmd    `cmd:"" help:"Serve the output locally and rebuild on content changes"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configured file when present, falling back to the
// defaults when the default path does not exist.
func loadConfig(root *CLI) (*config.Config, error) {
	if _, err := os.Stat(root.Config); os.IsNotExist(err) && root.Config == "pressbuild.yaml" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}

	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(config.NewLogger(cfg.Logging, root.Verbose))
	return cfg, nil
}
