package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/quillworks/pressbuild/internal/pipeline"
	"github.com/quillworks/pressbuild/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr         string        `help:"Listen address, overriding the configured one"`
	RebuildEvery time.Duration `help:"Also rebuild on a fixed interval (0 disables)"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if s.Addr != "" {
		cfg.Serve.Addr = s.Addr
	}
	if s.RebuildEvery > 0 {
		cfg.Serve.RebuildEvery = s.RebuildEvery
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return preview.New(cfg, pipeline.New(cfg)).Run(ctx)
}
