package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillworks/pressbuild/internal/events"
	"github.com/quillworks/pressbuild/internal/logfields"
	"github.com/quillworks/pressbuild/internal/pipeline"
)

const timeRound = time.Millisecond

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory, overriding the configured one"`
	Clean  bool   `help:"Remove previous output before building"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Clean {
		cfg.Output.Clean = true
	}

	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		slog.Warn("Build events disabled", logfields.Error(err))
	}
	defer publisher.Close()

	report, err := pipeline.New(cfg).Run(context.Background())
	publisher.Publish(report, err)
	if err != nil {
		return err
	}

	fmt.Printf("Built %d articles, %d search documents (%d index bytes) in %s\n",
		report.Articles, report.SearchDocs, report.IndexBytes, report.Duration().Round(timeRound))
	return nil
}
