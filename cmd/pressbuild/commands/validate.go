package commands

import (
	"context"
	"fmt"

	"github.com/quillworks/pressbuild/internal/errors"
	"github.com/quillworks/pressbuild/internal/validate"
	"github.com/quillworks/pressbuild/internal/workspace"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	contentRoot, err := workspace.Resolve(context.Background(), cfg.Content)
	if err != nil {
		return err
	}

	report, err := validate.New(contentRoot).Run()
	if err != nil {
		return err
	}

	if !report.Ok() {
		fmt.Println("Content validation failed:")
		for _, issue := range report.Issues {
			fmt.Printf(" - %s\n", issue)
		}
		return errors.ValidationError(fmt.Sprintf("%d validation issues", len(report.Issues)))
	}

	fmt.Printf("Content validation passed (%d files checked)\n", report.FilesChecked)
	return nil
}
