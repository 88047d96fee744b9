package commands

import (
	"fmt"
	"path/filepath"

	"github.com/quillworks/pressbuild/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Directory to write the config file into"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	cfgPath := root.Config
	if i.Output != "" {
		cfgPath = filepath.Join(i.Output, "pressbuild.yaml")
	}
	if err := config.Init(cfgPath, i.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote configuration to %s\n", cfgPath)
	return nil
}
