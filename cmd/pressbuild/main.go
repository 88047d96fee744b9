package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/quillworks/pressbuild/cmd/pressbuild/commands"
	"github.com/quillworks/pressbuild/internal/version"
)

func main() {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("pressbuild"),
		kong.Description("Build-time content pipeline: content index, image variants and search index."),
		kong.Vars{"version": version.Version},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}))
}
