// lsviewer drives the landslide viewer core from the command line:
// tile query building, filtered counts, confirmed exports and feature
// details, all against the configured backend.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cascadia-hazards/landslide-viewer/internal/core/config"
	"github.com/cascadia-hazards/landslide-viewer/internal/logger"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "lsviewer",
	}, os.Stderr)
	log := logger.NewSlog(&zl)

	root := &cobra.Command{
		Use:           "lsviewer",
		Short:         "Landslide inventory viewer core",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app := &app{cfg: cfg, log: log}
	app.registerFilterFlags(root)

	root.AddCommand(
		app.tileURLCmd(),
		app.countCmd(),
		app.downloadCmd(),
		app.detailsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
