package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/msomdec/gallery-admin/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gallery-admin",
	Short: "Edit a static photo gallery stored in a GitHub repository",
	Long: `gallery-admin serves a small admin UI that reads photos.html from a
GitHub repository, lets you edit captions, years, locations and tags, and
commits the regenerated gallery back with an optimistic SHA check.

The decode and apply-years commands work on a local copy of the page.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gallery-admin.yaml", "path to the YAML config file")

	rootCmd.AddCommand(serveCmd, decodeCmd, applyYearsCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)
	return cfg, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
