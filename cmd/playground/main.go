package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/config"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/history"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/logging"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage/sqlite"
)

var (
	configFlag   string
	logLevelFlag string

	cfg    *config.Config
	logger *zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "playground",
	Short: "Playground - run JavaScript and TypeScript snippets in process",
	Long: `Playground runs JavaScript and TypeScript snippets in an embedded
interpreter. TypeScript is transpiled on the fly; every run gets a fresh
sandbox with only console, print and timers, and a wall-clock deadline.

Use it as a web editor (serve), a one-shot runner (run) or a REPL (repl).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: ./playground.yaml or ~/.playground/playground.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
}

// setup loads .env, the config file and the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	c, err := config.Load(configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if logLevelFlag != "" {
		c.Log.Level = logLevelFlag
	} else if cmd.Annotations["quiet"] == "true" {
		// Interactive commands print results themselves.
		c.Log.Level = "error"
	}

	l, err := logging.New(c.Log, os.Stderr)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

func newEngine() (*engine.Engine, error) {
	eng, err := engine.New(engine.OptionsFromConfig(cfg.Engine), logger)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return eng, nil
}

// openRecorder returns a history recorder. When storage is disabled or the
// database cannot be opened, runs are not recorded.
func openRecorder() *history.Recorder {
	if !cfg.Storage.Enabled {
		return history.NewRecorder(nil, logger)
	}
	store, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Storage.DBPath).Msg("run history disabled")
		return history.NewRecorder(nil, logger)
	}
	return history.NewRecorder(store, logger)
}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(exitErr.Error()))
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
	os.Exit(1)
}
