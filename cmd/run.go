package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/sketchquiz/internal/app"
	"github.com/abhisek/sketchquiz/internal/logging"
	sessionscreen "github.com/abhisek/sketchquiz/internal/screens/session"
)

// runApp loads configuration, opens the store, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closer.Close()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	layout := cfg.Layout()
	if err := layout.Ensure(); err != nil {
		return fmt.Errorf("prepare workspace: %w", err)
	}
	logger.Info("starting",
		"workspace", layout.Root,
		"questions", cfg.Questions,
		"time_limit", cfg.TimeLimit.String(),
		"pool_size", len(cfg.Pool))

	deps := sessionscreen.Deps{
		Config:    cfg,
		Workspace: layout,
		EventRepo: st.EventRepo(),
		Logger:    logger,
	}
	skipSplash, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(app.Options{Session: deps, SkipSplash: skipSplash})
}
