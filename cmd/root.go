package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/sketchquiz/internal/config"
	"github.com/abhisek/sketchquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "sketchquiz",
	Short: "Timed doodle quiz for the terminal",
	Long: "Sketch Quiz asks you to draw a series of prompts with the mouse. Each drawing is\n" +
		"handed to an external image classifier through a shared workspace, and its\n" +
		"verdicts are tallied into a summary at the end of the game.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config.toml (default $XDG_CONFIG_HOME/sketchquiz/config.toml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite history database (overrides SKETCHQUIZ_DB env var)")
	rootCmd.PersistentFlags().String("workspace", "", "Directory shared with the classifier (overrides SKETCHQUIZ_WORKSPACE)")

	rootCmd.PersistentFlags().Bool("no-splash", false, "Skip the intro animation")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(verdictCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers the persistent flags over the file and environment
// configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.LoadOptions{ConfigPath: path})
	if err != nil {
		return nil, err
	}

	changed := false
	if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
		cfg.Workspace = ws
		changed = true
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
		changed = true
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db or the configured
// path first, then SKETCHQUIZ_DB, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the history database named by cfg.
func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
