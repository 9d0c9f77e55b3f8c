package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete drawings, annotated images, and the result log",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		l := cfg.Layout()
		if err := l.Purge(); err != nil {
			return fmt.Errorf("reset workspace: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Workspace cleared:", l.Root)
		return nil
	},
}
