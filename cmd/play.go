package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:     "play",
	Aliases: []string{"run"},
	Short:   "Start a drawing game",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}
