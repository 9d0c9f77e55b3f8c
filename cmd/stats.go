package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/sketchquiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recent games",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		limit, _ := cmd.Flags().GetInt("limit")
		switch format {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unknown format %q (want table, json, or yaml)", format)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.EventRepo().QuerySessionSummaries(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		return writeStats(cmd.OutOrStdout(), sessions, format)
	},
}

func init() {
	statsCmd.Flags().String("format", "table", "Output format: table, json, or yaml")
	statsCmd.Flags().Int("limit", 10, "Number of games to show (0 = all)")
}

func writeStats(w io.Writer, sessions []store.SessionSummary, format string) error {
	if sessions == nil {
		sessions = []store.SessionSummary{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sessions); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No games played yet.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DATE", "RESULT", "CORRECT", "WRONG", "NO VERDICT", "ACCURACY", "TIME")
	for _, s := range sessions {
		t.Row(
			s.Timestamp.Local().Format("2006-01-02 15:04"),
			s.Action,
			strconv.Itoa(s.Correct),
			strconv.Itoa(s.Incorrect),
			strconv.Itoa(s.Unresolved),
			fmt.Sprintf("%.0f%%", s.Accuracy()*100),
			fmt.Sprintf("%d:%02d", s.DurationSecs/60, s.DurationSecs%60),
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}
