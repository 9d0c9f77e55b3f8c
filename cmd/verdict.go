package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sketchquiz/internal/resultlog"
)

var verdictCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Append a classifier verdict to the result log (for testing without a classifier)",
	Example: "  sketchquiz verdict --image cat.png --predicted cat --confidence 0.9\n" +
		"  sketchquiz verdict --image tree.png --predicted broom --wrong",
	RunE: func(cmd *cobra.Command, args []string) error {
		image, _ := cmd.Flags().GetString("image")
		predicted, _ := cmd.Flags().GetString("predicted")
		confidence, _ := cmd.Flags().GetFloat64("confidence")
		wrong, _ := cmd.Flags().GetBool("wrong")

		if image == "" {
			return fmt.Errorf("--image is required")
		}
		if strings.ContainsAny(image, "|\n") || strings.ContainsAny(predicted, "|\n") {
			return fmt.Errorf("image and prediction must not contain '|' or newlines")
		}
		if confidence < 0 || confidence > 1 {
			return fmt.Errorf("--confidence must be between 0 and 1")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		image = filepath.Base(image)
		if predicted == "" {
			predicted = strings.TrimSuffix(image, filepath.Ext(image))
		}
		rec := resultlog.Record{
			ImageFile:      image,
			PredictedClass: predicted,
			Confidence:     confidence,
			HasConfidence:  true,
			Correct:        !wrong,
		}
		// Move the drawing before the line lands so the summary finds
		// its thumbnail as soon as the verdict is read.
		l := cfg.Layout()
		archived, err := l.Archive(image)
		if err != nil {
			return err
		}
		if err := resultlog.Append(l.LogPath, rec); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resultlog.Format(rec))
		if archived != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "moved drawing to", archived)
		}
		return nil
	},
}

func init() {
	verdictCmd.Flags().String("image", "", "Artifact file name, e.g. cat.png")
	verdictCmd.Flags().String("predicted", "", "Predicted class (default: image name without extension)")
	verdictCmd.Flags().Float64("confidence", 1, "Confidence between 0 and 1")
	verdictCmd.Flags().Bool("wrong", false, "Record the drawing as not recognized")
}
