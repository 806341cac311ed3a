package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"segprep/internal/dataset"
	"segprep/internal/tui"
)

var manifestStrict bool

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Write lst/lst.txt pairing images with annotations",
	Long: `manifest pairs the sorted listings of images/ and annotations/ by position.
Files are not matched by name: if the folders differ in count or order the
pairs are wrong. Use --strict to pair by file stem and fail on mismatches.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		layout, err := openDataset()
		if err != nil {
			return err
		}
		strict := cfg.Manifest.Strict
		if cmd.Flags().Changed("strict") {
			strict = manifestStrict
		}

		res, err := dataset.WriteManifest(layout, dataset.ManifestOptions{Strict: strict})
		if err != nil {
			logger.Error("manifest failed", zap.String("root", layout.Root), zap.Error(err))
			return err
		}
		if res.UnpairedImages > 0 || res.UnpairedAnnotations > 0 {
			logger.Warn("image and annotation counts differ; extra files were left out",
				zap.Int("unpaired_images", res.UnpairedImages),
				zap.Int("unpaired_annotations", res.UnpairedAnnotations),
			)
		}

		fmt.Fprintln(os.Stdout, tui.RenderSummary([]tui.SummaryRow{
			{Label: "Pairs written", Value: fmt.Sprintf("%d", res.Pairs)},
			{Label: "Manifest", Value: res.Path},
		}))
		return nil
	},
}

func init() {
	manifestCmd.Flags().BoolVar(&manifestStrict, "strict", false, "pair by file stem instead of sorted position")
	rootCmd.AddCommand(manifestCmd)
}
