package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"segprep/internal/dataset"
)

var initCmd = &cobra.Command{
	Use:   "init <base-dir>",
	Short: "Create the dataset folder layout under base-dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := dataset.Create(args[0], cfg.Dataset.Name)
		if err != nil {
			return err
		}
		logger.Info("dataset created", zap.String("root", layout.Root))

		fmt.Fprintf(os.Stdout, "Dataset folder ready: %s\n", layout.Root)
		fmt.Fprintf(os.Stdout, "Use --root %s (or SEGPREP_DATASET_ROOT) for the other commands.\n", layout.Root)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
