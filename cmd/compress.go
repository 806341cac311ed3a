package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"segprep/internal/dataset"
)

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Zip the dataset root into <root>.zip",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		layout, err := openDataset()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		start := time.Now()
		archive, err := dataset.Archive(ctx, layout.Root)
		if err != nil {
			logger.Error("compress failed", zap.String("root", layout.Root), zap.Error(err))
			return fmt.Errorf("compress failed: %w", err)
		}
		elapsed := time.Since(start)
		logger.Info("archive written", zap.String("path", archive), zap.Duration("elapsed", elapsed))

		fmt.Fprintf(os.Stdout, "Archive written: %s (%.1fs)\n", archive, elapsed.Seconds())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compressCmd)
}
