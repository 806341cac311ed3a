package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"segprep/internal/config"
	"segprep/internal/dataset"
	"segprep/internal/logging"
)

var (
	cfgFile  string
	rootFlag string

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "segprep",
	Short: "segprep - assemble image segmentation datasets",
	Long: `segprep builds a segmentation dataset folder (annotations/, images/, lst/),
resizes and re-encodes masks and images into it, writes the lst.txt manifest
and zips the result.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("root") {
			loaded.Dataset.Root = rootFlag
		}
		cfg = loaded

		l, err := logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDataset resolves the configured root; the commands that write into a
// dataset refuse to run before init has created it.
func openDataset() (dataset.Layout, error) {
	layout, err := dataset.Open(cfg.Dataset.Root)
	if err != nil {
		return dataset.Layout{}, fmt.Errorf("%w (run `segprep init` and pass --root)", err)
	}
	return layout, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVarP(&rootFlag, "root", "r", "", "dataset root folder (overrides dataset.root)")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
