package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"segprep/internal/dataset"
	"segprep/internal/processor"
	"segprep/internal/tui"
)

var (
	resizeKind        string
	resizeWidth       int
	resizeHeight      int
	resizeFormat      string
	resizeFilter      string
	resizeWorkers     int
	resizeJPEGQuality int
	resizeAutoOrient  bool
	resizeOutputDir   string
	resizeNoTUI       bool
)

var resizeCmd = &cobra.Command{
	Use:   "resize --kind masks|images [flags] <dir|file>...",
	Short: "Resize and re-encode source images into the dataset",
	Long: `resize stretches every source to exactly --width x --height (aspect ratio is
not preserved) and writes <name>.<format> into annotations/ (masks) or
images/ (images). Existing outputs with the same name are overwritten.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := dataset.ParseKind(resizeKind)
		if err != nil {
			return err
		}
		applyResizeDefaults(cmd)

		opts, err := resizeOptions()
		if err != nil {
			return err
		}
		if resizeWidth <= 0 || resizeHeight <= 0 {
			return fmt.Errorf("width and height must be positive integers, got %dx%d", resizeWidth, resizeHeight)
		}
		if !processor.SupportedFormat(resizeFormat) {
			return fmt.Errorf("unsupported output format %q", resizeFormat)
		}

		outputDir := resizeOutputDir
		if outputDir == "" {
			layout, err := openDataset()
			if err != nil {
				return err
			}
			outputDir = layout.Dir(kind)
		}
		if err := dataset.CheckWritable(outputDir); err != nil {
			return err
		}

		files, err := collectSources(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			logger.Warn("no source images found", zap.Strings("args", args))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		job := processor.Job{
			Files:     files,
			Width:     resizeWidth,
			Height:    resizeHeight,
			Format:    resizeFormat,
			OutputDir: outputDir,
		}
		handle := processor.Submit(ctx, job, opts)

		title := fmt.Sprintf("segprep: %s -> %dx%d %s", kind, resizeWidth, resizeHeight, resizeFormat)
		var failures []processor.Message
		if resizeNoTUI || !isatty.IsTerminal(os.Stdout.Fd()) {
			failures = drainWithLogs(handle)
		} else {
			failures = drainWithTUI(handle, title)
		}

		summary, runErr := handle.Wait()
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}

		fmt.Fprintln(os.Stdout, tui.RenderSummary(tui.JobRows(summary, outputDir)))
		for _, msg := range failures {
			fmt.Fprintln(os.Stdout, failureStyle.Render("! "+msg.Text))
		}
		if runErr != nil {
			return fmt.Errorf("cancelled: %d of %d files were not started", summary.Skipped, summary.Total)
		}
		return nil
	},
}

// applyResizeDefaults fills every flag the user did not set from config.
func applyResizeDefaults(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("width") {
		resizeWidth = cfg.Resize.Width
	}
	if !flags.Changed("height") {
		resizeHeight = cfg.Resize.Height
	}
	if !flags.Changed("format") {
		resizeFormat = cfg.Resize.Format
	}
	if !flags.Changed("filter") {
		resizeFilter = cfg.Resize.Filter
	}
	if !flags.Changed("workers") {
		resizeWorkers = cfg.Resize.Workers
	}
	if !flags.Changed("jpeg-quality") {
		resizeJPEGQuality = cfg.Resize.JPEGQuality
	}
	if !flags.Changed("auto-orient") {
		resizeAutoOrient = cfg.Resize.AutoOrient
	}
}

func resizeOptions() (processor.Options, error) {
	filter, err := processor.ParseFilter(resizeFilter)
	if err != nil {
		return processor.Options{}, err
	}
	if resizeWorkers <= 0 {
		return processor.Options{}, fmt.Errorf("workers must be > 0")
	}
	return processor.Options{
		Workers:     resizeWorkers,
		Filter:      filter,
		JPEGQuality: resizeJPEGQuality,
		AutoOrient:  resizeAutoOrient,
		Logger:      logger,
	}, nil
}

// collectSources expands directory arguments to the images directly inside
// them; file arguments are taken as given.
func collectSources(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := dataset.Discover(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func drainWithLogs(handle *processor.Handle) []processor.Message {
	var failures []processor.Message
	for ev := range handle.Events() {
		switch ev.Kind {
		case processor.EventProgress:
			logger.Info("progress",
				zap.Int("completed", ev.Progress.Completed),
				zap.Int("total", ev.Progress.Total),
				zap.Int("percent", ev.Progress.Percent()),
				zap.Duration("elapsed", ev.Progress.Elapsed),
			)
		case processor.EventMessage:
			failures = append(failures, ev.Message)
		}
	}
	return failures
}

func drainWithTUI(handle *processor.Handle, title string) []processor.Message {
	updates := make(chan processor.Event, 64)
	program := tea.NewProgram(tui.NewModel(title, updates, handle.Cancel))

	uiDone := make(chan struct{})
	go func() {
		if _, err := program.Run(); err != nil {
			logger.Warn("progress view stopped", zap.Error(err))
		}
		close(uiDone)
	}()

	var failures []processor.Message
	for ev := range handle.Events() {
		if ev.Kind == processor.EventMessage {
			failures = append(failures, ev.Message)
		}
		select {
		case updates <- ev:
		case <-uiDone:
		}
	}
	close(updates)
	<-uiDone
	return failures
}

func init() {
	resizeCmd.Flags().StringVarP(&resizeKind, "kind", "k", "", "source kind: masks (annotations/) or images (images/)")
	resizeCmd.Flags().IntVarP(&resizeWidth, "width", "W", 0, "target width in pixels (default from config, 512)")
	resizeCmd.Flags().IntVarP(&resizeHeight, "height", "H", 0, "target height in pixels (default from config, 512)")
	resizeCmd.Flags().StringVarP(&resizeFormat, "format", "f", "", "output format: png, jpg or tif (also bmp, gif)")
	resizeCmd.Flags().StringVar(&resizeFilter, "filter", "", "resample filter: lanczos, catmullrom, linear, box, nearest")
	resizeCmd.Flags().IntVarP(&resizeWorkers, "workers", "j", 0, "concurrent workers (default from config, 4)")
	resizeCmd.Flags().IntVar(&resizeJPEGQuality, "jpeg-quality", 0, "JPEG quality 1-100")
	resizeCmd.Flags().BoolVar(&resizeAutoOrient, "auto-orient", false, "apply EXIF orientation before resizing")
	resizeCmd.Flags().StringVarP(&resizeOutputDir, "output", "o", "", "write here instead of the dataset folder")
	resizeCmd.Flags().BoolVar(&resizeNoTUI, "no-tui", false, "log progress lines instead of the progress view")
	_ = resizeCmd.MarkFlagRequired("kind")

	rootCmd.AddCommand(resizeCmd)
}
