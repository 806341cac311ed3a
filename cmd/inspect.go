package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"segprep/internal/dataset"
	"segprep/internal/tui"
	"segprep/pkg/imgutil"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <dir>",
	Short: "List the source images in a folder with their dimensions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := dataset.Discover(args[0])
		if err != nil {
			return err
		}

		entries := dataset.Inspect(files)
		for _, entry := range entries {
			line := inspectNameStyle.Render(entry.Label())
			switch {
			case entry.Err != nil:
				line += " " + inspectDimStyle.Render("(unreadable: "+entry.Err.Error()+")")
			default:
				line += " " + inspectKindStyle.Render(entry.Kind.String())
				if imgutil.Rotated(entry.Orientation) {
					line += " " + inspectWarnStyle.Render(fmt.Sprintf("EXIF orientation %d", entry.Orientation))
				}
			}
			fmt.Fprintln(os.Stdout, line)
		}

		fmt.Fprintln(os.Stdout, inspectCountStyle.Render(fmt.Sprintf("%d source files", len(entries))))
		return nil
	},
}

var (
	inspectNameStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
	inspectKindStyle  = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	inspectDimStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
	inspectCountStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	failureStyle      = lipgloss.NewStyle().Foreground(tui.ColorError)
	inspectWarnStyle  = lipgloss.NewStyle().Foreground(tui.ColorWarn)
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}
