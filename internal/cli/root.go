// Package cli implements the examgrid command line: offline schedule
// generation and a terminal browser for generated schedules.
package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/examgrid/internal/config"
	"github.com/JonMunkholm/examgrid/internal/core"
	"github.com/JonMunkholm/examgrid/internal/logging"
)

var (
	verbose   bool
	logFormat string

	// cfg holds env configuration; flags override it.
	cfg = config.Default()
)

// NewRootCommand creates the root command.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "examgrid",
		Short: "Exam schedule generator",
		Long: `examgrid builds exam schedules from course, room and teacher workbooks.

It assigns each course group a date and timeslot, splits students across
rooms and staffs every room with two invigilators. Results can be written
as CSV or Excel, or browsed page by page in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded

			level := cfg.Logging.Level
			if verbose {
				level = "debug"
			}
			logging.Setup(level, logFormat, os.Stderr)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newBrowseCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// ErrorMessage is the line printed for a failed command. Failures with a
// user message read "detail (Code: XLS001). Action"; the rest print as is.
func ErrorMessage(err error) string {
	var ue *core.UserError
	if errors.As(err, &ue) {
		return core.FormatUserError(ue.Technical)
	}
	return err.Error()
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version == "dev" || version == "" {
				version = "development"
			}
			if commit == "none" || commit == "" {
				commit = "local-build"
			}
			if date == "unknown" || date == "" {
				date = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "examgrid %s (%s) built on %s\n", version, commit, date)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
