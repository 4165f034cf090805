package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/examgrid/internal/core"
	"github.com/JonMunkholm/examgrid/internal/export"
	"github.com/JonMunkholm/examgrid/internal/tui"
	"github.com/JonMunkholm/examgrid/internal/view"
)

func newBrowseCommand() *cobra.Command {
	var inputs workbookFlags
	var csvPath string
	var set string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse a schedule in the terminal",
		Long: `Browse a schedule page by page with filtering.

Either generate one from workbooks or open a CSV written by generate.

Examples:
  examgrid browse --csv ExamSchedule.csv
  examgrid browse --courses c.xlsx --rooms r.xlsx --teachers t.xlsx --set duties`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (csvPath == "") == !inputs.set() {
				return fmt.Errorf("give either --csv or the three workbooks")
			}

			opts := view.Options{
				RowsPerPage:    cfg.View.RowsPerPage,
				MaxPageButtons: cfg.View.MaxPageButtons,
			}
			title := "Exam Schedule"
			switch set {
			case "schedule":
			case "duties":
				opts.Labels = core.DutiesLabels
				title = core.DutiesLabels.Title
			default:
				return fmt.Errorf("unknown set %q: want schedule or duties", set)
			}

			var load tui.Loader
			if csvPath != "" {
				title = csvPath
				load = func(context.Context) (*view.Dataset, error) {
					f, err := os.Open(csvPath)
					if err != nil {
						return nil, err
					}
					defer f.Close()
					return export.ReadCSV(f)
				}
			} else {
				load = func(ctx context.Context) (*view.Dataset, error) {
					res, err := inputs.generate(ctx, cmd)
					if err != nil {
						return nil, err
					}
					if set == "duties" {
						return res.Duties, nil
					}
					return res.Schedule, nil
				}
			}

			return tui.Run(cmd.Context(), title, opts, load)
		},
	}

	inputs.register(cmd)
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file to browse")
	cmd.Flags().StringVar(&set, "set", "schedule", "dataset to show when generating (schedule, duties)")
	return cmd
}
