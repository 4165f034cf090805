package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/examgrid/internal/core"
	"github.com/JonMunkholm/examgrid/internal/export"
	"github.com/JonMunkholm/examgrid/internal/schedule"
)

// workbookFlags are the inputs shared by generate and browse.
type workbookFlags struct {
	courses  string
	rooms    string
	teachers string
	rules    string
	seed     int64
}

func (f *workbookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.courses, "courses", "", "courses workbook (.xlsx)")
	cmd.Flags().StringVar(&f.rooms, "rooms", "", "rooms workbook (.xlsx)")
	cmd.Flags().StringVar(&f.teachers, "teachers", "", "teachers workbook (.xlsx)")
	cmd.Flags().StringVar(&f.rules, "rules", "", "YAML file with dates, timeslots and fixed slots (default $SCHEDULE_RULES_FILE)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "shuffle seed for reproducible output; 0 picks one at random (default $SCHEDULE_SEED)")
}

func (f *workbookFlags) set() bool {
	return f.courses != "" || f.rooms != "" || f.teachers != ""
}

// generate reads the three workbooks and builds a schedule. Unset rules and
// seed flags fall back to the environment.
func (f *workbookFlags) generate(ctx context.Context, cmd *cobra.Command) (*schedule.Result, error) {
	var missing []string
	for _, in := range []struct{ flag, path string }{
		{"--courses", f.courses},
		{"--rooms", f.rooms},
		{"--teachers", f.teachers},
	} {
		if in.path == "" {
			missing = append(missing, in.flag)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	rulesPath, seed := f.rules, f.seed
	if !cmd.Flags().Changed("rules") {
		rulesPath = cfg.Schedule.RulesFile
	}
	if !cmd.Flags().Changed("seed") {
		seed = cfg.Schedule.Seed
	}

	rules, err := schedule.LoadRules(rulesPath)
	if err != nil {
		return nil, userError(err)
	}

	courses, err := os.ReadFile(f.courses)
	if err != nil {
		return nil, err
	}
	rooms, err := os.ReadFile(f.rooms)
	if err != nil {
		return nil, err
	}
	teachers, err := os.ReadFile(f.teachers)
	if err != nil {
		return nil, err
	}

	in, err := schedule.ReadInput(bytes.NewReader(courses), bytes.NewReader(rooms), bytes.NewReader(teachers))
	if err != nil {
		return nil, userError(err)
	}
	slog.Debug("workbooks read", "courses", len(in.Courses), "rooms", len(in.Rooms), "teachers", len(in.Teachers))

	res, err := schedule.NewGenerator(rules, seed).Generate(ctx, in)
	if err != nil {
		return nil, userError(err)
	}
	if res.Unplaced > 0 {
		slog.Warn("students left without a room", "unplaced", res.Unplaced)
	}
	return res, nil
}

// userError attaches the mapped user message to failures that have one.
func userError(err error) error {
	if core.IsUserFacing(err) {
		return core.NewUserError(err)
	}
	return err
}

func newGenerateCommand() *cobra.Command {
	var inputs workbookFlags
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an exam schedule from workbooks",
		Long: `Generate an exam schedule and write it to a file.

The output format follows the file extension: .csv holds the schedule,
.xlsx holds the schedule and the teacher duty roster as two sheets.

Examples:
  examgrid generate --courses courses.xlsx --rooms rooms.xlsx --teachers teachers.xlsx --out ExamSchedule.xlsx
  examgrid generate --courses c.xlsx --rooms r.xlsx --teachers t.xlsx --out s.csv --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(filepath.Ext(out))
			if err != nil {
				return err
			}

			res, err := inputs.generate(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := export.Write(&buf, format,
				export.Sheet{Name: "Schedule", Data: res.Schedule},
				export.Sheet{Name: "Duties", Data: res.Duties},
			); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d schedule rows, %d duties, %d course groups\n",
				out, res.Schedule.Len(), res.Duties.Len(), res.CourseGroups)
			if res.Unplaced > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Warning: %d students could not be seated\n", res.Unplaced)
			}
			return nil
		},
	}

	inputs.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", export.FormatXLSX.Filename(), "output file (.csv or .xlsx)")
	return cmd
}
