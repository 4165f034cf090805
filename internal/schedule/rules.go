package schedule

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRules is returned when rules cannot drive a generation.
var ErrInvalidRules = errors.New("invalid schedule rules")

// FixedSlot pins a course code to a date and timeslot.
type FixedSlot struct {
	Course   string `yaml:"course" json:"course"`
	Date     string `yaml:"date" json:"date"`
	Timeslot string `yaml:"timeslot" json:"timeslot"`
}

// Rules describe the exam window: the candidate dates, the daily timeslots
// and the courses whose slot is decided up front.
type Rules struct {
	Dates     []string    `yaml:"dates" json:"dates"`
	Timeslots []string    `yaml:"timeslots" json:"timeslots"`
	Fixed     []FixedSlot `yaml:"fixed" json:"fixed"`
}

// DefaultRules returns the built-in exam week.
func DefaultRules() Rules {
	return Rules{
		Dates: []string{
			"2024-10-28", "2024-10-29", "2024-10-30",
			"2024-10-31", "2024-11-01", "2024-11-02",
		},
		Timeslots: []string{
			"8:30 - 09:50", "10:00 - 11:20", "11:30 - 12:50",
			"1:00 - 2:20", "2:30 - 3:50", "4:00 - 5:20",
		},
		Fixed: []FixedSlot{
			{Course: "HUM102", Date: "2024-10-29", Timeslot: "8:30 - 09:50"},
			{Course: "HUM112 /HUM116", Date: "2024-10-30", Timeslot: "8:30 - 09:50"},
			{Course: "HUM112 / HUM110", Date: "2024-10-30", Timeslot: "8:30 - 09:50"},
			{Course: "HUM113 / HUM111", Date: "2024-10-31", Timeslot: "8:30 - 09:50"},
			{Course: "HUM113 / Pakistan Studies", Date: "2024-11-01", Timeslot: "8:30 - 09:50"},
			{Course: "HUM122", Date: "2024-11-01", Timeslot: "8:30 - 09:50"},
		},
	}
}

// LoadRules reads rules from a YAML file. An empty path returns the
// defaults. Sections missing from the file keep their default values.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules over the defaults and validates them.
func ParseRules(data []byte) (Rules, error) {
	var fileRules Rules
	if err := yaml.Unmarshal(data, &fileRules); err != nil {
		return Rules{}, fmt.Errorf("parse rules YAML: %w", err)
	}

	rules := DefaultRules()
	if fileRules.Dates != nil {
		rules.Dates = fileRules.Dates
	}
	if fileRules.Timeslots != nil {
		rules.Timeslots = fileRules.Timeslots
	}
	if fileRules.Fixed != nil {
		rules.Fixed = fileRules.Fixed
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate reports every problem with the rules at once.
func (r Rules) Validate() error {
	var errs []string

	if len(r.Dates) == 0 {
		errs = append(errs, "at least one date is required")
	}
	if len(r.Timeslots) == 0 {
		errs = append(errs, "at least one timeslot is required")
	}
	if dup := firstDuplicate(r.Dates); dup != "" {
		errs = append(errs, fmt.Sprintf("date %q listed twice", dup))
	}
	if dup := firstDuplicate(r.Timeslots); dup != "" {
		errs = append(errs, fmt.Sprintf("timeslot %q listed twice", dup))
	}

	for i, f := range r.Fixed {
		if strings.TrimSpace(f.Course) == "" {
			errs = append(errs, fmt.Sprintf("fixed[%d]: course is required", i))
		}
		if !slices.Contains(r.Dates, f.Date) {
			errs = append(errs, fmt.Sprintf("fixed[%d]: date %q is not an exam date", i, f.Date))
		}
		if !slices.Contains(r.Timeslots, f.Timeslot) {
			errs = append(errs, fmt.Sprintf("fixed[%d]: timeslot %q is not an exam timeslot", i, f.Timeslot))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidRules, strings.Join(errs, "\n  - "))
	}
	return nil
}

// fixedSlots indexes the fixed assignments by course code. A later entry
// for the same code wins.
func (r Rules) fixedSlots() map[string]slot {
	m := make(map[string]slot, len(r.Fixed))
	for _, f := range r.Fixed {
		m[f.Course] = slot{Date: f.Date, Timeslot: f.Timeslot}
	}
	return m
}

func firstDuplicate(values []string) string {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v
		}
		seen[v] = struct{}{}
	}
	return ""
}
