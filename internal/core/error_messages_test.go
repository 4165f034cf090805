package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/examgrid/internal/schedule"
	"github.com/JonMunkholm/examgrid/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name: "nil error returns empty",
		},
		{
			name:        "missing upload file",
			err:         fmt.Errorf("%w: roomFile", ErrMissingUploadFile),
			wantCode:    "FILE002",
			wantMessage: "Please upload all required files.",
		},
		{
			name:        "missing column from workbook reader",
			err:         fmt.Errorf("rooms workbook: %w: Room Capacity", schedule.ErrMissingColumn),
			wantCode:    "XLS001",
			wantMessage: "A workbook is missing a required column",
		},
		{
			name:        "invalid number",
			err:         fmt.Errorf("row 4, Number of Duties: %w", schedule.ErrInvalidNumber),
			wantCode:    "XLS002",
			wantMessage: "A numeric column contains text",
		},
		{
			name:        "no usable rooms",
			err:         schedule.ErrNoRooms,
			wantCode:    "SCH001",
			wantMessage: "No room can seat any students",
		},
		{
			name:        "limiter busy",
			err:         ErrTooManyGenerations,
			wantCode:    "UPL001",
			wantMessage: "The system is busy generating other schedules",
		},
		{
			name:        "timeout",
			err:         fmt.Errorf("generate: %w", context.DeadlineExceeded),
			wantCode:    "UPL003",
			wantMessage: "Generating the schedule took too long",
		},
		{
			name:        "not found",
			err:         store.ErrNotFound,
			wantCode:    "STO001",
			wantMessage: "Schedule not found",
		},
		{
			name:        "sqlite busy",
			err:         errors.New("insert schedule: database is locked (5) (SQLITE_BUSY)"),
			wantCode:    "STO003",
			wantMessage: "The schedule database is busy",
		},
		{
			name:        "rate limit",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("OPEN WORKBOOK: zip: not a valid zip file"),
			wantCode:    "FILE003",
			wantMessage: "A file is not a valid Excel workbook",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_Detail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDetail bool
	}{
		{"missing column keeps detail", fmt.Errorf("rooms workbook: %w: Room Capacity", schedule.ErrMissingColumn), true},
		{"bad number keeps detail", fmt.Errorf("teachers workbook: row 3, Number of Duties: %w: \"lots\"", schedule.ErrInvalidNumber), true},
		{"empty workbook keeps detail", fmt.Errorf("courses workbook: %w", schedule.ErrEmptyWorkbook), true},
		{"invalid rules keep detail", fmt.Errorf("%w:\n  - at least one date is required", schedule.ErrInvalidRules), true},
		{"not found has no detail", store.ErrNotFound, false},
		{"unknown has no detail", errors.New("dial tcp: secret-host:5432"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.wantDetail {
				if got.Detail != tt.err.Error() {
					t.Errorf("Detail = %q, want %q", got.Detail, tt.err.Error())
				}
				if got.Text() != got.Detail {
					t.Errorf("Text() = %q, want detail", got.Text())
				}
				return
			}
			if got.Detail != "" {
				t.Errorf("Detail = %q, want empty", got.Detail)
			}
			if got.Text() != got.Message {
				t.Errorf("Text() = %q, want message %q", got.Text(), got.Message)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(store.ErrNotFound)
	want := "Schedule not found (Code: STO001). It may have expired. Upload the workbooks again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	got = FormatUserError(fmt.Errorf("rooms workbook: %w: Room Capacity", schedule.ErrMissingColumn))
	want = "rooms workbook: missing required column: Room Capacity (Code: XLS001). Check the header row against the expected column names"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", schedule.ErrEmptyWorkbook, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("courses workbook: %w", schedule.ErrMissingColumn)
		userErr := NewUserError(techErr)

		if userErr.User.Message != "A workbook is missing a required column" {
			t.Errorf("User.Message = %q", userErr.User.Message)
		}
		if userErr.Error() != techErr.Error() {
			t.Errorf("Error() = %q, want the workbook detail %q", userErr.Error(), techErr.Error())
		}
		if !errors.Is(userErr, schedule.ErrMissingColumn) {
			t.Error("Unwrap() should expose the original error chain")
		}
	})

	t.Run("message without detail", func(t *testing.T) {
		userErr := NewUserError(fmt.Errorf("load: %w", store.ErrNotFound))
		if userErr.Error() != "Schedule not found" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
	})
}
