package core

// error_messages.go maps technical errors to messages people can act on.
//
// Codes are grouped by category so support can tell at a glance where a
// failure came from:
//
//	FILE001-FILE099  uploaded file problems (size, format, missing file)
//	XLS001-XLS099    workbook contents (headers, numeric cells)
//	SCH001-SCH099    schedule generation (rooms, rules)
//	UPL001-UPL099    request lifecycle (busy, cancelled, timed out)
//	STO001-STO099    stored schedules and the database behind them
//	RATE001          request throttling
//	ERR000           anything else; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Detail  string // The technical error, for codes where it names the file, column or row
}

// Text is the most specific line to show: the detail when there is one,
// the message otherwise.
func (m UserMessage) Text() string {
	if m.Detail != "" {
		return m.Detail
	}
	return m.Message
}

type errorPattern struct {
	pattern string
	msg     UserMessage
	detail  bool // carry err.Error() as Detail
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The uploaded files are too large",
			Action:  "Remove unused sheets or rows and upload again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "missing upload file",
		msg: UserMessage{
			Message: "Please upload all required files.",
			Action:  "Select a courses, a rooms and a teachers workbook",
			Code:    "FILE002",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "A file is not a valid Excel workbook",
			Action:  "Save the file as .xlsx and upload it again",
			Code:    "FILE003",
		},
		detail: true,
	},
	{
		pattern: "workbook has no rows",
		msg: UserMessage{
			Message: "A workbook is empty",
			Action:  "Make sure the first sheet has a header row and data",
			Code:    "FILE004",
		},
		detail: true,
	},

	// Workbook content errors
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A workbook is missing a required column",
			Action:  "Check the header row against the expected column names",
			Code:    "XLS001",
		},
		detail: true,
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "A numeric column contains text",
			Action:  "Use whole numbers for student counts, capacities and duties",
			Code:    "XLS002",
		},
		detail: true,
	},

	// Generation errors
	{
		pattern: "no usable rooms",
		msg: UserMessage{
			Message: "No room can seat any students",
			Action:  "Check the Room Capacity column in the rooms workbook",
			Code:    "SCH001",
		},
	},
	{
		pattern: "invalid schedule rules",
		msg: UserMessage{
			Message: "The schedule rules are invalid",
			Action:  "Fix the rules file and restart the service",
			Code:    "SCH002",
		},
		detail: true,
	},

	// Request lifecycle errors
	{
		pattern: "too many concurrent generations",
		msg: UserMessage{
			Message: "The system is busy generating other schedules",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Generating the schedule took too long",
			Action:  "Try smaller workbooks or try again later",
			Code:    "UPL003",
		},
	},

	// Storage errors
	{
		pattern: "schedule not found",
		msg: UserMessage{
			Message: "Schedule not found",
			Action:  "It may have expired. Upload the workbooks again",
			Code:    "STO001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the schedule database",
			Action:  "Please try again in a few moments",
			Code:    "STO002",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "The schedule database is busy",
			Action:  "Please try again",
			Code:    "STO003",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "The schedule database is busy",
			Action:  "Please try again",
			Code:    "STO003",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000. Workbook and rules errors keep the technical text
// in Detail, since it names what to fix.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			msg := ep.msg
			if ep.detail {
				msg.Detail = err.Error()
			}
			return msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Text (Code: XXX). Action", where Text is the
// detail when the code carries one.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Text(), msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logs, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Text()
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. It returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
