package core

// # Error Codes Reference
//
// User-facing errors carry a code so that a failing run can be diagnosed
// from a log line or an HTTP response alone.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Input not found: an input file does not exist
//	          Patterns: "no such file", "cannot find the file", "file does not exist"
//	FILE002 - Permission denied: a file could not be opened or written
//	          Patterns: "permission denied"
//	FILE003 - Encoding error: an input is not valid UTF-8
//	          Patterns: "encoding error"
//	FILE004 - Invalid CSV: an input could not be parsed
//	          Patterns: "invalid csv"
//	FILE005 - Empty file: an input has no header row
//	          Patterns: "empty file"
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Missing column: a required column is absent
//	         Patterns: "missing required column"
//	SCH002 - Schema mismatch: any other schema failure
//	         Patterns: "schema error"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused    Patterns: "connection refused"
//	DB002 - Missing database URL  Patterns: "database url"
//	DB003 - Duplicate run         Patterns: "duplicate key", "unique constraint"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Cancelled  Patterns: "context canceled"
//	RUN002 - Timed out  Patterns: "deadline exceeded", "timeout"
//	RUN003 - Busy       Patterns: "too many concurrent runs"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application log for the
// technical error.
//
// Patterns are matched case-insensitively with strings.Contains. The first
// matching pattern wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "An input file is empty",
			Action:  "Provide a CSV file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "An input file was not found",
			Action:  "Check DATA_DIR or the input path overrides",
			Code:    "FILE001",
		},
	},
	{
		pattern: "cannot find the file",
		msg: UserMessage{
			Message: "An input file was not found",
			Action:  "Check DATA_DIR or the input path overrides",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file does not exist",
		msg: UserMessage{
			Message: "An input file was not found",
			Action:  "Check DATA_DIR or the input path overrides",
			Code:    "FILE001",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "A file could not be accessed",
			Action:  "Check file and directory permissions",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "An input file contains invalid characters",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "An input file is not a valid CSV",
			Action:  "Ensure the file is comma-separated with balanced quotes",
			Code:    "FILE004",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing",
			Action:  "Check that the source headers match the expected names exactly",
			Code:    "SCH001",
		},
	},
	{
		pattern: "schema error",
		msg: UserMessage{
			Message: "An input does not match the expected layout",
			Action:  "Compare the file with the expected source layout",
			Code:    "SCH002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "database url",
		msg: UserMessage{
			Message: "No database is configured",
			Action:  "Set DATABASE_URL or use the sqlite target",
			Code:    "DB002",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "This run was already stored",
			Action:  "Run the join again to get a new run ID",
			Code:    "DB003",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This run was already stored",
			Action:  "Run the join again to get a new run ID",
			Code:    "DB003",
		},
	},
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "The server is busy",
			Action:  "Please try again in a few moments",
			Code:    "RUN003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was cancelled",
			Action:  "Start the run again when ready",
			Code:    "RUN001",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "The run timed out",
			Action:  "Try again or raise the timeout",
			Code:    "RUN002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The run timed out",
			Action:  "Try again or raise the timeout",
			Code:    "RUN002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when none matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Error() yields the user message and
// Unwrap() the original error. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
