package grants

// errors.go maps technical errors to messages an uploader can act on.
//
// Codes by category:
//
//	DB001    Duplicate key              "duplicate key"
//	DB002    Unique constraint          "unique constraint", "violates unique"
//	DB003    Foreign key                "foreign key constraint", "violates foreign key"
//	DB004    Connection refused         "connection refused"
//	DB005    Connection reset           "connection reset"
//	DB006    Timeout                    "timeout"
//	DB007    Deadlock                   "deadlock"
//	FILE001  File too large             "file too large", "request body too large"
//	FILE002  Unsupported file type      "unsupported file format"
//	FILE003  Unreadable workbook        "invalid xlsx", "invalid xls", "invalid csv"
//	FILE004  No file                    "no file provided"
//	IMP001   System busy                "too many concurrent imports"
//	IMP002   Request cancelled          "context canceled"
//	IMP003   Request timed out          "context deadline exceeded"
//	ERR000   Anything else
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database constraints
	{"duplicate key", UserMessage{
		Message: "A record with this key already exists",
		Action:  "Check the workbook for repeated grant codes or BG lines",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Check the workbook for repeated grant codes or BG lines",
		Code:    "DB002",
	}},
	{"violates unique", UserMessage{
		Message: "A duplicate value was found",
		Action:  "Check the workbook for repeated grant codes or BG lines",
		Code:    "DB002",
	}},
	{"foreign key constraint", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Please try again or contact support",
		Code:    "DB003",
	}},
	{"violates foreign key", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Please try again or contact support",
		Code:    "DB003",
	}},

	// Database connectivity. The context patterns below also contain
	// "deadline"/"canceled", so they are matched before the generic timeout.
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"too many concurrent imports", UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "IMP002",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Import timed out",
		Action:  "Try splitting the workbook or try again later",
		Code:    "IMP003",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try splitting the workbook or try again later",
		Code:    "DB006",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},

	// Files
	{"file too large", UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the workbook into smaller files",
		Code:    "FILE001",
	}},
	{"request body too large", UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the workbook into smaller files",
		Code:    "FILE001",
	}},
	{"unsupported file format", UserMessage{
		Message: "File type is not supported",
		Action:  "Upload an .xlsx, .xls or .csv file",
		Code:    "FILE002",
	}},
	{"invalid xlsx", UserMessage{
		Message: "The workbook could not be read",
		Action:  "Open and re-save the file in Excel, then upload again",
		Code:    "FILE003",
	}},
	{"invalid xls", UserMessage{
		Message: "The workbook could not be read",
		Action:  "Open and re-save the file in Excel, then upload again",
		Code:    "FILE003",
	}},
	{"invalid csv", UserMessage{
		Message: "The CSV file could not be read",
		Action:  "Ensure the file is comma-separated text",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a workbook to upload",
		Code:    "FILE004",
	}},
}

// defaultMessage is returned when no pattern matches. Support staff should
// check the logs for the technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error yields the zero UserMessage.
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message. Error returns the
// user text; Unwrap exposes the original for logging and errors.Is.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
