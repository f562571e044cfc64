package core

// error_messages.go maps technical errors to user-facing messages.
//
// Each message carries a code that users can quote to support. Codes are
// grouped by category:
//
//	FILE001 - File too large                 "file too large"
//	FILE002 - No file selected               "no file provided"
//	FILE003 - File could not be read         "file read failed"
//	FILE004 - Unsupported text encoding      "unsupported encoding"
//	FILE005 - Not a drawing file             "not a drawing file"
//
//	INP001  - Required input missing         "missing required input"
//
//	EDIT001 - Cell outside the table         "cell out of range"
//	EDIT002 - Malformed edit request         "invalid edit request"
//
//	SES001  - Editor session expired         "session not found"
//
//	SRV001  - Processing server timed out    "context deadline exceeded", "timeout"
//	SRV002  - Processing server busy         "too many collaborator calls"
//	SRV003  - Unreadable server response     "invalid server response"
//	SRV004  - Processing server unreachable  "collaborator call"
//
//	RATE001 - Too many requests              "rate limit"
//
//	AUTH001 - API key missing                "missing api key"
//	AUTH002 - API key rejected               "invalid api key"
//
//	ERR000  - Anything else
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
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum upload size",
			Action:  "Split the file or remove unused columns",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select the CSV file and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "file read failed",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check the file is not open in another program and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unsupported encoding",
		msg: UserMessage{
			Message: "The selected text encoding is not supported",
			Action:  "Use UTF-8, latin1 or windows-1252",
			Code:    "FILE004",
		},
	},
	{
		pattern: "not a drawing file",
		msg: UserMessage{
			Message: "The file is not a drawing",
			Action:  "Upload a file with the .dwg extension",
			Code:    "FILE005",
		},
	},

	// Input errors
	{
		pattern: "missing required input",
		msg: UserMessage{
			Message: "A required value is missing",
			Action:  "Fill in every field and try again",
			Code:    "INP001",
		},
	},

	// Editor errors
	{
		pattern: "cell out of range",
		msg: UserMessage{
			Message: "The edited cell is outside the table",
			Action:  "Reload the editor and repeat the edit",
			Code:    "EDIT001",
		},
	},
	{
		pattern: "invalid edit request",
		msg: UserMessage{
			Message: "The edit could not be understood",
			Action:  "Reload the editor and try again",
			Code:    "EDIT002",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "The editor session has expired",
			Action:  "Open the CSV file again",
			Code:    "SES001",
		},
	},

	// Processing server errors
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The processing server did not answer in time",
			Action:  "Check the server is running and try again",
			Code:    "SRV001",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The processing server did not answer in time",
			Action:  "Check the server is running and try again",
			Code:    "SRV001",
		},
	},
	{
		pattern: "too many collaborator calls",
		msg: UserMessage{
			Message: "The processing server is busy with other requests",
			Action:  "Wait a moment and try again",
			Code:    "SRV002",
		},
	},
	{
		pattern: "invalid server response",
		msg: UserMessage{
			Message: "The processing server sent an unreadable response",
			Action:  "Check the server logs",
			Code:    "SRV003",
		},
	},
	{
		pattern: "collaborator call",
		msg: UserMessage{
			Message: "Error communicating with the processing server",
			Action:  "Check the server address and that it is running",
			Code:    "SRV004",
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

	// Authentication errors
	{
		pattern: "missing api key",
		msg: UserMessage{
			Message: "This request needs an API key",
			Action:  "Send the key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "The API key was not accepted",
			Action:  "Check the key with the server administrator",
			Code:    "AUTH002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000.
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

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action"
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

// UserError pairs a technical error with its user-facing message.
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

// NewUserError wraps err with its mapped message. Returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
