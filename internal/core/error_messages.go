// # Error Codes Reference
//
// User-facing errors carry a code that support staff can look up here.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Split the orders into several smaller files
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Unreadable file: The file could not be read
//	          Action: Save the file again as CSV or XLSX and retry
//	          Matched by: ImportError kind "read"
//
//	FILE003 - Unsupported type: File type is not supported
//	          Action: Upload a .csv or .xlsx file
//	          Patterns: "unsupported file type"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select an order file to upload
//	          Patterns: "no file provided"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Too few rows: Header row and at least one order are required
//	         Matched by: ImportError kind "insufficient_rows"
//
//	IMP002 - Wrong header: Columns do not match the template
//	         Matched by: ImportError kind "header_mismatch"
//
// # Inventory Errors (INV001-INV099)
//
//	INV001 - Inventory unavailable: Product catalog could not be loaded
//	         Matched by: ImportError kind "gateway"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - No warehouse: The import must name a warehouse ("missing warehouse")
//	UPL002 - System busy: Too many imports in progress
//	UPL004 - Request cancelled ("context canceled")
//	UPL005 - Request timeout ("context deadline exceeded")
//
// # Access Errors
//
//	RATE001 - Too many requests ("rate limit")
//	AUTH001 - Missing API key ("missing api key")
//	AUTH002 - Invalid API key ("invalid api key")
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// Typed errors are matched first with errors.As / errors.Is. Remaining
// errors are matched case-insensitively with strings.Contains and the first
// matching pattern wins.
package core

import (
	"errors"
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

// kindMessages maps top-level import failures to user messages. Message is
// left empty so MapError can use the ImportError's own text, which carries
// details such as the mismatching column.
var kindMessages = map[ErrorKind]UserMessage{
	KindRead: {
		Action: "Save the file again as CSV or XLSX and retry",
		Code:   "FILE002",
	},
	KindInsufficientRows: {
		Action: "Add at least one order below the header row",
		Code:   "IMP001",
	},
	KindHeaderMismatch: {
		Action: "Download the import template and keep its column order",
		Code:   "IMP002",
	},
	KindGateway: {
		Action: "Please try again in a few moments",
		Code:   "INV001",
	},
}

var busyMessage = UserMessage{
	Message: "System is busy processing other imports",
	Action:  "Please wait a moment and try again",
	Code:    "UPL002",
}

var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the orders into several smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the orders into several smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "File type is not supported",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an order file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "missing warehouse",
		msg: UserMessage{
			Message: "No warehouse was selected",
			Action:  "Choose the warehouse the orders ship from",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
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
	{
		pattern: "missing api key",
		msg: UserMessage{
			Message: "API key required",
			Action:  "Send your key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "API key not recognised",
			Action:  "Check the key with your administrator",
			Code:    "AUTH002",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ie *ImportError
	if errors.As(err, &ie) {
		if msg, ok := kindMessages[ie.Kind]; ok {
			msg.Message = ie.Message
			return msg
		}
	}
	if errors.Is(err, ErrTooManyImports) {
		return busyMessage
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a display string: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
