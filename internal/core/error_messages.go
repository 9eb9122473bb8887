// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Sheet Errors (SCH, FMT)
//
//	SCH001 - Header rows are malformed (unequal length, duplicate column names)
//	         Action: Fix the first two rows of the sheet
//	         Patterns: "schema error"
//
//	FMT001 - Sheet has no two-row header
//	         Action: Restore the header rows or the template sheet
//	         Patterns: "format error"
//
//	FMT002 - Table no longer matches the sheet columns; nothing was written
//	         Action: Reload the sheet and repeat the change
//	         Patterns: "misaligned"
//
// # Import Errors (EXT, NRM)
//
//	EXT001 - No product table found in the invoice
//	         Patterns: "no product table", "extract rows"
//
//	NRM001 - The normalization service failed or returned nothing
//	         Patterns: "normalize rows", "webhook"
//
// # Store Errors (STO)
//
//	STO002 - Sheet was cleared but not rewritten (checked first: it is the
//	         one failure that leaves the store empty)
//	         Patterns: "partial write"
//
//	STO003 - Sheet does not exist in the store
//	         Patterns: "sheet not found"
//
//	STO001 - Store unreachable
//	         Patterns: "connection refused", "no such host", "connection reset"
//
//	STO004 - No sheet loaded in this session yet
//	         Patterns: "not loaded"
//
// # Other
//
//	CYC001  - Another import or save is running ("cycle busy")
//	FILE001 - Upload too large ("file too large")
//	FILE002 - Upload is not a PDF ("not a pdf")
//	FILE003 - Too many invoices in one import ("too many files")
//	FILE004 - No file in the request ("no file provided")
//	REQ001  - Request cancelled ("context canceled")
//	REQ002  - Request timed out ("context deadline exceeded", "timeout")
//	RATE001 - Too many requests ("rate limit")
//	ERR000  - Anything else; check the logs for the technical error
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are listed
// before general ones.
package core

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

var (
	msgSchema = UserMessage{
		Message: "The sheet header rows are malformed",
		Action:  "Check that the first two rows have the same length and no repeated column names",
		Code:    "SCH001",
	}
	msgFormat = UserMessage{
		Message: "The sheet has no header rows",
		Action:  "Restore the two header rows or the template sheet",
		Code:    "FMT001",
	}
	msgMisaligned = UserMessage{
		Message: "The table does not match the sheet columns, nothing was written",
		Action:  "Reload the stock and repeat the change",
		Code:    "FMT002",
	}
	msgExtract = UserMessage{
		Message: "No product table was found in the invoice",
		Action:  "Check that the PDF is a supplier invoice with a COD. PROD. column",
		Code:    "EXT001",
	}
	msgNormalize = UserMessage{
		Message: "The normalization service did not return any rows",
		Action:  "Please try again in a few moments",
		Code:    "NRM001",
	}
	msgPartialWrite = UserMessage{
		Message: "The stock sheet was cleared but could not be rewritten",
		Action:  "Save again before closing, the data is still loaded here",
		Code:    "STO002",
	}
	msgSheetNotFound = UserMessage{
		Message: "The sheet does not exist in the store",
		Action:  "Check the configured sheet names",
		Code:    "STO003",
	}
	msgUnreachable = UserMessage{
		Message: "Unable to reach the stock store",
		Action:  "Please try again in a few moments",
		Code:    "STO001",
	}
	msgBusy = UserMessage{
		Message: "Another import or save is in progress",
		Action:  "Wait for it to finish and try again",
		Code:    "CYC001",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try fewer invoices at once or try again later",
		Code:    "REQ002",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	{pattern: "partial write", msg: msgPartialWrite},
	{pattern: "schema error", msg: msgSchema},
	{pattern: "format error", msg: msgFormat},
	{pattern: "misaligned", msg: msgMisaligned},
	{pattern: "cycle busy", msg: msgBusy},

	{
		pattern: "not a pdf",
		msg: UserMessage{
			Message: "The file is not a PDF",
			Action:  "Upload the invoice as a PDF file",
			Code:    "FILE002",
		},
	},
	{pattern: "no product table", msg: msgExtract},
	{pattern: "extract rows", msg: msgExtract},
	{pattern: "normalize rows", msg: msgNormalize},
	{pattern: "webhook", msg: msgNormalize},

	{pattern: "sheet not found", msg: msgSheetNotFound},
	{
		pattern: "not loaded",
		msg: UserMessage{
			Message: "The stock sheet is not loaded",
			Action:  "Reload the sheet",
			Code:    "STO004",
		},
	},
	{pattern: "connection refused", msg: msgUnreachable},
	{pattern: "no such host", msg: msgUnreachable},
	{pattern: "connection reset", msg: msgUnreachable},

	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Upload fewer invoices at once",
			Code:    "FILE001",
		},
	},
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Too many invoices in one import",
			Action:  "Split the invoices into smaller batches",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select at least one invoice",
			Code:    "FILE004",
		},
	},

	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{pattern: "timeout", msg: msgTimeout},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first pattern match, or the ERR000 fallback.
//
// Example:
//
//	msg := MapError(&FormatError{Rows: 1})
//	// msg.Code == "FMT001"
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

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
