// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Metadata operations
	OpParseFile   Op = "read file metadata"
	OpWriteFile   Op = "write file metadata"
	OpBackupFile  Op = "back up file"
	OpLoadSidecar Op = "load sidecar document"

	// Catalog lookups
	OpGenreLookup   Op = "look up genres"
	OpShowLookup    Op = "look up show"
	OpEpisodeLookup Op = "look up episode title"

	// Renaming
	OpRenameFile Op = "rename file"

	// Configuration
	OpLoadConfig Op = "load configuration"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
