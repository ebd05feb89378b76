// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpConfigLoad  Op = "load config"
	OpLogOpen     Op = "open log file"
	OpStateOpen   Op = "open state database"
	OpMPRISStart  Op = "start media keys integration"
	OpCollectArgs Op = "collect tracks"

	// Session operations
	OpSettingsLoad Op = "load settings"
	OpQueueLoad    Op = "load queue"
	OpQueueRestore Op = "restore session"
	OpQueueSet     Op = "set queue"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackStop  Op = "stop playback"
	OpPlaybackSeek  Op = "seek"
	OpTrackResolve  Op = "resolve track"
	OpTrackPlay     Op = "play track"
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
