package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/morrow/internal/logger"
)

var (
	// ErrNotInitialized is returned when storage is used before `morrow init`
	ErrNotInitialized = errors.New("storage not initialized")
	// ErrListNotFound is returned when a named task list does not exist
	ErrListNotFound = errors.New("task list not found")
	// ErrTaskNotFound is returned when a task id does not exist
	ErrTaskNotFound = errors.New("task not found")
	// ErrOutputListNotEmpty is returned when the output list still holds incomplete items
	ErrOutputListNotEmpty = errors.New("output list has incomplete tasks")
	// ErrMissingAPIKey is returned when no LLM API key is configured
	ErrMissingAPIKey = errors.New("LLM API key not set")
)

// hints maps sentinels to the command that resolves them.
var hints = []struct {
	err  error
	hint string
}{
	{ErrNotInitialized, "run 'morrow init' first"},
	{ErrListNotFound, "check the list names with 'morrow config show'"},
	{ErrTaskNotFound, "list task ids with 'morrow task list --show-ids'"},
	{ErrOutputListNotEmpty, "complete the items, run 'morrow task clear', or plan with --force"},
	{ErrMissingAPIKey, "set MORROW_LLM_API_KEY, run 'morrow auth set-key', or plan with --offline"},
}

// Hint returns a remediation for the first sentinel err wraps, or "".
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.err) {
			return h.hint
		}
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error, prints it with its hint and exits with code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		if hint := Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
