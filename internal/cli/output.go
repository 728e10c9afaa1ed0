package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Resolution failure (validation error, binding conflict)
	ExitCommandError = 2 // Command error (missing files, unknown types, bad flags)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles text, json and yaml output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostic output, kept off stdout to avoid corrupting json/yaml
	Verbose   bool
}

// Success renders a successful payload in the configured format. The text
// renderer is used for the default format; structured formats encode the
// payload directly.
func (f *OutputFormatter) Success(payload any, text func(io.Writer) error) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		defer enc.Close()
		return enc.Encode(payload)
	default:
		return text(f.Writer)
	}
}

// Failure renders an error in the configured format and returns an ExitError
// carrying the given exit code.
func (f *OutputFormatter) Failure(code int, err error) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"status": "error", "error": err.Error()})
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		_ = enc.Encode(map[string]any{"status": "error", "error": err.Error()})
		_ = enc.Close()
	default:
		fmt.Fprintf(f.Writer, "error: %s\n", err.Error())
	}
	return WrapExitError(code, "resolution failed", err)
}

// VerboseLog writes a diagnostic line to the error writer when verbose mode
// is on.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
