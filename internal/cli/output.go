package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/angelmondragon/buzdealz-backend/pkg/client"
	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // request rejected or mutation rolled back
	ExitCommandError = 2 // bad flags, unreadable session, unreachable API
)

// ExitError carries an exit code. Reported errors were already shown to the
// user by a notice and are not printed again.
type ExitError struct {
	Code     int
	Message  string
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return "command failed"
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// reported marks err as already surfaced through the notifier.
func reported(err error) error {
	return &ExitError{Code: ExitFailure, Err: err, Reported: true}
}

// fromAPI converts a client error into an ExitError with the server's message.
func fromAPI(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return &ExitError{Code: ExitFailure, Message: apiErr.Message}
	}
	return WrapExitError(ExitCommandError, "request failed", err)
}

// GetExitCode extracts the exit code from an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// PrintError writes err to w unless it was already reported.
func PrintError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Reported {
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Render writes v in the configured format. text renders the human form.
func (f *OutputFormatter) Render(v any, text func(io.Writer)) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	text(f.Writer)
	return nil
}

// NoticeWriter is where transient notices go. Structured output keeps stdout
// clean for parsers.
func (f *OutputFormatter) NoticeWriter() io.Writer {
	if f.Format == "text" || f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose || f.ErrWriter == nil {
		return
	}
	fmt.Fprintf(f.ErrWriter, format+"\n", args...)
}
