package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/query"
	"github.com/roach88/storefront/internal/route"
	"github.com/roach88/storefront/internal/session"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failed (backend error, scenario failure)
	ExitCommandError = 2 // Command error (bad flags, config, paths)
)

// Error codes in JSON output.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeConfig     = "E002" // Config load or validation failed
	ErrCodeNetwork    = "E003" // Backend unreachable
	ErrCodeHTTP       = "E004" // Backend answered with an error status
	ErrCodeValidation = "E005" // Input rejected before any request
	ErrCodeNotFound   = "E006" // Path or view not found
	ErrCodeScenario   = "E007" // Scenario failed
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON reports whether output is JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs data in the configured format. In text mode text is
// printed instead of data.
func (f *OutputFormatter) Success(data any, text func(io.Writer)) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	if text != nil {
		text(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.GetErrWriter(), "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.GetErrWriter(), "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := classify(err)
	var details any
	var ve *session.ValidationError
	if errors.As(err, &ve) {
		details = ve.Fields
	}
	if outErr := f.Error(code, api.Message(err), details); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, "command failed", err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func classify(err error) (string, int) {
	var (
		ne *api.NetworkError
		he *api.HTTPError
		ve *session.ValidationError
		xe *ExitError
	)
	switch {
	case errors.As(err, &xe) && xe.Code == ExitCommandError:
		return ErrCodeGeneric, ExitCommandError
	case errors.As(err, &ne):
		return ErrCodeNetwork, ExitFailure
	case errors.As(err, &he):
		return ErrCodeHTTP, ExitFailure
	case errors.As(err, &ve), errors.Is(err, query.ErrEmptyQuery):
		return ErrCodeValidation, ExitCommandError
	case errors.Is(err, route.ErrNotFound):
		return ErrCodeNotFound, ExitCommandError
	default:
		return ErrCodeGeneric, ExitFailure
	}
}
