package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rawdlite/onboardsync/internal/engine"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A pass aborted or records failed
	ExitCommandError = 2 // Command error (bad config, unreachable journal, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// GetExitCode extracts the exit code from an error. Returns ExitFailure
// if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string `json:"status"` // "ok" or "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Reports renders pass reports in the configured format.
func (f *OutputFormatter) Reports(reports []*engine.PassReport) error {
	if f.Format == "json" {
		status := "ok"
		for _, r := range reports {
			if r.Err != "" {
				status = "error"
			}
		}
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: status, Data: reports})
	}

	for _, r := range reports {
		fmt.Fprintf(f.Writer, "pass %s: %s (%d processed, %d skipped, %d failed) in %s\n",
			r.Pass, r.Outcome(), r.Processed(), r.Skipped(), r.Failed(),
			r.FinishedAt.Sub(r.StartedAt).Round(1e6))
		if r.Err != "" {
			fmt.Fprintf(f.Writer, "  error: %s\n", r.Err)
		}
		for _, rec := range r.Records {
			if !f.Verbose && rec.Outcome == engine.OutcomeUnchanged {
				continue
			}
			fmt.Fprintf(f.Writer, "  %-9s %s", rec.Outcome, rec.Key)
			if rec.Detail != "" {
				fmt.Fprintf(f.Writer, "  (%s)", rec.Detail)
			}
			fmt.Fprintln(f.Writer)
		}
	}
	return nil
}

// Success outputs an arbitrary payload in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// reportsError folds the reports into an error when any pass aborted.
func reportsError(reports []*engine.PassReport) error {
	for _, r := range reports {
		if r.Err != "" {
			return NewExitError(ExitFailure, fmt.Sprintf("pass %s aborted: %s", r.Pass, r.Err))
		}
	}
	return nil
}
