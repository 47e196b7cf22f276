package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gearmatrix/internal/compiler"
)

// Process exit codes.
const (
	ExitSuccess      = 0 // train calculated, valid, or every scenario passed
	ExitFailure      = 1 // invalid train, failed calculation or failing scenario
	ExitCommandError = 2 // bad arguments, missing or unreadable train files
)

// ExitError carries the process exit code for a command failure.
// main passes Code to os.Exit.
type ExitError struct {
	Code    int
	Message string
	Err     error // optional cause
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError around err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure for any other error.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		return ExitFailure
	}
	return exitErr.Code
}

// CLIResponse is the envelope of every JSON document a command writes.
// Status is "ok" or "error"; RunID is set for single calculations.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
	RunID  string      `json:"run_id,omitempty"`
}

// CLIError is the error member of a CLIResponse. Code is a graph error
// category such as CYCLE_DETECTED, or an E0xx command error code.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or JSON. Results go to
// Writer; verbose diagnostics go to ErrWriter when it is set.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// Success writes data. Text output prints data with fmt.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes an error. Text output shows details only in verbose mode.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if !f.Verbose || details == nil {
		return nil
	}
	if problems, ok := details.([]compiler.ValidationError); ok {
		for _, p := range problems {
			fmt.Fprintf(f.Writer, "  %s\n", p.Error())
		}
		return nil
	}
	fmt.Fprintf(f.Writer, "Details: %v\n", details)
	return nil
}

// TrainError writes a failed calculation. Graph errors keep their category
// and validation problems; anything else is reported as a generic error.
func (f *OutputFormatter) TrainError(err error) error {
	code := string(compiler.CodeOf(err))
	if code == "" {
		code = ErrCodeGeneric
	}

	var details interface{}
	var graphErr *compiler.GraphError
	if errors.As(err, &graphErr) && len(graphErr.Problems) > 0 {
		details = graphErr.Problems
	}
	return f.Error(code, err.Error(), details)
}

// VerboseLog writes a diagnostic line in verbose mode.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}
