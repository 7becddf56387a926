package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used throughout sheetview
var (
	ErrUnknownIdentity   = errors.New("no record with that identity")
	ErrMalformedInput    = errors.New("input is not a well-formed record sequence")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrReadOnlyField     = errors.New("field is read-only")
	ErrNotEditable       = errors.New("value has no editor")
	ErrInvalidValue      = errors.New("invalid value for field")
	ErrNotConnected      = errors.New("not connected to database")
	ErrUnknownConfigKey  = errors.New("unknown config key")
)

// SheetError is a structured error with context and suggestions
type SheetError struct {
	Title       string   // Short error title
	Message     string   // Detailed message
	Context     string   // What was being attempted
	Causes      []string // Possible causes
	Suggestions []string // Actionable suggestions with commands
	Err         error    // Wrapped error
}

func (e *SheetError) Error() string {
	return e.Title
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// Format returns a nicely formatted error message
func (e *SheetError) Format() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Title))

	if e.Message != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Message))
	}
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Context))
	}

	if len(e.Causes) > 0 {
		sb.WriteString("\n  Possible causes:\n")
		for _, cause := range e.Causes {
			sb.WriteString(fmt.Sprintf("    • %s\n", cause))
		}
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n  Try:\n")
		for _, sug := range e.Suggestions {
			sb.WriteString(fmt.Sprintf("    $ %s\n", sug))
		}
	}

	return sb.String()
}

// NewError creates a new SheetError
func NewError(title string) *SheetError {
	return &SheetError{Title: title}
}

// WithMessage adds a detailed message
func (e *SheetError) WithMessage(msg string) *SheetError {
	e.Message = msg
	return e
}

// WithContext adds context about what was being attempted
func (e *SheetError) WithContext(ctx string) *SheetError {
	e.Context = ctx
	return e
}

// WithCauses adds possible causes
func (e *SheetError) WithCauses(causes ...string) *SheetError {
	e.Causes = append(e.Causes, causes...)
	return e
}

// WithSuggestion adds an actionable suggestion
func (e *SheetError) WithSuggestion(sug string) *SheetError {
	e.Suggestions = append(e.Suggestions, sug)
	return e
}

// WithSuggestions adds multiple suggestions
func (e *SheetError) WithSuggestions(sugs ...string) *SheetError {
	e.Suggestions = append(e.Suggestions, sugs...)
	return e
}

// Wrap wraps an underlying error
func (e *SheetError) Wrap(err error) *SheetError {
	e.Err = err
	return e
}

// ══════════════════════════════════════════════════════════════════════════
// Pre-built error constructors for common cases
// ══════════════════════════════════════════════════════════════════════════

// MalformedInputError reports a file that could not be parsed into records.
// The wrapped chain always contains ErrMalformedInput.
func MalformedInputError(path, format string, err error) *SheetError {
	return NewError(fmt.Sprintf("%s is not valid", strings.ToUpper(format))).
		WithContext(path).
		WithMessage(err.Error()).
		WithCauses(
			"The file is truncated or hand-edited",
			"The top level is not a list of objects",
		).
		WithSuggestion(fmt.Sprintf("sheetview view --format <json|jsonl|yaml|csv> %s", path)).
		Wrap(fmt.Errorf("%w: %w", ErrMalformedInput, err))
}

// UnsupportedFormatError returns an error for an unknown --format value or
// file extension
func UnsupportedFormatError(format string) *SheetError {
	return NewError(fmt.Sprintf("Unsupported format '%s'", format)).
		WithMessage("Supported formats are json, jsonl, yaml and csv").
		Wrap(ErrUnsupportedFormat)
}

// UnknownIdentityError returns an error for an edit aimed at a row that is
// not in the current dataset
func UnknownIdentityError(id string) *SheetError {
	return NewError(fmt.Sprintf("Row '%s' not found", id)).
		WithMessage("The edit was dropped; the dataset was not changed").
		Wrap(ErrUnknownIdentity)
}

// DatabaseConnectionError returns a structured error for DB connection issues
func DatabaseConnectionError(url string, err error) *SheetError {
	return NewError("Cannot connect to database").
		WithContext(url).
		WithCauses(
			"Database server is not running",
			"Invalid connection credentials",
			"Network connectivity issues",
		).
		WithSuggestion("psql <url> -c 'select 1'   # Check the connection").
		Wrap(err)
}

// MissingArgumentError returns an error for missing required argument
func MissingArgumentError(argName, example string) *SheetError {
	e := NewError(fmt.Sprintf("Missing required argument: <%s>", argName))
	if example != "" {
		e.WithSuggestion(example)
	}
	return e
}
