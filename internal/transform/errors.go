package transform

import (
	"errors"
	"fmt"
)

var (
	// ErrRead marks failures to open or parse the input table
	ErrRead = errors.New("read input")
	// ErrMalformedRow marks a row with fewer fields than the projection needs
	ErrMalformedRow = errors.New("malformed row")
	// ErrWrite marks failures to create, write or finalize the output table
	ErrWrite = errors.New("write output")
	// ErrOutputExists is returned under OverwriteFail when the output is present
	ErrOutputExists = errors.New("output already exists")
	// ErrInvalidProjection is returned before any file is touched
	ErrInvalidProjection = errors.New("invalid projection")
)

// ReadError reports a missing, unreadable or syntactically broken input.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read input: %v", e.Err)
	}
	return fmt.Sprintf("read input %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() []error { return []error{ErrRead, e.Err} }

// MalformedRowError reports the first row that is too short for the
// projection. Row is the 1-based data row number; 0 means the header row.
// Line is the line in the source file where the row starts.
type MalformedRowError struct {
	Path   string
	Row    int
	Line   int
	Fields int
	Want   int
}

func (e *MalformedRowError) Error() string {
	where := fmt.Sprintf("row %d", e.Row)
	if e.Row == 0 {
		where = "header row"
	}
	if e.Path != "" {
		where = e.Path + ": " + where
	}
	return fmt.Sprintf("%s (line %d): got %d fields, need at least %d", where, e.Line, e.Fields, e.Want)
}

func (e *MalformedRowError) Unwrap() error { return ErrMalformedRow }

// WriteError reports an output destination that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("write output: %v", e.Err)
	}
	return fmt.Sprintf("write output %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }
