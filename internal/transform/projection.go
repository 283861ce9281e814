package transform

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Session log column layout used by the train/test splits: column 0 holds
// the session, 3 the item and 4 the timestamp.
var (
	defaultColumns = []int{0, 3, 4}
	defaultHeader  = []string{"SessionId", "ItemId", "Time"}
)

// Projection selects source columns by zero-based position and names them.
type Projection struct {
	Columns []int
	Header  []string
}

// DefaultProjection returns a fresh copy of the session log projection
func DefaultProjection() Projection {
	return Projection{
		Columns: append([]int(nil), defaultColumns...),
		Header:  append([]string(nil), defaultHeader...),
	}
}

// MinFields is the number of fields a row needs for every selected column
// to exist.
func (p Projection) MinFields() int {
	highest := -1
	for _, c := range p.Columns {
		if c > highest {
			highest = c
		}
	}
	return highest + 1
}

// Validate checks that the projection can be applied to any table.
func (p Projection) Validate() error {
	if len(p.Columns) == 0 {
		return fmt.Errorf("%w: no columns selected", ErrInvalidProjection)
	}
	if len(p.Header) != len(p.Columns) {
		return fmt.Errorf("%w: %d columns but %d header names", ErrInvalidProjection, len(p.Columns), len(p.Header))
	}
	for _, c := range p.Columns {
		if c < 0 {
			return fmt.Errorf("%w: negative column index %d", ErrInvalidProjection, c)
		}
	}
	return nil
}

func (p Projection) String() string {
	pairs := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		name := "?"
		if i < len(p.Header) {
			name = p.Header[i]
		}
		pairs[i] = fmt.Sprintf("%d->%s", c, name)
	}
	return strings.Join(pairs, ",")
}

// OverwritePolicy decides what happens when the output file already exists.
type OverwritePolicy string

const (
	// OverwriteReplace atomically replaces the existing file on success
	OverwriteReplace OverwritePolicy = "replace"
	// OverwriteFail refuses to touch an existing output
	OverwriteFail OverwritePolicy = "fail"
)

// ParseOverwritePolicy accepts "replace", "fail" or "" (replace).
func ParseOverwritePolicy(s string) (OverwritePolicy, error) {
	switch OverwritePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverwriteReplace:
		return OverwriteReplace, nil
	case OverwriteFail:
		return OverwriteFail, nil
	default:
		return "", fmt.Errorf("unknown overwrite policy %q (want %q or %q)", s, OverwriteReplace, OverwriteFail)
	}
}

// Options controls how tables are read and written. Zero values mean comma
// delimiters and OverwriteReplace.
type Options struct {
	InputDelimiter  rune
	OutputDelimiter rune
	Overwrite       OverwritePolicy
}

func (o Options) withDefaults() Options {
	if o.InputDelimiter == 0 {
		o.InputDelimiter = ','
	}
	if o.OutputDelimiter == 0 {
		o.OutputDelimiter = ','
	}
	if o.Overwrite == "" {
		o.Overwrite = OverwriteReplace
	}
	return o
}

func (o Options) validate() error {
	if !ValidDelimiter(o.InputDelimiter) {
		return fmt.Errorf("invalid input delimiter %q", o.InputDelimiter)
	}
	if !ValidDelimiter(o.OutputDelimiter) {
		return fmt.Errorf("invalid output delimiter %q", o.OutputDelimiter)
	}
	if _, err := ParseOverwritePolicy(string(o.Overwrite)); err != nil {
		return err
	}
	return nil
}

// ValidDelimiter reports whether r can separate fields of a delimited table.
func ValidDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
