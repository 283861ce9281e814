package transform

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
)

const bufSize = 4 << 20 // 4 MiB

// Result describes one completed file transform
type Result struct {
	Input    string
	Output   string
	Rows     int
	Duration time.Duration
}

// Project streams a delimited table from r to w. The first row of r is the
// source header and is discarded; p.Header is written in its place. Every
// following row contributes exactly one output row holding the fields at
// p.Columns, unchanged and in input order. It returns the number of data
// rows written.
func Project(r io.Reader, w io.Writer, p Projection, opts Options) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return 0, err
	}
	return project(r, w, p, opts, "", "")
}

// TransformFile applies p to the table at input and writes the result to
// output. The output is assembled in a pending file in the same directory and
// renamed over output only after every row was written, so a failed run never
// leaves a partial table behind and never clobbers an existing one.
func TransformFile(input, output string, p Projection, opts Options) (Result, error) {
	start := time.Now()
	res := Result{Input: input, Output: output}

	if err := p.Validate(); err != nil {
		return res, err
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return res, err
	}

	in, err := os.Open(input)
	if err != nil {
		return res, &ReadError{Path: input, Err: err}
	}
	defer in.Close()

	if opts.Overwrite == OverwriteFail {
		if _, err := os.Stat(output); err == nil {
			return res, fmt.Errorf("%s: %w", output, ErrOutputExists)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return res, &WriteError{Path: output, Err: err}
		}
	}

	pending, err := renameio.NewPendingFile(output,
		renameio.WithTempDir(filepath.Dir(output)),
		renameio.WithPermissions(0o644),
	)
	if err != nil {
		return res, &WriteError{Path: output, Err: err}
	}
	defer pending.Cleanup()

	bw := bufio.NewWriterSize(pending, bufSize)
	rows, err := project(bufio.NewReaderSize(in, bufSize), bw, p, opts, input, output)
	res.Rows = rows
	if err != nil {
		return res, err
	}
	if err := bw.Flush(); err != nil {
		return res, &WriteError{Path: output, Err: err}
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return res, &WriteError{Path: output, Err: err}
	}

	res.Duration = time.Since(start)
	return res, nil
}

func project(r io.Reader, w io.Writer, p Projection, opts Options, inPath, outPath string) (int, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.InputDelimiter
	reader.FieldsPerRecord = -1 // arity is checked against the projection instead
	reader.LazyQuotes = true     // a quote is only special at the start of a field
	reader.ReuseRecord = true

	writer := csv.NewWriter(w)
	writer.Comma = opts.OutputDelimiter

	minFields := p.MinFields()

	header, err := reader.Read()
	if err == io.EOF {
		return 0, &ReadError{Path: inPath, Err: errors.New("missing header row")}
	}
	if err != nil {
		return 0, &ReadError{Path: inPath, Err: fmt.Errorf("header: %w", err)}
	}
	if len(header) < minFields {
		line, _ := reader.FieldPos(0)
		return 0, &MalformedRowError{Path: inPath, Row: 0, Line: line, Fields: len(header), Want: minFields}
	}

	if err := writer.Write(p.Header); err != nil {
		return 0, &WriteError{Path: outPath, Err: fmt.Errorf("header: %w", err)}
	}

	out := make([]string, len(p.Columns))
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, &ReadError{Path: inPath, Err: fmt.Errorf("row %d: %w", rows+1, err)}
		}
		if len(record) < minFields {
			line, _ := reader.FieldPos(0)
			return rows, &MalformedRowError{Path: inPath, Row: rows + 1, Line: line, Fields: len(record), Want: minFields}
		}

		for i, col := range p.Columns {
			out[i] = record[col]
		}
		if err := writer.Write(out); err != nil {
			return rows, &WriteError{Path: outPath, Err: fmt.Errorf("row %d: %w", rows+1, err)}
		}
		rows++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return rows, &WriteError{Path: outPath, Err: err}
	}
	return rows, nil
}
