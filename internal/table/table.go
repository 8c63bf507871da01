// Package table stores fixed-schema tables of string cells as csv or xlsx
// files. A table is loaded fully into memory and every save rewrites the
// whole file through an atomic rename.
package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/renameio/v2"
)

// ErrCorrupt is reported by LoadIssue when the file on disk could not be
// read as a table with the expected columns.
var ErrCorrupt = errors.New("corrupt table")

// CorruptSuffix is appended to the name of a corrupt file when it is moved aside.
const CorruptSuffix = ".corrupt"

type codec interface {
	decode(r io.Reader) ([][]string, error)
	encode(w io.Writer, rows [][]string) error
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvCodec{}, nil
	case ".xlsx":
		return xlsxCodec{sheet: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}, nil
	}
	return nil, fmt.Errorf("unsupported table format %q", filepath.Ext(path))
}

// Table is a list of rows with a fixed set of columns. It is not safe for
// concurrent use.
type Table struct {
	path      string
	columns   []string
	rows      [][]string
	codec     codec
	loadIssue error
}

// Open loads the table at `path`, the format is chosen by the file extension
// (.csv or .xlsx).
//
// A missing file yields an empty table. A file that cannot be decoded, or
// whose header does not match `columns`, also yields an empty table: the
// file is moved aside to <path>.corrupt and the problem is kept in LoadIssue.
// Only failures to touch the filesystem at all are returned as errors.
func Open(path string, columns []string) (*Table, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	t := &Table{
		path:    path,
		columns: slices.Clone(columns),
		codec:   c,
	}

	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(contents)) == 0 {
		return t, nil
	}

	rows, decodeErr := t.decode(contents)
	if decodeErr == nil {
		t.rows = rows
		return t, nil
	}

	t.loadIssue = fmt.Errorf("%w: %s: %w", ErrCorrupt, path, decodeErr)
	err = os.Rename(path, path+CorruptSuffix)
	if err != nil {
		return nil, fmt.Errorf("move aside corrupt table %s: %w", path, err)
	}
	return t, nil
}

func (t *Table) decode(contents []byte) ([][]string, error) {
	records, err := t.codec.decode(bytes.NewReader(contents))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !slices.Equal(records[0], t.columns) {
		return nil, fmt.Errorf("header %v does not match columns %v", records[0], t.columns)
	}

	rows := make([][]string, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) > len(t.columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i+1, len(record), len(t.columns))
		}
		row := make([]string, len(t.columns))
		copy(row, record)
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *Table) Path() string {
	return t.path
}

func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// LoadIssue returns the reason the file was discarded on Open, or nil.
func (t *Table) LoadIssue() error {
	return t.loadIssue
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of row i in insertion order.
func (t *Table) Row(i int) []string {
	return slices.Clone(t.rows[i])
}

// Rows returns a copy of every row in insertion order.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = slices.Clone(row)
	}
	return out
}

// Append adds rows to the end of the table and saves it. When saving fails
// the rows are dropped again so memory never runs ahead of the file.
func (t *Table) Append(rows ...[]string) error {
	for _, row := range rows {
		if len(row) != len(t.columns) {
			return fmt.Errorf("%s: row has %d cells, expected %d", t.path, len(row), len(t.columns))
		}
	}

	n := len(t.rows)
	for _, row := range rows {
		t.rows = append(t.rows, slices.Clone(row))
	}
	err := t.Save()
	if err != nil {
		t.rows = t.rows[:n]
		return err
	}
	return nil
}

// Save rewrites the whole file, replacing the old one atomically.
func (t *Table) Save() error {
	err := os.MkdirAll(filepath.Dir(t.path), 0777)
	if err != nil {
		return fmt.Errorf("save %s: %w", t.path, err)
	}

	pending, err := renameio.NewPendingFile(t.path, renameio.WithPermissions(0644))
	if err != nil {
		return fmt.Errorf("save %s: %w", t.path, err)
	}
	defer pending.Cleanup()

	records := make([][]string, 0, len(t.rows)+1)
	records = append(records, t.columns)
	records = append(records, t.rows...)

	err = t.codec.encode(pending, records)
	if err != nil {
		return fmt.Errorf("save %s: %w", t.path, err)
	}
	err = pending.CloseAtomicallyReplace()
	if err != nil {
		return fmt.Errorf("save %s: %w", t.path, err)
	}
	return nil
}
