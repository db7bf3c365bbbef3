// Package csvsource implements the default CSV-backed RowIterator
// adapter named as an external collaborator in spec.md §1/§6. It is
// grounded on pkg/ccl/sqlccl/csv.go's enterprise CSV loader: the same
// shape of knobs (field separator, null marker; comment lines are not
// supported) plus
// the IND-discovery-specific ones spec.md §6 names
// (dropDifferingLines, ignoreLeadingWhiteSpace, useStrictQuotes).
package csvsource

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vishalbelsare/sindy-3/pkg/sindyerr"
)

// RowIterator is the restartable row-producing interface spec.md §6
// requires of an input table: generateNewCopy/relationName/columnNames.
type RowIterator interface {
	// Next returns the next row's fields, or ok=false when exhausted.
	Next() (row []string, ok bool, err error)
	Close() error
}

// Table is spec.md §6's relational-input interface.
type Table interface {
	GenerateNewCopy() (RowIterator, error)
	RelationName() string
	ColumnNames() []string
}

// Options are the CSV controls named in spec.md §6.
type Options struct {
	FieldSeparator          rune
	QuoteChar               rune
	EscapeChar              rune
	NullString              string
	DropDifferingLines      bool
	IgnoreLeadingWhiteSpace bool
	UseStrictQuotes         bool
	// HasHeader indicates the first row of the file holds column names
	// rather than data.
	HasHeader bool
}

// DefaultOptions mirrors the defaults the original Sindy CLI applies:
// comma-separated, double-quote quoting, empty string as null.
func DefaultOptions() Options {
	return Options{
		FieldSeparator: ',',
		QuoteChar:      '"',
		NullString:     "",
		HasHeader:      true,
	}
}

// FileTable is a Table backed by a single CSV file.
type FileTable struct {
	path         string
	relationName string
	columnNames  []string
	opts         Options
}

// NewFileTable opens path just long enough to resolve column names
// (from the header row, if opts.HasHeader, otherwise synthesized as
// col0, col1, ...), then closes it; GenerateNewCopy reopens the file
// for each restart, as spec.md §6 requires of a "restartable"
// iterator.
func NewFileTable(path string, opts Options) (*FileTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sindyerr.MarkInput(err)
	}
	defer f.Close()

	r := newCSVReader(f, opts)
	relationName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var columnNames []string
	if opts.HasHeader {
		header, err := r.Read()
		if err != nil && err != io.EOF {
			return nil, sindyerr.MarkInput(err)
		}
		columnNames = header
	} else {
		row, err := r.Read()
		if err != nil && err != io.EOF {
			return nil, sindyerr.MarkInput(err)
		}
		columnNames = make([]string, len(row))
		for i := range row {
			columnNames[i] = syntheticColumnName(i)
		}
	}

	return &FileTable{path: path, relationName: relationName, columnNames: columnNames, opts: opts}, nil
}

func syntheticColumnName(i int) string {
	return "col" + strconv.Itoa(i)
}

func newCSVReader(r io.Reader, opts Options) *csv.Reader {
	cr := csv.NewReader(r)
	if opts.FieldSeparator != 0 {
		cr.Comma = opts.FieldSeparator
	}
	cr.TrimLeadingSpace = opts.IgnoreLeadingWhiteSpace
	cr.LazyQuotes = !opts.UseStrictQuotes
	cr.FieldsPerRecord = -1 // tolerate ragged rows; dropDifferingLines is applied by the iterator.
	return cr
}

// RelationName implements Table.
func (t *FileTable) RelationName() string { return t.relationName }

// ColumnNames implements Table.
func (t *FileTable) ColumnNames() []string { return t.columnNames }

// GenerateNewCopy implements Table by reopening the backing file.
func (t *FileTable) GenerateNewCopy() (RowIterator, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, sindyerr.MarkInput(err)
	}
	r := newCSVReader(f, t.opts)
	it := &fileIterator{file: f, reader: r, opts: t.opts, width: len(t.columnNames)}
	if t.opts.HasHeader {
		if _, err := r.Read(); err != nil && err != io.EOF {
			f.Close()
			return nil, sindyerr.MarkInput(err)
		}
	}
	return it, nil
}

type fileIterator struct {
	file   *os.File
	reader *csv.Reader
	opts   Options
	width  int
}

// Next implements RowIterator, honouring DropDifferingLines: a row
// whose field count does not match the declared schema width is
// silently skipped when DropDifferingLines is set, per spec.md §4.3;
// otherwise it is returned as-is for the caller to handle.
func (it *fileIterator) Next() ([]string, bool, error) {
	for {
		row, err := it.reader.Read()
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, sindyerr.MarkInput(err)
		}
		if it.opts.DropDifferingLines && len(row) != it.width {
			continue
		}
		return row, true, nil
	}
}

// Close implements RowIterator.
func (it *fileIterator) Close() error { return it.file.Close() }

var _ Table = (*FileTable)(nil)
var _ RowIterator = (*fileIterator)(nil)
