// Package dataset loads, splits and generates labeled tabular data.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/core/parallel"
	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
)

type csvOptions struct {
	indexColumn string
	comma       rune
}

// CSVOption configures ReadCSV and WriteCSV.
type CSVOption func(*csvOptions)

// WithIndexColumn reads (or writes) the named column as integer row labels
// instead of data.
func WithIndexColumn(name string) CSVOption {
	return func(o *csvOptions) {
		o.indexColumn = name
	}
}

// WithComma sets the field delimiter (default ',').
func WithComma(r rune) CSVOption {
	return func(o *csvOptions) {
		o.comma = r
	}
}

func newCSVOptions(opts []CSVOption) csvOptions {
	o := csvOptions{comma: ','}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ReadCSV parses a CSV document with a header row into a Frame. Every data
// cell must parse as a float64. Without WithIndexColumn rows are labeled
// 0..n-1.
func ReadCSV(r io.Reader, opts ...CSVOption) (*frame.Frame, error) {
	const op = "dataset.ReadCSV"
	o := newCSVOptions(opts)

	reader := csv.NewReader(r)
	reader.Comma = o.comma
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if len(records) < 2 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}

	header := records[0]
	indexPos := -1
	var columns []string
	for j, name := range header {
		if o.indexColumn != "" && name == o.indexColumn {
			indexPos = j
			continue
		}
		columns = append(columns, name)
	}
	if o.indexColumn != "" && indexPos < 0 {
		return nil, errors.NewValueError(op, fmt.Sprintf("no index column %q in header", o.indexColumn))
	}
	if len(columns) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}

	rows := records[1:]
	data := mat.NewDense(len(rows), len(columns), nil)
	var index []int
	if indexPos >= 0 {
		index = make([]int, len(rows))
	}

	err = parallel.ForEachChunk(len(rows), parallel.DefaultThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			j := 0
			for k, cell := range rows[i] {
				if k == indexPos {
					label, err := strconv.Atoi(cell)
					if err != nil {
						return errors.NewValueError(op, fmt.Sprintf("line %d: index %q is not an integer", i+2, cell))
					}
					index[i] = label
					continue
				}
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return errors.NewValueError(op, fmt.Sprintf("line %d, column %q: %q is not a number", i+2, columns[j], cell))
				}
				data.Set(i, j, v)
				j++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return frame.New(data, columns, index)
}

// LoadCSV reads the CSV file at path.
func LoadCSV(path string, opts ...CSVOption) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	out, err := ReadCSV(f, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return out, nil
}

// WriteCSV writes f with a header row. With WithIndexColumn the row labels
// are written as the first column under that name.
func WriteCSV(w io.Writer, f *frame.Frame, opts ...CSVOption) error {
	o := newCSVOptions(opts)
	writer := csv.NewWriter(w)
	writer.Comma = o.comma

	withIndex := o.indexColumn != ""
	header := f.Columns()
	if withIndex {
		header = append([]string{o.indexColumn}, header...)
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "dataset.WriteCSV")
	}

	index := f.Index()
	record := make([]string, len(header))
	for i := 0; i < f.Len(); i++ {
		k := 0
		if withIndex {
			record[0] = strconv.Itoa(index[i])
			k = 1
		}
		for j := 0; j < f.Width(); j++ {
			record[k+j] = strconv.FormatFloat(f.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "dataset.WriteCSV")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "dataset.WriteCSV")
}
