// Package frame provides Frame, a float64 table with named columns and an
// integer row index.
//
// Estimators accept any mat.Matrix, but label-aware operations (column checks
// between fit and predict, index preservation in outputs) need a Frame. A
// plain matrix is promoted with FromMatrix, which names columns "0".."n-1".
package frame

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// Frame is a labelled view over a *mat.Dense. A Frame is immutable by
// convention: methods returning a Frame never modify the receiver.
type Frame struct {
	data    *mat.Dense
	columns []string
	index   []int
}

var _ mat.Matrix = (*Frame)(nil)

// New creates a Frame over data. The frame takes ownership of data.
// nil columns default to "0".."n-1" and a nil index to 0..r-1.
func New(data *mat.Dense, columns []string, index []int) (*Frame, error) {
	if data == nil || data.IsEmpty() {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.New")
	}
	r, c := data.Dims()

	if columns == nil {
		columns = DefaultColumns(c)
	}
	if len(columns) != c {
		return nil, errors.NewDimensionError("frame.New", c, len(columns), 1)
	}
	seen := make(map[string]struct{}, c)
	for _, name := range columns {
		if _, dup := seen[name]; dup {
			return nil, errors.NewValueError("frame.New", fmt.Sprintf("duplicate column name %q", name))
		}
		seen[name] = struct{}{}
	}

	if index == nil {
		index = DefaultIndex(r)
	}
	if len(index) != r {
		return nil, errors.NewDimensionError("frame.New", r, len(index), 0)
	}

	return &Frame{
		data:    data,
		columns: append([]string(nil), columns...),
		index:   append([]int(nil), index...),
	}, nil
}

// FromRows builds a Frame from row slices.
func FromRows(rows [][]float64, columns []string) (*Frame, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.FromRows")
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, errors.Wrapf(errors.NewDimensionError("frame.FromRows", c, len(row), 1), "row %d", i)
		}
		data = append(data, row...)
	}
	return New(mat.NewDense(len(rows), c, data), columns, nil)
}

// FromMatrix returns m itself when it is a *Frame, otherwise a copy of m
// with default labels.
func FromMatrix(m mat.Matrix) (*Frame, error) {
	if m == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.FromMatrix")
	}
	if f, ok := m.(*Frame); ok {
		return f, nil
	}
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.FromMatrix")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.FromMatrix")
	}
	return New(mat.DenseCopyOf(m), nil, nil)
}

// DefaultColumns returns "0".."n-1".
func DefaultColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = strconv.Itoa(i)
	}
	return cols
}

// DefaultIndex returns 0..n-1.
func DefaultIndex(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// ColumnsEqual reports whether a and b hold the same labels in the same order.
func ColumnsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Dims implements mat.Matrix.
func (f *Frame) Dims() (r, c int) {
	return f.data.Dims()
}

// At implements mat.Matrix.
func (f *Frame) At(i, j int) float64 {
	return f.data.At(i, j)
}

// T implements mat.Matrix. The transpose carries no labels.
func (f *Frame) T() mat.Matrix {
	return mat.Transpose{Matrix: f}
}

// Columns returns a copy of the column labels.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Index returns a copy of the row labels.
func (f *Frame) Index() []int {
	return append([]int(nil), f.index...)
}

// Len is the number of rows.
func (f *Frame) Len() int {
	return len(f.index)
}

// Width is the number of columns.
func (f *Frame) Width() int {
	return len(f.columns)
}

// ColIndex returns the position of the named column.
func (f *Frame) ColIndex(name string) (int, bool) {
	for j, c := range f.columns {
		if c == name {
			return j, true
		}
	}
	return -1, false
}

// Col returns a copy of the named column.
func (f *Frame) Col(name string) ([]float64, error) {
	j, ok := f.ColIndex(name)
	if !ok {
		return nil, errors.NewValueError("frame.Col", fmt.Sprintf("no column %q", name))
	}
	return mat.Col(nil, j, f.data), nil
}

// Dense returns a copy of the underlying data.
func (f *Frame) Dense() *mat.Dense {
	return mat.DenseCopyOf(f.data)
}

// RawDense returns the underlying data without copying. Callers must not
// modify it.
func (f *Frame) RawDense() *mat.Dense {
	return f.data
}

// WithData returns a frame with the receiver's labels over new values of the
// same shape.
func (f *Frame) WithData(data *mat.Dense) (*Frame, error) {
	if data == nil || data.IsEmpty() {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.WithData")
	}
	r, c := data.Dims()
	if r != f.Len() {
		return nil, errors.NewDimensionError("frame.WithData", f.Len(), r, 0)
	}
	if c != f.Width() {
		return nil, errors.NewDimensionError("frame.WithData", f.Width(), c, 1)
	}
	return New(data, f.columns, f.index)
}

// Rows returns the rows at the given positions, keeping their index labels.
func (f *Frame) Rows(positions []int) (*Frame, error) {
	if len(positions) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.Rows")
	}
	out := mat.NewDense(len(positions), f.Width(), nil)
	index := make([]int, len(positions))
	for i, p := range positions {
		if p < 0 || p >= f.Len() {
			return nil, errors.NewValueError("frame.Rows", fmt.Sprintf("row position %d out of range [0, %d)", p, f.Len()))
		}
		out.SetRow(i, f.data.RawRowView(p))
		index[i] = f.index[p]
	}
	return New(out, f.columns, index)
}

// Select returns the named columns in the given order.
func (f *Frame) Select(columns []string) (*Frame, error) {
	if len(columns) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.Select")
	}
	out := mat.NewDense(f.Len(), len(columns), nil)
	for k, name := range columns {
		j, ok := f.ColIndex(name)
		if !ok {
			return nil, errors.NewValueError("frame.Select", fmt.Sprintf("no column %q", name))
		}
		out.SetCol(k, mat.Col(nil, j, f.data))
	}
	return New(out, columns, f.index)
}

// Drop returns the frame without the named columns.
func (f *Frame) Drop(columns []string) (*Frame, error) {
	drop := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := f.ColIndex(c); !ok {
			return nil, errors.NewValueError("frame.Drop", fmt.Sprintf("no column %q", c))
		}
		drop[c] = struct{}{}
	}
	var keep []string
	for _, c := range f.columns {
		if _, ok := drop[c]; !ok {
			keep = append(keep, c)
		}
	}
	return f.Select(keep)
}

// Equal reports whether both frames have the same labels and values.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil {
		return false
	}
	if !ColumnsEqual(f.columns, other.columns) || len(f.index) != len(other.index) {
		return false
	}
	for i := range f.index {
		if f.index[i] != other.index[i] {
			return false
		}
	}
	return mat.Equal(f.data, other.data)
}

// EqualApprox is Equal with a tolerance on values.
func (f *Frame) EqualApprox(other *Frame, tol float64) bool {
	if other == nil || !ColumnsEqual(f.columns, other.columns) || len(f.index) != len(other.index) {
		return false
	}
	for i := range f.index {
		if f.index[i] != other.index[i] {
			return false
		}
	}
	return mat.EqualApprox(f.data, other.data, tol)
}

// String renders the frame as an aligned table.
func (f *Frame) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(f.columns, "\t"))
	for i, label := range f.index {
		fmt.Fprintf(tw, "%d", label)
		for j := range f.columns {
			fmt.Fprintf(tw, "\t%.6g", f.data.At(i, j))
		}
		fmt.Fprint(tw, "\t\n")
	}
	tw.Flush()
	return sb.String()
}
