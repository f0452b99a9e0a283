package frame

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		data    *mat.Dense
		columns []string
		index   []int
		wantErr bool
	}{
		{"defaults", mat.NewDense(2, 2, []float64{1, 2, 3, 4}), nil, nil, false},
		{"labelled", mat.NewDense(2, 2, []float64{1, 2, 3, 4}), []string{"a", "b"}, []int{10, 20}, false},
		{"nil data", nil, nil, nil, true},
		{"empty data", &mat.Dense{}, nil, nil, true},
		{"column count", mat.NewDense(2, 2, nil), []string{"a"}, nil, true},
		{"index length", mat.NewDense(2, 2, nil), nil, []int{1}, true},
		{"duplicate columns", mat.NewDense(2, 2, nil), []string{"a", "a"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.data, tt.columns, tt.index)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			r, c := f.Dims()
			assert.Equal(t, 2, r)
			assert.Equal(t, 2, c)
		})
	}
}

func TestNew_DefaultLabels(t *testing.T) {
	f, err := New(mat.NewDense(3, 2, nil), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, f.Columns())
	assert.Equal(t, []int{0, 1, 2}, f.Index())
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 2, f.Width())
}

func TestNew_EmptyIsErrEmptyData(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = FromRows(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestFromRows(t *testing.T) {
	f, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}}, []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, 4.0, f.At(1, 1))

	col, err := f.Col("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5}, col)

	_, err = FromRows([][]float64{{1, 2}, {3}}, nil)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestFromMatrix(t *testing.T) {
	f, err := FromRows([][]float64{{1}, {2}}, []string{"a"})
	require.NoError(t, err)

	same, err := FromMatrix(f)
	require.NoError(t, err)
	assert.Same(t, f, same)

	d := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	promoted, err := FromMatrix(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, promoted.Columns())

	d.Set(0, 0, 100)
	assert.Equal(t, 1.0, promoted.At(0, 0), "FromMatrix must copy foreign matrices")

	_, err = FromMatrix(nil)
	assert.Error(t, err)
	_, err = FromMatrix(&mat.Dense{})
	assert.Error(t, err)
}

func TestLabelsAreCopied(t *testing.T) {
	cols := []string{"a", "b"}
	f, err := New(mat.NewDense(1, 2, nil), cols, nil)
	require.NoError(t, err)

	cols[0] = "changed"
	assert.Equal(t, "a", f.Columns()[0])

	got := f.Columns()
	got[1] = "changed"
	assert.Equal(t, "b", f.Columns()[1])
}

func TestRowsAndSelect(t *testing.T) {
	f, err := New(mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}), []string{"a", "b", "c"}, []int{100, 101, 102})
	require.NoError(t, err)

	sub, err := f.Rows([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{102, 100}, sub.Index())
	assert.Equal(t, 7.0, sub.At(0, 0))

	_, err = f.Rows([]int{3})
	assert.Error(t, err)

	sel, err := f.Select([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Columns())
	assert.Equal(t, []int{100, 101, 102}, sel.Index())
	assert.Equal(t, 6.0, sel.At(1, 0))

	_, err = f.Select([]string{"missing"})
	assert.Error(t, err)

	dropped, err := f.Drop([]string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, dropped.Columns())
}

func TestWithData(t *testing.T) {
	f, err := New(mat.NewDense(2, 1, []float64{1, 2}), []string{"a"}, []int{5, 6})
	require.NoError(t, err)

	g, err := f.WithData(mat.NewDense(2, 1, []float64{3, 4}))
	require.NoError(t, err)
	assert.Equal(t, f.Columns(), g.Columns())
	assert.Equal(t, f.Index(), g.Index())
	assert.Equal(t, 3.0, g.At(0, 0))

	_, err = f.WithData(mat.NewDense(3, 1, nil))
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	a, _ := FromRows([][]float64{{1, 2}}, []string{"x", "y"})
	b, _ := FromRows([][]float64{{1, 2}}, []string{"x", "y"})
	c, _ := FromRows([][]float64{{1, 2}}, []string{"y", "x"})
	d, _ := FromRows([][]float64{{1, 2.0000001}}, []string{"x", "y"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.True(t, a.EqualApprox(d, 1e-6))
	assert.False(t, a.Equal(nil))
}

func TestColumnsEqual(t *testing.T) {
	assert.True(t, ColumnsEqual([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, ColumnsEqual([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, ColumnsEqual([]string{"a"}, []string{"a", "b"}))
	assert.True(t, ColumnsEqual(nil, []string{}))
}

func TestFrameIsMatrix(t *testing.T) {
	f, err := FromRows([][]float64{{1, 2}, {3, 4}}, nil)
	require.NoError(t, err)

	var product mat.Dense
	product.Mul(f, f.T())
	assert.Equal(t, 5.0, product.At(0, 0))
	assert.Equal(t, 25.0, product.At(1, 1))
}

func TestString(t *testing.T) {
	f, err := New(mat.NewDense(2, 2, []float64{1, 2.5, 3, 4}), []string{"a", "b"}, []int{7, 8})
	require.NoError(t, err)

	s := f.String()
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "a")
	assert.Contains(t, lines[0], "b")
	assert.Contains(t, lines[1], "7")
	assert.Contains(t, lines[1], "2.5")
}
