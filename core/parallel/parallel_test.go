package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunksCoverRange(t *testing.T) {
	for _, items := range []int{1, 2, 7, 100, 1001} {
		covered := make([]int, items)
		for _, c := range chunks(items) {
			require.Less(t, c[0], c[1])
			for i := c[0]; i < c[1]; i++ {
				covered[i]++
			}
		}
		for i, n := range covered {
			assert.Equal(t, 1, n, "items=%d row=%d", items, i)
		}
	}
}

func TestParallelize(t *testing.T) {
	out := make([]int, 5000)
	Parallelize(len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = i * 2
		}
	})
	for i, v := range out {
		assert.Equal(t, i*2, v)
	}

	Parallelize(0, func(start, end int) { t.Fatal("must not be called") })
}

func TestParallelizeWithThreshold(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, int32(1), calls)

	var total int64
	ParallelizeWithThreshold(2000, 100, func(start, end int) {
		atomic.AddInt64(&total, int64(end-start))
	})
	assert.Equal(t, int64(2000), total)
}

func TestForEachChunk(t *testing.T) {
	var total int64
	err := ForEachChunk(5000, 10, func(start, end int) error {
		atomic.AddInt64(&total, int64(end-start))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), total)

	boom := errors.New("boom")
	err = ForEachChunk(5000, 10, func(start, end int) error {
		if start == 0 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)

	err = ForEachChunk(3, 10, func(start, end int) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, ForEachChunk(0, 10, func(int, int) error { return boom }))
}
