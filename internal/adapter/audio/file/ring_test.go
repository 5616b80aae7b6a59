package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingReadLatest(t *testing.T) {
	r := NewRing(8)
	r.Write([]float64{1, 2, 3})

	dst := make([]float64, 3)
	require.Equal(t, 3, r.ReadLatest(dst))
	assert.Equal(t, []float64{1, 2, 3}, dst)
}

func TestRingPartialFill(t *testing.T) {
	r := NewRing(8)
	r.Write([]float64{1, 2})

	dst := make([]float64, 4)
	assert.Equal(t, 2, r.ReadLatest(dst))
	assert.Equal(t, []float64{1, 2}, dst[:2])
}

func TestRingOverwritesOldest(t *testing.T) {
	r := NewRing(4)
	r.Write([]float64{1, 2, 3, 4})
	r.Write([]float64{5, 6})

	dst := make([]float64, 4)
	require.Equal(t, 4, r.ReadLatest(dst))
	assert.Equal(t, []float64{3, 4, 5, 6}, dst)
}

func TestRingLatestWindow(t *testing.T) {
	r := NewRing(16)
	for i := 0; i < 32; i++ {
		r.Write([]float64{float64(i)})
	}

	// Asking for less than the fill returns only the newest samples.
	dst := make([]float64, 4)
	require.Equal(t, 4, r.ReadLatest(dst))
	assert.Equal(t, []float64{28, 29, 30, 31}, dst)
}

func TestRingClear(t *testing.T) {
	r := NewRing(8)
	r.Write([]float64{1, 2, 3})
	r.Clear()

	dst := make([]float64, 3)
	assert.Zero(t, r.ReadLatest(dst))
}
