package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorBLOBRoundTrip(t *testing.T) {
	vector := []float32{0.25, -1.5, 3.75, 0}

	blob, err := float32ArrayToBLOB(vector)
	require.NoError(t, err)
	assert.Len(t, blob, len(vector)*4)

	got, err := blobToFloat32Array(blob)
	require.NoError(t, err)
	assert.Equal(t, vector, got)
}

func TestVectorBLOBInvalidInput(t *testing.T) {
	_, err := float32ArrayToBLOB(nil)
	assert.Error(t, err)

	_, err = blobToFloat32Array([]byte{1, 2, 3})
	assert.Error(t, err)

	_, err = blobToFloat32Array(nil)
	assert.Error(t, err)
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"scaled identical", []float32{2, 0}, []float32{5, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineDistance(tt.a, tt.b), 1e-9)
		})
	}
}
