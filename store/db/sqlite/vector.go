package sqlite

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// float32ArrayToBLOB serializes a vector as little-endian float32 bytes.
func float32ArrayToBLOB(vector []float32) ([]byte, error) {
	if len(vector) == 0 {
		return nil, errors.New("vector cannot be empty")
	}
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob, nil
}

// blobToFloat32Array deserializes a little-endian float32 BLOB.
func blobToFloat32Array(blob []byte) ([]float32, error) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, errors.Errorf("invalid vector blob length: %d", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}

// cosineDistance returns 1 - cosine_similarity, matching the pgvector <=>
// operator so both drivers report the same raw score convention.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
