package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorLiteralRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
	}{
		{name: "typical embedding", in: []float32{0.125, -0.5, 1, 0}},
		{name: "single element", in: []float32{3.14}},
		{name: "empty", in: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := encodeVector(tt.in)
			assert.True(t, strings.HasPrefix(encoded, "["))
			assert.True(t, strings.HasSuffix(encoded, "]"))

			decoded, err := decodeVector(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.in, decoded)
		})
	}
}

func TestDecodeVectorRejectsMalformedLiterals(t *testing.T) {
	for _, in := range []string{"", "0.1,0.2", "[0.1,0.2", "[a,b]"} {
		_, err := decodeVector(in)
		assert.Error(t, err, "input %q", in)
	}
}

// Pins the SQL shape of the nearest-neighbor lookup: the similarity threshold
// is applied in the query itself and results are ordered best match first.
func TestSimilaritySearchQueryShape(t *testing.T) {
	assert.Contains(t, similaritySearchQuery, "1 - (c.embedding <=> $1::vector) >= $4")
	assert.Contains(t, similaritySearchQuery, "ORDER BY c.embedding <=> $1::vector ASC")
	assert.Contains(t, similaritySearchQuery, "LIMIT $5")
	assert.Contains(t, similaritySearchQuery, "c.embedding IS NOT NULL")
}
