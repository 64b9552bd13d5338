package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityCount(t *testing.T) {
	tests := []struct {
		name  string
		query string
		seq   string
		want  int
	}{
		{"identical", "AAAA", "AAAA", 4},
		{"one mismatch", "AAAA", "AAAT", 3},
		{"gaps match gaps", "MK--", "MK--", 4},
		{"shorter row", "AAAA", "AA", 2},
		{"longer row", "AA", "AAAA", 2},
		{"empty", "", "AAAA", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentityCount(tt.query, tt.seq))
		})
	}
}

func TestIdentityFraction(t *testing.T) {
	tests := []struct {
		name  string
		query string
		seq   string
		want  float64
	}{
		{"perfect", "AAAA", "AAAA", 1.0},
		{"half", "AAAA", "AATT", 0.5},
		{"divides by row length", "AA", "AAAA", 0.5},
		{"empty row", "AAAA", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, IdentityFraction(tt.query, tt.seq), 1e-9)
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "ABC", 3},
		{"ABC", "", 3},
		{"kitten", "sitting", 3},
		{"MKVL", "MKVL", 0},
		{"MKVL", "MK-L", 1},
		{"MKVL", "KVL", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestEuclidean(t *testing.T) {
	assert.InDelta(t, 5.0, Euclidean([]float64{0, 0}, []float64{3, 4}), 1e-9)
	assert.Equal(t, 0.0, Euclidean([]float64{1, 2, 3}, []float64{1, 2, 3}))
}

func BenchmarkLevenshtein(b *testing.B) {
	s1 := ""
	s2 := ""
	for i := 0; i < 100; i++ {
		s1 += "MKVL"
		s2 += "MKLV"
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Levenshtein(s1, s2)
	}
}
