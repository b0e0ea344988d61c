// Package vectorops provides the distance arithmetic shared by the
// vector store backends. Both backends must rank identical content
// identically, so they score with the same function.
package vectorops

import "math"

// CosineDistance returns 1 - cosine similarity of a and b.
// Smaller is nearer. Mismatched lengths or zero vectors rank last
// (distance 2, beyond the cosine range) rather than erroring, so a
// single malformed record cannot fail a whole search.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 2
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
